package store

import (
	"encoding/binary"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/erigontech/revsynth/gate"
)

// TemplateStore is the high-level template API over an Env: canonicalize,
// dedup-check, allocate template_id, and maintain the three template
// sub-stores (by-hash, by-dims, families) as one write transaction per
// insert. Grounded on original_source/src/database/templates.py
// TemplateStore.
type TemplateStore struct {
	env   *Env
	basis gate.Basis

	// dedupCache short-circuits repeat canonical-hash lookups against the
	// store during tight unroll loops, avoiding a read transaction per
	// candidate when the same hash is likely to recur within a cell.
	dedupCache *lru.Cache[[32]byte, uint64]
}

// NewTemplateStore wraps env for basis, with a dedup LRU of the given
// capacity (0 disables the cache).
func NewTemplateStore(env *Env, basis gate.Basis, cacheSize int) (*TemplateStore, error) {
	ts := &TemplateStore{env: env, basis: basis}
	if cacheSize > 0 {
		c, err := lru.New[[32]byte, uint64](cacheSize)
		if err != nil {
			return nil, errors.Wrap(err, "store: allocate dedup cache")
		}
		ts.dedupCache = c
	}
	return ts, nil
}

func templateHashKey(basisID gate.BasisID, width uint8, gc uint16, hash [32]byte) []byte {
	key := make([]byte, 0, 4+32)
	key = append(key, byte(basisID), width)
	key = binary.LittleEndian.AppendUint16(key, gc)
	key = append(key, hash[:]...)
	return key
}

func templateDimsKey(basisID gate.BasisID, width uint8, gc uint16, templateID uint64) []byte {
	key := make([]byte, 0, 4+8)
	key = append(key, byte(basisID), width)
	key = binary.LittleEndian.AppendUint16(key, gc)
	key = binary.LittleEndian.AppendUint64(key, templateID)
	return key
}

func templateDimsPrefix(basisID gate.BasisID, width uint8, gc uint16) []byte {
	key := make([]byte, 0, 4)
	key = append(key, byte(basisID), width)
	key = binary.LittleEndian.AppendUint16(key, gc)
	return key
}

func familyKey(basisID gate.BasisID, familyHash [32]byte) []byte {
	key := make([]byte, 0, 33)
	key = append(key, byte(basisID))
	key = append(key, familyHash[:]...)
	return key
}

// InsertTemplate canonicalizes gates, checks for a duplicate canonical
// hash, and if absent allocates a template_id and writes the primary
// record, the dims back-ref, and the family membership list — all inside
// one bbolt write transaction. Returns ErrDuplicate itself if the
// canonical hash is already present; the caller treats that as an
// already-known signal, not a failure.
func (ts *TemplateStore) InsertTemplate(gates []gate.Gate, width uint8, origin Origin, originTemplateID uint64, unrollOps uint32, familyHash *[32]byte) (TemplateRecord, error) {
	canonicalGates, canonicalHash, err := ts.basis.Canonicalize(gates, width)
	if err != nil {
		return TemplateRecord{}, errors.Wrap(err, "store: canonicalize")
	}
	gateCount := uint16(len(gates))

	if ts.dedupCache != nil {
		if _, ok := ts.dedupCache.Get(canonicalHash); ok {
			return TemplateRecord{}, ErrDuplicate
		}
	}

	fam := canonicalHash
	if familyHash != nil {
		fam = *familyHash
	}

	var record TemplateRecord
	err = ts.env.db.Update(func(tx *bolt.Tx) error {
		byHash := tx.Bucket(bucketTemplatesByHash)
		hashKey := templateHashKey(ts.basis.ID(), width, gateCount, canonicalHash)
		if byHash.Get(hashKey) != nil {
			return ErrDuplicate
		}

		meta := tx.Bucket(bucketMeta)
		templateID := getU64(meta, "template_count") + 1
		if err := putU64(meta, "template_count", templateID); err != nil {
			return err
		}

		record = TemplateRecord{
			TemplateID:       templateID,
			BasisID:          ts.basis.ID(),
			Width:            width,
			GateCount:        gateCount,
			CanonicalHash:    canonicalHash,
			FamilyHash:       fam,
			Origin:           origin,
			OriginTemplateID: originTemplateID,
			UnrollOps:        unrollOps,
			GatesEncoded:     EncodeGates(ts.basis, canonicalGates),
		}

		if err := byHash.Put(hashKey, record.Encode()); err != nil {
			return err
		}

		byDims := tx.Bucket(bucketTemplatesByDims)
		dimsKey := templateDimsKey(ts.basis.ID(), width, gateCount, templateID)
		if err := byDims.Put(dimsKey, canonicalHash[:]); err != nil {
			return err
		}

		families := tx.Bucket(bucketTemplateFamilies)
		fKey := familyKey(ts.basis.ID(), fam)
		existing := families.Get(fKey)
		appended := make([]byte, len(existing)+8)
		copy(appended, existing)
		binary.LittleEndian.PutUint64(appended[len(existing):], templateID)
		return families.Put(fKey, appended)
	})

	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			if ts.dedupCache != nil {
				ts.dedupCache.Add(canonicalHash, 0)
			}
			return TemplateRecord{}, ErrDuplicate
		}
		return TemplateRecord{}, errors.Wrap(err, "store: insert template")
	}

	if ts.dedupCache != nil {
		ts.dedupCache.Add(canonicalHash, record.TemplateID)
	}
	return record, nil
}

// GetByHash looks up a template by its canonical hash within a dimension
// cell.
func (ts *TemplateStore) GetByHash(width uint8, gateCount uint16, canonicalHash [32]byte) (TemplateRecord, bool, error) {
	var record TemplateRecord
	var found bool
	err := ts.env.db.View(func(tx *bolt.Tx) error {
		byHash := tx.Bucket(bucketTemplatesByHash)
		data := byHash.Get(templateHashKey(ts.basis.ID(), width, gateCount, canonicalHash))
		if data == nil {
			return nil
		}
		r, err := DecodeTemplateRecord(data)
		if err != nil {
			return err
		}
		record = r
		found = true
		return nil
	})
	return record, found, err
}

// IterByDims calls fn for every template at (width, gateCount), in
// template_id order, stopping early if fn returns an error.
func (ts *TemplateStore) IterByDims(width uint8, gateCount uint16, fn func(TemplateRecord) error) error {
	return ts.env.db.View(func(tx *bolt.Tx) error {
		byDims := tx.Bucket(bucketTemplatesByDims)
		byHash := tx.Bucket(bucketTemplatesByHash)
		prefix := templateDimsPrefix(ts.basis.ID(), width, gateCount)

		c := byDims.Cursor()
		for k, v := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, v = c.Next() {
			var hash [32]byte
			copy(hash[:], v)
			data := byHash.Get(templateHashKey(ts.basis.ID(), width, gateCount, hash))
			if data == nil {
				return fmt.Errorf("%w: dims index points at missing template", ErrCorruption)
			}
			record, err := DecodeTemplateRecord(data)
			if err != nil {
				return err
			}
			if err := fn(record); err != nil {
				return err
			}
		}
		return nil
	})
}

// CountByDims counts templates at (width, gateCount).
func (ts *TemplateStore) CountByDims(width uint8, gateCount uint16) (int, error) {
	count := 0
	err := ts.IterByDims(width, gateCount, func(TemplateRecord) error {
		count++
		return nil
	})
	return count, err
}

// FamilyMembers returns every template_id sharing familyHash.
func (ts *TemplateStore) FamilyMembers(familyHash [32]byte) ([]uint64, error) {
	var ids []uint64
	err := ts.env.db.View(func(tx *bolt.Tx) error {
		families := tx.Bucket(bucketTemplateFamilies)
		data := families.Get(familyKey(ts.basis.ID(), familyHash))
		for i := 0; i+8 <= len(data); i += 8 {
			ids = append(ids, binary.LittleEndian.Uint64(data[i:i+8]))
		}
		return nil
	})
	return ids, err
}

// TemplateCount returns the database-wide monotonic template counter.
func (ts *TemplateStore) TemplateCount() (uint64, error) {
	var count uint64
	err := ts.env.db.View(func(tx *bolt.Tx) error {
		count = getU64(tx.Bucket(bucketMeta), "template_count")
		return nil
	})
	return count, err
}

func hasPrefix(b, prefix []byte) bool {
	if len(b) < len(prefix) {
		return false
	}
	for i := range prefix {
		if b[i] != prefix[i] {
			return false
		}
	}
	return true
}
