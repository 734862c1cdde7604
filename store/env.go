// Package store is the content-addressed template & witness database: an
// ordered embedded KV engine (go.etcd.io/bbolt) holding named sub-stores
// for templates, witnesses, families, and the k-gram prefilter index.
// Grounded on original_source/src/database/lmdb_env.go's bucket layout,
// with go.etcd.io/bbolt standing in for LMDB/mdbx as the ordered
// embedded-B+tree engine (see DESIGN.md for why).
package store

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

// Bucket names, one per named sub-store of §4.G.
var (
	bucketMeta              = []byte("meta")
	bucketTemplatesByHash   = []byte("templates_by_hash")
	bucketTemplatesByDims   = []byte("templates_by_dims")
	bucketTemplateFamilies  = []byte("template_families")
	bucketWitnessesByHash   = []byte("witnesses_by_hash")
	bucketWitnessPrefilter  = []byte("witness_prefilter")
)

var allBuckets = [][]byte{
	bucketMeta,
	bucketTemplatesByHash,
	bucketTemplatesByDims,
	bucketTemplateFamilies,
	bucketWitnessesByHash,
	bucketWitnessPrefilter,
}

const (
	// SchemaVersion is the on-disk record layout version.
	SchemaVersion uint32 = 1
	// CanonicalizationVersion is bumped iff on-disk hashes would change.
	CanonicalizationVersion uint32 = 1

	defaultMapSize = 10 * datasize.GB
)

// ErrVersionMismatch is returned by Open when a store's on-disk schema or
// canonicalization version differs from what this binary expects (§7 Kind
// VersionMismatch — refuse to open, exit 1).
var ErrVersionMismatch = errors.New("store: version mismatch")

// ErrCorruption is returned when a record fails to decode (§7 Kind
// Corruption — refuse to open, exit 2).
var ErrCorruption = errors.New("store: corrupted record")

// ErrDuplicate signals "canonical hash already present" — not a true
// error, a caller-facing already-known signal (§7 Kind Duplicate).
var ErrDuplicate = errors.New("store: duplicate canonical hash")

// Config configures Open.
type Config struct {
	MapSize  datasize.ByteSize
	ReadOnly bool
	Basis    string // only consulted on first-time initialization
}

// Env wraps a bbolt database file plus the directory flock that guards it
// against two writer processes (e.g. two `explore` invocations) racing on
// the same path — bbolt itself only flocks the single data file, so this
// directory lock is a belt-and-suspenders addition for the metadata files
// operators sometimes keep alongside it (logs, lock sentinels).
type Env struct {
	db       *bolt.DB
	dirLock  *flock.Flock
	path     string
	readOnly bool
}

// Open opens (and if necessary creates) the store directory at path.
func Open(path string, cfg Config) (*Env, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, errors.Wrapf(err, "store: create directory %s", path)
	}

	dirLock := flock.New(filepath.Join(path, ".lock"))
	locked, err := dirLock.TryLock()
	if err != nil {
		return nil, errors.Wrapf(err, "store: lock directory %s", path)
	}
	if !locked {
		return nil, fmt.Errorf("store: directory %s is locked by another process", path)
	}

	mapSize := cfg.MapSize
	if mapSize == 0 {
		mapSize = defaultMapSize
	}

	dbPath := filepath.Join(path, "revsynth.db")
	opts := &bolt.Options{
		Timeout:      2 * time.Second,
		ReadOnly:     cfg.ReadOnly,
		InitialMmapSize: int(mapSize.Bytes()),
	}
	db, err := bolt.Open(dbPath, 0o644, opts)
	if err != nil {
		dirLock.Unlock()
		return nil, errors.Wrapf(err, "store: open %s", dbPath)
	}

	e := &Env{db: db, dirLock: dirLock, path: path, readOnly: cfg.ReadOnly}

	if !cfg.ReadOnly {
		if err := e.initBuckets(); err != nil {
			e.Close()
			return nil, err
		}
		if err := e.initMeta(cfg.Basis); err != nil {
			e.Close()
			return nil, err
		}
	}

	if err := e.checkVersions(); err != nil {
		e.Close()
		return nil, err
	}

	return e, nil
}

func (e *Env) initBuckets() error {
	return e.db.Update(func(tx *bolt.Tx) error {
		for _, b := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return errors.Wrapf(err, "store: create bucket %s", b)
			}
		}
		return nil
	})
}

func (e *Env) initMeta(basis string) error {
	return e.db.Update(func(tx *bolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		if meta.Get([]byte("schema_version")) != nil {
			return nil // already initialized
		}
		if basis == "" {
			basis = "eca57"
		}
		putU32(meta, "schema_version", SchemaVersion)
		putU32(meta, "canonicalization_version", CanonicalizationVersion)
		if err := meta.Put([]byte("basis"), []byte(basis)); err != nil {
			return err
		}
		putU64(meta, "template_count", 0)
		return putU64(meta, "witness_count", 0)
	})
}

func (e *Env) checkVersions() error {
	return e.db.View(func(tx *bolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		if meta == nil {
			return fmt.Errorf("%w: no meta bucket", ErrCorruption)
		}
		schema := getU32(meta, "schema_version")
		canon := getU32(meta, "canonicalization_version")
		if schema != SchemaVersion {
			return fmt.Errorf("%w: schema_version %d, binary expects %d", ErrVersionMismatch, schema, SchemaVersion)
		}
		if canon != CanonicalizationVersion {
			return fmt.Errorf("%w: canonicalization_version %d, binary expects %d", ErrVersionMismatch, canon, CanonicalizationVersion)
		}
		return nil
	})
}

// Close releases the database handle and directory lock.
func (e *Env) Close() error {
	var err error
	if e.db != nil {
		err = e.db.Close()
	}
	if e.dirLock != nil {
		e.dirLock.Unlock()
	}
	return err
}

// Path returns the store directory.
func (e *Env) Path() string { return e.path }

func putU32(b *bolt.Bucket, key string, v uint32) error {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return b.Put([]byte(key), buf)
}

func putU64(b *bolt.Bucket, key string, v uint64) error {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	return b.Put([]byte(key), buf)
}

func getU32(b *bolt.Bucket, key string) uint32 {
	v := b.Get([]byte(key))
	if len(v) != 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(v)
}

func getU64(b *bolt.Bucket, key string) uint64 {
	v := b.Get([]byte(key))
	if len(v) != 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(v)
}
