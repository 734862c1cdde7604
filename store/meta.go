package store

import bolt "go.etcd.io/bbolt"

// Meta is a snapshot of the database meta sub-store (§3 Database meta).
type Meta struct {
	SchemaVersion           uint32
	CanonicalizationVersion uint32
	Basis                   string
	TemplateCount           uint64
	WitnessCount            uint64
}

// ReadMeta snapshots the current meta bucket.
func (e *Env) ReadMeta() (Meta, error) {
	var m Meta
	err := e.db.View(func(tx *bolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		m.SchemaVersion = getU32(meta, "schema_version")
		m.CanonicalizationVersion = getU32(meta, "canonicalization_version")
		if b := meta.Get([]byte("basis")); b != nil {
			m.Basis = string(b)
		}
		m.TemplateCount = getU64(meta, "template_count")
		m.WitnessCount = getU64(meta, "witness_count")
		return nil
	})
	return m, err
}
