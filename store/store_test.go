package store

import (
	"testing"

	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"github.com/erigontech/revsynth/gate"
)

func openTestEnv(t *testing.T) *Env {
	t.Helper()
	dir := t.TempDir()
	env, err := Open(dir, Config{Basis: "eca57"})
	require.NoError(t, err)
	t.Cleanup(func() { env.Close() })
	return env
}

func TestOpenInitializesMeta(t *testing.T) {
	env := openTestEnv(t)
	meta, err := env.ReadMeta()
	require.NoError(t, err)
	require.Equal(t, SchemaVersion, meta.SchemaVersion)
	require.Equal(t, CanonicalizationVersion, meta.CanonicalizationVersion)
	require.Equal(t, "eca57", meta.Basis)
	require.Equal(t, uint64(0), meta.TemplateCount)
}

func TestOpenRefusesVersionMismatch(t *testing.T) {
	dir := t.TempDir()
	env, err := Open(dir, Config{Basis: "eca57"})
	require.NoError(t, err)

	err = env.db.Update(func(tx *bolt.Tx) error {
		return putU32(tx.Bucket(bucketMeta), "schema_version", SchemaVersion+1)
	})
	require.NoError(t, err)
	env.Close()

	_, err = Open(dir, Config{ReadOnly: true})
	require.ErrorIs(t, err, ErrVersionMismatch)
}

func TestInsertTemplateDedup(t *testing.T) {
	env := openTestEnv(t)
	basis := gate.ECA57Basis{}
	ts, err := NewTemplateStore(env, basis, 16)
	require.NoError(t, err)

	gates := []gate.Gate{gate.NewECA57Gate(0, 1, 2), gate.NewECA57Gate(0, 1, 2)}
	rec1, err := ts.InsertTemplate(gates, 3, OriginSAT, 0, 0, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(1), rec1.TemplateID)

	_, err = ts.InsertTemplate(gates, 3, OriginSAT, 0, 0, nil)
	require.ErrorIs(t, err, ErrDuplicate)

	count, err := ts.CountByDims(3, 2)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestInsertTemplateFamilyMembers(t *testing.T) {
	env := openTestEnv(t)
	basis := gate.ECA57Basis{}
	ts, err := NewTemplateStore(env, basis, 0)
	require.NoError(t, err)

	seed := []gate.Gate{gate.NewECA57Gate(0, 1, 2), gate.NewECA57Gate(0, 1, 2)}
	rec, err := ts.InsertTemplate(seed, 3, OriginSAT, 0, 0, nil)
	require.NoError(t, err)

	variant := []gate.Gate{gate.NewECA57Gate(0, 1, 2), gate.NewECA57Gate(1, 2, 0)}
	fam := rec.FamilyHash
	_, err = ts.InsertTemplate(variant, 3, OriginUnroll, rec.TemplateID, 1, &fam)
	require.NoError(t, err)

	members, err := ts.FamilyMembers(rec.FamilyHash)
	require.NoError(t, err)
	require.Len(t, members, 2)
}

func TestWitnessBuildAndLookup(t *testing.T) {
	env := openTestEnv(t)
	basis := gate.ECA57Basis{}
	ts, err := NewTemplateStore(env, basis, 0)
	require.NoError(t, err)
	ws := NewWitnessStore(env, basis)

	gates := []gate.Gate{
		gate.NewECA57Gate(0, 1, 2),
		gate.NewECA57Gate(1, 2, 0),
	}
	rec, err := ts.InsertTemplate(gates, 3, OriginSAT, 0, 0, nil)
	require.NoError(t, err)

	witness, inserted, err := ws.BuildFromTemplate(rec, false)
	require.NoError(t, err)
	require.True(t, inserted)
	require.Equal(t, uint64(1), witness.WitnessID)

	wGates, err := DecodeGates(rec.BasisID, witness.GatesEncoded)
	require.NoError(t, err)
	if len(wGates) >= 2 {
		token, err := ws.kgramToken(wGates[:2], rec.Width)
		require.NoError(t, err)
		ids, err := ws.LookupByToken(rec.Width, token)
		require.NoError(t, err)
		require.Contains(t, ids, witness.WitnessID)
	}
}

func TestTemplateRecordRoundTrip(t *testing.T) {
	r := TemplateRecord{
		TemplateID:       42,
		BasisID:          gate.BasisECA57,
		Width:            3,
		GateCount:        2,
		Origin:           OriginSAT,
		OriginTemplateID: 0,
		UnrollOps:        0,
		GatesEncoded:     []byte{0, 1, 2, 1, 2, 0},
	}
	decoded, err := DecodeTemplateRecord(r.Encode())
	require.NoError(t, err)
	require.Equal(t, r, decoded)
}

func TestWitnessRecordRoundTrip(t *testing.T) {
	r := WitnessRecord{
		WitnessID:        7,
		BasisID:          gate.BasisECA57,
		Width:            3,
		WitnessLen:       2,
		SourceTemplateID: 42,
		GatesEncoded:     []byte{0, 1, 2},
	}
	decoded, err := DecodeWitnessRecord(r.Encode())
	require.NoError(t, err)
	require.Equal(t, r, decoded)
}
