package merge

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/revsynth/gate"
	"github.com/erigontech/revsynth/store"
)

func openTestEnv(t *testing.T) *store.Env {
	t.Helper()
	dir := t.TempDir()
	env, err := store.Open(dir, store.Config{Basis: "eca57"})
	require.NoError(t, err)
	t.Cleanup(func() { env.Close() })
	return env
}

func TestMergeDedupsAcrossSources(t *testing.T) {
	basis := gate.ECA57Basis{}

	src1 := openTestEnv(t)
	ts1, err := store.NewTemplateStore(src1, basis, 0)
	require.NoError(t, err)
	gates := []gate.Gate{gate.NewECA57Gate(0, 1, 2), gate.NewECA57Gate(0, 1, 2)}
	_, err = ts1.InsertTemplate(gates, 3, store.OriginSAT, 0, 0, nil)
	require.NoError(t, err)

	src2 := openTestEnv(t)
	ts2, err := store.NewTemplateStore(src2, basis, 0)
	require.NoError(t, err)
	// Same canonical circuit inserted under a different local id sequence.
	_, err = ts2.InsertTemplate(gates, 3, store.OriginSAT, 0, 0, nil)
	require.NoError(t, err)
	distinct := []gate.Gate{gate.NewECA57Gate(0, 1, 2), gate.NewECA57Gate(1, 2, 0)}
	_, err = ts2.InsertTemplate(distinct, 3, store.OriginSAT, 0, 0, nil)
	require.NoError(t, err)

	target := openTestEnv(t)
	targetTS, err := store.NewTemplateStore(target, basis, 0)
	require.NoError(t, err)

	report, err := Merge([]*store.Env{src1, src2}, targetTS, basis, 3, map[uint8]int{3: 2}, false)
	require.NoError(t, err)
	require.Equal(t, 2, report.TotalInserted)

	count, err := targetTS.CountByDims(3, 2)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}
