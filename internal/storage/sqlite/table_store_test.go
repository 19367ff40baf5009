package sqlite

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/moc/internal/expeval"
)

func buildSnapshot(t *testing.T, precision float64, linear bool) *expeval.TableSnapshot {
	t.Helper()
	e := expeval.New()
	require.NoError(t, e.SetExpPrecision(precision))
	if linear {
		e.UseLinearSource()
	}
	require.NoError(t, e.Initialize())
	s, err := e.Snapshot()
	require.NoError(t, err)
	return s
}

func TestTableStore_InsertGet(t *testing.T) {
	store := NewTableStore(setupTestDB(t))
	snap := buildSnapshot(t, 1e-4, true)

	rec := &ExpTable{Label: "baseline", Snapshot: snap}
	require.NoError(t, store.Insert(rec))
	assert.NotEmpty(t, rec.TableID)
	assert.NotZero(t, rec.CreatedAt)
	assert.Equal(t, snap.NumIntervals, rec.NumIntervals)

	got, err := store.Get(rec.TableID)
	require.NoError(t, err)
	assert.Equal(t, "baseline", got.Label)
	assert.True(t, got.LinearSource)
	assert.Equal(t, 1e-4, got.ExpPrecision)
	if diff := cmp.Diff(snap, got.Snapshot); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}

	_, err = store.Get("missing")
	assert.ErrorContains(t, err, "not found")
}

func TestTableStore_InsertNilSnapshot(t *testing.T) {
	store := NewTableStore(setupTestDB(t))
	assert.Error(t, store.Insert(&ExpTable{Label: "empty"}))
}

func TestTableStore_FindByConfig(t *testing.T) {
	store := NewTableStore(setupTestDB(t))

	none, err := store.FindByConfig(1e-4, 10, false)
	require.NoError(t, err)
	assert.Nil(t, none)

	flat := buildSnapshot(t, 1e-4, false)
	older := &ExpTable{Label: "older", Snapshot: flat, CreatedAt: 100}
	newer := &ExpTable{Label: "newer", Snapshot: flat, CreatedAt: 200}
	require.NoError(t, store.Insert(older))
	require.NoError(t, store.Insert(newer))
	require.NoError(t, store.Insert(&ExpTable{Label: "linear", Snapshot: buildSnapshot(t, 1e-4, true)}))

	got, err := store.FindByConfig(1e-4, 10, false)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, newer.TableID, got.TableID)

	miss, err := store.FindByConfig(1e-3, 10, false)
	require.NoError(t, err)
	assert.Nil(t, miss)
}

func TestTableStore_ListDelete(t *testing.T) {
	store := NewTableStore(setupTestDB(t))
	snap := buildSnapshot(t, 1e-3, false)

	a := &ExpTable{Label: "a", Snapshot: snap, CreatedAt: 1}
	b := &ExpTable{Label: "b", Snapshot: snap, CreatedAt: 2}
	require.NoError(t, store.Insert(a))
	require.NoError(t, store.Insert(b))

	list, err := store.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].Label)
	assert.Nil(t, list[0].Snapshot)

	require.NoError(t, store.Delete(a.TableID))
	assert.ErrorContains(t, store.Delete(a.TableID), "not found")

	list, err = store.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.TableID, list[0].TableID)
}

func TestTableStore_EvaluatorCache(t *testing.T) {
	store := NewTableStore(setupTestDB(t))

	first := expeval.New()
	cached, err := first.LoadOrInitialize(store)
	require.NoError(t, err)
	assert.False(t, cached)

	second := expeval.New()
	cached, err = second.LoadOrInitialize(store)
	require.NoError(t, err)
	assert.True(t, cached)

	for _, tau := range []float64{0.01, 2.5, 9.7} {
		a, err := first.ComputeExponentialF1(tau)
		require.NoError(t, err)
		b, err := second.ComputeExponentialF1(tau)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}

	list, err := store.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "auto", list[0].Label)
}

func TestTableStore_CorruptBlobIsCacheMiss(t *testing.T) {
	db := setupTestDB(t)
	store := NewTableStore(db)

	e := expeval.New()
	spacing := e.MaxOpticalLength() / 1119
	_, err := db.Exec(`
		INSERT INTO exp_tables (
			table_id, label, exp_precision, max_optical_length, linear_source,
			table_spacing, num_intervals, table_blob, created_at
		) VALUES ('broken', 'auto', ?, ?, 0, ?, 1119, X'00010203', 1)`,
		e.ExpPrecision(), e.MaxOpticalLength(), spacing)
	require.NoError(t, err)

	_, err = store.FindByConfig(e.ExpPrecision(), e.MaxOpticalLength(), false)
	assert.ErrorIs(t, err, errCorruptTable)

	snap, err := store.FindTable(e.ExpPrecision(), e.MaxOpticalLength(), false)
	require.NoError(t, err)
	assert.Nil(t, snap)

	cached, err := e.LoadOrInitialize(store)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.True(t, e.IsInitialized())

	list, err := store.List()
	require.NoError(t, err)
	assert.Len(t, list, 2)

	again := expeval.New()
	cached, err = again.LoadOrInitialize(store)
	require.NoError(t, err)
	assert.True(t, cached)
}
