package badger

import (
	"context"
	"testing"

	"github.com/btservant/tbpcorpus/core"
	"github.com/btservant/tbpcorpus/storage"
	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCollection(t *testing.T) (storage.CollectionRepository, *Backend) {
	t.Helper()
	repo, _, backend, err := NewMemoryRepositories("test-collection")
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo, backend
}

func makeEntry(id string, strategy core.Strategy, vector []float32) *core.CollectionEntry {
	return &core.CollectionEntry{
		ID:       id,
		Strategy: strategy,
		Vector:   vector,
		Text:     "[Test] text for " + id,
		Metadata: map[string]string{
			"category": "Biblical-Themes",
			"title":    "Test",
		},
	}
}

func TestCollectionRepository_UpsertAndGet(t *testing.T) {
	repo, _ := setupCollection(t)
	ctx := context.Background()

	entry := makeEntry("tbp_0000000000000001", core.StrategySemantic, []float32{1, 0, 0})
	require.NoError(t, repo.UpsertEntries(ctx, entry))

	got, err := repo.GetEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, got.ID)
	assert.Equal(t, entry.Strategy, got.Strategy)
	assert.Equal(t, entry.Text, got.Text)
	assert.Equal(t, entry.Metadata["category"], got.Metadata["category"])
}

func TestCollectionRepository_GetMissing(t *testing.T) {
	repo, _ := setupCollection(t)

	_, err := repo.GetEntry(context.Background(), "tbp_ffffffffffffffff")
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCollectionRepository_UpsertIsIdempotent(t *testing.T) {
	repo, _ := setupCollection(t)
	ctx := context.Background()

	entry := makeEntry("tbp_0000000000000002", core.StrategyTemporal, []float32{0, 1, 0})
	require.NoError(t, repo.UpsertEntries(ctx, entry))
	require.NoError(t, repo.UpsertEntries(ctx, entry))

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total, "upserting twice must not duplicate")
}

func TestCollectionRepository_ExistingIDs(t *testing.T) {
	repo, _ := setupCollection(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertEntries(ctx,
		makeEntry("tbp_000000000000000a", core.StrategySemantic, nil),
		makeEntry("tbp_000000000000000b", core.StrategySemantic, nil),
	))

	present, err := repo.ExistingIDs(ctx, []string{
		"tbp_000000000000000a",
		"tbp_000000000000000b",
		"tbp_000000000000000c",
	})
	require.NoError(t, err)
	assert.True(t, present["tbp_000000000000000a"])
	assert.True(t, present["tbp_000000000000000b"])
	assert.False(t, present["tbp_000000000000000c"])
}

func TestCollectionRepository_Stats(t *testing.T) {
	repo, _ := setupCollection(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertEntries(ctx,
		makeEntry("tbp_0000000000000010", core.StrategySemantic, nil),
		makeEntry("tbp_0000000000000011", core.StrategySemantic, nil),
		makeEntry("tbp_0000000000000012", core.StrategyReference, nil),
	))

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.ByStrategy[core.StrategySemantic])
	assert.Equal(t, 1, stats.ByStrategy[core.StrategyReference])
	assert.Equal(t, 0, stats.ByStrategy[core.StrategyTemporal])
	assert.Equal(t, []string{"Biblical-Themes"}, stats.Categories)
}

func TestCollectionRepository_Browse(t *testing.T) {
	repo, _ := setupCollection(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertEntries(ctx,
		makeEntry("tbp_0000000000000020", core.StrategySemantic, nil),
		makeEntry("tbp_0000000000000021", core.StrategyTemporal, nil),
		makeEntry("tbp_0000000000000022", core.StrategyTemporal, nil),
	))

	all, err := repo.Browse(ctx, storage.Filter{}, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	temporal, err := repo.Browse(ctx, storage.Filter{Strategy: core.StrategyTemporal}, 10)
	require.NoError(t, err)
	assert.Len(t, temporal, 2)

	limited, err := repo.Browse(ctx, storage.Filter{}, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	_, err = repo.Browse(ctx, storage.Filter{}, 0)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestCollectionRepository_FindSimilar(t *testing.T) {
	repo, _ := setupCollection(t)
	ctx := context.Background()

	near := makeEntry("tbp_0000000000000030", core.StrategySemantic, []float32{1, 0, 0})
	far := makeEntry("tbp_0000000000000031", core.StrategySemantic, []float32{0, 1, 0})
	mid := makeEntry("tbp_0000000000000032", core.StrategyReference, []float32{0.7071, 0.7071, 0})
	require.NoError(t, repo.UpsertEntries(ctx, near, far, mid))

	results, err := repo.FindSimilar(ctx, []float32{1, 0, 0}, storage.Filter{}, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, near.ID, results[0].Entry.ID, "exact match ranks first")
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestCollectionRepository_FindSimilar_StrategyFilter(t *testing.T) {
	repo, _ := setupCollection(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertEntries(ctx,
		makeEntry("tbp_0000000000000040", core.StrategySemantic, []float32{1, 0}),
		makeEntry("tbp_0000000000000041", core.StrategyTemporal, []float32{1, 0}),
	))

	results, err := repo.FindSimilar(ctx, []float32{1, 0}, storage.Filter{Strategy: core.StrategyTemporal}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, core.StrategyTemporal, results[0].Entry.Strategy)
}

func TestCollectionRepository_FindSimilar_BookFilter(t *testing.T) {
	repo, _ := setupCollection(t)
	ctx := context.Background()

	genesis := makeEntry("tbp_0000000000000050", core.StrategyReference, []float32{1, 0})
	genesis.Metadata["primary_book"] = "Genesis"
	genesis.Metadata["primary_chapter"] = "2"
	exodus := makeEntry("tbp_0000000000000051", core.StrategyReference, []float32{1, 0})
	exodus.Metadata["primary_book"] = "Exodus"
	require.NoError(t, repo.UpsertEntries(ctx, genesis, exodus))

	results, err := repo.FindSimilar(ctx, []float32{1, 0}, storage.Filter{Book: "Genesis"}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, genesis.ID, results[0].Entry.ID)

	results, err = repo.FindSimilar(ctx, []float32{1, 0}, storage.Filter{Book: "Genesis", Chapter: 3}, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCollectionRepository_StrategyScansUseIndex(t *testing.T) {
	repo, backend := setupCollection(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertEntries(ctx,
		makeEntry("tbp_0000000000000060", core.StrategyTemporal, []float32{1, 0}),
	))

	// An entry written without its index key is invisible to
	// strategy-filtered scans but still found by full scans.
	stray := makeEntry("tbp_0000000000000061", core.StrategyTemporal, []float32{1, 0})
	value, err := storage.MarshalEntry(stray)
	require.NoError(t, err)
	require.NoError(t, backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeEntryKey("test-collection", stray.ID), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true))

	all, err := repo.Browse(ctx, storage.Filter{}, 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	indexed, err := repo.Browse(ctx, storage.Filter{Strategy: core.StrategyTemporal}, 10)
	require.NoError(t, err)
	require.Len(t, indexed, 1)
	assert.Equal(t, "tbp_0000000000000060", indexed[0].ID)
}

func TestCollectionRepository_StrategyScanSkipsOrphanIndexKeys(t *testing.T) {
	repo, backend := setupCollection(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertEntries(ctx,
		makeEntry("tbp_0000000000000070", core.StrategyReference, []float32{1, 0}),
	))

	// Index key whose entry no longer exists.
	orphan := makeStrategyKey("test-collection", core.StrategyReference, "tbp_00000000000000ff")
	require.NoError(t, backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(orphan, []byte{}); err != nil {
			return err
		}
		return tx.Commit()
	}, true))

	results, err := repo.FindSimilar(ctx, []float32{1, 0}, storage.Filter{Strategy: core.StrategyReference}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "tbp_0000000000000070", results[0].Entry.ID)
}

func TestBackend_ListCollections(t *testing.T) {
	_, _, backend, err := NewMemoryRepositories("alpha")
	require.NoError(t, err)
	defer backend.Close()

	_, err = NewCollectionRepository(backend, "beta")
	require.NoError(t, err)

	names, err := backend.ListCollections(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alpha", "beta"}, names)
}
