package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avdeyev/storeserv/internal/repos/items"
)

type fakeItems struct {
	rows []items.Row
	err  error
}

func (f *fakeItems) ListAll(_ context.Context) ([]items.Row, error) {
	return f.rows, f.err
}

func TestStoreRebuildGroupsAndSortsCategories(t *testing.T) {
	t.Parallel()

	repo := &fakeItems{rows: []items.Row{
		{ID: 1, Cost: 100, Name: "mount", Category: 7, PurchaseID: 55},
		{ID: 2, Cost: 50, Name: "pet", Category: 2, PurchaseID: 10},
		{ID: 3, Cost: 25, Name: "second pet", Category: 2, PurchaseID: 11},
		{ID: 4, Cost: 500, Name: "bundle", Category: 7, PurchaseID: 90},
	}}

	s := NewStore(repo)
	require.NoError(t, s.Rebuild(context.Background()))

	c := s.Snapshot()
	require.Len(t, c.Tabs, 2)

	// Category 2 sorts before category 7, whatever order the rows came in.
	require.Equal(t, "pet", c.Tabs[0].Items[0].Name)
	require.Equal(t, "second pet", c.Tabs[0].Items[1].Name)
	require.Equal(t, "mount", c.Tabs[1].Items[0].Name)
	require.Equal(t, "bundle", c.Tabs[1].Items[1].Name)
}

func TestStoreRebuildDeterministic(t *testing.T) {
	t.Parallel()

	repo := &fakeItems{rows: []items.Row{
		{ID: 1, Category: 9},
		{ID: 2, Category: 1},
		{ID: 3, Category: 4},
		{ID: 4, Category: 1},
	}}

	s := NewStore(repo)
	require.NoError(t, s.Rebuild(context.Background()))
	first := s.Snapshot()

	require.NoError(t, s.Rebuild(context.Background()))
	second := s.Snapshot()

	require.Equal(t, first, second)
}

func TestStoreResolve(t *testing.T) {
	t.Parallel()

	repo := &fakeItems{rows: []items.Row{
		{ID: 1, Cost: 100, Name: "mount", Category: 0, PurchaseID: 55},
	}}

	s := NewStore(repo)
	require.NoError(t, s.Rebuild(context.Background()))

	it, err := s.Resolve(0, 0)
	require.NoError(t, err)
	require.Equal(t, uint32(55), it.PurchaseID)

	for _, ref := range [][2]uint32{{0, 1}, {1, 0}, {3, 0}, {4294967295, 4294967295}} {
		_, err := s.Resolve(ref[0], ref[1])
		require.ErrorIs(t, err, ErrItemNotFound, "ref %v", ref)
	}
}

func TestStoreSnapshotBeforeRebuild(t *testing.T) {
	t.Parallel()

	s := NewStore(&fakeItems{})

	c := s.Snapshot()
	require.NotNil(t, c)
	require.Empty(t, c.Tabs)

	_, err := s.Resolve(0, 0)
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestStoreRebuildFailureKeepsOldCatalog(t *testing.T) {
	t.Parallel()

	repo := &fakeItems{rows: []items.Row{{ID: 1, Name: "mount", Category: 0}}}
	s := NewStore(repo)
	require.NoError(t, s.Rebuild(context.Background()))

	repo.err = errors.New("storage down")
	require.Error(t, s.Rebuild(context.Background()))

	// Readers still see the last good catalog.
	it, err := s.Resolve(0, 0)
	require.NoError(t, err)
	require.Equal(t, "mount", it.Name)
}

func TestStoreOldSnapshotSurvivesRebuild(t *testing.T) {
	t.Parallel()

	repo := &fakeItems{rows: []items.Row{{ID: 1, Name: "old", Category: 0}}}
	s := NewStore(repo)
	require.NoError(t, s.Rebuild(context.Background()))

	old := s.Snapshot()

	repo.rows = []items.Row{{ID: 2, Name: "new", Category: 0}}
	require.NoError(t, s.Rebuild(context.Background()))

	// A snapshot taken before the rebuild is immutable and still coherent.
	require.Equal(t, "old", old.Tabs[0].Items[0].Name)
	require.Equal(t, "new", s.Snapshot().Tabs[0].Items[0].Name)
}
