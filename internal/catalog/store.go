package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/avdeyev/storeserv/internal/repos/items"
)

// Store owns the current catalog. Readers get snapshots through an atomic
// pointer, so a rebuild in flight is never observable half-built: Resolve and
// Snapshot see either the old catalog or the new one, in full.
type Store struct {
	items items.Items

	rebuildMu sync.Mutex // serializes Rebuild against itself
	current   atomic.Pointer[Catalog]
}

func NewStore(repo items.Items) *Store {
	return &Store{items: repo}
}

// Rebuild loads all store items and replaces the held catalog. Items are
// grouped by their category value; categories are sorted ascending before tab
// indices are assigned, so rebuilds over unchanged data reproduce the same
// tab layout. Row order (by id) is kept within each tab.
//
// Rebuilding invalidates every (tab, item) pair clients are holding; purchase
// validation always re-resolves against the catalog current at purchase time.
func (s *Store) Rebuild(ctx context.Context) error {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	rows, err := s.items.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list store items: %w", err)
	}

	grouped := make(map[uint32][]Item)

	for _, row := range rows {
		grouped[row.Category] = append(grouped[row.Category], Item{
			ID:          row.ID,
			Flags:       row.Flags,
			Cost:        row.Cost,
			Name:        row.Name,
			Description: row.Description,
			Category:    row.Category,
			PurchaseID:  row.PurchaseID,
			ExtraID:     row.ExtraID,
		})
	}

	categories := make([]uint32, 0, len(grouped))
	for cat := range grouped {
		categories = append(categories, cat)
	}

	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	next := &Catalog{Tabs: make([]Tab, 0, len(categories))}
	for _, cat := range categories {
		next.Tabs = append(next.Tabs, Tab{Items: grouped[cat]})
	}

	s.current.Store(next)

	return nil
}

// Snapshot returns the currently held catalog. Before the first rebuild it
// returns an empty catalog, never nil.
func (s *Store) Snapshot() *Catalog {
	c := s.current.Load()
	if c == nil {
		return &Catalog{}
	}

	return c
}

// Resolve performs a positional lookup in the current snapshot.
func (s *Store) Resolve(tabIndex, itemIndex uint32) (Item, error) {
	return s.Snapshot().Resolve(tabIndex, itemIndex)
}

// TabCount reports the number of tabs in the current snapshot.
func (s *Store) TabCount() int {
	return len(s.Snapshot().Tabs)
}
