// Package catalog holds the server's in-memory view of purchasable store
// items, grouped into positionally addressed tabs.
package catalog

import "errors"

// ErrItemNotFound means a (tab, item) reference does not resolve in the
// current catalog. Typically a stale reference from before a rebuild, or a
// forged one.
var ErrItemNotFound = errors.New("store item not found")

// Item flag bits, matching the store_items.flags column.
const (
	FlagCreature  uint32 = 1 << iota // previewed as a creature model
	FlagEquipment                    // previewed as equipment
	FlagSale10
	FlagSale20
	FlagSale50
)

// Item is a single purchasable catalog entry. Immutable once loaded; a
// rebuild replaces items wholesale, never mutates them in place.
type Item struct {
	ID          uint32
	Flags       uint32
	Cost        uint32
	Name        string
	Description string
	Category    uint32
	PurchaseID  uint32 // game object granted on purchase
	ExtraID     uint32 // auxiliary reference, e.g. a preview model
}

// Tab is an ordered group of items addressed by position.
type Tab struct {
	Items []Item
}

// Catalog is an ordered sequence of tabs. Clients reference items by the
// pair (tabIndex, itemIndex), so tab and item order must be stable for the
// lifetime of one catalog snapshot.
type Catalog struct {
	Tabs []Tab
}

// Resolve looks up an item by position.
func (c *Catalog) Resolve(tabIndex, itemIndex uint32) (Item, error) {
	if uint64(tabIndex) >= uint64(len(c.Tabs)) {
		return Item{}, ErrItemNotFound
	}

	tab := c.Tabs[tabIndex]
	if uint64(itemIndex) >= uint64(len(tab.Items)) {
		return Item{}, ErrItemNotFound
	}

	return tab.Items[itemIndex], nil
}
