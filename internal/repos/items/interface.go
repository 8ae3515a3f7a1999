package items

import "context"

// Row mirrors one store_items record.
type Row struct {
	ID          uint32
	Flags       uint32
	Cost        uint32
	Name        string
	Description string
	Category    uint32
	PurchaseID  uint32
	ExtraID     uint32
}

type Items interface {
	// ListAll returns every store item in a deterministic order (by id),
	// so repeated catalog rebuilds over unchanged data produce identical
	// tab layouts.
	ListAll(ctx context.Context) ([]Row, error)
}
