// Package audit records completed purchases. Entries are append-only: this
// system never updates or deletes them, they exist for reconciliation by
// operators and external tooling.
package audit

import (
	"context"
	"time"
)

// Entry is one completed purchase. Name and description are copied from the
// item at purchase time so the record stays meaningful after catalog edits.
type Entry struct {
	Cost        int64
	Name        string
	Description string
	AccountID   uint32
	PurchasedAt time.Time
}

type Audit interface {
	Append(ctx context.Context, e Entry) error
}
