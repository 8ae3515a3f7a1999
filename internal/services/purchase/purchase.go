// Package purchase drives a purchase request from positional reference to
// fulfilled order: resolve against the current catalog, debit the ledger,
// record the audit entry, grant the item.
package purchase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/avdeyev/storeserv/internal/catalog"
	"github.com/avdeyev/storeserv/internal/repos/audit"
	"github.com/avdeyev/storeserv/internal/repos/deliveries"
)

// Resolver is the catalog lookup the processor validates against. Always the
// catalog current at purchase time: client-echoed item data is never trusted,
// a stale (tab, item) pair after a rebuild either resolves to whatever now
// lives at that position or is rejected.
type Resolver interface {
	Resolve(tabIndex, itemIndex uint32) (catalog.Item, error)
}

// Debiter applies the durable, cache-synchronized decrement.
type Debiter interface {
	Debit(ctx context.Context, accountID uint32, amount int64) (int64, error)
}

type Service struct {
	catalog   Resolver
	ledger    Debiter
	audit     audit.Audit
	fulfiller deliveries.Fulfillment
	now       func() time.Time
}

func New(cat Resolver, led Debiter, aud audit.Audit, ful deliveries.Fulfillment) *Service {
	return &Service{
		catalog:   cat,
		ledger:    led,
		audit:     aud,
		fulfiller: ful,
		now:       time.Now,
	}
}

// Receipt reports a completed purchase: the item as priced by the server and
// the account's balance after the debit.
type Receipt struct {
	Item   catalog.Item
	Points int64
}

// Submit processes one purchase request.
//
// Nothing durable changes until the debit commits. After it has, the audit
// entry and the grant follow; a failure in either is logged and surfaced to
// operators, never rolled back. The committed debit is the authoritative
// record, and a grant that did not deliver must show up as a debit with no
// matching delivery, not vanish.
//
// Retries are not deduplicated: submitting the same request twice buys twice.
func (s *Service) Submit(ctx context.Context, accountID, tabIndex, itemIndex uint32) (Receipt, error) {
	item, err := s.catalog.Resolve(tabIndex, itemIndex)
	if err != nil {
		return Receipt{}, fmt.Errorf("resolve (%d,%d): %w", tabIndex, itemIndex, err)
	}

	points, err := s.ledger.Debit(ctx, accountID, int64(item.Cost))
	if err != nil {
		return Receipt{}, fmt.Errorf("debit %d points: %w", item.Cost, err)
	}

	err = s.audit.Append(ctx, audit.Entry{
		Cost:        int64(item.Cost),
		Name:        item.Name,
		Description: item.Description,
		AccountID:   accountID,
		PurchasedAt: s.now(),
	})
	if err != nil {
		slog.Error("audit entry lost for committed debit",
			"account_id", accountID,
			"item_id", item.ID,
			"cost", item.Cost,
			"error", err,
		)
	}

	err = s.fulfiller.GrantItem(ctx, accountID, item.PurchaseID)
	if err != nil {
		slog.Error("fulfillment failed after committed debit",
			"account_id", accountID,
			"item_id", item.ID,
			"purchase_id", item.PurchaseID,
			"cost", item.Cost,
			"error", err,
		)
	}

	return Receipt{Item: item, Points: points}, nil
}
