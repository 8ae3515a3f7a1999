package deliveries

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avdeyev/storeserv/internal/repos/deliveries"
)

var _ deliveries.Fulfillment = (*deliveriesRepo)(nil)

// deliveriesRepo fulfills by inserting into the store_deliveries outbox.
// A purchase whose grant insert fails still leaves its debit and audit row
// behind; the outbox row is what makes the eventual delivery retryable.
type deliveriesRepo struct{ db *sql.DB }

func New(db *sql.DB) *deliveriesRepo {
	return &deliveriesRepo{db: db}
}

func (r *deliveriesRepo) GrantItem(ctx context.Context, accountID, purchaseID uint32) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO store_deliveries (account_id, purchase_id)
		VALUES ($1, $2)
	`, accountID, purchaseID)
	if err != nil {
		return fmt.Errorf("enqueue delivery: %w", err)
	}

	return nil
}
