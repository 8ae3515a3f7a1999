package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avdeyev/storeserv/internal/repos/audit"
)

var _ audit.Audit = (*auditRepo)(nil)

type auditRepo struct{ db *sql.DB }

func New(db *sql.DB) *auditRepo {
	return &auditRepo{db: db}
}

func (r *auditRepo) Append(ctx context.Context, e audit.Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO store_audit (cost, name, description, account_id, purchase_date)
		VALUES ($1, $2, $3, $4, $5)
	`, e.Cost, e.Name, e.Description, e.AccountID, e.PurchasedAt)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}

	return nil
}
