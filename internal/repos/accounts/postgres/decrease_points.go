package accounts

import (
	"database/sql"
	"fmt"

	"github.com/avdeyev/storeserv/internal/repos/accounts"
)

// DecreasePoints applies the debit conditionally: the WHERE clause re-checks
// the balance so the durable state can never go negative even if a caller's
// cached pre-check was stale.
func (r *accountsRepo) DecreasePoints(tx *sql.Tx, accountID uint32, amount int64) error {
	res, err := tx.Exec(`
		UPDATE accounts
		SET donation_points = donation_points - $2
		WHERE id = $1
		  AND donation_points >= $2
	`, accountID, amount)
	if err != nil {
		return fmt.Errorf("decrease points: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return accounts.ErrInsufficientPoints
	}

	return nil
}
