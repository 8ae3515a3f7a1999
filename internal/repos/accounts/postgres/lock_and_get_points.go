package accounts

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/avdeyev/storeserv/internal/repos/accounts"
)

// LockAndGetPoints takes a row lock on the account for the duration of tx.
// Every debit goes through this lock, so two transactions can never both
// read the same pre-debit balance.
func (r *accountsRepo) LockAndGetPoints(tx *sql.Tx, accountID uint32) (int64, error) {
	var points int64

	err := tx.QueryRow(`
		SELECT donation_points
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`, accountID).Scan(&points)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, accounts.ErrAccountNotFound
		}

		return 0, fmt.Errorf("lock/get points: %w", err)
	}

	return points, nil
}
