package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avdeyev/storeserv/internal/repos/accounts"
)

func (r *accountsRepo) GetPoints(ctx context.Context, accountID uint32) (int64, error) {
	var points int64

	err := r.db.QueryRowContext(ctx, `
		SELECT donation_points
		FROM accounts
		WHERE id = $1
	`, accountID).Scan(&points)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, accounts.ErrAccountNotFound
		}

		return 0, fmt.Errorf("get points: %w", err)
	}

	return points, nil
}
