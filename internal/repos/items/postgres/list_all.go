package items

import (
	"context"
	"fmt"

	"github.com/avdeyev/storeserv/internal/repos/items"
)

func (r *itemsRepo) ListAll(ctx context.Context) ([]items.Row, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, flags, cost, name, description, category, purchase_id, extra_id
		FROM store_items
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query store items: %w", err)
	}
	defer rows.Close()

	var out []items.Row

	for rows.Next() {
		var row items.Row

		err = rows.Scan(
			&row.ID,
			&row.Flags,
			&row.Cost,
			&row.Name,
			&row.Description,
			&row.Category,
			&row.PurchaseID,
			&row.ExtraID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan store item: %w", err)
		}

		out = append(out, row)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate store items: %w", err)
	}

	return out, nil
}
