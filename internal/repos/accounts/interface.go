package accounts

import (
	"context"
	"database/sql"
	"errors"
)

var ErrInsufficientPoints = errors.New("insufficient points")
var ErrAccountNotFound = errors.New("account not found")

type Accounts interface {
	Exists(ctx context.Context, accountID uint32) error
	GetPoints(ctx context.Context, accountID uint32) (int64, error)
	LockAndGetPoints(tx *sql.Tx, accountID uint32) (int64, error)
	DecreasePoints(tx *sql.Tx, accountID uint32, amount int64) error
}
