// Package ledger maintains each account's donation point balance: a
// per-process write-through cache over accounts.donation_points, with debits
// applied durably before the cache moves.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/avdeyev/storeserv/internal/infra/pgutils"
	"github.com/avdeyev/storeserv/internal/repos/accounts"
)

var ErrNegativeAmount = errors.New("debit amount must be non-negative")

// Ledger serializes all balance operations per account: an in-process mutex
// keyed by account id, plus the repo's row lock for cross-process safety.
// The cache is only ever written after the corresponding durable write has
// committed, so cache and storage can diverge only inside a debit's in-flight
// window (or after a crash inside it, until the next forced Load).
type Ledger struct {
	db       *sql.DB
	accounts accounts.Accounts

	mu    sync.Mutex
	locks map[uint32]*sync.Mutex
	cache map[uint32]int64
}

func New(db *sql.DB, repo accounts.Accounts) *Ledger {
	return &Ledger{
		db:       db,
		accounts: repo,
		locks:    make(map[uint32]*sync.Mutex),
		cache:    make(map[uint32]int64),
	}
}

// Load returns the account's balance. A cached value is returned as-is unless
// force is set; otherwise the balance is read from storage, floored at zero,
// and cached. Storage failures surface to the caller and leave the cache
// untouched.
func (l *Ledger) Load(ctx context.Context, accountID uint32, force bool) (int64, error) {
	am := l.accountLock(accountID)
	am.Lock()
	defer am.Unlock()

	if !force {
		if points, ok := l.cached(accountID); ok {
			return points, nil
		}
	}

	points, err := l.accounts.GetPoints(ctx, accountID)
	if err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			return 0, err
		}

		return 0, fmt.Errorf("load account %d: %w", accountID, err)
	}

	// Negative stored balances exist in the wild (manual edits, legacy
	// data); they read as zero and stay that way after the next debit.
	if points < 0 {
		points = 0
	}

	l.setCached(accountID, points)

	return points, nil
}

// Debit decrements the account's balance by amount, persisting first and
// updating the cache only after the commit. It returns the new balance, or
// accounts.ErrInsufficientPoints with no state changed.
//
// Exactly one of two concurrent debits that the balance can only cover once
// will succeed: the per-account mutex serializes this process, and the
// FOR UPDATE row lock plus the conditional decrement serialize everyone else.
func (l *Ledger) Debit(ctx context.Context, accountID uint32, amount int64) (int64, error) {
	if amount < 0 {
		return 0, ErrNegativeAmount
	}

	am := l.accountLock(accountID)
	am.Lock()
	defer am.Unlock()

	// Fast pre-check against the cache, no storage round trip.
	if points, ok := l.cached(accountID); ok && points < amount {
		return points, accounts.ErrInsufficientPoints
	}

	var newPoints int64

	err := pgutils.WithTx(ctx, l.db, func(tx *sql.Tx) error {
		locked, err := l.accounts.LockAndGetPoints(tx, accountID)
		if err != nil {
			return fmt.Errorf("lock and get points: %w", err)
		}

		if locked < amount {
			return accounts.ErrInsufficientPoints
		}

		err = l.accounts.DecreasePoints(tx, accountID, amount)
		if err != nil {
			return fmt.Errorf("decrease points: %w", err)
		}

		newPoints = locked - amount

		return nil
	})
	if err != nil {
		if errors.Is(err, accounts.ErrInsufficientPoints) {
			// The cache was stale high; the durable balance is the
			// truth, refresh so the next pre-check is accurate.
			if points, lerr := l.accounts.GetPoints(ctx, accountID); lerr == nil {
				if points < 0 {
					points = 0
				}
				l.setCached(accountID, points)
			}

			return 0, accounts.ErrInsufficientPoints
		}

		return 0, fmt.Errorf("debit account %d: %w", accountID, err)
	}

	l.setCached(accountID, newPoints)

	return newPoints, nil
}

func (l *Ledger) accountLock(accountID uint32) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[accountID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[accountID] = m
	}

	return m
}

func (l *Ledger) cached(accountID uint32) (int64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	points, ok := l.cache[accountID]

	return points, ok
}

func (l *Ledger) setCached(accountID uint32, points int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cache[accountID] = points
}
