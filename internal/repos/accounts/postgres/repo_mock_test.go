package accounts

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/avdeyev/storeserv/internal/repos/accounts"
)

func TestGetPointsMock(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := New(db)

	mock.ExpectQuery("SELECT donation_points").
		WithArgs(uint32(42)).
		WillReturnRows(sqlmock.NewRows([]string{"donation_points"}).AddRow(150))

	points, err := repo.GetPoints(context.Background(), 42)
	if err != nil {
		t.Fatalf("get points: %v", err)
	}
	if points != 150 {
		t.Fatalf("want 150, got %d", points)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetPointsMockNotFound(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := New(db)

	mock.ExpectQuery("SELECT donation_points").
		WithArgs(uint32(9)).
		WillReturnRows(sqlmock.NewRows([]string{"donation_points"}))

	_, err = repo.GetPoints(context.Background(), 9)
	if !errors.Is(err, accounts.ErrAccountNotFound) {
		t.Fatalf("want ErrAccountNotFound, got %v", err)
	}
}

func TestDecreasePointsMock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		rowsAffected int64
		wantErr      error
	}{
		{name: "applied", rowsAffected: 1, wantErr: nil},
		{name: "insufficient", rowsAffected: 0, wantErr: accounts.ErrInsufficientPoints},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("sqlmock: %v", err)
			}
			defer db.Close()

			repo := New(db)

			mock.ExpectBegin()
			mock.ExpectExec("UPDATE accounts").
				WithArgs(uint32(42), int64(100)).
				WillReturnResult(sqlmock.NewResult(0, tt.rowsAffected))
			mock.ExpectRollback()

			tx, err := db.Begin()
			if err != nil {
				t.Fatalf("begin: %v", err)
			}
			defer func() { _ = tx.Rollback() }()

			err = repo.DecreasePoints(tx, 42, 100)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("want %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestExistsMock(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := New(db)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(uint32(42)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(uint32(9)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	if err := repo.Exists(context.Background(), 42); err != nil {
		t.Fatalf("existing account: %v", err)
	}

	err = repo.Exists(context.Background(), 9)
	if !errors.Is(err, accounts.ErrAccountNotFound) {
		t.Fatalf("want ErrAccountNotFound, got %v", err)
	}
}
