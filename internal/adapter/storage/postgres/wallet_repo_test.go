package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"bazaarly-core/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWallet(userID uuid.UUID) *domain.Wallet {
	return &domain.Wallet{
		ID:        uuid.New(),
		UserID:    userID,
		Balance:   150000,
		Currency:  "PKR",
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
		UpdatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func walletColumns() []string {
	return []string{"id", "user_id", "balance", "currency", "created_at", "updated_at"}
}

func walletRow(w *domain.Wallet) *pgxmock.Rows {
	return pgxmock.NewRows(walletColumns()).AddRow(
		w.ID, w.UserID, w.Balance, w.Currency, w.CreatedAt, w.UpdatedAt,
	)
}

func TestWalletRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet(uuid.New())

	mock.ExpectExec("INSERT INTO wallets").
		WithArgs(w.ID, w.UserID, w.Balance, w.Currency, w.CreatedAt, w.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), w)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByUserID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM wallets WHERE user_id").
		WithArgs(w.UserID).
		WillReturnRows(walletRow(w))

	result, err := repo.GetByUserID(context.Background(), w.UserID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, w.ID, result.ID)
	assert.Equal(t, w.Balance, result.Balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByUserID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	userID := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM wallets WHERE user_id").
		WithArgs(userID).
		WillReturnError(pgx.ErrNoRows)

	result, err := repo.GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByIDForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet(uuid.New())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM wallets WHERE id .+ FOR UPDATE").
		WithArgs(w.ID).
		WillReturnRows(walletRow(w))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetByIDForUpdate(context.Background(), tx, w.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, w.ID, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_UpdateBalance(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	walletID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE wallets SET balance").
		WithArgs(int64(92500), walletID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateBalance(context.Background(), tx, walletID, 92500)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_UpdateBalance_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	walletID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE wallets SET balance").
		WithArgs(int64(100), walletID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateBalance(context.Background(), tx, walletID, 100)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "wallet not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_Create_Duplicate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet(uuid.New())

	mock.ExpectExec("INSERT INTO wallets").
		WithArgs(w.ID, w.UserID, w.Balance, w.Currency, w.CreatedAt, w.UpdatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "wallets_user_id_key"})

	err = repo.Create(context.Background(), w)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDuplicateKey))
	assert.NoError(t, mock.ExpectationsWereMet())
}
