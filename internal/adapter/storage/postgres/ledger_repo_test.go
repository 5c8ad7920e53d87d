package postgres

import (
	"context"
	"testing"
	"time"

	"bazaarly-core/internal/core/domain"
	"bazaarly-core/internal/core/ports"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEntry(walletID, userID uuid.UUID) *domain.WalletTransaction {
	return &domain.WalletTransaction{
		ID:            uuid.New(),
		WalletID:      walletID,
		UserID:        userID,
		Type:          domain.TransactionTypeDeposit,
		Amount:        50000,
		BalanceBefore: 100000,
		BalanceAfter:  150000,
		Description:   "wallet top-up",
		CreatedAt:     time.Now().UTC().Truncate(time.Microsecond),
	}
}

func entryColumns() []string {
	return []string{"id", "wallet_id", "user_id", "type", "amount",
		"balance_before", "balance_after", "description", "reference_id", "created_at"}
}

func entryRow(e *domain.WalletTransaction) *pgxmock.Rows {
	return pgxmock.NewRows(entryColumns()).AddRow(
		e.ID, e.WalletID, e.UserID, e.Type, e.Amount,
		e.BalanceBefore, e.BalanceAfter, e.Description, e.ReferenceID, e.CreatedAt,
	)
}

func TestLedgerRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	e := newTestEntry(uuid.New(), uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO wallet_transactions").
		WithArgs(e.ID, e.WalletID, e.UserID, e.Type, e.Amount,
			e.BalanceBefore, e.BalanceAfter, e.Description, e.ReferenceID, e.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, e)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_ListByWallet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	walletID := uuid.New()
	e := newTestEntry(walletID, uuid.New())

	mock.ExpectQuery("SELECT COUNT.+ FROM wallet_transactions WHERE wallet_id").
		WithArgs(walletID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT .+ FROM wallet_transactions WHERE wallet_id .+ ORDER BY created_at DESC").
		WithArgs(walletID, 20, 0).
		WillReturnRows(entryRow(e))

	entries, total, err := repo.ListByWallet(context.Background(), ports.LedgerListParams{
		WalletID: walletID,
		Limit:    20,
		Offset:   0,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, entries, 1)
	assert.Equal(t, e.ID, entries[0].ID)
	assert.Equal(t, int64(50000), entries[0].Amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_ListByWallet_TypeFilter(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	walletID := uuid.New()
	txType := domain.TransactionTypeWithdrawal

	mock.ExpectQuery("SELECT COUNT.+ FROM wallet_transactions WHERE wallet_id .+ AND type").
		WithArgs(walletID, txType).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectQuery("SELECT .+ FROM wallet_transactions WHERE wallet_id .+ AND type").
		WithArgs(walletID, txType, 10, 0).
		WillReturnRows(pgxmock.NewRows(entryColumns()))

	entries, total, err := repo.ListByWallet(context.Background(), ports.LedgerListParams{
		WalletID: walletID,
		Type:     &txType,
		Limit:    10,
		Offset:   0,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}
