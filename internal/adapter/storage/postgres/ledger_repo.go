package postgres

import (
	"context"
	"fmt"

	"bazaarly-core/internal/core/domain"
	"bazaarly-core/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// LedgerRepo implements ports.LedgerRepository. Ledger rows are
// append-only; there is no update or delete path.
type LedgerRepo struct {
	pool Pool
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(pool Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

// Create appends a ledger entry within the caller's transaction so the
// entry commits or rolls back together with the balance update.
func (r *LedgerRepo) Create(ctx context.Context, tx pgx.Tx, e *domain.WalletTransaction) error {
	query := `INSERT INTO wallet_transactions
		(id, wallet_id, user_id, type, amount, balance_before, balance_after, description, reference_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := tx.Exec(ctx, query,
		e.ID, e.WalletID, e.UserID, e.Type, e.Amount,
		e.BalanceBefore, e.BalanceAfter, e.Description, e.ReferenceID, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert wallet transaction: %w", err)
	}
	return nil
}

// ListByWallet returns a page of ledger entries for a wallet, newest
// first, plus the total count matching the filter.
func (r *LedgerRepo) ListByWallet(ctx context.Context, p ports.LedgerListParams) ([]domain.WalletTransaction, int64, error) {
	countQuery := `SELECT COUNT(*) FROM wallet_transactions WHERE wallet_id = $1`
	listQuery := `SELECT id, wallet_id, user_id, type, amount, balance_before, balance_after, description, reference_id, created_at
		FROM wallet_transactions WHERE wallet_id = $1`
	args := []any{p.WalletID}

	if p.Type != nil {
		countQuery += ` AND type = $2`
		listQuery += ` AND type = $2`
		args = append(args, *p.Type)
	}

	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count wallet transactions: %w", err)
	}

	listQuery += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, p.Limit, p.Offset)

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list wallet transactions: %w", err)
	}
	defer rows.Close()

	var entries []domain.WalletTransaction
	for rows.Next() {
		var e domain.WalletTransaction
		if err := rows.Scan(
			&e.ID, &e.WalletID, &e.UserID, &e.Type, &e.Amount,
			&e.BalanceBefore, &e.BalanceAfter, &e.Description, &e.ReferenceID, &e.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan wallet transaction: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate wallet transactions: %w", err)
	}
	return entries, total, nil
}
