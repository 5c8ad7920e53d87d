package postgres

import (
	"context"
	"errors"
	"fmt"

	"bazaarly-core/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AccountRepo implements ports.AccountRepository over the users and
// merchants tables.
type AccountRepo struct {
	pool Pool
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(pool Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

// EmailExists reports whether an account already owns the email.
func (r *AccountRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}
	return exists, nil
}

// UsernameExists reports whether an account already owns the username.
func (r *AccountRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("check username exists: %w", err)
	}
	return exists, nil
}

// Create inserts a new account within the caller's transaction. Unique
// violations on email or username surface domain.ErrDuplicateKey.
func (r *AccountRepo) Create(ctx context.Context, tx pgx.Tx, a *domain.Account) error {
	query := `INSERT INTO users
		(id, email, username, password_hash, name, phone, role, email_verified, merchant_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := tx.Exec(ctx, query,
		a.ID, a.Email, a.Username, a.PasswordHash, a.Name, a.Phone,
		a.Role, a.EmailVerified, a.MerchantID, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert account: %w", domain.ErrDuplicateKey)
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// CreateMerchant inserts a merchant profile within the caller's
// transaction.
func (r *AccountRepo) CreateMerchant(ctx context.Context, tx pgx.Tx, m *domain.Merchant) error {
	query := `INSERT INTO merchants
		(id, company_name, owner_name, email, phone, tax_id, store_status, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := tx.Exec(ctx, query,
		m.ID, m.CompanyName, m.OwnerName, m.Email, m.Phone,
		m.TaxID, m.StoreStatus, m.JoinedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert merchant: %w", domain.ErrDuplicateKey)
		}
		return fmt.Errorf("insert merchant: %w", err)
	}
	return nil
}

// LinkMerchant attaches a merchant profile to an account.
func (r *AccountRepo) LinkMerchant(ctx context.Context, tx pgx.Tx, accountID, merchantID uuid.UUID) error {
	query := `UPDATE users SET merchant_id = $1, updated_at = NOW() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, merchantID, accountID)
	if err != nil {
		return fmt.Errorf("link merchant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account not found: %s", accountID)
	}
	return nil
}

const accountColumns = `id, email, username, password_hash, name, phone, role, email_verified, merchant_id, created_at, updated_at`

func (r *AccountRepo) scanAccount(row pgx.Row) (*domain.Account, error) {
	a := &domain.Account{}
	err := row.Scan(
		&a.ID, &a.Email, &a.Username, &a.PasswordHash, &a.Name, &a.Phone,
		&a.Role, &a.EmailVerified, &a.MerchantID, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}
	return a, nil
}

// GetByID fetches an account by ID, returning nil when absent.
func (r *AccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users WHERE id = $1`
	return r.scanAccount(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail fetches an account by email, returning nil when absent.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users WHERE email = $1`
	return r.scanAccount(r.pool.QueryRow(ctx, query, email))
}

// GetByUsername fetches an account by username, returning nil when
// absent.
func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users WHERE username = $1`
	return r.scanAccount(r.pool.QueryRow(ctx, query, username))
}
