package ports

import (
	"context"
	"time"

	"bazaarly-core/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx are used inside transaction blocks for
// pessimistic per-wallet locking.
type WalletRepository interface {
	// Create inserts a wallet. Returns an error wrapping
	// domain.ErrDuplicateKey when a wallet already exists for the user.
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	// GetByIDForUpdate locks the wallet row for the duration of tx.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance int64) error
}

// LedgerListParams holds filter + pagination for ledger history.
type LedgerListParams struct {
	WalletID uuid.UUID
	Type     *domain.TransactionType
	Limit    int
	Offset   int
}

// LedgerRepository defines persistence for the append-only transaction
// log. Entries are inserted exactly once and never updated or deleted.
type LedgerRepository interface {
	Create(ctx context.Context, tx pgx.Tx, entry *domain.WalletTransaction) error
	// ListByWallet returns a page of entries (newest first) plus the
	// total count for the filter.
	ListByWallet(ctx context.Context, params LedgerListParams) ([]domain.WalletTransaction, int64, error)
}

// ChallengeRepository defines persistence for OTP challenges.
type ChallengeRepository interface {
	Create(ctx context.Context, tx pgx.Tx, challenge *domain.OtpChallenge) error
	// GetActive returns the most recently issued unverified challenge
	// for the email/purpose pair, or nil. Expiry is the caller's check.
	GetActive(ctx context.Context, email string, purpose domain.OtpPurpose) (*domain.OtpChallenge, error)
	// InvalidateActive voids all unverified challenges for the pair.
	InvalidateActive(ctx context.Context, tx pgx.Tx, email string, purpose domain.OtpPurpose) error
	IncrementAttempts(ctx context.Context, id uuid.UUID) error
	// MarkVerified finalizes a challenge exactly once: it reports false
	// when the challenge was already verified (or voided), which callers
	// must treat as a replay.
	MarkVerified(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error)
	// CountSince counts all challenges for the pair created after the
	// cutoff (resend cooldown).
	CountSince(ctx context.Context, email string, purpose domain.OtpPurpose, since time.Time) (int64, error)
	// CountUnverifiedSince counts unverified challenges created after
	// the cutoff (hourly issuance rate limit).
	CountUnverifiedSince(ctx context.Context, email string, purpose domain.OtpPurpose, since time.Time) (int64, error)
}

// AccountRepository is the Account Directory: users and merchants. The
// signup state machine consults it for uniqueness and performs the final
// account creation through it; the wallet service never touches it.
type AccountRepository interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, tx pgx.Tx, account *domain.Account) error
	CreateMerchant(ctx context.Context, tx pgx.Tx, merchant *domain.Merchant) error
	LinkMerchant(ctx context.Context, tx pgx.Tx, accountID, merchantID uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
