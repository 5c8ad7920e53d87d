package ports

import (
	"context"
	"time"

	"bazaarly-core/internal/core/domain"

	"github.com/google/uuid"
)

// HashService handles credential hashing.
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT session token operations.
type TokenService interface {
	Generate(userID uuid.UUID, role domain.Role) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID uuid.UUID
	Role   domain.Role
}

// OtpMailer dispatches one-time codes. A delivery failure must fail the
// enclosing issuance operation (the challenge is rolled back).
type OtpMailer interface {
	SendOtp(ctx context.Context, email, code string, purpose domain.OtpPurpose) error
}

// NotificationSink is fire-and-forget delivery of user-facing messages.
// Failures are logged, never propagated: a committed ledger or account
// mutation is not rolled back because a notification could not be sent.
type NotificationSink interface {
	Send(ctx context.Context, userID uuid.UUID, title, message, category string, data map[string]any) error
}

// --- Service Ports (Business Logic) ---

// LedgerRequest holds validated input for a credit or debit.
type LedgerRequest struct {
	WalletID    uuid.UUID
	UserID      uuid.UUID
	Amount      int64
	Type        domain.TransactionType
	Description string
	ReferenceID *string
}

// WalletService maintains per-user balances with strict consistency
// under concurrent mutations.
type WalletService interface {
	// GetOrCreate returns the user's wallet, creating it with zero
	// balance on first access. Safe under concurrent first access.
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	Credit(ctx context.Context, req LedgerRequest) (*domain.WalletTransaction, error)
	Debit(ctx context.Context, req LedgerRequest) (*domain.WalletTransaction, error)
	ListTransactions(ctx context.Context, params LedgerListParams) ([]domain.WalletTransaction, int64, error)
}

// SignupRequest holds input for the signup issuance step.
type SignupRequest struct {
	Name                string
	Email               string
	Username            string
	Password            string
	Phone               string
	Role                domain.Role
	MerchantCompanyName string
	TaxID               string
}

// ChallengeIssued is the outcome of OTP issuance.
type ChallengeIssued struct {
	Email     string
	ExpiresAt time.Time
}

// SessionResult is the outcome of a successful verification or login.
type SessionResult struct {
	Token     string
	ExpiresAt time.Time
	Account   *domain.Account
}

// SignupService drives the signup state machine:
// NONE -> OTP_ISSUED -> VERIFIED | EXPIRED | LOCKED.
type SignupService interface {
	RequestSignup(ctx context.Context, req SignupRequest) (*ChallengeIssued, error)
	VerifyOtp(ctx context.Context, email, code string) (*SessionResult, error)
	ResendOtp(ctx context.Context, email string) (*ChallengeIssued, error)
}

// AuthService handles sign-in and profile lookup for existing accounts.
type AuthService interface {
	Login(ctx context.Context, identifier, password string) (*SessionResult, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Account, error)
}
