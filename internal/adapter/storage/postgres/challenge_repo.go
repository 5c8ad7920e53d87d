package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bazaarly-core/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ChallengeRepo implements ports.ChallengeRepository over the user_otps
// table.
type ChallengeRepo struct {
	pool Pool
}

// NewChallengeRepo creates a new ChallengeRepo.
func NewChallengeRepo(pool Pool) *ChallengeRepo {
	return &ChallengeRepo{pool: pool}
}

// Create inserts a new OTP challenge within the caller's transaction.
func (r *ChallengeRepo) Create(ctx context.Context, tx pgx.Tx, ch *domain.OtpChallenge) error {
	query := `INSERT INTO user_otps
		(id, email, otp_code, purpose, expires_at, verified, attempts, signup_payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := tx.Exec(ctx, query,
		ch.ID, ch.Email, ch.OtpCode, ch.Purpose, ch.ExpiresAt,
		ch.Verified, ch.Attempts, ch.SignupPayload, ch.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert otp challenge: %w", err)
	}
	return nil
}

// GetActive returns the most recent unverified challenge for an email
// and purpose, or nil when none exists. Expiry is left to the caller so
// it can distinguish an expired code from a missing one.
func (r *ChallengeRepo) GetActive(ctx context.Context, email string, purpose domain.OtpPurpose) (*domain.OtpChallenge, error) {
	query := `SELECT id, email, otp_code, purpose, expires_at, verified, attempts, signup_payload, created_at
		FROM user_otps
		WHERE email = $1 AND purpose = $2 AND verified = FALSE
		ORDER BY created_at DESC LIMIT 1`

	ch := &domain.OtpChallenge{}
	err := r.pool.QueryRow(ctx, query, email, purpose).Scan(
		&ch.ID, &ch.Email, &ch.OtpCode, &ch.Purpose, &ch.ExpiresAt,
		&ch.Verified, &ch.Attempts, &ch.SignupPayload, &ch.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active otp challenge: %w", err)
	}
	return ch, nil
}

// InvalidateActive expires all outstanding challenges for an email and
// purpose so only the newest issued code can ever verify.
func (r *ChallengeRepo) InvalidateActive(ctx context.Context, tx pgx.Tx, email string, purpose domain.OtpPurpose) error {
	query := `UPDATE user_otps SET expires_at = NOW()
		WHERE email = $1 AND purpose = $2 AND verified = FALSE AND expires_at > NOW()`

	if _, err := tx.Exec(ctx, query, email, purpose); err != nil {
		return fmt.Errorf("invalidate otp challenges: %w", err)
	}
	return nil
}

// IncrementAttempts bumps the failed-attempt counter for a challenge.
// It runs outside the verification transaction so the count survives a
// rollback of whatever the caller was doing.
func (r *ChallengeRepo) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE user_otps SET attempts = attempts + 1 WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("increment otp attempts: %w", err)
	}
	return nil
}

// MarkVerified flips a challenge to verified exactly once. The WHERE
// clause on verified = FALSE makes the flip a compare-and-set: a second
// caller racing on the same challenge sees zero rows affected and must
// treat the code as already consumed.
func (r *ChallengeRepo) MarkVerified(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	query := `UPDATE user_otps SET verified = TRUE WHERE id = $1 AND verified = FALSE`

	tag, err := tx.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("mark otp verified: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// CountSince counts challenges issued for an email and purpose after
// the given instant, verified or not.
func (r *ChallengeRepo) CountSince(ctx context.Context, email string, purpose domain.OtpPurpose, since time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM user_otps WHERE email = $1 AND purpose = $2 AND created_at > $3`

	var n int64
	if err := r.pool.QueryRow(ctx, query, email, purpose, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("count otp challenges: %w", err)
	}
	return n, nil
}

// CountUnverifiedSince counts unverified challenges issued for an email
// and purpose after the given instant.
func (r *ChallengeRepo) CountUnverifiedSince(ctx context.Context, email string, purpose domain.OtpPurpose, since time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM user_otps
		WHERE email = $1 AND purpose = $2 AND verified = FALSE AND created_at > $3`

	var n int64
	if err := r.pool.QueryRow(ctx, query, email, purpose, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("count unverified otp challenges: %w", err)
	}
	return n, nil
}
