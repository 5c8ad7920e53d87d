package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"bazaarly-core/internal/core/domain"
	"bazaarly-core/internal/core/ports"
	"bazaarly-core/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SignupServiceImpl implements ports.SignupService. Registration is a
// two-step state machine: RequestSignup stages the account data on an
// OTP challenge, VerifyOtp consumes the challenge and creates the
// account. No account row exists until verification succeeds.
type SignupServiceImpl struct {
	challengeRepo ports.ChallengeRepository
	accountRepo   ports.AccountRepository
	hashSvc       ports.HashService
	tokenSvc      ports.TokenService
	mailer        ports.OtpMailer
	notifier      ports.NotificationSink
	transactor    ports.DBTransactor
	log           zerolog.Logger
}

// NewSignupService creates a new SignupServiceImpl.
func NewSignupService(
	challengeRepo ports.ChallengeRepository,
	accountRepo ports.AccountRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
	mailer ports.OtpMailer,
	notifier ports.NotificationSink,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *SignupServiceImpl {
	return &SignupServiceImpl{
		challengeRepo: challengeRepo,
		accountRepo:   accountRepo,
		hashSvc:       hashSvc,
		tokenSvc:      tokenSvc,
		mailer:        mailer,
		notifier:      notifier,
		transactor:    transactor,
		log:           log,
	}
}

// generateOtp returns a 6-digit fixed-width code from crypto/rand.
func generateOtp() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generating otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// RequestSignup stages a registration and issues an OTP challenge. A
// repeated request supersedes the prior challenge unconditionally; the
// cooldown and hourly cap gate ResendOtp only. The challenge and the
// email dispatch succeed or fail together: a mail failure rolls the new
// challenge back, leaving any prior one active.
func (s *SignupServiceImpl) RequestSignup(ctx context.Context, req ports.SignupRequest) (*ports.ChallengeIssued, error) {
	exists, err := s.accountRepo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check email: %w", err))
	}
	if exists {
		return nil, apperror.ErrDuplicateEmail()
	}
	if req.Username != "" {
		exists, err = s.accountRepo.UsernameExists(ctx, req.Username)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("check username: %w", err))
		}
		if exists {
			return nil, apperror.ErrDuplicateUsername()
		}
	}

	now := time.Now().UTC()

	passwordHash, err := s.hashSvc.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	payload, err := json.Marshal(domain.SignupPayload{
		Name:                req.Name,
		Email:               req.Email,
		Username:            req.Username,
		PasswordHash:        passwordHash,
		Phone:               req.Phone,
		Role:                req.Role,
		MerchantCompanyName: req.MerchantCompanyName,
		TaxID:               req.TaxID,
	})
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("marshal signup payload: %w", err))
	}

	return s.issue(ctx, req.Email, payload, now)
}

// ResendOtp reissues a code for a pending signup, carrying the staged
// registration forward onto the new challenge.
func (s *SignupServiceImpl) ResendOtp(ctx context.Context, email string) (*ports.ChallengeIssued, error) {
	prior, err := s.challengeRepo.GetActive(ctx, email, domain.OtpPurposeSignup)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get challenge: %w", err))
	}
	if prior == nil || len(prior.SignupPayload) == 0 {
		return nil, apperror.ErrNoPendingSignup()
	}

	now := time.Now().UTC()
	if err := s.checkIssuanceLimits(ctx, email, now); err != nil {
		return nil, err
	}

	return s.issue(ctx, email, prior.SignupPayload, now)
}

// checkIssuanceLimits enforces the resend cooldown and the hourly cap
// on unverified challenges. Both counters live in the database, so they
// survive process restarts.
func (s *SignupServiceImpl) checkIssuanceLimits(ctx context.Context, email string, now time.Time) error {
	recent, err := s.challengeRepo.CountSince(ctx, email, domain.OtpPurposeSignup, now.Add(-domain.OtpResendCooldown))
	if err != nil {
		return apperror.InternalError(fmt.Errorf("count recent challenges: %w", err))
	}
	if recent > 0 {
		return apperror.ErrTooSoon()
	}

	hourly, err := s.challengeRepo.CountUnverifiedSince(ctx, email, domain.OtpPurposeSignup, now.Add(-time.Hour))
	if err != nil {
		return apperror.InternalError(fmt.Errorf("count hourly challenges: %w", err))
	}
	if hourly >= domain.OtpHourlyLimit {
		return apperror.ErrOtpRateLimited()
	}
	return nil
}

// issue voids prior challenges, persists a fresh one, and dispatches
// the code. The send happens before commit so a delivery failure
// aborts the whole issuance.
func (s *SignupServiceImpl) issue(ctx context.Context, email string, payload []byte, now time.Time) (*ports.ChallengeIssued, error) {
	code, err := generateOtp()
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	challenge := &domain.OtpChallenge{
		ID:            uuid.New(),
		Email:         email,
		OtpCode:       code,
		Purpose:       domain.OtpPurposeSignup,
		ExpiresAt:     now.Add(domain.OtpTTL),
		SignupPayload: payload,
		CreatedAt:     now,
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.challengeRepo.InvalidateActive(ctx, dbTx, email, domain.OtpPurposeSignup); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("invalidate challenges: %w", err))
	}
	if err := s.challengeRepo.Create(ctx, dbTx, challenge); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create challenge: %w", err))
	}

	if err := s.mailer.SendOtp(ctx, email, code, domain.OtpPurposeSignup); err != nil {
		s.log.Error().Err(err).Str("email", email).Msg("otp dispatch failed, rolling back issuance")
		return nil, apperror.ErrEmailDeliveryFailed(err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("challenge_id", challenge.ID.String()).
		Str("email", email).
		Time("expires_at", challenge.ExpiresAt).
		Msg("otp challenge issued")

	return &ports.ChallengeIssued{Email: email, ExpiresAt: challenge.ExpiresAt}, nil
}

// VerifyOtp consumes a challenge and materializes the staged account.
// Account creation, merchant profile creation, and the verified flip
// commit atomically; the flip's compare-and-set rejects replays.
func (s *SignupServiceImpl) VerifyOtp(ctx context.Context, email, code string) (*ports.SessionResult, error) {
	challenge, err := s.challengeRepo.GetActive(ctx, email, domain.OtpPurposeSignup)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get challenge: %w", err))
	}
	if challenge == nil {
		return nil, apperror.ErrNoChallengeFound()
	}

	now := time.Now().UTC()
	if challenge.IsExpired(now) {
		return nil, apperror.ErrChallengeExpired()
	}
	if challenge.IsLocked() {
		return nil, apperror.ErrTooManyAttempts()
	}

	if subtle.ConstantTimeCompare([]byte(challenge.OtpCode), []byte(code)) != 1 {
		// Attempt counting runs outside the verification path so the
		// bump survives whatever else fails around it.
		if err := s.challengeRepo.IncrementAttempts(ctx, challenge.ID); err != nil {
			s.log.Warn().Err(err).Str("challenge_id", challenge.ID.String()).Msg("failed to record otp attempt")
		}
		// The mismatch that reaches the cap still reads as a wrong
		// code; the lockout error belongs to the next lookup.
		return nil, apperror.ErrInvalidCode()
	}

	var payload domain.SignupPayload
	if len(challenge.SignupPayload) == 0 {
		return nil, apperror.ErrNoPendingSignup()
	}
	if err := json.Unmarshal(challenge.SignupPayload, &payload); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("unmarshal signup payload: %w", err))
	}

	account, err := s.createAccount(ctx, challenge.ID, &payload, now)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.tokenSvc.Generate(account.ID, account.Role)
	if err != nil {
		// The account is committed; the user can still sign in.
		s.log.Error().Err(err).Str("user_id", account.ID.String()).Msg("session token generation failed after signup")
		return nil, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	s.log.Info().
		Str("user_id", account.ID.String()).
		Str("role", string(account.Role)).
		Msg("signup verified, account created")

	// Welcome notification after commit, never blocking the result.
	if err := s.notifier.Send(ctx, account.ID,
		"Welcome to Bazaarly",
		"Your account has been created and your email is verified.",
		"account",
		map[string]any{"role": string(account.Role)},
	); err != nil {
		s.log.Warn().Err(err).Str("user_id", account.ID.String()).Msg("welcome notification failed")
	}

	return &ports.SessionResult{Token: token, ExpiresAt: expiresAt, Account: account}, nil
}

func (s *SignupServiceImpl) createAccount(ctx context.Context, challengeID uuid.UUID, payload *domain.SignupPayload, now time.Time) (*domain.Account, error) {
	account := &domain.Account{
		ID:            uuid.New(),
		PasswordHash:  payload.PasswordHash,
		Role:          payload.Role,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if payload.Email != "" {
		account.Email = &payload.Email
	}
	if payload.Username != "" {
		account.Username = &payload.Username
	}
	if payload.Name != "" {
		account.Name = &payload.Name
	}
	if payload.Phone != "" {
		account.Phone = &payload.Phone
	}
	if account.Role == "" {
		account.Role = domain.RoleCustomer
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.accountRepo.Create(ctx, dbTx, account); err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			return nil, apperror.ErrDuplicateEmail()
		}
		return nil, apperror.InternalError(fmt.Errorf("create account: %w", err))
	}

	if account.Role == domain.RoleMerchant {
		merchant := &domain.Merchant{
			ID:          uuid.New(),
			CompanyName: payload.MerchantCompanyName,
			OwnerName:   payload.Name,
			Email:       payload.Email,
			Phone:       payload.Phone,
			StoreStatus: domain.StoreStatusPending,
			JoinedAt:    now,
		}
		if payload.TaxID != "" {
			merchant.TaxID = &payload.TaxID
		}
		if err := s.accountRepo.CreateMerchant(ctx, dbTx, merchant); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("create merchant: %w", err))
		}
		if err := s.accountRepo.LinkMerchant(ctx, dbTx, account.ID, merchant.ID); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("link merchant: %w", err))
		}
		account.MerchantID = &merchant.ID
	}

	flipped, err := s.challengeRepo.MarkVerified(ctx, dbTx, challengeID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("mark challenge verified: %w", err))
	}
	if !flipped {
		// Someone else consumed the challenge first; abort everything.
		return nil, apperror.ErrNoChallengeFound()
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	return account, nil
}
