package service

import (
	"context"
	"fmt"
	"strings"

	"bazaarly-core/internal/core/domain"
	"bazaarly-core/internal/core/ports"
	"bazaarly-core/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	accountRepo ports.AccountRepository
	hashSvc     ports.HashService
	tokenSvc    ports.TokenService
	log         zerolog.Logger
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	accountRepo ports.AccountRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
	log zerolog.Logger,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		accountRepo: accountRepo,
		hashSvc:     hashSvc,
		tokenSvc:    tokenSvc,
		log:         log,
	}
}

// Login authenticates by email or username and issues a session token.
// Unknown identifier and wrong password produce the same error so the
// response does not leak which accounts exist.
func (s *AuthServiceImpl) Login(ctx context.Context, identifier, password string) (*ports.SessionResult, error) {
	var (
		account *domain.Account
		err     error
	)
	if strings.Contains(identifier, "@") {
		account, err = s.accountRepo.GetByEmail(ctx, identifier)
	} else {
		account, err = s.accountRepo.GetByUsername(ctx, identifier)
	}
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lookup account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrInvalidCredentials()
	}

	ok, err := s.hashSvc.Verify(password, account.PasswordHash)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !ok {
		return nil, apperror.ErrInvalidCredentials()
	}

	if !account.EmailVerified {
		return nil, apperror.ErrEmailNotVerified()
	}

	token, expiresAt, err := s.tokenSvc.Generate(account.ID, account.Role)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	s.log.Info().
		Str("user_id", account.ID.String()).
		Str("role", string(account.Role)).
		Msg("login succeeded")

	return &ports.SessionResult{Token: token, ExpiresAt: expiresAt, Account: account}, nil
}

// GetProfile returns the account for an authenticated session.
func (s *AuthServiceImpl) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrAccountNotFound()
	}
	return account, nil
}
