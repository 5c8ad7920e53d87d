package service

import (
	"context"
	"testing"
	"time"

	"bazaarly-core/internal/core/domain"
	"bazaarly-core/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type authTestDeps struct {
	svc         *AuthServiceImpl
	accountRepo *mocks.MockAccountRepository
	hashSvc     *mocks.MockHashService
	tokenSvc    *mocks.MockTokenService
	ctrl        *gomock.Controller
}

func setupAuthService(t *testing.T) *authTestDeps {
	ctrl := gomock.NewController(t)
	d := &authTestDeps{
		accountRepo: mocks.NewMockAccountRepository(ctrl),
		hashSvc:     mocks.NewMockHashService(ctrl),
		tokenSvc:    mocks.NewMockTokenService(ctrl),
		ctrl:        ctrl,
	}
	d.svc = NewAuthService(d.accountRepo, d.hashSvc, d.tokenSvc, zerolog.Nop())
	return d
}

func verifiedAccount(email string) *domain.Account {
	return &domain.Account{
		ID:            uuid.New(),
		Email:         &email,
		PasswordHash:  "stored-hash",
		Role:          domain.RoleCustomer,
		EmailVerified: true,
	}
}

func TestAuthService_Login_ByEmail(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	account := verifiedAccount("ayesha@example.com")

	d.accountRepo.EXPECT().GetByEmail(ctx, "ayesha@example.com").Return(account, nil)
	d.hashSvc.EXPECT().Verify("s3cret-pass", "stored-hash").Return(true, nil)
	d.tokenSvc.EXPECT().Generate(account.ID, domain.RoleCustomer).
		Return("session-token", time.Now().Add(time.Hour), nil)

	session, err := d.svc.Login(ctx, "ayesha@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "session-token", session.Token)
	assert.Equal(t, account.ID, session.Account.ID)
}

func TestAuthService_Login_ByUsername(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	account := verifiedAccount("ayesha@example.com")
	username := "ayesha_k"
	account.Username = &username

	d.accountRepo.EXPECT().GetByUsername(ctx, "ayesha_k").Return(account, nil)
	d.hashSvc.EXPECT().Verify("s3cret-pass", "stored-hash").Return(true, nil)
	d.tokenSvc.EXPECT().Generate(account.ID, domain.RoleCustomer).
		Return("session-token", time.Now().Add(time.Hour), nil)

	_, err := d.svc.Login(ctx, "ayesha_k", "s3cret-pass")
	require.NoError(t, err)
}

func TestAuthService_Login_UnknownAccount(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.accountRepo.EXPECT().GetByEmail(ctx, "nobody@example.com").Return(nil, nil)

	_, err := d.svc.Login(ctx, "nobody@example.com", "whatever")
	assert.Equal(t, "AUTH_001", appCode(t, err))
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	account := verifiedAccount("ayesha@example.com")

	d.accountRepo.EXPECT().GetByEmail(ctx, "ayesha@example.com").Return(account, nil)
	d.hashSvc.EXPECT().Verify("wrong", "stored-hash").Return(false, nil)

	_, err := d.svc.Login(ctx, "ayesha@example.com", "wrong")
	assert.Equal(t, "AUTH_001", appCode(t, err))
}

func TestAuthService_Login_UnverifiedEmail(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	account := verifiedAccount("ayesha@example.com")
	account.EmailVerified = false

	d.accountRepo.EXPECT().GetByEmail(ctx, "ayesha@example.com").Return(account, nil)
	d.hashSvc.EXPECT().Verify("s3cret-pass", "stored-hash").Return(true, nil)

	_, err := d.svc.Login(ctx, "ayesha@example.com", "s3cret-pass")
	assert.Equal(t, "AUTH_005", appCode(t, err))
}

func TestAuthService_GetProfile(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	account := verifiedAccount("ayesha@example.com")

	d.accountRepo.EXPECT().GetByID(ctx, account.ID).Return(account, nil)

	result, err := d.svc.GetProfile(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.ID, result.ID)
}

func TestAuthService_GetProfile_NotFound(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	id := uuid.New()
	d.accountRepo.EXPECT().GetByID(ctx, id).Return(nil, nil)

	_, err := d.svc.GetProfile(ctx, id)
	assert.Equal(t, "AUTH_006", appCode(t, err))
}
