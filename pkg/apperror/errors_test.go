package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("WAL_002", "Insufficient funds", http.StatusPaymentRequired),
			expected: "[WAL_002] Insufficient funds",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("SYS_001", "DB error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[SYS_001] DB error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap("SYS_001", "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
}

func TestAppError_IsNilUnwrap(t *testing.T) {
	appErr := New("WAL_001", "test", http.StatusBadRequest)
	assert.Nil(t, appErr.Unwrap())
}

func TestWalletErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"InvalidAmount", ErrInvalidAmount(), "WAL_001", 400},
		{"InsufficientFunds", ErrInsufficientFunds(), "WAL_002", 402},
		{"WalletNotFound", ErrWalletNotFound(), "WAL_003", 404},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestOtpErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"NoChallengeFound", ErrNoChallengeFound(), "OTP_001", 404},
		{"ChallengeExpired", ErrChallengeExpired(), "OTP_002", 400},
		{"TooManyAttempts", ErrTooManyAttempts(), "OTP_003", 400},
		{"InvalidCode", ErrInvalidCode(), "OTP_004", 400},
		{"NoPendingSignup", ErrNoPendingSignup(), "OTP_005", 404},
		{"TooSoon", ErrTooSoon(), "OTP_006", 429},
		{"OtpRateLimited", ErrOtpRateLimited(), "OTP_007", 429},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestEmailDeliveryFailed(t *testing.T) {
	inner := fmt.Errorf("smtp: connection reset")
	err := ErrEmailDeliveryFailed(inner)
	assert.Equal(t, "OTP_008", err.Code)
	assert.Equal(t, 502, err.HTTPStatus)
	assert.True(t, errors.Is(err, inner))
}

func TestAuthErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"InvalidCredentials", ErrInvalidCredentials(), "AUTH_001", 401},
		{"InvalidToken", ErrInvalidToken(), "AUTH_002", 401},
		{"DuplicateEmail", ErrDuplicateEmail(), "AUTH_003", 409},
		{"DuplicateUsername", ErrDuplicateUsername(), "AUTH_004", 409},
		{"EmailNotVerified", ErrEmailNotVerified(), "AUTH_005", 403},
		{"AccountNotFound", ErrAccountNotFound(), "AUTH_006", 404},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestSystemErrors(t *testing.T) {
	inner := fmt.Errorf("pg: connection closed")
	sysErr := InternalError(inner)
	assert.Equal(t, "SYS_001", sysErr.Code)
	assert.Equal(t, 500, sysErr.HTTPStatus)
	assert.True(t, errors.Is(sysErr, inner))
}

func TestRateLimitError(t *testing.T) {
	err := ErrRateLimitExceeded()
	assert.Equal(t, "RATE_001", err.Code)
	assert.Equal(t, 429, err.HTTPStatus)
}
