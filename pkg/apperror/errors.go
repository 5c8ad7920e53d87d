package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Wallet Ledger (WAL) ----

func ErrInvalidAmount() *AppError {
	return New("WAL_001", "Amount must be positive", http.StatusBadRequest)
}

func ErrInsufficientFunds() *AppError {
	return New("WAL_002", "Insufficient funds", http.StatusPaymentRequired)
}

func ErrWalletNotFound() *AppError {
	return New("WAL_003", "Wallet not found", http.StatusNotFound)
}

// ---- Signup / OTP challenges (OTP) ----

func ErrNoChallengeFound() *AppError {
	return New("OTP_001", "No OTP found, request a new one", http.StatusNotFound)
}

func ErrChallengeExpired() *AppError {
	return New("OTP_002", "OTP has expired, request a new one", http.StatusBadRequest)
}

func ErrTooManyAttempts() *AppError {
	return New("OTP_003", "Too many failed attempts, request a new OTP", http.StatusBadRequest)
}

func ErrInvalidCode() *AppError {
	return New("OTP_004", "Invalid OTP code", http.StatusBadRequest)
}

func ErrNoPendingSignup() *AppError {
	return New("OTP_005", "No pending signup found", http.StatusNotFound)
}

func ErrTooSoon() *AppError {
	return New("OTP_006", "Wait 30 seconds before requesting another OTP", http.StatusTooManyRequests)
}

func ErrOtpRateLimited() *AppError {
	return New("OTP_007", "Too many OTP requests, try again later", http.StatusTooManyRequests)
}

func ErrEmailDeliveryFailed(err error) *AppError {
	return Wrap("OTP_008", "Failed to send OTP email, try again later", http.StatusBadGateway, err)
}

// ---- Authentication & accounts (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_002", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrDuplicateEmail() *AppError {
	return New("AUTH_003", "Email already registered", http.StatusConflict)
}

func ErrDuplicateUsername() *AppError {
	return New("AUTH_004", "Username already taken", http.StatusConflict)
}

func ErrEmailNotVerified() *AppError {
	return New("AUTH_005", "Email not verified", http.StatusForbidden)
}

func ErrAccountNotFound() *AppError {
	return New("AUTH_006", "Account not found", http.StatusNotFound)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a generic client-input validation error.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}
