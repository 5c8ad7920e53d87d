package handler

import (
	"net/http"
	"time"

	"bazaarly-core/internal/adapter/http/dto"
	"bazaarly-core/internal/adapter/http/middleware"
	"bazaarly-core/internal/core/domain"
	"bazaarly-core/internal/core/ports"
	"bazaarly-core/pkg/apperror"
	"bazaarly-core/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuthHandler handles signup, OTP, and session endpoints.
type AuthHandler struct {
	signupSvc ports.SignupService
	authSvc   ports.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(signupSvc ports.SignupService, authSvc ports.AuthService) *AuthHandler {
	return &AuthHandler{signupSvc: signupSvc, authSvc: authSvc}
}

// Signup handles POST /api/v1/auth/signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	// The password is hashed verbatim, so it is excluded from
	// sanitization; everything else gets trimmed and escaped.
	password := req.Password
	dto.SanitizeStruct(&req)
	req.Password = password

	role := domain.Role(req.Role)
	if role == "" {
		role = domain.RoleCustomer
	}

	issued, err := h.signupSvc.RequestSignup(c.Request.Context(), ports.SignupRequest{
		Name:                req.Name,
		Email:               req.Email,
		Username:            req.Username,
		Password:            req.Password,
		Phone:               req.Phone,
		Role:                role,
		MerchantCompanyName: req.CompanyName,
		TaxID:               req.TaxID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toChallengeResponse(issued))
}

// VerifyOtp handles POST /api/v1/auth/verify-otp.
func (h *AuthHandler) VerifyOtp(c *gin.Context) {
	var req dto.VerifyOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	session, err := h.signupSvc.VerifyOtp(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toSessionResponse(session))
}

// ResendOtp handles POST /api/v1/auth/resend-otp.
func (h *AuthHandler) ResendOtp(c *gin.Context) {
	var req dto.ResendOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	issued, err := h.signupSvc.ResendOtp(c.Request.Context(), req.Email)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toChallengeResponse(issued))
}

// Signin handles POST /api/v1/auth/signin.
func (h *AuthHandler) Signin(c *gin.Context) {
	var req dto.SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	session, err := h.authSvc.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toSessionResponse(session))
}

// Me handles GET /api/v1/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := c.Get(middleware.CtxUserID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	account, err := h.authSvc.GetProfile(c.Request.Context(), userID.(uuid.UUID))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toAccountResponse(account))
}

// HealthCheck handles GET /health with a deep dependency check.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		type depStatus struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		}

		deps := make(map[string]depStatus)
		allHealthy := true

		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				deps[checker.Name()] = depStatus{Status: "unhealthy", Error: err.Error()}
				allHealthy = false
			} else {
				deps[checker.Name()] = depStatus{Status: "healthy"}
			}
		}

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}

func toChallengeResponse(issued *ports.ChallengeIssued) dto.ChallengeResponse {
	return dto.ChallengeResponse{
		Email:     issued.Email,
		ExpiresAt: issued.ExpiresAt.UTC().Format(time.RFC3339),
	}
}

func toSessionResponse(session *ports.SessionResult) dto.SessionResponse {
	return dto.SessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.UTC().Format(time.RFC3339),
		Account:   toAccountResponse(session.Account),
	}
}

func toAccountResponse(a *domain.Account) dto.AccountResponse {
	resp := dto.AccountResponse{
		ID:            a.ID.String(),
		Email:         a.Email,
		Username:      a.Username,
		Name:          a.Name,
		Phone:         a.Phone,
		Role:          string(a.Role),
		EmailVerified: a.EmailVerified,
		CreatedAt:     a.CreatedAt.UTC().Format(time.RFC3339),
	}
	if a.MerchantID != nil {
		id := a.MerchantID.String()
		resp.MerchantID = &id
	}
	return resp
}
