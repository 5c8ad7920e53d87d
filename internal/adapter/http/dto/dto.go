package dto

// SignupRequest is the request body for the signup issuance step. Email
// is the challenge key and the OTP delivery address, so it is required;
// username and name are optional.
type SignupRequest struct {
	Name        string `json:"name,omitempty" binding:"omitempty,max=100"`
	Email       string `json:"email" binding:"required,email,max=254"`
	Username    string `json:"username,omitempty" binding:"omitempty,min=3,max=50,safe_id"`
	Password    string `json:"password" binding:"required,min=6,max=128"`
	Phone       string `json:"phone,omitempty" binding:"omitempty,max=20"`
	Role        string `json:"role,omitempty" binding:"omitempty,oneof=customer merchant corporate"`
	CompanyName string `json:"company_name,omitempty" binding:"omitempty,max=100"`
	TaxID       string `json:"tax_id,omitempty" binding:"omitempty,max=50"`
}

// VerifyOtpRequest is the request body for OTP verification.
type VerifyOtpRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}

// ResendOtpRequest is the request body for reissuing an OTP.
type ResendOtpRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// SigninRequest is the request body for login. Identifier is an email
// or a username.
type SigninRequest struct {
	Identifier string `json:"identifier" binding:"required,max=254"`
	Password   string `json:"password" binding:"required"`
}

// ChallengeResponse is the response body after OTP issuance.
type ChallengeResponse struct {
	Email     string `json:"email"`
	ExpiresAt string `json:"expires_at"`
}

// SessionResponse is the response body for a successful verification
// or login.
type SessionResponse struct {
	Token     string          `json:"token"`
	ExpiresAt string          `json:"expires_at"`
	Account   AccountResponse `json:"account"`
}

// AccountResponse is the public view of an account.
type AccountResponse struct {
	ID            string  `json:"id"`
	Email         *string `json:"email,omitempty"`
	Username      *string `json:"username,omitempty"`
	Name          *string `json:"name,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Role          string  `json:"role"`
	EmailVerified bool    `json:"email_verified"`
	MerchantID    *string `json:"merchant_id,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

// MutationRequest is the request body for deposits and withdrawals.
type MutationRequest struct {
	Amount      int64   `json:"amount" binding:"required,gt=0"`
	Description string  `json:"description,omitempty" binding:"omitempty,max=255"`
	ReferenceID *string `json:"reference_id,omitempty" binding:"omitempty,max=100"`
}

// WalletResponse is the response for wallet queries.
type WalletResponse struct {
	ID       string `json:"id"`
	Balance  int64  `json:"balance"`
	Currency string `json:"currency"`
}

// EntryResponse is the response body for a single ledger entry.
type EntryResponse struct {
	ID            string  `json:"id"`
	Type          string  `json:"type"`
	Amount        int64   `json:"amount"`
	BalanceBefore int64   `json:"balance_before"`
	BalanceAfter  int64   `json:"balance_after"`
	Description   string  `json:"description,omitempty"`
	ReferenceID   *string `json:"reference_id,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

// EntryListResponse wraps a paginated ledger history page.
type EntryListResponse struct {
	Items      []EntryResponse `json:"items"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}
