package domain

import (
	"time"

	"github.com/google/uuid"
)

// OtpPurpose scopes a challenge to the action it gates.
type OtpPurpose string

const (
	OtpPurposeSignup        OtpPurpose = "signup"
	OtpPurposeLogin         OtpPurpose = "login"
	OtpPurposePasswordReset OtpPurpose = "password_reset"
)

// Challenge lifetime and lockout parameters.
const (
	OtpTTL            = 10 * time.Minute
	OtpMaxAttempts    = 5
	OtpResendCooldown = 30 * time.Second
	OtpHourlyLimit    = 5
)

// SignupPayload is the pending-registration data attached to a signup
// challenge. The credential is stored pre-hashed, never in plaintext.
type SignupPayload struct {
	Name                string `json:"name,omitempty"`
	Email               string `json:"email,omitempty"`
	Username            string `json:"username,omitempty"`
	PasswordHash        string `json:"password_hash"`
	Phone               string `json:"phone,omitempty"`
	Role                Role   `json:"role"`
	MerchantCompanyName string `json:"merchant_company_name,omitempty"`
	TaxID               string `json:"tax_id,omitempty"`
}

// OtpChallenge is a time-boxed one-time code bound to an email and a
// purpose. Challenges are never physically deleted: superseded ones are
// voided by expiring them early, and all rows are retained for
// rate-limit counting and audit.
type OtpChallenge struct {
	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	OtpCode       string     `json:"-"` // 6 fixed-width digits, never exposed
	Purpose       OtpPurpose `json:"purpose"`
	ExpiresAt     time.Time  `json:"expires_at"`
	Verified      bool       `json:"verified"`
	Attempts      int        `json:"attempts"`
	SignupPayload []byte     `json:"-"` // serialized SignupPayload
	CreatedAt     time.Time  `json:"created_at"`
}

// IsExpired reports whether the challenge is past its deadline.
func (c *OtpChallenge) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// IsLocked reports whether the attempt cap has been reached.
func (c *OtpChallenge) IsLocked() bool {
	return c.Attempts >= OtpMaxAttempts
}
