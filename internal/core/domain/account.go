package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the explicit account role. It replaces any implicit
// role-by-identifier convention: authorization checks go through HasRole.
type Role string

const (
	RoleCustomer  Role = "customer"
	RoleMerchant  Role = "merchant"
	RoleCorporate Role = "corporate"
	RoleAdmin     Role = "admin"
)

// Account is a registered user in the directory.
type Account struct {
	ID            uuid.UUID  `json:"id"`
	Email         *string    `json:"email,omitempty"`
	Username      *string    `json:"username,omitempty"`
	PasswordHash  string     `json:"-"` // Never expose
	Name          *string    `json:"name,omitempty"`
	Phone         *string    `json:"phone,omitempty"`
	Role          Role       `json:"role"`
	EmailVerified bool       `json:"email_verified"`
	MerchantID    *uuid.UUID `json:"merchant_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// HasRole reports whether the account holds the given role.
func (a *Account) HasRole(r Role) bool {
	return a.Role == r
}

// Store lifecycle states.
const (
	StoreStatusPending   = "pending"
	StoreStatusActive    = "active"
	StoreStatusSuspended = "suspended"
)

// Merchant is the store record linked to a merchant-role account.
type Merchant struct {
	ID          uuid.UUID `json:"id"`
	CompanyName string    `json:"company_name"`
	OwnerName   string    `json:"owner_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	TaxID       *string   `json:"tax_id,omitempty"`
	StoreStatus string    `json:"store_status"`
	JoinedAt    time.Time `json:"joined_at"`
}
