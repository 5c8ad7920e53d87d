package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a user-facing message emitted after ledger or account
// events. Delivery is best-effort and never rolls back the mutation that
// triggered it.
type Notification struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Category  string         `json:"category"` // e.g. wallet, account, system
	Data      map[string]any `json:"data,omitempty"`
	Read      bool           `json:"read"`
	CreatedAt time.Time      `json:"created_at"`
}
