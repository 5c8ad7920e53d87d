package domain

import (
	"time"

	"github.com/google/uuid"
)

// Wallet holds a per-user monetary balance. Balance is a currency-scaled
// integer (smallest unit, e.g. paisa) and is never mutated directly:
// every change goes through a ledger entry.
type Wallet struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Balance   int64     `json:"balance"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TransactionType categorises a ledger entry. The set is open: new
// callers may introduce new categories without changing the ledger's
// atomicity contract, so the ledger layer never validates against a
// closed list.
type TransactionType string

const (
	TransactionTypeDeposit       TransactionType = "deposit"
	TransactionTypeWithdrawal    TransactionType = "withdrawal"
	TransactionTypeBetPlaced     TransactionType = "bet_placed"
	TransactionTypeBetWon        TransactionType = "bet_won"
	TransactionTypeBetLost       TransactionType = "bet_lost"
	TransactionTypeRefund        TransactionType = "refund"
	TransactionTypePaymentCredit TransactionType = "payment_credit"
)

// WalletTransaction is an immutable, append-only ledger entry. Amount is
// a positive magnitude; direction is captured by the before/after pair.
type WalletTransaction struct {
	ID            uuid.UUID       `json:"id"`
	WalletID      uuid.UUID       `json:"wallet_id"`
	UserID        uuid.UUID       `json:"user_id"`
	Type          TransactionType `json:"type"`
	Amount        int64           `json:"amount"`
	BalanceBefore int64           `json:"balance_before"`
	BalanceAfter  int64           `json:"balance_after"`
	Description   string          `json:"description"`
	ReferenceID   *string         `json:"reference_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// SignedAmount returns the delta this entry applied to the balance.
func (t *WalletTransaction) SignedAmount() int64 {
	return t.BalanceAfter - t.BalanceBefore
}

// IsCredit reports whether the entry increased the balance.
func (t *WalletTransaction) IsCredit() bool {
	return t.BalanceAfter >= t.BalanceBefore
}

// ReplayBalance folds a wallet's ledger entries (in creation order) into
// the balance they produce. The wallet's stored balance must equal this
// value at all times.
func ReplayBalance(entries []WalletTransaction) int64 {
	var balance int64
	for i := range entries {
		balance += entries[i].SignedAmount()
	}
	return balance
}

// VerifyChain checks the ledger chaining invariant: balanceAfter of
// entry n equals balanceBefore of entry n+1, and each entry's delta
// magnitude equals its amount. Entries must be in creation order.
func VerifyChain(entries []WalletTransaction) bool {
	for i := range entries {
		delta := entries[i].SignedAmount()
		if delta != entries[i].Amount && delta != -entries[i].Amount {
			return false
		}
		if i > 0 && entries[i].BalanceBefore != entries[i-1].BalanceAfter {
			return false
		}
	}
	return true
}
