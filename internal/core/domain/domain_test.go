package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func entry(before, after, amount int64) WalletTransaction {
	return WalletTransaction{
		ID:            uuid.New(),
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  after,
	}
}

func TestWalletTransaction_SignedAmount(t *testing.T) {
	credit := entry(100, 150, 50)
	assert.Equal(t, int64(50), credit.SignedAmount())
	assert.True(t, credit.IsCredit())

	debit := entry(150, 90, 60)
	assert.Equal(t, int64(-60), debit.SignedAmount())
	assert.False(t, debit.IsCredit())
}

func TestReplayBalance(t *testing.T) {
	entries := []WalletTransaction{
		entry(0, 10000, 10000),  // deposit
		entry(10000, 4000, 6000), // withdrawal
		entry(4000, 9000, 5000),  // deposit
	}
	assert.Equal(t, int64(9000), ReplayBalance(entries))
	assert.Equal(t, int64(0), ReplayBalance(nil))
}

func TestVerifyChain(t *testing.T) {
	tests := []struct {
		name    string
		entries []WalletTransaction
		want    bool
	}{
		{
			name: "valid chain",
			entries: []WalletTransaction{
				entry(0, 100, 100),
				entry(100, 40, 60),
				entry(40, 90, 50),
			},
			want: true,
		},
		{
			name: "gap between entries",
			entries: []WalletTransaction{
				entry(0, 100, 100),
				entry(90, 40, 50), // before does not match prior after
			},
			want: false,
		},
		{
			name: "delta does not match amount",
			entries: []WalletTransaction{
				entry(0, 100, 70),
			},
			want: false,
		},
		{
			name:    "empty ledger",
			entries: nil,
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifyChain(tt.entries))
		})
	}
}

func TestAccount_HasRole(t *testing.T) {
	a := &Account{Role: RoleMerchant}
	assert.True(t, a.HasRole(RoleMerchant))
	assert.False(t, a.HasRole(RoleAdmin))
}

func TestOtpChallenge_IsExpired(t *testing.T) {
	now := time.Now().UTC()
	c := &OtpChallenge{ExpiresAt: now.Add(OtpTTL)}

	assert.False(t, c.IsExpired(now))
	assert.False(t, c.IsExpired(now.Add(OtpTTL))) // boundary is inclusive
	assert.True(t, c.IsExpired(now.Add(OtpTTL+time.Second)))
}

func TestOtpChallenge_IsLocked(t *testing.T) {
	c := &OtpChallenge{Attempts: OtpMaxAttempts - 1}
	assert.False(t, c.IsLocked())

	c.Attempts = OtpMaxAttempts
	assert.True(t, c.IsLocked())
}

func TestTransactionType_Constants(t *testing.T) {
	assert.Equal(t, TransactionType("deposit"), TransactionTypeDeposit)
	assert.Equal(t, TransactionType("withdrawal"), TransactionTypeWithdrawal)
	assert.Equal(t, TransactionType("bet_placed"), TransactionTypeBetPlaced)
	assert.Equal(t, TransactionType("bet_won"), TransactionTypeBetWon)
	assert.Equal(t, TransactionType("bet_lost"), TransactionTypeBetLost)
	assert.Equal(t, TransactionType("refund"), TransactionTypeRefund)
	assert.Equal(t, TransactionType("payment_credit"), TransactionTypePaymentCredit)
}

func TestOtpPurpose_Constants(t *testing.T) {
	assert.Equal(t, OtpPurpose("signup"), OtpPurposeSignup)
	assert.Equal(t, OtpPurpose("login"), OtpPurposeLogin)
	assert.Equal(t, OtpPurpose("password_reset"), OtpPurposePasswordReset)
}
