package integration

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"bazaarly-core/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentWithdrawals verifies that concurrent debits against one
// wallet never overdraw it. The in-memory transactor serialises
// transactions the way SELECT FOR UPDATE serialises them per row, so
// the outcome is exact: withdrawals succeed until the balance cannot
// cover the next one, and every later request fails with WAL_002.
func TestConcurrentWithdrawals(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := signupAndVerify(t, app, "concurrent@example.com", nil)

	status, _ := walletMutate(t, app, token, "deposit", 100000, "seed")
	require.Equal(t, http.StatusCreated, status)

	// 10 concurrent withdrawals of 30,000 against a 100,000 balance:
	// exactly 3 can succeed.
	concurrency := 10
	amount := int64(30000)

	var wg sync.WaitGroup
	var successCount atomic.Int64
	var insufficientCount atomic.Int64

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			resp, err := http.DefaultClient.Do(mutationRequest(t, app, token, "withdraw", amount, ""))
			if err != nil {
				return
			}
			defer resp.Body.Close()
			_, _ = io.ReadAll(resp.Body)

			switch resp.StatusCode {
			case http.StatusCreated:
				successCount.Add(1)
			case http.StatusPaymentRequired:
				insufficientCount.Add(1)
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, int64(3), successCount.Load(), "exactly 3 withdrawals fit the balance")
	assert.Equal(t, int64(concurrency-3), insufficientCount.Load(), "the rest are refused")

	status, data := walletGet(t, app, token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(10000), data["balance"])

	// The ledger chain must account for every committed mutation and
	// nothing else.
	wallet, err := app.walletRepo.GetByUserID(context.Background(), mustUserID(t, app, token))
	require.NoError(t, err)
	entries := app.ledgerRepo.entriesInOrder(wallet.ID)
	require.Len(t, entries, 4) // 1 deposit + 3 withdrawals
	assert.True(t, domain.VerifyChain(entries), "balance_before/after chain must be unbroken")
	assert.Equal(t, wallet.Balance, domain.ReplayBalance(entries), "stored balance must equal the replayed ledger")
}

// TestConcurrentDeposits verifies no credit is lost under contention.
func TestConcurrentDeposits(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := signupAndVerify(t, app, "deposits@example.com", nil)

	concurrency := 20
	amount := int64(5000)

	var wg sync.WaitGroup
	var successCount atomic.Int64

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			resp, err := http.DefaultClient.Do(mutationRequest(t, app, token, "deposit", amount, ""))
			if err != nil {
				return
			}
			defer resp.Body.Close()
			_, _ = io.ReadAll(resp.Body)

			if resp.StatusCode == http.StatusCreated {
				successCount.Add(1)
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, int64(concurrency), successCount.Load(), "every deposit must commit")

	status, data := walletGet(t, app, token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(concurrency)*float64(amount), data["balance"])

	wallet, err := app.walletRepo.GetByUserID(context.Background(), mustUserID(t, app, token))
	require.NoError(t, err)
	entries := app.ledgerRepo.entriesInOrder(wallet.ID)
	require.Len(t, entries, concurrency)
	assert.True(t, domain.VerifyChain(entries))
	assert.Equal(t, wallet.Balance, domain.ReplayBalance(entries))
}

// TestConcurrentFirstAccess verifies that racing first reads of a
// wallet resolve to a single wallet row.
func TestConcurrentFirstAccess(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := signupAndVerify(t, app, "firstaccess@example.com", nil)

	concurrency := 10
	ids := make([]string, concurrency)

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			req, _ := http.NewRequest(http.MethodGet, app.server.URL+"/api/v1/wallet", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return
			}
			defer resp.Body.Close()

			var body struct {
				Data struct {
					ID string `json:"id"`
				} `json:"data"`
			}
			if resp.StatusCode == http.StatusOK {
				if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
					ids[idx] = body.Data.ID
				}
			}
		}(i)
	}
	wg.Wait()

	unique := make(map[string]struct{})
	for _, id := range ids {
		require.NotEmpty(t, id, "every request must resolve a wallet")
		unique[id] = struct{}{}
	}
	assert.Len(t, unique, 1, "all requests must land on the same wallet")
}

// --- Helpers ---

// mustUserID extracts the authenticated user's ID via /auth/me.
func mustUserID(t *testing.T, app *testApp, token string) uuid.UUID {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, app.server.URL+"/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	parsed, err := uuid.Parse(body.Data.ID)
	require.NoError(t, err)
	return parsed
}
