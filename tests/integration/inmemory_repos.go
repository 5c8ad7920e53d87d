package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"bazaarly-core/internal/core/domain"
	"bazaarly-core/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Transactor ---

// inMemoryTransactor serialises transactions with a single mutex. This
// is a coarse stand-in for PostgreSQL row-level locking: any two
// transactions conflict, which is strictly safer than SELECT FOR UPDATE,
// so the concurrency tests can assert exact outcomes.
type inMemoryTransactor struct {
	mu sync.Mutex
}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	return &memTx{release: t.mu.Unlock}, nil
}

// memTx is a pgx.Tx whose only job is releasing the transactor lock
// exactly once, on whichever of Commit/Rollback runs first.
type memTx struct {
	once    sync.Once
	release func()
}

func (t *memTx) done() {
	t.once.Do(t.release)
}

func (t *memTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *memTx) Commit(ctx context.Context) error          { t.done(); return nil }
func (t *memTx) Rollback(ctx context.Context) error        { t.done(); return nil }
func (t *memTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *memTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *memTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *memTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *memTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *memTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *memTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (t *memTx) Conn() *pgx.Conn                                               { return nil }

// --- In-Memory Wallet Repo ---

type inMemoryWalletRepo struct {
	mu      sync.RWMutex
	wallets map[uuid.UUID]*domain.Wallet
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{wallets: make(map[uuid.UUID]*domain.Wallet)}
}

func (r *inMemoryWalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.wallets {
		if existing.UserID == w.UserID {
			return fmt.Errorf("insert wallet: %w", domain.ErrDuplicateKey)
		}
	}
	cp := *w
	r.wallets[w.ID] = &cp
	return nil
}

func (r *inMemoryWalletRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.wallets {
		if w.UserID == userID {
			cp := *w
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryWalletRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wallets[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *inMemoryWalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[walletID]
	if !ok {
		return fmt.Errorf("wallet not found")
	}
	w.Balance = balance
	w.UpdatedAt = time.Now()
	return nil
}

// --- In-Memory Ledger Repo ---

type inMemoryLedgerRepo struct {
	mu      sync.RWMutex
	entries []domain.WalletTransaction
}

func newInMemoryLedgerRepo() *inMemoryLedgerRepo {
	return &inMemoryLedgerRepo{}
}

func (r *inMemoryLedgerRepo) Create(ctx context.Context, tx pgx.Tx, e *domain.WalletTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *e)
	return nil
}

func (r *inMemoryLedgerRepo) ListByWallet(ctx context.Context, params ports.LedgerListParams) ([]domain.WalletTransaction, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []domain.WalletTransaction
	for _, e := range r.entries {
		if e.WalletID != params.WalletID {
			continue
		}
		if params.Type != nil && e.Type != *params.Type {
			continue
		}
		matched = append(matched, e)
	}
	// Newest first
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := int64(len(matched))

	start := params.Offset
	if start >= len(matched) {
		return []domain.WalletTransaction{}, total, nil
	}
	end := start + params.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// entriesInOrder returns all of a wallet's entries in creation order,
// for chain verification.
func (r *inMemoryLedgerRepo) entriesInOrder(walletID uuid.UUID) []domain.WalletTransaction {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.WalletTransaction
	for _, e := range r.entries {
		if e.WalletID == walletID {
			out = append(out, e)
		}
	}
	return out
}

// --- In-Memory Challenge Repo ---

type inMemoryChallengeRepo struct {
	mu         sync.RWMutex
	challenges map[uuid.UUID]*domain.OtpChallenge
}

func newInMemoryChallengeRepo() *inMemoryChallengeRepo {
	return &inMemoryChallengeRepo{challenges: make(map[uuid.UUID]*domain.OtpChallenge)}
}

func (r *inMemoryChallengeRepo) Create(ctx context.Context, tx pgx.Tx, ch *domain.OtpChallenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *ch
	r.challenges[ch.ID] = &cp
	return nil
}

func (r *inMemoryChallengeRepo) GetActive(ctx context.Context, email string, purpose domain.OtpPurpose) (*domain.OtpChallenge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var newest *domain.OtpChallenge
	for _, ch := range r.challenges {
		if ch.Email != email || ch.Purpose != purpose || ch.Verified {
			continue
		}
		if newest == nil || ch.CreatedAt.After(newest.CreatedAt) {
			newest = ch
		}
	}
	if newest == nil {
		return nil, nil
	}
	cp := *newest
	return &cp, nil
}

func (r *inMemoryChallengeRepo) InvalidateActive(ctx context.Context, tx pgx.Tx, email string, purpose domain.OtpPurpose) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, ch := range r.challenges {
		if ch.Email == email && ch.Purpose == purpose && !ch.Verified && ch.ExpiresAt.After(now) {
			ch.ExpiresAt = now
		}
	}
	return nil
}

func (r *inMemoryChallengeRepo) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.challenges[id]
	if !ok {
		return fmt.Errorf("challenge not found")
	}
	ch.Attempts++
	return nil
}

func (r *inMemoryChallengeRepo) MarkVerified(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.challenges[id]
	if !ok || ch.Verified {
		return false, nil
	}
	ch.Verified = true
	return true, nil
}

func (r *inMemoryChallengeRepo) CountSince(ctx context.Context, email string, purpose domain.OtpPurpose, since time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, ch := range r.challenges {
		if ch.Email == email && ch.Purpose == purpose && ch.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

func (r *inMemoryChallengeRepo) CountUnverifiedSince(ctx context.Context, email string, purpose domain.OtpPurpose, since time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, ch := range r.challenges {
		if ch.Email == email && ch.Purpose == purpose && !ch.Verified && ch.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

// --- In-Memory Account Repo ---

type inMemoryAccountRepo struct {
	mu        sync.RWMutex
	accounts  map[uuid.UUID]*domain.Account
	merchants map[uuid.UUID]*domain.Merchant
}

func newInMemoryAccountRepo() *inMemoryAccountRepo {
	return &inMemoryAccountRepo{
		accounts:  make(map[uuid.UUID]*domain.Account),
		merchants: make(map[uuid.UUID]*domain.Merchant),
	}
}

func (r *inMemoryAccountRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.Email != nil && *a.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *inMemoryAccountRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.Username != nil && *a.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *inMemoryAccountRepo) Create(ctx context.Context, tx pgx.Tx, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if account.Email != nil && a.Email != nil && *a.Email == *account.Email {
			return fmt.Errorf("insert account: %w", domain.ErrDuplicateKey)
		}
		if account.Username != nil && a.Username != nil && *a.Username == *account.Username {
			return fmt.Errorf("insert account: %w", domain.ErrDuplicateKey)
		}
	}
	cp := *account
	r.accounts[account.ID] = &cp
	return nil
}

func (r *inMemoryAccountRepo) CreateMerchant(ctx context.Context, tx pgx.Tx, merchant *domain.Merchant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *merchant
	r.merchants[merchant.ID] = &cp
	return nil
}

func (r *inMemoryAccountRepo) LinkMerchant(ctx context.Context, tx pgx.Tx, accountID, merchantID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[accountID]
	if !ok {
		return fmt.Errorf("account not found")
	}
	id := merchantID
	a.MerchantID = &id
	return nil
}

func (r *inMemoryAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *inMemoryAccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.Email != nil && *a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryAccountRepo) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.Username != nil && *a.Username == username {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

// --- Capturing OTP Mailer ---

// captureMailer records issued codes instead of dialing SMTP, so tests
// can read the code a signup flow would have emailed.
type captureMailer struct {
	mu    sync.Mutex
	codes map[string]string // email -> last code
	fail  bool
}

func newCaptureMailer() *captureMailer {
	return &captureMailer{codes: make(map[string]string)}
}

func (m *captureMailer) SendOtp(ctx context.Context, email, code string, purpose domain.OtpPurpose) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return fmt.Errorf("smtp unavailable")
	}
	m.codes[email] = code
	return nil
}

func (m *captureMailer) lastCode(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[email]
}

// --- In-Memory Notification Sink ---

type inMemoryNotificationSink struct {
	mu    sync.Mutex
	count map[uuid.UUID]int
}

func newInMemoryNotificationSink() *inMemoryNotificationSink {
	return &inMemoryNotificationSink{count: make(map[uuid.UUID]int)}
}

func (s *inMemoryNotificationSink) Send(ctx context.Context, userID uuid.UUID, title, message, category string, data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count[userID]++
	return nil
}

func (s *inMemoryNotificationSink) sentTo(userID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count[userID]
}
