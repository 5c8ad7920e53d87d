package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bazaarly-core/internal/core/domain"
	"bazaarly-core/internal/core/ports"
	"bazaarly-core/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WalletServiceImpl implements ports.WalletService.
type WalletServiceImpl struct {
	walletRepo ports.WalletRepository
	ledgerRepo ports.LedgerRepository
	notifier   ports.NotificationSink
	transactor ports.DBTransactor
	currency   string
	log        zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	walletRepo ports.WalletRepository,
	ledgerRepo ports.LedgerRepository,
	notifier ports.NotificationSink,
	transactor ports.DBTransactor,
	currency string,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		walletRepo: walletRepo,
		ledgerRepo: ledgerRepo,
		notifier:   notifier,
		transactor: transactor,
		currency:   currency,
		log:        log,
	}
}

// GetOrCreate returns the user's wallet, creating an empty one on first
// access. Two requests racing on first access both succeed: the loser
// of the insert race retries as a lookup.
func (s *WalletServiceImpl) GetOrCreate(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet != nil {
		return wallet, nil
	}

	now := time.Now().UTC()
	wallet = &domain.Wallet{
		ID:        uuid.New(),
		UserID:    userID,
		Balance:   0,
		Currency:  s.currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.walletRepo.Create(ctx, wallet); err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			existing, lookupErr := s.walletRepo.GetByUserID(ctx, userID)
			if lookupErr != nil {
				return nil, apperror.InternalError(fmt.Errorf("get wallet after conflict: %w", lookupErr))
			}
			if existing == nil {
				return nil, apperror.InternalError(fmt.Errorf("wallet vanished after duplicate key"))
			}
			return existing, nil
		}
		return nil, apperror.InternalError(fmt.Errorf("create wallet: %w", err))
	}

	s.log.Info().
		Str("wallet_id", wallet.ID.String()).
		Str("user_id", userID.String()).
		Msg("wallet created")

	return wallet, nil
}

// Credit adds funds to a wallet and appends the matching ledger entry
// in one transaction.
func (s *WalletServiceImpl) Credit(ctx context.Context, req ports.LedgerRequest) (*domain.WalletTransaction, error) {
	return s.apply(ctx, req, true)
}

// Debit removes funds from a wallet, failing without side effects when
// the balance cannot cover the amount.
func (s *WalletServiceImpl) Debit(ctx context.Context, req ports.LedgerRequest) (*domain.WalletTransaction, error) {
	return s.apply(ctx, req, false)
}

// apply runs the shared mutation algorithm: lock the wallet row, check
// funds for debits, write the new balance and the ledger entry, commit.
// The row lock serializes concurrent mutations so each entry's
// balance_before equals the previous entry's balance_after.
func (s *WalletServiceImpl) apply(ctx context.Context, req ports.LedgerRequest, credit bool) (*domain.WalletTransaction, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, req.WalletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil || wallet.UserID != req.UserID {
		return nil, apperror.ErrWalletNotFound()
	}

	balanceBefore := wallet.Balance
	var balanceAfter int64
	if credit {
		balanceAfter = balanceBefore + req.Amount
	} else {
		if balanceBefore < req.Amount {
			return nil, apperror.ErrInsufficientFunds()
		}
		balanceAfter = balanceBefore - req.Amount
	}

	now := time.Now().UTC()
	entry := &domain.WalletTransaction{
		ID:            uuid.New(),
		WalletID:      wallet.ID,
		UserID:        wallet.UserID,
		Type:          req.Type,
		Amount:        req.Amount,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceAfter,
		Description:   req.Description,
		ReferenceID:   req.ReferenceID,
		CreatedAt:     now,
	}

	if err := s.walletRepo.UpdateBalance(ctx, dbTx, wallet.ID, balanceAfter); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}
	if err := s.ledgerRepo.Create(ctx, dbTx, entry); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create ledger entry: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	// Post-commit: notify (best-effort)
	s.notifyEntry(ctx, entry)

	s.log.Info().
		Str("entry_id", entry.ID.String()).
		Str("wallet_id", wallet.ID.String()).
		Str("type", string(req.Type)).
		Int64("amount", req.Amount).
		Int64("balance_after", balanceAfter).
		Msg("wallet mutation applied")

	return entry, nil
}

func (s *WalletServiceImpl) notifyEntry(ctx context.Context, entry *domain.WalletTransaction) {
	title := "Wallet debited"
	if entry.IsCredit() {
		title = "Wallet credited"
	}
	data := map[string]any{
		"entry_id":      entry.ID.String(),
		"type":          string(entry.Type),
		"amount":        entry.Amount,
		"balance_after": entry.BalanceAfter,
	}
	if err := s.notifier.Send(ctx, entry.UserID, title, entry.Description, "wallet", data); err != nil {
		s.log.Warn().Err(err).Str("entry_id", entry.ID.String()).Msg("failed to send wallet notification")
	}
}

// ListTransactions returns a page of ledger history plus the total.
func (s *WalletServiceImpl) ListTransactions(ctx context.Context, params ports.LedgerListParams) ([]domain.WalletTransaction, int64, error) {
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 20
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	entries, total, err := s.ledgerRepo.ListByWallet(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list ledger: %w", err))
	}
	return entries, total, nil
}
