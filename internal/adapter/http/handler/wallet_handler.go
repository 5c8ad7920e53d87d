package handler

import (
	"strconv"
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

// WalletHandler handles wallet and ledger endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

func authedUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(middleware.CtxUserID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return uuid.Nil, false
	}
	return v.(uuid.UUID), true
}

// GetWallet handles GET /api/v1/wallet. First access creates the wallet.
func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	wallet, err := h.walletSvc.GetOrCreate(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toWalletResponse(wallet))
}

// Deposit handles POST /api/v1/wallet/deposit.
func (h *WalletHandler) Deposit(c *gin.Context) {
	h.mutate(c, domain.TransactionTypeDeposit, true)
}

// Withdraw handles POST /api/v1/wallet/withdraw.
func (h *WalletHandler) Withdraw(c *gin.Context) {
	h.mutate(c, domain.TransactionTypeWithdrawal, false)
}

func (h *WalletHandler) mutate(c *gin.Context, txType domain.TransactionType, credit bool) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	var req dto.MutationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	wallet, err := h.walletSvc.GetOrCreate(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	ledgerReq := ports.LedgerRequest{
		WalletID:    wallet.ID,
		UserID:      userID,
		Amount:      req.Amount,
		Type:        txType,
		Description: req.Description,
		ReferenceID: req.ReferenceID,
	}

	var entry *domain.WalletTransaction
	if credit {
		entry, err = h.walletSvc.Credit(c.Request.Context(), ledgerReq)
	} else {
		entry, err = h.walletSvc.Debit(c.Request.Context(), ledgerReq)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toEntryResponse(entry))
}

// ListTransactions handles GET /api/v1/wallet/transactions.
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	wallet, err := h.walletSvc.GetOrCreate(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	params := ports.LedgerListParams{
		WalletID: wallet.ID,
		Limit:    pageSize,
		Offset:   (page - 1) * pageSize,
	}
	if typeFilter := c.Query("type"); typeFilter != "" {
		t := domain.TransactionType(typeFilter)
		params.Type = &t
	}

	entries, total, err := h.walletSvc.ListTransactions(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.EntryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, toEntryResponse(&entries[i]))
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	response.OK(c, dto.EntryListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

func toWalletResponse(w *domain.Wallet) dto.WalletResponse {
	return dto.WalletResponse{
		ID:       w.ID.String(),
		Balance:  w.Balance,
		Currency: w.Currency,
	}
}

func toEntryResponse(e *domain.WalletTransaction) dto.EntryResponse {
	return dto.EntryResponse{
		ID:            e.ID.String(),
		Type:          string(e.Type),
		Amount:        e.Amount,
		BalanceBefore: e.BalanceBefore,
		BalanceAfter:  e.BalanceAfter,
		Description:   e.Description,
		ReferenceID:   e.ReferenceID,
		CreatedAt:     e.CreatedAt.UTC().Format(time.RFC3339),
	}
}
