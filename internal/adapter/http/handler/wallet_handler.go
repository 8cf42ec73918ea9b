package handler

import (
	"campus-payment-ledger/internal/adapter/http/dto"
	"campus-payment-ledger/internal/adapter/http/middleware"
	"campus-payment-ledger/internal/core/ports"
	"campus-payment-ledger/pkg/apperror"
	"campus-payment-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles wallet and history endpoints.
type WalletHandler struct {
	paymentSvc   ports.PaymentService
	reportingSvc ports.ReportingService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(paymentSvc ports.PaymentService, reportingSvc ports.ReportingService) *WalletHandler {
	return &WalletHandler{
		paymentSvc:   paymentSvc,
		reportingSvc: reportingSvc,
	}
}

// GetBalance handles GET /api/v1/wallet.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	email, ok := c.Get(middleware.CtxEmail)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	balance, err := h.reportingSvc.GetWalletBalance(c.Request.Context(), email.(string))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.WalletBalanceResponse{Balance: balance})
}

// Recharge handles POST /api/v1/wallet/recharge (student role).
func (h *WalletHandler) Recharge(c *gin.Context) {
	email, ok := c.Get(middleware.CtxEmail)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.RechargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	txn, err := h.paymentSvc.Recharge(c.Request.Context(), email.(string), req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toTransactionResponse(txn))
}

// ListTransactions handles GET /api/v1/transactions (student or merchant).
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	email, ok := c.Get(middleware.CtxEmail)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	txns, err := h.reportingSvc.ListTransactions(c.Request.Context(), email.(string))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toTransactionResponses(txns))
}
