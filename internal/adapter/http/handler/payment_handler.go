package handler

import (
	"time"

	"campus-payment-ledger/internal/adapter/http/dto"
	"campus-payment-ledger/internal/adapter/http/middleware"
	"campus-payment-ledger/internal/core/ports"
	"campus-payment-ledger/pkg/apperror"
	"campus-payment-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// PaymentHandler handles the payment token lifecycle endpoints.
type PaymentHandler struct {
	paymentSvc ports.PaymentService
	tokenTTL   time.Duration
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentSvc ports.PaymentService, tokenTTL time.Duration) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc, tokenTTL: tokenTTL}
}

// IssueToken handles POST /api/v1/tokens (student role).
func (h *PaymentHandler) IssueToken(c *gin.Context) {
	email, ok := c.Get(middleware.CtxEmail)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.IssueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	token, signed, err := h.paymentSvc.IssueToken(c.Request.Context(), email.(string), req.MerchantID, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.IssueTokenResponse{
		TransactionID: token.TransactionID.String(),
		QRPayload:     signed,
		MerchantID:    token.MerchantID,
		Amount:        token.Amount,
		IssuedAt:      token.IssuedAt.UTC().Format(time.RFC3339),
		ExpiresAt:     token.IssuedAt.Add(h.tokenTTL).UTC().Format(time.RFC3339),
	})
}

// Redeem handles POST /api/v1/redeem (merchant role).
func (h *PaymentHandler) Redeem(c *gin.Context) {
	businessID, ok := c.Get(middleware.CtxBusinessID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	txn, err := h.paymentSvc.RedeemToken(c.Request.Context(), req.Token, businessID.(string))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toTransactionResponse(txn))
}
