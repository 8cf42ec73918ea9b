package handler

import (
	"time"

	"campus-payment-ledger/internal/adapter/http/dto"
	"campus-payment-ledger/internal/adapter/http/middleware"
	"campus-payment-ledger/internal/core/domain"
	"campus-payment-ledger/internal/core/ports"
	"campus-payment-ledger/pkg/apperror"
	"campus-payment-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler handles the admin control endpoints.
type AdminHandler struct {
	adminSvc     ports.AdminService
	reportingSvc ports.ReportingService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminSvc ports.AdminService, reportingSvc ports.ReportingService) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc, reportingSvc: reportingSvc}
}

func adminEmail(c *gin.Context) (string, bool) {
	email, ok := c.Get(middleware.CtxEmail)
	if !ok {
		return "", false
	}
	return email.(string), true
}

// ListUsers handles GET /api/v1/admin/users.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	accounts, err := h.adminSvc.ListAccounts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.AccountResponse, 0, len(accounts))
	for i := range accounts {
		out = append(out, toAccountResponse(&accounts[i]))
	}
	response.OK(c, out)
}

// BlockUser handles POST /api/v1/admin/users/:email/block.
func (h *AdminHandler) BlockUser(c *gin.Context) {
	admin, ok := adminEmail(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.BlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if err := h.adminSvc.BlockUser(c.Request.Context(), admin, c.Param("email"), req.Reason); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"blocked": true})
}

// UnblockUser handles POST /api/v1/admin/users/:email/unblock.
func (h *AdminHandler) UnblockUser(c *gin.Context) {
	admin, ok := adminEmail(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	if err := h.adminSvc.UnblockUser(c.Request.Context(), admin, c.Param("email")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"blocked": false})
}

// ListTransactions handles GET /api/v1/admin/transactions.
func (h *AdminHandler) ListTransactions(c *gin.Context) {
	txns, err := h.reportingSvc.ListAllTransactions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toTransactionResponses(txns))
}

// ListSuspicious handles GET /api/v1/admin/transactions/suspicious.
func (h *AdminHandler) ListSuspicious(c *gin.Context) {
	txns, err := h.reportingSvc.ListSuspiciousTransactions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toTransactionResponses(txns))
}

// ReverseTransaction handles POST /api/v1/admin/transactions/:id/reverse.
func (h *AdminHandler) ReverseTransaction(c *gin.Context) {
	admin, ok := adminEmail(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid transaction id"))
		return
	}

	var req dto.ReverseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	reversal, err := h.adminSvc.ReverseTransaction(c.Request.Context(), admin, id, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toTransactionResponse(reversal))
}

// MarkFraud handles POST /api/v1/admin/transactions/:id/fraud.
func (h *AdminHandler) MarkFraud(c *gin.Context) {
	h.setFraud(c, true)
}

// ClearFraud handles DELETE /api/v1/admin/transactions/:id/fraud.
func (h *AdminHandler) ClearFraud(c *gin.Context) {
	h.setFraud(c, false)
}

func (h *AdminHandler) setFraud(c *gin.Context, fraud bool) {
	admin, ok := adminEmail(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid transaction id"))
		return
	}

	if fraud {
		err = h.adminSvc.MarkFraud(c.Request.Context(), admin, id)
	} else {
		err = h.adminSvc.ClearFraud(c.Request.Context(), admin, id)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	status := domain.ReviewStatusClean
	if fraud {
		status = domain.ReviewStatusFraud
	}
	response.OK(c, gin.H{"review_status": status})
}

// ListAuditLog handles GET /api/v1/admin/audit.
func (h *AdminHandler) ListAuditLog(c *gin.Context) {
	actions, err := h.adminSvc.ListAuditLog(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.AdminActionResponse, 0, len(actions))
	for _, a := range actions {
		resp := dto.AdminActionResponse{
			ID:          a.ID.String(),
			AdminEmail:  a.AdminEmail,
			Action:      string(a.Action),
			TargetEmail: a.TargetEmail,
			Reason:      a.Reason,
			CreatedAt:   a.CreatedAt.UTC().Format(time.RFC3339),
		}
		if a.TargetTransactionID != nil {
			id := a.TargetTransactionID.String()
			resp.TargetTransactionID = &id
		}
		out = append(out, resp)
	}
	response.OK(c, out)
}
