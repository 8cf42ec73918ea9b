package handler

import (
	"time"

	"campus-payment-ledger/internal/adapter/http/dto"
	"campus-payment-ledger/internal/core/domain"
)

func toTransactionResponse(t *domain.Transaction) dto.TransactionResponse {
	resp := dto.TransactionResponse{
		ID:           t.ID.String(),
		Type:         string(t.Type),
		Amount:       t.Amount,
		StudentID:    t.StudentID,
		MerchantID:   t.MerchantID,
		Status:       string(t.Status),
		RiskScore:    t.RiskScore,
		RiskFlags:    t.RiskFlags,
		ReviewStatus: string(t.ReviewStatus),
		CreatedAt:    t.CreatedAt.UTC().Format(time.RFC3339),
	}
	if resp.RiskFlags == nil {
		resp.RiskFlags = []string{}
	}
	if t.ParentTransactionID != nil {
		parent := t.ParentTransactionID.String()
		resp.ParentTransactionID = &parent
	}
	resp.ReversalReason = t.ReversalReason
	return resp
}

func toTransactionResponses(txns []domain.Transaction) []dto.TransactionResponse {
	out := make([]dto.TransactionResponse, 0, len(txns))
	for i := range txns {
		out = append(out, toTransactionResponse(&txns[i]))
	}
	return out
}

func toAccountResponse(a *domain.Account) dto.AccountResponse {
	return dto.AccountResponse{
		Email:       a.Email,
		Name:        a.Name,
		Role:        string(a.Role),
		BusinessID:  a.BusinessID(),
		Status:      string(a.Status),
		BlockReason: a.BlockReason,
		CreatedAt:   a.CreatedAt.UTC().Format(time.RFC3339),
	}
}
