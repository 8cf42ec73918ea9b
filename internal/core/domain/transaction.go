package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType represents the kind of ledger movement.
type TransactionType string

const (
	TransactionTypePayment  TransactionType = "payment"
	TransactionTypeRecharge TransactionType = "recharge"
	TransactionTypeReversal TransactionType = "reversal"
)

// TransactionStatus represents the settlement state of a transaction.
// A completed payment may transition to reversed exactly once; the reversal
// is recorded as a companion transaction, history is never rewritten.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusReversed  TransactionStatus = "reversed"
)

// ReviewStatus classifies a transaction for fraud review, independent of its
// settlement status. Fraud is only ever set by an admin.
type ReviewStatus string

const (
	ReviewStatusClean      ReviewStatus = "clean"
	ReviewStatusSuspicious ReviewStatus = "suspicious"
	ReviewStatusFraud      ReviewStatus = "fraud"
)

// Risk flags attached by the scorer at settlement time.
const (
	RiskFlagHighAmount           = "HIGH_AMOUNT"
	RiskFlagBurstActivity        = "BURST_ACTIVITY"
	RiskFlagNewAccountHighAmount = "NEW_ACCOUNT_HIGH_AMOUNT"
)

// RechargeMerchantID marks recharge entries, which have no real merchant side.
const RechargeMerchantID = "WALLET_RECHARGE"

// Transaction is an immutable ledger entry. It appears in the student wallet,
// the merchant wallet and the global index as one record.
type Transaction struct {
	ID                  uuid.UUID         `json:"id"`
	Type                TransactionType   `json:"type"`
	Amount              int64             `json:"amount"` // In whole currency units
	StudentID           string            `json:"student_id"`
	MerchantID          string            `json:"merchant_id"`
	Status              TransactionStatus `json:"status"`
	RiskScore           int               `json:"risk_score"`
	RiskFlags           []string          `json:"risk_flags"`
	ReviewStatus        ReviewStatus      `json:"review_status"`
	ParentTransactionID *uuid.UUID        `json:"parent_transaction_id,omitempty"`
	ReversalReason      *string           `json:"reversal_reason,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
}

// IsReversible returns true if this transaction can still be reversed.
func (t *Transaction) IsReversible() bool {
	return t.Type == TransactionTypePayment &&
		t.Status == TransactionStatusCompleted
}

// NeedsReview returns true if the transaction is flagged for admin attention.
func (t *Transaction) NeedsReview() bool {
	return t.ReviewStatus == ReviewStatusSuspicious ||
		t.ReviewStatus == ReviewStatusFraud
}

// MerchantNet returns the amount credited to the merchant after the platform
// fee, expressed in basis points.
func MerchantNet(amount int64, feeBps int64) int64 {
	return amount * (10000 - feeBps) / 10000
}
