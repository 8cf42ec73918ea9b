package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentToken is a short-lived, merchant-bound authorization for a single
// payment. It is carried inside a signed QR payload and is never persisted;
// expiry is enforced at redemption time.
type PaymentToken struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	StudentID     string    `json:"student_id"`
	MerchantID    string    `json:"merchant_id"`
	Amount        int64     `json:"amount"`
	IssuedAt      time.Time `json:"issued_at"`
}
