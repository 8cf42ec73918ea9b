package domain

import (
	"time"

	"github.com/google/uuid"
)

// Wallet holds an account's balance. The balance is stored AES-256 encrypted;
// only the ledger primitives may change it.
type Wallet struct {
	ID               uuid.UUID `json:"id"`
	AccountID        uuid.UUID `json:"account_id"`
	EncryptedBalance string    `json:"-"` // Never expose raw
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
