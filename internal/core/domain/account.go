package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role represents the kind of account in the directory.
type Role string

const (
	RoleStudent  Role = "student"
	RoleMerchant Role = "merchant"
	RoleAdmin    Role = "admin"
)

// AccountStatus represents the state of an account.
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "active"
	AccountStatusBlocked   AccountStatus = "blocked"
	AccountStatusSuspended AccountStatus = "suspended"
)

// Account represents a directory entry for a student, merchant or admin.
// Role is immutable after creation; email is unique.
type Account struct {
	ID           uuid.UUID     `json:"id"`
	Email        string        `json:"email"`
	Name         string        `json:"name"`
	Role         Role          `json:"role"`
	StudentID    *string       `json:"student_id,omitempty"`
	MerchantID   *string       `json:"merchant_id,omitempty"`
	PasswordHash string        `json:"-"` // Never expose
	Status       AccountStatus `json:"status"`
	BlockReason  *string       `json:"block_reason,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// IsActive returns true if the account may transact.
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// BusinessID returns the student or merchant identifier for the account.
// Admin accounts have no business identifier.
func (a *Account) BusinessID() string {
	switch a.Role {
	case RoleStudent:
		if a.StudentID != nil {
			return *a.StudentID
		}
	case RoleMerchant:
		if a.MerchantID != nil {
			return *a.MerchantID
		}
	}
	return ""
}
