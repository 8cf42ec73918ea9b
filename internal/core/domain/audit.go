package domain

import (
	"time"

	"github.com/google/uuid"
)

// AdminActionType represents the type of audited admin action.
type AdminActionType string

const (
	AdminActionBlockUser          AdminActionType = "BLOCK_USER"
	AdminActionUnblockUser        AdminActionType = "UNBLOCK_USER"
	AdminActionReverseTransaction AdminActionType = "REVERSE_TRANSACTION"
	AdminActionMarkFraud          AdminActionType = "MARK_FRAUD"
	AdminActionClearFraud         AdminActionType = "CLEAR_FRAUD"
)

// AdminAction records a single admin operation in the append-only audit log.
type AdminAction struct {
	ID                  uuid.UUID       `json:"id"`
	AdminEmail          string          `json:"admin_email"`
	Action              AdminActionType `json:"action"`
	TargetEmail         *string         `json:"target_email,omitempty"`
	TargetTransactionID *uuid.UUID      `json:"target_transaction_id,omitempty"`
	Reason              string          `json:"reason"`
	CreatedAt           time.Time       `json:"created_at"`
}
