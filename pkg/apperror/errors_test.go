package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	e := New("TOK_002", "Payment token expired", http.StatusGone)
	assert.Equal(t, "[TOK_002] Payment token expired", e.Error())

	wrapped := Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, fmt.Errorf("conn refused"))
	assert.Equal(t, "[SYS_001] Internal database error: conn refused", wrapped.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("row not found")
	e := Wrap("SYS_001", "db", http.StatusInternalServerError, inner)
	assert.ErrorIs(t, e, inner)

	plain := New("PAY_001", "Invalid amount", http.StatusBadRequest)
	assert.Nil(t, plain.Unwrap())
}

func TestErrorCatalog_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"token invalid", ErrTokenInvalid(), "TOK_001", http.StatusBadRequest},
		{"token expired", ErrTokenExpired(), "TOK_002", http.StatusGone},
		{"wrong merchant", ErrWrongMerchant(), "TOK_003", http.StatusConflict},
		{"invalid amount", ErrInvalidAmount(), "PAY_001", http.StatusBadRequest},
		{"recharge out of range", ErrRechargeOutOfRange(10, 10000), "PAY_002", http.StatusBadRequest},
		{"insufficient funds", ErrInsufficientFunds(), "PAY_003", http.StatusPaymentRequired},
		{"duplicate transaction", ErrDuplicateTransaction(), "PAY_004", http.StatusConflict},
		{"already reversed", ErrAlreadyReversed(), "ADM_001", http.StatusConflict},
		{"not reversible", ErrNotReversible(), "ADM_002", http.StatusBadRequest},
		{"insufficient merchant funds", ErrInsufficientMerchantFunds(), "ADM_003", http.StatusConflict},
		{"not found", ErrNotFound("account"), "LED_001", http.StatusNotFound},
		{"account blocked", ErrAccountBlocked(), "AUTH_004", http.StatusForbidden},
		{"rate limited", ErrRateLimitExceeded(), "RATE_001", http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
		})
	}
}

func TestErrNotFound_Message(t *testing.T) {
	assert.Equal(t, "transaction not found", ErrNotFound("transaction").Message)
}

func TestErrRechargeOutOfRange_Message(t *testing.T) {
	assert.Equal(t, "Recharge amount must be between 10 and 10000", ErrRechargeOutOfRange(10, 10000).Message)
}
