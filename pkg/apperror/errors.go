package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Payment Token (TOK) ----

func ErrTokenInvalid() *AppError {
	return New("TOK_001", "Invalid payment token", http.StatusBadRequest)
}

func ErrTokenExpired() *AppError {
	return New("TOK_002", "Payment token expired", http.StatusGone)
}

func ErrWrongMerchant() *AppError {
	return New("TOK_003", "Payment token is bound to a different merchant", http.StatusConflict)
}

// ---- Ledger & Settlement (PAY) ----

func ErrInvalidAmount() *AppError {
	return New("PAY_001", "Invalid amount", http.StatusBadRequest)
}

func ErrRechargeOutOfRange(min, max int64) *AppError {
	return New("PAY_002", fmt.Sprintf("Recharge amount must be between %d and %d", min, max), http.StatusBadRequest)
}

func ErrInsufficientFunds() *AppError {
	return New("PAY_003", "Insufficient balance in wallet", http.StatusPaymentRequired)
}

func ErrDuplicateTransaction() *AppError {
	return New("PAY_004", "Duplicate transaction", http.StatusConflict)
}

// ---- Admin Control (ADM) ----

func ErrAlreadyReversed() *AppError {
	return New("ADM_001", "Transaction already reversed", http.StatusConflict)
}

func ErrNotReversible() *AppError {
	return New("ADM_002", "Only completed payments can be reversed", http.StatusBadRequest)
}

func ErrInsufficientMerchantFunds() *AppError {
	return New("ADM_003", "Merchant balance insufficient for reversal", http.StatusConflict)
}

// ---- Directory & Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrEmailExists() *AppError {
	return New("AUTH_002", "Email already registered", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired session token", http.StatusUnauthorized)
}

func ErrAccountBlocked() *AppError {
	return New("AUTH_004", "Account is blocked", http.StatusForbidden)
}

func ErrForbidden() *AppError {
	return New("AUTH_005", "Operation not permitted for this role", http.StatusForbidden)
}

// ---- Not Found (LED) ----

func ErrNotFound(entity string) *AppError {
	return New("LED_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrEncryptionFailure(err error) *AppError {
	return Wrap("SYS_003", "Encryption service failure", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a PAY_001-style validation error with a custom message.
func Validation(message string) *AppError {
	return New("PAY_001", message, http.StatusBadRequest)
}
