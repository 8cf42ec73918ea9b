package ports

import (
	"context"
	"time"

	"campus-payment-ledger/internal/core/domain"

	"github.com/google/uuid"
)

// EncryptionService handles AES-256-GCM encryption/decryption of balances at rest.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles session JWT operations for the directory.
type TokenService interface {
	Generate(account *domain.Account) (string, time.Time, error)
	Validate(tokenString string) (*SessionClaims, error)
}

// SessionClaims holds the parsed session token claims.
type SessionClaims struct {
	Email      string
	Role       domain.Role
	BusinessID string
}

// QRTokenService signs and verifies payment tokens. Verification rejects
// tampered payloads before any ledger state is read; expiry is reported as a
// distinct outcome so redemption can surface it verbatim.
type QRTokenService interface {
	Sign(token *domain.PaymentToken) (string, error)
	Verify(signed string, now time.Time) (*domain.PaymentToken, error)
}

// RiskScorer computes a fraud score and flag set for a prospective payment.
// Pure: same inputs always produce the same score.
type RiskScorer interface {
	// BurstWindow is the trailing window whose transaction count feeds Score.
	BurstWindow() time.Duration
	// Score takes the number of the student's ledger entries inside the burst
	// window, not the entries themselves.
	Score(recentCount int, amount int64, accountCreatedAt time.Time, now time.Time) (int, []string)
	Classify(score int) domain.ReviewStatus
}

// TokenReplayStore tracks consumed payment tokens. Redemption consumes the
// token id up front, so replays are rejected before any ledger state is read;
// the duplicate check inside the settlement transaction stays authoritative
// when the store is unavailable.
type TokenReplayStore interface {
	// MarkConsumed atomically records a token id as consumed.
	// Returns true if the token was not seen before.
	MarkConsumed(ctx context.Context, transactionID string, ttl time.Duration) (bool, error)
}

// --- Service Ports (Business Logic) ---

// PaymentService drives the payment token lifecycle and wallet recharges.
type PaymentService interface {
	IssueToken(ctx context.Context, studentEmail string, merchantID string, amount int64) (*domain.PaymentToken, string, error)
	RedeemToken(ctx context.Context, signedToken string, redeemingMerchantID string) (*domain.Transaction, error)
	Recharge(ctx context.Context, studentEmail string, amount int64) (*domain.Transaction, error)
}

// AdminService implements the admin override and review workflow.
// Every successful operation appends exactly one audit entry.
type AdminService interface {
	BlockUser(ctx context.Context, adminEmail, targetEmail, reason string) error
	UnblockUser(ctx context.Context, adminEmail, targetEmail string) error
	ReverseTransaction(ctx context.Context, adminEmail string, transactionID uuid.UUID, reason string) (*domain.Transaction, error)
	MarkFraud(ctx context.Context, adminEmail string, transactionID uuid.UUID) error
	ClearFraud(ctx context.Context, adminEmail string, transactionID uuid.UUID) error
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	ListAuditLog(ctx context.Context) ([]domain.AdminAction, error)
}

// ReportingService exposes wallet and transaction queries to the UI layer.
type ReportingService interface {
	GetWalletBalance(ctx context.Context, email string) (int64, error)
	ListTransactions(ctx context.Context, email string) ([]domain.Transaction, error)
	ListAllTransactions(ctx context.Context) ([]domain.Transaction, error)
	ListSuspiciousTransactions(ctx context.Context) ([]domain.Transaction, error)
}

// AuthService defines the account directory operations.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.Account, error)
	Login(ctx context.Context, email, password string) (string, time.Time, *domain.Account, error)
	LookupAccount(ctx context.Context, email string) (*domain.Account, error)
}

// RegisterRequest holds validated input for account registration.
type RegisterRequest struct {
	Email    string
	Password string
	Name     string
	Role     domain.Role
	// StudentID for students; MerchantCategory (e.g. "cafe") for merchants.
	StudentID        string
	MerchantCategory string
}
