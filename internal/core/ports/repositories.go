package ports

import (
	"context"
	"time"

	"campus-payment-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AccountRepository defines persistence operations for the account directory.
// Methods accepting pgx.Tx run inside a transaction so that a status flip and
// its audit entry commit together.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByStudentID(ctx context.Context, studentID string) (*domain.Account, error)
	GetByMerchantID(ctx context.Context, merchantID string) (*domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, email string, status domain.AccountStatus, blockReason *string) error
}

// WalletRepository defines persistence operations for wallets.
// The ForUpdate variant is used inside transaction blocks for pessimistic locking.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (*domain.Wallet, error)
	GetByAccountIDForUpdate(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (*domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, encryptedBalance string) error
}

// TransactionRepository defines persistence operations for the global
// transaction index. Per-wallet history is the index filtered by student or
// merchant identifier, most recent first.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	// Exists checks for a transaction id inside the settlement transaction;
	// together with the primary key it provides replay protection.
	Exists(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error)
	// MarkReversed flips a completed payment to reversed. It fails when the
	// transaction is absent or not currently completed, which makes a
	// concurrent double-reverse lose cleanly.
	MarkReversed(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	SetReviewStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.ReviewStatus) error
	ListByStudent(ctx context.Context, studentID string) ([]domain.Transaction, error)
	ListByMerchant(ctx context.Context, merchantID string) ([]domain.Transaction, error)
	ListAll(ctx context.Context) ([]domain.Transaction, error)
	ListNeedingReview(ctx context.Context) ([]domain.Transaction, error)
	CountByStudentSince(ctx context.Context, studentID string, since time.Time) (int, error)
}

// AuditRepository persists the append-only admin action log.
type AuditRepository interface {
	Create(ctx context.Context, tx pgx.Tx, action *domain.AdminAction) error
	List(ctx context.Context) ([]domain.AdminAction, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
