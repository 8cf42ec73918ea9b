package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campus-payment-ledger/internal/core/domain"
	"campus-payment-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository over the global
// transaction index. Rows are append-only except for the status flip on
// reversal and the review status.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

const transactionColumns = `id, type, amount, student_id, merchant_id, status, risk_score, risk_flags,
		review_status, parent_transaction_id, reversal_reason, created_at`

// Create inserts a transaction within a database transaction. The primary key
// on id is the final backstop against duplicate settlement.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.Type, t.Amount, t.StudentID, t.MerchantID, t.Status,
		t.RiskScore, t.RiskFlags, t.ReviewStatus,
		t.ParentTransactionID, t.ReversalReason, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID fetches a transaction by UUID.
func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	return scanTransaction(r.pool.QueryRow(ctx, query, id))
}

// Exists checks for a transaction id inside the settlement transaction.
func (r *TransactionRepo) Exists(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM transactions WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check transaction exists: %w", err)
	}
	return exists, nil
}

// MarkReversed flips a completed payment to reversed. The status guard in the
// WHERE clause makes a concurrent double-reverse lose cleanly: the second
// UPDATE matches zero rows.
func (r *TransactionRepo) MarkReversed(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	query := `UPDATE transactions SET status = $1 WHERE id = $2 AND status = $3`

	tag, err := tx.Exec(ctx, query, domain.TransactionStatusReversed, id, domain.TransactionStatusCompleted)
	if err != nil {
		return fmt.Errorf("mark transaction reversed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.ErrAlreadyReversed()
	}
	return nil
}

// SetReviewStatus updates a transaction's review status within a transaction.
func (r *TransactionRepo) SetReviewStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.ReviewStatus) error {
	query := `UPDATE transactions SET review_status = $1 WHERE id = $2`

	tag, err := tx.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("set review status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction not found: %s", id)
	}
	return nil
}

// ListByStudent returns the student's side of the ledger, most recent first.
func (r *TransactionRepo) ListByStudent(ctx context.Context, studentID string) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE student_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, studentID)
}

// ListByMerchant returns the merchant's side of the ledger, most recent first.
func (r *TransactionRepo) ListByMerchant(ctx context.Context, merchantID string) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE merchant_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, merchantID)
}

// ListAll returns the global transaction index, most recent first.
func (r *TransactionRepo) ListAll(ctx context.Context) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions ORDER BY created_at DESC`
	return r.list(ctx, query)
}

// ListNeedingReview returns suspicious and fraud-marked transactions.
func (r *TransactionRepo) ListNeedingReview(ctx context.Context) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE review_status IN ($1, $2) ORDER BY created_at DESC`
	return r.list(ctx, query, domain.ReviewStatusSuspicious, domain.ReviewStatusFraud)
}

// CountByStudentSince counts a student's ledger entries after a cutoff.
func (r *TransactionRepo) CountByStudentSince(ctx context.Context, studentID string, since time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM transactions WHERE student_id = $1 AND created_at > $2`,
		studentID, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return count, nil
}

func (r *TransactionRepo) list(ctx context.Context, query string, args ...any) ([]domain.Transaction, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t := domain.Transaction{}
		err := rows.Scan(
			&t.ID, &t.Type, &t.Amount, &t.StudentID, &t.MerchantID, &t.Status,
			&t.RiskScore, &t.RiskFlags, &t.ReviewStatus,
			&t.ParentTransactionID, &t.ReversalReason, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := row.Scan(
		&t.ID, &t.Type, &t.Amount, &t.StudentID, &t.MerchantID, &t.Status,
		&t.RiskScore, &t.RiskFlags, &t.ReviewStatus,
		&t.ParentTransactionID, &t.ReversalReason, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return t, nil
}
