package postgres

import (
	"context"
	"errors"
	"fmt"

	"campus-payment-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// AccountRepo implements ports.AccountRepository.
type AccountRepo struct {
	pool Pool
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(pool Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

const accountColumns = `id, email, name, role, student_id, merchant_id, password_hash, status, block_reason, created_at, updated_at`

// Create inserts a new account into the directory.
func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	query := `INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.Email, a.Name, a.Role, a.StudentID, a.MerchantID,
		a.PasswordHash, a.Status, a.BlockReason, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// GetByEmail fetches an account by email.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return r.scanAccount(r.pool.QueryRow(ctx, query, email))
}

// GetByStudentID fetches an account by its student identifier.
func (r *AccountRepo) GetByStudentID(ctx context.Context, studentID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE student_id = $1`
	return r.scanAccount(r.pool.QueryRow(ctx, query, studentID))
}

// GetByMerchantID fetches an account by its merchant identifier.
func (r *AccountRepo) GetByMerchantID(ctx context.Context, merchantID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE merchant_id = $1`
	return r.scanAccount(r.pool.QueryRow(ctx, query, merchantID))
}

// List returns the full directory ordered by creation time.
func (r *AccountRepo) List(ctx context.Context) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		a := domain.Account{}
		err := rows.Scan(
			&a.ID, &a.Email, &a.Name, &a.Role, &a.StudentID, &a.MerchantID,
			&a.PasswordHash, &a.Status, &a.BlockReason, &a.CreatedAt, &a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan account row: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate account rows: %w", err)
	}
	return accounts, nil
}

// UpdateStatus flips an account's status within a database transaction so the
// flip and its audit entry commit together.
func (r *AccountRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, email string, status domain.AccountStatus, blockReason *string) error {
	query := `UPDATE accounts SET status = $1, block_reason = $2, updated_at = NOW() WHERE email = $3`

	tag, err := tx.Exec(ctx, query, status, blockReason, email)
	if err != nil {
		return fmt.Errorf("update account status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account not found: %s", email)
	}
	return nil
}

func (r *AccountRepo) scanAccount(row pgx.Row) (*domain.Account, error) {
	a := &domain.Account{}
	err := row.Scan(
		&a.ID, &a.Email, &a.Name, &a.Role, &a.StudentID, &a.MerchantID,
		&a.PasswordHash, &a.Status, &a.BlockReason, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}
	return a, nil
}
