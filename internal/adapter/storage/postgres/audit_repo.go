package postgres

import (
	"context"
	"fmt"

	"campus-payment-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// AuditRepo implements ports.AuditRepository: the append-only admin action
// log. There is no update or delete path.
type AuditRepo struct {
	pool Pool
}

// NewAuditRepo creates a new AuditRepo.
func NewAuditRepo(pool Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

// Create appends an admin action within a database transaction, so the action
// and the state change it records commit together.
func (r *AuditRepo) Create(ctx context.Context, tx pgx.Tx, action *domain.AdminAction) error {
	query := `INSERT INTO admin_actions (id, admin_email, action, target_email, target_transaction_id, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := tx.Exec(ctx, query,
		action.ID, action.AdminEmail, action.Action,
		action.TargetEmail, action.TargetTransactionID, action.Reason, action.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert admin action: %w", err)
	}
	return nil
}

// List returns the audit log, most recent first.
func (r *AuditRepo) List(ctx context.Context) ([]domain.AdminAction, error) {
	query := `SELECT id, admin_email, action, target_email, target_transaction_id, reason, created_at
		FROM admin_actions ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list admin actions: %w", err)
	}
	defer rows.Close()

	var actions []domain.AdminAction
	for rows.Next() {
		a := domain.AdminAction{}
		err := rows.Scan(
			&a.ID, &a.AdminEmail, &a.Action,
			&a.TargetEmail, &a.TargetTransactionID, &a.Reason, &a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan admin action row: %w", err)
		}
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate admin action rows: %w", err)
	}
	return actions, nil
}
