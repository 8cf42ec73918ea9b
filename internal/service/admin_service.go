package service

import (
	"context"
	"fmt"
	"time"

	"campus-payment-ledger/config"
	"campus-payment-ledger/internal/core/domain"
	"campus-payment-ledger/internal/core/ports"
	"campus-payment-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// AdminServiceImpl implements ports.AdminService. Every successful operation
// appends exactly one audit entry; for reversal the entry commits in the same
// database transaction as the ledger movements.
type AdminServiceImpl struct {
	accountRepo ports.AccountRepository
	walletRepo  ports.WalletRepository
	txRepo      ports.TransactionRepository
	auditRepo   ports.AuditRepository
	ledger      *WalletLedger
	transactor  ports.DBTransactor
	paymentCfg  config.PaymentConfig
	log         zerolog.Logger
	now         func() time.Time
}

// NewAdminService creates a new AdminServiceImpl.
func NewAdminService(
	accountRepo ports.AccountRepository,
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	auditRepo ports.AuditRepository,
	ledger *WalletLedger,
	transactor ports.DBTransactor,
	paymentCfg config.PaymentConfig,
	log zerolog.Logger,
) *AdminServiceImpl {
	return &AdminServiceImpl{
		accountRepo: accountRepo,
		walletRepo:  walletRepo,
		txRepo:      txRepo,
		auditRepo:   auditRepo,
		ledger:      ledger,
		transactor:  transactor,
		paymentCfg:  paymentCfg,
		log:         log,
		now:         time.Now,
	}
}

// BlockUser flips an account to blocked. Blocking freezes activity, never
// funds: the wallet and history are untouched.
func (s *AdminServiceImpl) BlockUser(ctx context.Context, adminEmail, targetEmail, reason string) error {
	return s.setAccountStatus(ctx, adminEmail, targetEmail, domain.AccountStatusBlocked, &reason, domain.AdminActionBlockUser)
}

// UnblockUser flips a blocked account back to active.
func (s *AdminServiceImpl) UnblockUser(ctx context.Context, adminEmail, targetEmail string) error {
	return s.setAccountStatus(ctx, adminEmail, targetEmail, domain.AccountStatusActive, nil, domain.AdminActionUnblockUser)
}

func (s *AdminServiceImpl) setAccountStatus(ctx context.Context, adminEmail, targetEmail string, status domain.AccountStatus, reason *string, actionType domain.AdminActionType) error {
	target, err := s.accountRepo.GetByEmail(ctx, targetEmail)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if target == nil {
		return apperror.ErrNotFound("account")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.accountRepo.UpdateStatus(ctx, dbTx, targetEmail, status, reason); err != nil {
		return apperror.InternalError(fmt.Errorf("update status: %w", err))
	}

	auditReason := ""
	if reason != nil {
		auditReason = *reason
	}
	if err := s.appendAudit(ctx, dbTx, actionType, adminEmail, &targetEmail, nil, auditReason); err != nil {
		return err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("action", string(actionType)).
		Str("admin", adminEmail).
		Str("target", targetEmail).
		Msg("account status changed")
	return nil
}

// ReverseTransaction undoes a settled payment: student refunded the gross
// amount, merchant debited the net it received, the original flipped to
// reversed and a companion reversal transaction appended. All five writes
// (two balances, status flip, reversal record, audit entry) commit atomically.
func (s *AdminServiceImpl) ReverseTransaction(ctx context.Context, adminEmail string, transactionID uuid.UUID, reason string) (*domain.Transaction, error) {
	original, err := s.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get transaction: %w", err))
	}
	if original == nil {
		return nil, apperror.ErrNotFound("transaction")
	}
	if original.Status == domain.TransactionStatusReversed {
		return nil, apperror.ErrAlreadyReversed()
	}
	if !original.IsReversible() {
		return nil, apperror.ErrNotReversible()
	}

	student, err := s.accountRepo.GetByStudentID(ctx, original.StudentID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get student: %w", err))
	}
	if student == nil {
		return nil, apperror.ErrNotFound("student")
	}
	merchant, err := s.accountRepo.GetByMerchantID(ctx, original.MerchantID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get merchant: %w", err))
	}
	if merchant == nil {
		return nil, apperror.ErrNotFound("merchant")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	studentWallet, merchantWallet, err := lockWalletsOrdered(ctx, dbTx, s.walletRepo, student.ID, merchant.ID)
	if err != nil {
		return nil, err
	}

	// The merchant must still hold the net it received; checked under the
	// wallet lock and before any write so a refusal mutates nothing.
	merchantNet := domain.MerchantNet(original.Amount, s.paymentCfg.FeeBps)
	merchantBalance, err := s.ledger.Balance(merchantWallet)
	if err != nil {
		return nil, err
	}
	if merchantBalance < merchantNet {
		return nil, apperror.ErrInsufficientMerchantFunds()
	}

	// Flip the original before moving money: a concurrent reverse of the same
	// transaction loses here and rolls back before any balance moves.
	if err := s.txRepo.MarkReversed(ctx, dbTx, original.ID); err != nil {
		return nil, err
	}

	if _, err := s.ledger.Debit(ctx, dbTx, merchantWallet, merchantNet); err != nil {
		return nil, err
	}
	if _, err := s.ledger.Credit(ctx, dbTx, studentWallet, original.Amount); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	reversal := &domain.Transaction{
		ID:                  uuid.New(),
		Type:                domain.TransactionTypeReversal,
		Amount:              original.Amount,
		StudentID:           original.StudentID,
		MerchantID:          original.MerchantID,
		Status:              domain.TransactionStatusCompleted,
		ReviewStatus:        domain.ReviewStatusClean,
		ParentTransactionID: &original.ID,
		ReversalReason:      &reason,
		CreatedAt:           now,
	}
	if err := s.txRepo.Create(ctx, dbTx, reversal); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create reversal: %w", err))
	}

	if err := s.appendAudit(ctx, dbTx, domain.AdminActionReverseTransaction, adminEmail, nil, &original.ID, reason); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("transaction_id", original.ID.String()).
		Str("reversal_id", reversal.ID.String()).
		Str("admin", adminEmail).
		Int64("amount", original.Amount).
		Int64("merchant_net", merchantNet).
		Msg("transaction reversed")

	return reversal, nil
}

// MarkFraud sets a transaction's review status to fraud. Settlement state and
// balances are untouched; a reversal is a separate decision.
func (s *AdminServiceImpl) MarkFraud(ctx context.Context, adminEmail string, transactionID uuid.UUID) error {
	return s.setReviewStatus(ctx, adminEmail, transactionID, domain.ReviewStatusFraud, domain.AdminActionMarkFraud)
}

// ClearFraud sets a transaction's review status back to clean.
func (s *AdminServiceImpl) ClearFraud(ctx context.Context, adminEmail string, transactionID uuid.UUID) error {
	return s.setReviewStatus(ctx, adminEmail, transactionID, domain.ReviewStatusClean, domain.AdminActionClearFraud)
}

func (s *AdminServiceImpl) setReviewStatus(ctx context.Context, adminEmail string, transactionID uuid.UUID, status domain.ReviewStatus, actionType domain.AdminActionType) error {
	txn, err := s.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get transaction: %w", err))
	}
	if txn == nil {
		return apperror.ErrNotFound("transaction")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.txRepo.SetReviewStatus(ctx, dbTx, transactionID, status); err != nil {
		return apperror.InternalError(fmt.Errorf("set review status: %w", err))
	}
	if err := s.appendAudit(ctx, dbTx, actionType, adminEmail, nil, &transactionID, ""); err != nil {
		return err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("action", string(actionType)).
		Str("admin", adminEmail).
		Str("transaction_id", transactionID.String()).
		Msg("review status changed")
	return nil
}

// ListAccounts returns the full directory for the admin view.
func (s *AdminServiceImpl) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accountRepo.List(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list accounts: %w", err))
	}
	return accounts, nil
}

// ListAuditLog returns the append-only admin action log, most recent first.
func (s *AdminServiceImpl) ListAuditLog(ctx context.Context) ([]domain.AdminAction, error) {
	actions, err := s.auditRepo.List(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list audit log: %w", err))
	}
	return actions, nil
}

func (s *AdminServiceImpl) appendAudit(ctx context.Context, dbTx pgx.Tx, actionType domain.AdminActionType, adminEmail string, targetEmail *string, targetTxnID *uuid.UUID, reason string) error {
	action := &domain.AdminAction{
		ID:                  uuid.New(),
		AdminEmail:          adminEmail,
		Action:              actionType,
		TargetEmail:         targetEmail,
		TargetTransactionID: targetTxnID,
		Reason:              reason,
		CreatedAt:           s.now().UTC(),
	}
	if err := s.auditRepo.Create(ctx, dbTx, action); err != nil {
		return apperror.InternalError(fmt.Errorf("append audit entry: %w", err))
	}
	return nil
}
