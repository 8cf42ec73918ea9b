package service

import (
	"context"
	"fmt"

	"campus-payment-ledger/internal/core/domain"
	"campus-payment-ledger/internal/core/ports"
	"campus-payment-ledger/pkg/apperror"
)

// ReportingServiceImpl implements ports.ReportingService. Read-only views over
// the ledger; no method here ever changes state.
type ReportingServiceImpl struct {
	accountRepo ports.AccountRepository
	walletRepo  ports.WalletRepository
	txRepo      ports.TransactionRepository
	ledger      *WalletLedger
}

// NewReportingService creates a new ReportingServiceImpl.
func NewReportingService(
	accountRepo ports.AccountRepository,
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	ledger *WalletLedger,
) *ReportingServiceImpl {
	return &ReportingServiceImpl{
		accountRepo: accountRepo,
		walletRepo:  walletRepo,
		txRepo:      txRepo,
		ledger:      ledger,
	}
}

// GetWalletBalance returns the decrypted balance for an account.
func (s *ReportingServiceImpl) GetWalletBalance(ctx context.Context, email string) (int64, error) {
	account, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return 0, apperror.ErrNotFound("account")
	}

	wallet, err := s.walletRepo.GetByAccountID(ctx, account.ID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return 0, apperror.ErrNotFound("wallet")
	}

	return s.ledger.Balance(wallet)
}

// ListTransactions returns the account's side of the ledger, most recent
// first. Students see entries keyed by their student id, merchants by their
// merchant id.
func (s *ReportingServiceImpl) ListTransactions(ctx context.Context, email string) ([]domain.Transaction, error) {
	account, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrNotFound("account")
	}

	switch account.Role {
	case domain.RoleStudent:
		txns, err := s.txRepo.ListByStudent(ctx, account.BusinessID())
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
		}
		return txns, nil
	case domain.RoleMerchant:
		txns, err := s.txRepo.ListByMerchant(ctx, account.BusinessID())
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
		}
		return txns, nil
	default:
		return nil, apperror.ErrForbidden()
	}
}

// ListAllTransactions returns the global transaction index for the admin view.
func (s *ReportingServiceImpl) ListAllTransactions(ctx context.Context) ([]domain.Transaction, error) {
	txns, err := s.txRepo.ListAll(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}
	return txns, nil
}

// ListSuspiciousTransactions returns transactions flagged suspicious or fraud.
func (s *ReportingServiceImpl) ListSuspiciousTransactions(ctx context.Context) ([]domain.Transaction, error) {
	txns, err := s.txRepo.ListNeedingReview(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list flagged transactions: %w", err))
	}
	return txns, nil
}
