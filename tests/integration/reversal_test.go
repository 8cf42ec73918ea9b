package integration

import (
	"context"
	"testing"
	"time"

	"campus-payment-ledger/internal/core/domain"
	"campus-payment-ledger/internal/service"
	"campus-payment-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// A merchant can spend down below the net it received for an old payment (for
// example after other reversals). Reversing that payment must then refuse
// without touching the original, either balance, or the audit log.
func TestReverseTransactionInsufficientMerchantFunds(t *testing.T) {
	ctx := context.Background()

	accountRepo := newInMemoryAccountRepo()
	walletRepo := newInMemoryWalletRepo()
	txRepo := newInMemoryTransactionRepo()
	auditRepo := newInMemoryAuditRepo()
	transactor := newInMemoryTransactor()

	encSvc, err := service.NewAESEncryptionService(testAESKey)
	require.NoError(t, err)
	ledger := service.NewWalletLedger(walletRepo, encSvc)
	adminSvc := service.NewAdminService(accountRepo, walletRepo, txRepo, auditRepo, ledger, transactor, testPaymentConfig(), zerolog.Nop())

	now := time.Now().UTC()
	sid, mid := "S3001", "CAFE_01"
	student := &domain.Account{
		ID: uuid.New(), Email: "quinn@campus.edu", Name: "Quinn",
		Role: domain.RoleStudent, StudentID: &sid,
		Status: domain.AccountStatusActive, CreatedAt: now, UpdatedAt: now,
	}
	merchant := &domain.Account{
		ID: uuid.New(), Email: "cafe@campus.edu", Name: "Campus Cafe",
		Role: domain.RoleMerchant, MerchantID: &mid,
		Status: domain.AccountStatusActive, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, accountRepo.Create(ctx, student))
	require.NoError(t, accountRepo.Create(ctx, merchant))

	seedWallet := func(accountID uuid.UUID, balance string) {
		enc, err := encSvc.Encrypt(balance)
		require.NoError(t, err)
		require.NoError(t, walletRepo.Create(ctx, &domain.Wallet{
			ID: uuid.New(), AccountID: accountID, EncryptedBalance: enc,
			CreatedAt: now, UpdatedAt: now,
		}))
	}
	seedWallet(student.ID, "700")
	// Below the 294 net of the 300 payment being reversed.
	seedWallet(merchant.ID, "100")

	original := &domain.Transaction{
		ID: uuid.New(), Type: domain.TransactionTypePayment, Amount: 300,
		StudentID: sid, MerchantID: mid,
		Status: domain.TransactionStatusCompleted, ReviewStatus: domain.ReviewStatusClean,
		CreatedAt: now,
	}
	require.NoError(t, txRepo.Create(ctx, nil, original))

	_, err = adminSvc.ReverseTransaction(ctx, "admin@campus.edu", original.ID, "disputed charge")
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "ADM_003", appErr.Code)

	// The original is still a completed payment.
	stored, err := txRepo.GetByID(ctx, original.ID)
	require.NoError(t, err)
	require.Equal(t, domain.TransactionStatusCompleted, stored.Status)

	// Neither balance moved.
	balance := func(accountID uuid.UUID) int64 {
		w, err := walletRepo.GetByAccountID(ctx, accountID)
		require.NoError(t, err)
		b, err := ledger.Balance(w)
		require.NoError(t, err)
		return b
	}
	require.Equal(t, int64(700), balance(student.ID))
	require.Equal(t, int64(100), balance(merchant.ID))

	// No reversal record, no audit entry.
	all, err := txRepo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	audit, err := auditRepo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, audit)
}
