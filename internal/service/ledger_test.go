package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"campus-payment-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWalletRepo records balance writes; the pgx.Tx argument is ignored.
type fakeWalletRepo struct {
	wallets map[uuid.UUID]*domain.Wallet
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{wallets: make(map[uuid.UUID]*domain.Wallet)}
}

func (r *fakeWalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	r.wallets[w.ID] = w
	return nil
}

func (r *fakeWalletRepo) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*domain.Wallet, error) {
	for _, w := range r.wallets {
		if w.AccountID == accountID {
			return w, nil
		}
	}
	return nil, nil
}

func (r *fakeWalletRepo) GetByAccountIDForUpdate(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (*domain.Wallet, error) {
	return r.GetByAccountID(ctx, accountID)
}

func (r *fakeWalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, encryptedBalance string) error {
	r.wallets[walletID].EncryptedBalance = encryptedBalance
	return nil
}

func newTestLedger(t *testing.T) (*WalletLedger, *fakeWalletRepo, *AESEncryptionService) {
	t.Helper()
	encSvc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)
	repo := newFakeWalletRepo()
	return NewWalletLedger(repo, encSvc), repo, encSvc
}

func seedWallet(t *testing.T, repo *fakeWalletRepo, encSvc *AESEncryptionService, balance int64) *domain.Wallet {
	t.Helper()
	enc, err := encSvc.Encrypt(strconv.FormatInt(balance, 10))
	require.NoError(t, err)
	w := &domain.Wallet{
		ID:               uuid.New(),
		AccountID:        uuid.New(),
		EncryptedBalance: enc,
		CreatedAt:        time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), w))
	return w
}

func TestLedger_DebitAndCredit(t *testing.T) {
	ledger, repo, encSvc := newTestLedger(t)
	w := seedWallet(t, repo, encSvc, 1000)
	ctx := context.Background()

	newBalance, err := ledger.Debit(ctx, nil, w, 300)
	require.NoError(t, err)
	assert.Equal(t, int64(700), newBalance)

	// The wallet row was rewritten; re-read through the repo.
	reloaded, err := repo.GetByAccountID(ctx, w.AccountID)
	require.NoError(t, err)
	balance, err := ledger.Balance(reloaded)
	require.NoError(t, err)
	assert.Equal(t, int64(700), balance)

	newBalance, err = ledger.Credit(ctx, nil, reloaded, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(750), newBalance)
}

func TestLedger_DebitInsufficientFunds(t *testing.T) {
	ledger, repo, encSvc := newTestLedger(t)
	w := seedWallet(t, repo, encSvc, 100)

	_, err := ledger.Debit(context.Background(), nil, w, 101)
	assertAppError(t, err, "PAY_003")

	// No partial write.
	balance, err := ledger.Balance(w)
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance)
}

func TestLedger_RejectsNonPositiveAmounts(t *testing.T) {
	ledger, repo, encSvc := newTestLedger(t)
	w := seedWallet(t, repo, encSvc, 100)
	ctx := context.Background()

	_, err := ledger.Debit(ctx, nil, w, 0)
	assertAppError(t, err, "PAY_001")
	_, err = ledger.Debit(ctx, nil, w, -5)
	assertAppError(t, err, "PAY_001")
	_, err = ledger.Credit(ctx, nil, w, 0)
	assertAppError(t, err, "PAY_001")
}

func TestLedger_BalanceRejectsTamperedCiphertext(t *testing.T) {
	ledger, repo, encSvc := newTestLedger(t)
	w := seedWallet(t, repo, encSvc, 100)
	w.EncryptedBalance = "deadbeef" + w.EncryptedBalance[8:]

	_, err := ledger.Balance(w)
	assert.Error(t, err)
}
