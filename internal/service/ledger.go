package service

import (
	"context"
	"fmt"
	"strconv"

	"campus-payment-ledger/internal/core/domain"
	"campus-payment-ledger/internal/core/ports"
	"campus-payment-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WalletLedger owns the balance arithmetic. Debit and Credit are the only code
// paths that change a balance; both operate on wallet rows the caller has
// already locked FOR UPDATE inside dbTx, so settlement and reversal share one
// invariant-preserving path.
type WalletLedger struct {
	walletRepo ports.WalletRepository
	encSvc     ports.EncryptionService
}

// NewWalletLedger creates the ledger primitives.
func NewWalletLedger(walletRepo ports.WalletRepository, encSvc ports.EncryptionService) *WalletLedger {
	return &WalletLedger{walletRepo: walletRepo, encSvc: encSvc}
}

// Balance decrypts the current balance of a wallet row.
func (l *WalletLedger) Balance(wallet *domain.Wallet) (int64, error) {
	balanceStr, err := l.encSvc.Decrypt(wallet.EncryptedBalance)
	if err != nil {
		return 0, apperror.ErrEncryptionFailure(fmt.Errorf("decrypt balance: %w", err))
	}
	balance, err := strconv.ParseInt(balanceStr, 10, 64)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("parse balance: %w", err))
	}
	return balance, nil
}

// Debit subtracts amount from a locked wallet row. Returns the new balance.
// Insufficient funds is authoritative here: no partial state is written.
func (l *WalletLedger) Debit(ctx context.Context, dbTx pgx.Tx, wallet *domain.Wallet, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, apperror.ErrInvalidAmount()
	}
	balance, err := l.Balance(wallet)
	if err != nil {
		return 0, err
	}
	if balance < amount {
		return 0, apperror.ErrInsufficientFunds()
	}
	newBalance := balance - amount
	if err := l.writeBalance(ctx, dbTx, wallet.ID, newBalance); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// Credit adds amount to a locked wallet row. Returns the new balance.
func (l *WalletLedger) Credit(ctx context.Context, dbTx pgx.Tx, wallet *domain.Wallet, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, apperror.ErrInvalidAmount()
	}
	balance, err := l.Balance(wallet)
	if err != nil {
		return 0, err
	}
	newBalance := balance + amount
	if err := l.writeBalance(ctx, dbTx, wallet.ID, newBalance); err != nil {
		return 0, err
	}
	return newBalance, nil
}

func (l *WalletLedger) writeBalance(ctx context.Context, dbTx pgx.Tx, walletID uuid.UUID, balance int64) error {
	enc, err := l.encSvc.Encrypt(strconv.FormatInt(balance, 10))
	if err != nil {
		return apperror.ErrEncryptionFailure(fmt.Errorf("encrypt new balance: %w", err))
	}
	if err := l.walletRepo.UpdateBalance(ctx, dbTx, walletID, enc); err != nil {
		return apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}
	return nil
}

// lockWalletsOrdered locks two wallet rows FOR UPDATE in ascending id order so
// concurrent settlements touching the same pair cannot deadlock.
func lockWalletsOrdered(ctx context.Context, dbTx pgx.Tx, walletRepo ports.WalletRepository, firstAccount, secondAccount uuid.UUID) (*domain.Wallet, *domain.Wallet, error) {
	a, b := firstAccount, secondAccount
	swapped := false
	if b.String() < a.String() {
		a, b = b, a
		swapped = true
	}

	wa, err := walletRepo.GetByAccountIDForUpdate(ctx, dbTx, a)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wa == nil {
		return nil, nil, apperror.ErrNotFound("wallet")
	}
	wb, err := walletRepo.GetByAccountIDForUpdate(ctx, dbTx, b)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wb == nil {
		return nil, nil, apperror.ErrNotFound("wallet")
	}

	if swapped {
		return wb, wa, nil
	}
	return wa, wb, nil
}
