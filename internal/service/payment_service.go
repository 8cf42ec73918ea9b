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
	"github.com/rs/zerolog"
)

// PaymentServiceImpl implements ports.PaymentService: token issue, redemption
// with all-or-nothing settlement, and wallet recharge.
type PaymentServiceImpl struct {
	accountRepo ports.AccountRepository
	walletRepo  ports.WalletRepository
	txRepo      ports.TransactionRepository
	ledger      *WalletLedger
	qrTokenSvc  ports.QRTokenService
	riskScorer  ports.RiskScorer
	replayStore ports.TokenReplayStore
	transactor  ports.DBTransactor
	paymentCfg  config.PaymentConfig
	tokenTTL    time.Duration
	log         zerolog.Logger
	now         func() time.Time
}

// NewPaymentService creates a new PaymentServiceImpl.
func NewPaymentService(
	accountRepo ports.AccountRepository,
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	ledger *WalletLedger,
	qrTokenSvc ports.QRTokenService,
	riskScorer ports.RiskScorer,
	replayStore ports.TokenReplayStore,
	transactor ports.DBTransactor,
	paymentCfg config.PaymentConfig,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *PaymentServiceImpl {
	return &PaymentServiceImpl{
		accountRepo: accountRepo,
		walletRepo:  walletRepo,
		txRepo:      txRepo,
		ledger:      ledger,
		qrTokenSvc:  qrTokenSvc,
		riskScorer:  riskScorer,
		replayStore: replayStore,
		transactor:  transactor,
		paymentCfg:  paymentCfg,
		tokenTTL:    tokenTTL,
		log:         log,
		now:         time.Now,
	}
}

// IssueToken creates a signed, merchant-bound payment token for the student.
// The token is never persisted; its transaction id becomes the settlement id
// on redemption, which is what makes replays detectable.
func (s *PaymentServiceImpl) IssueToken(ctx context.Context, studentEmail string, merchantID string, amount int64) (*domain.PaymentToken, string, error) {
	if amount <= 0 {
		return nil, "", apperror.ErrInvalidAmount()
	}

	student, err := s.activeAccount(ctx, studentEmail, domain.RoleStudent)
	if err != nil {
		return nil, "", err
	}

	merchant, err := s.accountRepo.GetByMerchantID(ctx, merchantID)
	if err != nil {
		return nil, "", apperror.InternalError(fmt.Errorf("get merchant: %w", err))
	}
	if merchant == nil {
		return nil, "", apperror.ErrNotFound("merchant")
	}
	if !merchant.IsActive() {
		return nil, "", apperror.ErrAccountBlocked()
	}

	// The student must be able to cover the amount at issue time. Redemption
	// re-checks under the wallet lock; this is just early feedback.
	wallet, err := s.walletRepo.GetByAccountID(ctx, student.ID)
	if err != nil {
		return nil, "", apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, "", apperror.ErrNotFound("wallet")
	}
	balance, err := s.ledger.Balance(wallet)
	if err != nil {
		return nil, "", err
	}
	if balance < amount {
		return nil, "", apperror.ErrInsufficientFunds()
	}

	token := &domain.PaymentToken{
		TransactionID: uuid.New(),
		StudentID:     student.BusinessID(),
		MerchantID:    merchantID,
		Amount:        amount,
		IssuedAt:      s.now().UTC(),
	}
	signed, err := s.qrTokenSvc.Sign(token)
	if err != nil {
		return nil, "", apperror.InternalError(fmt.Errorf("sign token: %w", err))
	}

	s.log.Info().
		Str("transaction_id", token.TransactionID.String()).
		Str("student_id", token.StudentID).
		Str("merchant_id", merchantID).
		Int64("amount", amount).
		Msg("payment token issued")

	return token, signed, nil
}

// RedeemToken settles a payment token presented by a merchant. The settlement
// is all-or-nothing: student debit, merchant credit and the transaction record
// commit in one database transaction with both wallet rows locked. A token is
// consumed the first time its bound merchant presents it; every later
// presentation is rejected as a duplicate, never re-settled.
func (s *PaymentServiceImpl) RedeemToken(ctx context.Context, signedToken string, redeemingMerchantID string) (*domain.Transaction, error) {
	now := s.now().UTC()

	token, err := s.qrTokenSvc.Verify(signedToken, now)
	if err != nil {
		return nil, err
	}
	if token.MerchantID != redeemingMerchantID {
		return nil, apperror.ErrWrongMerchant()
	}

	txnID := token.TransactionID.String()

	// Fast path: SET NX consumes the token atomically, so of N concurrent
	// presentations exactly one proceeds. On store failure we fall through;
	// the duplicate check inside the transaction stays authoritative.
	fresh, err := s.replayStore.MarkConsumed(ctx, txnID, s.tokenTTL+time.Minute)
	if err != nil {
		s.log.Warn().Err(err).Str("transaction_id", txnID).Msg("replay store unavailable, falling through to DB")
	} else if !fresh {
		return nil, apperror.ErrDuplicateTransaction()
	}

	student, err := s.accountRepo.GetByStudentID(ctx, token.StudentID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get student: %w", err))
	}
	if student == nil {
		return nil, apperror.ErrNotFound("student")
	}
	if !student.IsActive() {
		return nil, apperror.ErrAccountBlocked()
	}

	merchant, err := s.accountRepo.GetByMerchantID(ctx, token.MerchantID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get merchant: %w", err))
	}
	if merchant == nil {
		return nil, apperror.ErrNotFound("merchant")
	}
	if !merchant.IsActive() {
		return nil, apperror.ErrAccountBlocked()
	}

	// Risk scoring reads outside the critical section; the score is a pure
	// function of inputs gathered here.
	windowStart := now.Add(-s.riskScorer.BurstWindow())
	recent, err := s.txRepo.CountByStudentSince(ctx, token.StudentID, windowStart)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("count recent transactions: %w", err))
	}
	score, flags := s.riskScorer.Score(recent, token.Amount, student.CreatedAt, now)
	review := s.riskScorer.Classify(score)

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Authoritative duplicate check, inside the transaction. The primary key
	// on the transaction id is the backstop for races past this point.
	exists, err := s.txRepo.Exists(ctx, dbTx, token.TransactionID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("duplicate check: %w", err))
	}
	if exists {
		return nil, apperror.ErrDuplicateTransaction()
	}

	studentWallet, merchantWallet, err := lockWalletsOrdered(ctx, dbTx, s.walletRepo, student.ID, merchant.ID)
	if err != nil {
		return nil, err
	}

	if _, err := s.ledger.Debit(ctx, dbTx, studentWallet, token.Amount); err != nil {
		return nil, err
	}
	merchantNet := domain.MerchantNet(token.Amount, s.paymentCfg.FeeBps)
	if _, err := s.ledger.Credit(ctx, dbTx, merchantWallet, merchantNet); err != nil {
		return nil, err
	}

	txn := &domain.Transaction{
		ID:           token.TransactionID,
		Type:         domain.TransactionTypePayment,
		Amount:       token.Amount,
		StudentID:    token.StudentID,
		MerchantID:   token.MerchantID,
		Status:       domain.TransactionStatusCompleted,
		RiskScore:    score,
		RiskFlags:    flags,
		ReviewStatus: review,
		CreatedAt:    now,
	}
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("transaction_id", txnID).
		Str("student_id", token.StudentID).
		Str("merchant_id", token.MerchantID).
		Int64("amount", token.Amount).
		Int64("merchant_net", merchantNet).
		Int("risk_score", score).
		Str("review_status", string(review)).
		Msg("payment settled")

	return txn, nil
}

// Recharge credits a student wallet from an external source. Recharges are
// whole transactions in the same index as payments, with no merchant side.
func (s *PaymentServiceImpl) Recharge(ctx context.Context, studentEmail string, amount int64) (*domain.Transaction, error) {
	if amount < s.paymentCfg.RechargeMin || amount > s.paymentCfg.RechargeMax {
		return nil, apperror.ErrRechargeOutOfRange(s.paymentCfg.RechargeMin, s.paymentCfg.RechargeMax)
	}

	student, err := s.activeAccount(ctx, studentEmail, domain.RoleStudent)
	if err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByAccountIDForUpdate(ctx, dbTx, student.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	if _, err := s.ledger.Credit(ctx, dbTx, wallet, amount); err != nil {
		return nil, err
	}

	txn := &domain.Transaction{
		ID:           uuid.New(),
		Type:         domain.TransactionTypeRecharge,
		Amount:       amount,
		StudentID:    student.BusinessID(),
		MerchantID:   domain.RechargeMerchantID,
		Status:       domain.TransactionStatusCompleted,
		ReviewStatus: domain.ReviewStatusClean,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("transaction_id", txn.ID.String()).
		Str("student_id", txn.StudentID).
		Int64("amount", amount).
		Msg("wallet recharged")

	return txn, nil
}

func (s *PaymentServiceImpl) activeAccount(ctx context.Context, email string, role domain.Role) (*domain.Account, error) {
	account, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrNotFound("account")
	}
	if account.Role != role {
		return nil, apperror.ErrForbidden()
	}
	if !account.IsActive() {
		return nil, apperror.ErrAccountBlocked()
	}
	return account, nil
}
