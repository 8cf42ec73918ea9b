package integration

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"campus-payment-ledger/internal/core/domain"
	"campus-payment-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Account Repo ---

type inMemoryAccountRepo struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account // keyed by email
}

func newInMemoryAccountRepo() *inMemoryAccountRepo {
	return &inMemoryAccountRepo{accounts: make(map[string]*domain.Account)}
}

func (r *inMemoryAccountRepo) Create(ctx context.Context, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[a.Email]; ok {
		return fmt.Errorf("email already exists")
	}
	cp := *a
	r.accounts[a.Email] = &cp
	return nil
}

func (r *inMemoryAccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[email]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *inMemoryAccountRepo) GetByStudentID(ctx context.Context, studentID string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.StudentID != nil && *a.StudentID == studentID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryAccountRepo) GetByMerchantID(ctx context.Context, merchantID string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.MerchantID != nil && *a.MerchantID == merchantID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryAccountRepo) List(ctx context.Context) ([]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *inMemoryAccountRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, email string, status domain.AccountStatus, blockReason *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[email]
	if !ok {
		return fmt.Errorf("account not found: %s", email)
	}
	a.Status = status
	a.BlockReason = blockReason
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// --- In-Memory Wallet Repo ---

type inMemoryWalletRepo struct {
	mu      sync.RWMutex
	wallets map[uuid.UUID]*domain.Wallet // keyed by account id
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{wallets: make(map[uuid.UUID]*domain.Wallet)}
}

func (r *inMemoryWalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *w
	r.wallets[w.AccountID] = &cp
	return nil
}

func (r *inMemoryWalletRepo) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wallets[accountID]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *inMemoryWalletRepo) GetByAccountIDForUpdate(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (*domain.Wallet, error) {
	return r.GetByAccountID(ctx, accountID)
}

func (r *inMemoryWalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, encryptedBalance string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.wallets {
		if w.ID == walletID {
			w.EncryptedBalance = encryptedBalance
			w.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return fmt.Errorf("wallet not found: %s", walletID)
}

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu   sync.RWMutex
	txns map[uuid.UUID]*domain.Transaction
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{txns: make(map[uuid.UUID]*domain.Transaction)}
}

func (r *inMemoryTransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.txns[t.ID]; ok {
		return fmt.Errorf("duplicate transaction id: %s", t.ID)
	}
	cp := *t
	r.txns[t.ID] = &cp
	return nil
}

func (r *inMemoryTransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.txns[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *inMemoryTransactionRepo) Exists(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.txns[id]
	return ok, nil
}

func (r *inMemoryTransactionRepo) MarkReversed(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.txns[id]
	if !ok || t.Status != domain.TransactionStatusCompleted {
		return apperror.ErrAlreadyReversed()
	}
	t.Status = domain.TransactionStatusReversed
	return nil
}

func (r *inMemoryTransactionRepo) SetReviewStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.ReviewStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.txns[id]
	if !ok {
		return fmt.Errorf("transaction not found: %s", id)
	}
	t.ReviewStatus = status
	return nil
}

func (r *inMemoryTransactionRepo) ListByStudent(ctx context.Context, studentID string) ([]domain.Transaction, error) {
	return r.filter(func(t *domain.Transaction) bool { return t.StudentID == studentID })
}

func (r *inMemoryTransactionRepo) ListByMerchant(ctx context.Context, merchantID string) ([]domain.Transaction, error) {
	return r.filter(func(t *domain.Transaction) bool { return t.MerchantID == merchantID })
}

func (r *inMemoryTransactionRepo) ListAll(ctx context.Context) ([]domain.Transaction, error) {
	return r.filter(func(t *domain.Transaction) bool { return true })
}

func (r *inMemoryTransactionRepo) ListNeedingReview(ctx context.Context) ([]domain.Transaction, error) {
	return r.filter(func(t *domain.Transaction) bool {
		return t.ReviewStatus == domain.ReviewStatusSuspicious || t.ReviewStatus == domain.ReviewStatusFraud
	})
}

func (r *inMemoryTransactionRepo) CountByStudentSince(ctx context.Context, studentID string, since time.Time) (int, error) {
	txns, err := r.ListByStudent(ctx, studentID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, t := range txns {
		if t.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}

func (r *inMemoryTransactionRepo) filter(keep func(*domain.Transaction) bool) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Transaction
	for _, t := range r.txns {
		if keep(t) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return strings.Compare(out[i].ID.String(), out[j].ID.String()) < 0
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// --- In-Memory Audit Repo ---

type inMemoryAuditRepo struct {
	mu      sync.RWMutex
	actions []domain.AdminAction
}

func newInMemoryAuditRepo() *inMemoryAuditRepo {
	return &inMemoryAuditRepo{}
}

func (r *inMemoryAuditRepo) Create(ctx context.Context, tx pgx.Tx, action *domain.AdminAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, *action)
	return nil
}

func (r *inMemoryAuditRepo) List(ctx context.Context) ([]domain.AdminAction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.AdminAction, len(r.actions))
	copy(out, r.actions)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// --- In-Memory Transactor ---

// inMemoryTransactor serializes whole transactions with one mutex, standing in
// for the row locks a real database would take.
type inMemoryTransactor struct {
	mu sync.Mutex
}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	return &memTx{release: &t.mu}, nil
}

// memTx is a pgx.Tx whose Commit/Rollback release the transactor lock.
type memTx struct {
	release *sync.Mutex
	once    sync.Once
}

func (t *memTx) done() {
	t.once.Do(func() { t.release.Unlock() })
}

func (t *memTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *memTx) Commit(ctx context.Context) error          { t.done(); return nil }
func (t *memTx) Rollback(ctx context.Context) error        { t.done(); return nil }
func (t *memTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *memTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *memTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *memTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *memTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *memTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *memTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *memTx) Conn() *pgx.Conn { return nil }
