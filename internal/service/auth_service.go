package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"campus-payment-ledger/internal/core/domain"
	"campus-payment-ledger/internal/core/ports"
	"campus-payment-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AuthServiceImpl implements ports.AuthService: the account directory.
type AuthServiceImpl struct {
	accountRepo ports.AccountRepository
	walletRepo  ports.WalletRepository
	hashSvc     ports.HashService
	tokenSvc    ports.TokenService
	encSvc      ports.EncryptionService
	log         zerolog.Logger
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	accountRepo ports.AccountRepository,
	walletRepo ports.WalletRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
	encSvc ports.EncryptionService,
	log zerolog.Logger,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		accountRepo: accountRepo,
		walletRepo:  walletRepo,
		hashSvc:     hashSvc,
		tokenSvc:    tokenSvc,
		encSvc:      encSvc,
		log:         log,
	}
}

// Register creates a directory entry and, for students and merchants, a
// zero-balance wallet. Role is fixed at creation.
func (s *AuthServiceImpl) Register(ctx context.Context, req ports.RegisterRequest) (*domain.Account, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" || req.Name == "" {
		return nil, apperror.Validation("email, password and name are required")
	}

	existing, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrEmailExists()
	}

	hash, err := s.hashSvc.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:           uuid.New(),
		Email:        email,
		Name:         req.Name,
		Role:         req.Role,
		PasswordHash: hash,
		Status:       domain.AccountStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	switch req.Role {
	case domain.RoleStudent:
		if req.StudentID == "" {
			return nil, apperror.Validation("student id is required")
		}
		sid := strings.ToUpper(req.StudentID)
		account.StudentID = &sid
	case domain.RoleMerchant:
		if req.MerchantCategory == "" {
			return nil, apperror.Validation("merchant category is required")
		}
		mid, err := s.nextMerchantID(ctx, req.MerchantCategory)
		if err != nil {
			return nil, err
		}
		account.MerchantID = &mid
	case domain.RoleAdmin:
		// No business identifier and no wallet.
	default:
		return nil, apperror.Validation("unknown role")
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create account: %w", err))
	}

	if req.Role != domain.RoleAdmin {
		zeroEnc, err := s.encSvc.Encrypt("0")
		if err != nil {
			return nil, apperror.ErrEncryptionFailure(fmt.Errorf("encrypt initial balance: %w", err))
		}
		wallet := &domain.Wallet{
			ID:               uuid.New(),
			AccountID:        account.ID,
			EncryptedBalance: zeroEnc,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := s.walletRepo.Create(ctx, wallet); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("create wallet: %w", err))
		}
	}

	s.log.Info().
		Str("email", account.Email).
		Str("role", string(account.Role)).
		Str("business_id", account.BusinessID()).
		Msg("account registered")

	return account, nil
}

// Login verifies credentials and issues a session token. Blocked accounts
// cannot log in.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, time.Time, *domain.Account, error) {
	account, err := s.accountRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", time.Time{}, nil, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return "", time.Time{}, nil, apperror.ErrInvalidCredentials()
	}

	ok, err := s.hashSvc.Verify(password, account.PasswordHash)
	if err != nil {
		return "", time.Time{}, nil, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !ok {
		return "", time.Time{}, nil, apperror.ErrInvalidCredentials()
	}

	if !account.IsActive() {
		return "", time.Time{}, nil, apperror.ErrAccountBlocked()
	}

	token, expiresAt, err := s.tokenSvc.Generate(account)
	if err != nil {
		return "", time.Time{}, nil, apperror.InternalError(fmt.Errorf("generate session token: %w", err))
	}

	s.log.Info().Str("email", account.Email).Str("role", string(account.Role)).Msg("login")
	return token, expiresAt, account, nil
}

// LookupAccount returns a directory entry by email.
func (s *AuthServiceImpl) LookupAccount(ctx context.Context, email string) (*domain.Account, error) {
	account, err := s.accountRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrNotFound("account")
	}
	return account, nil
}

// nextMerchantID derives a directory id like CAFE_01 from the category,
// incrementing the suffix past existing entries.
func (s *AuthServiceImpl) nextMerchantID(ctx context.Context, category string) (string, error) {
	prefix := strings.ToUpper(strings.TrimSpace(category))
	if prefix == "" {
		return "", apperror.Validation("merchant category is required")
	}
	for n := 1; n < 100; n++ {
		candidate := fmt.Sprintf("%s_%02d", prefix, n)
		existing, err := s.accountRepo.GetByMerchantID(ctx, candidate)
		if err != nil {
			return "", apperror.InternalError(fmt.Errorf("get merchant: %w", err))
		}
		if existing == nil {
			return candidate, nil
		}
	}
	return "", apperror.Validation("merchant category is full")
}
