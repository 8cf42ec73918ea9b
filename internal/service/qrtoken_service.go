package service

import (
	"errors"
	"fmt"
	"time"

	"campus-payment-ledger/internal/core/domain"
	"campus-payment-ledger/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTQRTokenService implements ports.QRTokenService using HS256 JWTs.
// The signed payload carries the full token field set; the signature replaces
// the reversible QR encoding so a tampered or forged token never reaches the
// ledger.
type JWTQRTokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTQRTokenService creates a payment token service.
func NewJWTQRTokenService(secret string, ttl time.Duration) *JWTQRTokenService {
	return &JWTQRTokenService{secret: []byte(secret), ttl: ttl}
}

// Sign produces the signed QR payload for a payment token.
func (s *JWTQRTokenService) Sign(token *domain.PaymentToken) (string, error) {
	claims := jwt.MapClaims{
		"jti": token.TransactionID.String(),
		"sid": token.StudentID,
		"mid": token.MerchantID,
		"amt": token.Amount,
		"iat": token.IssuedAt.Unix(),
		"exp": token.IssuedAt.Add(s.ttl).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing payment token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a signed QR payload. Expired tokens are
// reported distinctly from tampered or malformed ones.
func (s *JWTQRTokenService) Verify(signed string, now time.Time) (*domain.PaymentToken, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)

	parsed, err := parser.Parse(signed, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.ErrTokenExpired()
		}
		return nil, apperror.ErrTokenInvalid()
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, apperror.ErrTokenInvalid()
	}

	jti, _ := claims["jti"].(string)
	transactionID, err := uuid.Parse(jti)
	if err != nil {
		return nil, apperror.ErrTokenInvalid()
	}

	sid, _ := claims["sid"].(string)
	mid, _ := claims["mid"].(string)
	amt, okAmt := claims["amt"].(float64)
	iat, okIat := claims["iat"].(float64)
	if sid == "" || mid == "" || !okAmt || !okIat {
		return nil, apperror.ErrTokenInvalid()
	}

	return &domain.PaymentToken{
		TransactionID: transactionID,
		StudentID:     sid,
		MerchantID:    mid,
		Amount:        int64(amt),
		IssuedAt:      time.Unix(int64(iat), 0),
	}, nil
}
