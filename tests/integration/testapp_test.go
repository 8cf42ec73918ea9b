package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campus-payment-ledger/config"
	"campus-payment-ledger/internal/adapter/http/dto"
	"campus-payment-ledger/internal/adapter/http/handler"
	redisStorage "campus-payment-ledger/internal/adapter/storage/redis"
	"campus-payment-ledger/internal/service"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	testAESKey   = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
	testQRSecret = "qr-signing-secret-for-tests"
	testPassword = "sup3rsecret"
	qrTTL        = 60 * time.Second
)

func testPaymentConfig() config.PaymentConfig {
	return config.PaymentConfig{FeeBps: 200, RechargeMin: 10, RechargeMax: 10000}
}

func testRiskConfig() config.RiskConfig {
	return config.RiskConfig{
		HighAmountThreshold: 1000,
		HighAmountScore:     30,
		BurstCount:          5,
		BurstWindow:         5 * time.Minute,
		BurstScore:          40,
		NewAccountMaxAge:    7 * 24 * time.Hour,
		NewAccountThreshold: 500,
		NewAccountScore:     25,
		SuspiciousScore:     60,
	}
}

// testApp wires the real services and HTTP router over in-memory repositories
// and a miniredis-backed cache layer.
type testApp struct {
	t      *testing.T
	server *httptest.Server
	mr     *miniredis.Miniredis
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	accountRepo := newInMemoryAccountRepo()
	walletRepo := newInMemoryWalletRepo()
	txRepo := newInMemoryTransactionRepo()
	auditRepo := newInMemoryAuditRepo()
	transactor := newInMemoryTransactor()

	replayStore := redisStorage.NewTokenReplayStore(rdb)

	encSvc, err := service.NewAESEncryptionService(testAESKey)
	require.NoError(t, err)
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService("session-secret-for-tests", time.Hour, "campus-payment-ledger")
	qrTokenSvc := service.NewJWTQRTokenService(testQRSecret, qrTTL)
	riskScorer := service.NewRuleRiskScorer(testRiskConfig())
	ledger := service.NewWalletLedger(walletRepo, encSvc)
	log := zerolog.Nop()

	authSvc := service.NewAuthService(accountRepo, walletRepo, hashSvc, tokenSvc, encSvc, log)
	paymentSvc := service.NewPaymentService(
		accountRepo, walletRepo, txRepo, ledger,
		qrTokenSvc, riskScorer, replayStore,
		transactor, testPaymentConfig(), qrTTL, log,
	)
	adminSvc := service.NewAdminService(accountRepo, walletRepo, txRepo, auditRepo, ledger, transactor, testPaymentConfig(), log)
	reportingSvc := service.NewReportingService(accountRepo, walletRepo, txRepo, ledger)

	router := handler.SetupRouter(handler.RouterDeps{
		AuthSvc:      authSvc,
		PaymentSvc:   paymentSvc,
		AdminSvc:     adminSvc,
		ReportingSvc: reportingSvc,
		TokenSvc:     tokenSvc,
		TokenTTL:     qrTTL,
		Logger:       log,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testApp{t: t, server: server, mr: mr}
}

// envelope matches both the success and error response bodies.
type envelope struct {
	Data      json.RawMessage `json:"data"`
	ErrorCode string          `json:"error_code"`
	Message   string          `json:"message"`
}

func (a *testApp) do(method, path, token string, body interface{}) (int, envelope) {
	a.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.server.Client().Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(a.t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func (a *testApp) registerStudent(email, studentID string) dto.AccountResponse {
	a.t.Helper()
	status, env := a.do(http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{
		Email: email, Password: testPassword, Name: "Test Student",
		Role: "student", StudentID: studentID,
	})
	require.Equal(a.t, http.StatusCreated, status, env.Message)
	return decodeData[dto.AccountResponse](a.t, env)
}

func (a *testApp) registerMerchant(email, category string) dto.AccountResponse {
	a.t.Helper()
	status, env := a.do(http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{
		Email: email, Password: testPassword, Name: "Test Merchant",
		Role: "merchant", MerchantCategory: category,
	})
	require.Equal(a.t, http.StatusCreated, status, env.Message)
	return decodeData[dto.AccountResponse](a.t, env)
}

func (a *testApp) registerAdmin(email string) dto.AccountResponse {
	a.t.Helper()
	status, env := a.do(http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{
		Email: email, Password: testPassword, Name: "Test Admin", Role: "admin",
	})
	require.Equal(a.t, http.StatusCreated, status, env.Message)
	return decodeData[dto.AccountResponse](a.t, env)
}

func (a *testApp) login(email string) dto.LoginResponse {
	a.t.Helper()
	status, env := a.do(http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{
		Email: email, Password: testPassword,
	})
	require.Equal(a.t, http.StatusOK, status, env.Message)
	return decodeData[dto.LoginResponse](a.t, env)
}

func (a *testApp) mustRecharge(token string, amount int64) dto.TransactionResponse {
	a.t.Helper()
	status, env := a.do(http.MethodPost, "/api/v1/wallet/recharge", token, dto.RechargeRequest{Amount: amount})
	require.Equal(a.t, http.StatusCreated, status, env.Message)
	return decodeData[dto.TransactionResponse](a.t, env)
}

func (a *testApp) balance(token string) int64 {
	a.t.Helper()
	status, env := a.do(http.MethodGet, "/api/v1/wallet", token, nil)
	require.Equal(a.t, http.StatusOK, status, env.Message)
	return decodeData[dto.WalletBalanceResponse](a.t, env).Balance
}

func (a *testApp) mustIssueToken(token, merchantID string, amount int64) dto.IssueTokenResponse {
	a.t.Helper()
	status, env := a.do(http.MethodPost, "/api/v1/tokens", token, dto.IssueTokenRequest{
		MerchantID: merchantID, Amount: amount,
	})
	require.Equal(a.t, http.StatusCreated, status, env.Message)
	return decodeData[dto.IssueTokenResponse](a.t, env)
}

func (a *testApp) mustRedeem(merchantToken, qrPayload string) dto.TransactionResponse {
	a.t.Helper()
	status, env := a.do(http.MethodPost, "/api/v1/redeem", merchantToken, dto.RedeemRequest{Token: qrPayload})
	require.Equal(a.t, http.StatusOK, status, env.Message)
	return decodeData[dto.TransactionResponse](a.t, env)
}

func requireErrorCode(t *testing.T, gotStatus int, env envelope, wantStatus int, wantCode string) {
	t.Helper()
	require.Equal(t, wantStatus, gotStatus, env.Message)
	require.Equal(t, wantCode, env.ErrorCode)
}
