package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"campus-payment-ledger/internal/adapter/http/dto"

	"github.com/stretchr/testify/require"
)

// rawPost is a require-free request helper safe to call from worker goroutines.
func rawPost(client *http.Client, url, token string, body interface{}) (int, envelope, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return 0, envelope{}, err
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return 0, envelope{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, envelope{}, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return resp.StatusCode, envelope{}, err
	}
	return resp.StatusCode, env, nil
}

func TestConcurrentRedeemSameToken(t *testing.T) {
	app := newTestApp(t)

	app.registerStudent("nora@campus.edu", "S2001")
	merchant := app.registerMerchant("cafe@campus.edu", "cafe")
	studentTok := app.login("nora@campus.edu").Token
	merchantTok := app.login("cafe@campus.edu").Token

	app.mustRecharge(studentTok, 1000)
	issued := app.mustIssueToken(studentTok, merchant.BusinessID, 250)

	const workers = 20
	ids := make(chan string, workers)
	var wg sync.WaitGroup
	var duplicates, unexpected atomic.Int64

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, env, err := rawPost(app.server.Client(), app.server.URL+"/api/v1/redeem", merchantTok, dto.RedeemRequest{Token: issued.QRPayload})
			switch {
			case err == nil && status == http.StatusOK:
				var txn dto.TransactionResponse
				if err := json.Unmarshal(env.Data, &txn); err != nil {
					unexpected.Add(1)
					return
				}
				ids <- txn.ID
			case err == nil && status == http.StatusConflict && env.ErrorCode == "PAY_004":
				duplicates.Add(1)
			default:
				unexpected.Add(1)
			}
		}()
	}
	wg.Wait()
	close(ids)

	// Exactly one settlement; every other presentation is a rejected duplicate.
	require.Zero(t, unexpected.Load())
	require.Equal(t, int64(workers-1), duplicates.Load())
	settledIDs := make([]string, 0, 1)
	for id := range ids {
		settledIDs = append(settledIDs, id)
	}
	require.Equal(t, []string{issued.TransactionID}, settledIDs)

	// Debited exactly once.
	require.Equal(t, int64(750), app.balance(studentTok))
	require.Equal(t, int64(245), app.balance(merchantTok))
}

func TestConcurrentPaymentsDrainExactBalance(t *testing.T) {
	app := newTestApp(t)

	app.registerStudent("omar@campus.edu", "S2002")
	merchant := app.registerMerchant("cafe@campus.edu", "cafe")
	studentTok := app.login("omar@campus.edu").Token
	merchantTok := app.login("cafe@campus.edu").Token

	// 1000 in the wallet, 20 tokens of 100 each: only 10 can settle.
	app.mustRecharge(studentTok, 1000)

	const tokens = 20
	payloads := make([]string, 0, tokens)
	for i := 0; i < tokens; i++ {
		payloads = append(payloads, app.mustIssueToken(studentTok, merchant.BusinessID, 100).QRPayload)
	}

	var wg sync.WaitGroup
	var settled, rejected, unexpected atomic.Int64

	for _, payload := range payloads {
		wg.Add(1)
		go func(payload string) {
			defer wg.Done()
			status, env, err := rawPost(app.server.Client(), app.server.URL+"/api/v1/redeem", merchantTok, dto.RedeemRequest{Token: payload})
			switch {
			case err == nil && status == http.StatusOK:
				settled.Add(1)
			case err == nil && status == http.StatusPaymentRequired && env.ErrorCode == "PAY_003":
				rejected.Add(1)
			default:
				unexpected.Add(1)
			}
		}(payload)
	}
	wg.Wait()

	require.Zero(t, unexpected.Load())
	require.Equal(t, int64(10), settled.Load())
	require.Equal(t, int64(10), rejected.Load())

	// Money is conserved: wallet drained, merchant holds the net of each.
	require.Equal(t, int64(0), app.balance(studentTok))
	require.Equal(t, int64(980), app.balance(merchantTok))
}

func TestConcurrentRecharges(t *testing.T) {
	app := newTestApp(t)

	app.registerStudent("pia@campus.edu", "S2003")
	studentTok := app.login("pia@campus.edu").Token

	const workers = 10
	var wg sync.WaitGroup
	var failures atomic.Int64

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, _, err := rawPost(app.server.Client(), app.server.URL+"/api/v1/wallet/recharge", studentTok, dto.RechargeRequest{Amount: 100})
			if err != nil || status != http.StatusCreated {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	// No lost updates under the wallet lock.
	require.Zero(t, failures.Load())
	require.Equal(t, int64(1000), app.balance(studentTok))
}
