package sideshift

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-secret", "affiliate-1", "0.5")
}

func TestGetPair_Success(t *testing.T) {
	var gotPath, gotSecret, gotIP string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSecret = r.Header.Get("x-sideshift-secret")
		gotIP = r.Header.Get("x-user-ip")
		json.NewEncoder(w).Encode(Pair{
			Min:            "5.1",
			Max:            "50000",
			Rate:           "0.0005",
			DepositCoin:    "USDC",
			SettleCoin:     "ETH",
			DepositNetwork: "ethereum",
			SettleNetwork:  "base",
		})
	})

	pair, err := client.GetPair(context.Background(), "usdc-ethereum", "eth-base", "", "203.0.113.9")
	require.NoError(t, err)

	assert.Equal(t, "/pair/usdc-ethereum/eth-base", gotPath)
	assert.Equal(t, "test-secret", gotSecret)
	assert.Equal(t, "203.0.113.9", gotIP)
	assert.Equal(t, "USDC", pair.DepositCoin)
	assert.Equal(t, "base", pair.SettleNetwork)
}

func TestGetPair_OmitsAmountWhenEmpty(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(Pair{
			Min: "1", Max: "2", DepositCoin: "BTC", SettleCoin: "ETH",
			DepositNetwork: "bitcoin", SettleNetwork: "ethereum",
		})
	})

	_, err := client.GetPair(context.Background(), "btc", "eth", "", "")
	require.NoError(t, err)
	assert.NotContains(t, gotQuery, "amount=")
	assert.Contains(t, gotQuery, "affiliateId=affiliate-1")
}

func TestGetPair_ResponseSchemaRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// missing settle coin/network
		w.Write([]byte(`{"min":"1","max":"2","depositCoin":"BTC","depositNetwork":"bitcoin"}`))
	})

	_, err := client.GetPair(context.Background(), "btc", "eth", "", "")
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, CodeUnknown, apiErr.Code)
	assert.Contains(t, apiErr.Message, "schema validation")
}

func TestCreateVariableShift_MergesAffiliateDefaults(t *testing.T) {
	var got VariableShiftRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(Shift{
			ID: "shift-1", DepositCoin: got.DepositCoin, SettleCoin: got.SettleCoin,
			DepositNetwork: got.DepositNetwork, SettleNetwork: got.SettleNetwork,
			DepositAddress: "0xdeposit", Status: StatusWaiting,
		})
	})

	shift, err := client.CreateVariableShift(context.Background(), VariableShiftRequest{
		SettleAddress:  "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
		DepositCoin:    "USDC",
		SettleCoin:     "ETH",
		DepositNetwork: "ethereum",
		SettleNetwork:  "base",
	}, "")
	require.NoError(t, err)

	assert.Equal(t, "affiliate-1", got.AffiliateID)
	assert.Equal(t, "0.5", got.CommissionRate)
	assert.Equal(t, "shift-1", shift.ID)
}

func TestCreateVariableShift_RejectsIncompleteRequestLocally(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := client.CreateVariableShift(context.Background(), VariableShiftRequest{
		SettleAddress: "0xabc",
		DepositCoin:   "USDC",
		// deposit/settle networks missing
	}, "")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, CodeValidationError, apiErr.Code)
	assert.False(t, called, "invalid payloads must not reach the wire")
}

func TestGetShift_IdempotentRead(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(Shift{
			ID: "shift-2", DepositCoin: "BTC", SettleCoin: "ETH",
			DepositNetwork: "bitcoin", SettleNetwork: "base",
			DepositAddress: "bc1qdeposit", Status: StatusSettled,
		})
	})

	first, err := client.GetShift(context.Background(), "shift-2", "")
	require.NoError(t, err)
	second, err := client.GetShift(context.Background(), "shift-2", "")
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, StatusSettled, second.Status)
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		code   ErrorCode
	}{
		{400, CodeInvalidRequest},
		{401, CodeUnauthorized},
		{403, CodeForbidden},
		{404, CodeNotFound},
		{422, CodeValidationError},
		{429, CodeRateLimited},
		{500, CodeInternalError},
		{502, CodeServiceUnavailable},
		{503, CodeServiceUnavailable},
		{504, CodeServiceUnavailable},
		{418, CodeUnknown},
	}

	for _, tc := range cases {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			w.Write([]byte(`{"error":{"message":"provider says no"}}`))
		})

		_, err := client.GetShift(context.Background(), "shift-x", "")
		require.Error(t, err, "status %d", tc.status)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, tc.code, apiErr.Code, "status %d", tc.status)
		assert.Equal(t, "provider says no", apiErr.Message)
	}
}

func TestErrorFromResponse_BodyVariants(t *testing.T) {
	nested := errorFromResponse(400, []byte(`{"error":{"message":"nested"}}`))
	assert.Equal(t, "nested", nested.Message)

	flat := errorFromResponse(400, []byte(`{"message":"flat"}`))
	assert.Equal(t, "flat", flat.Message)

	stringErr := errorFromResponse(400, []byte(`{"error":"plain"}`))
	assert.Equal(t, "plain", stringErr.Message)

	garbage := errorFromResponse(400, []byte(`not json`))
	assert.Equal(t, CodeInvalidRequest, garbage.Code)
	assert.Empty(t, garbage.Message)
}

func TestCancelOrder_TooEarly(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Order can only be cancelled after 5 minutes"}}`))
	})

	_, err := client.CancelOrder(context.Background(), "young-order", "")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, CodeTooEarly, apiErr.Code)
	assert.Contains(t, apiErr.Message, "5 minutes")
}

func TestCancelOrder_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"message":"Not Found"}}`))
	})

	_, err := client.CancelOrder(context.Background(), "ghost-order", "")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, CodeNotFound, apiErr.Code)
	assert.Contains(t, apiErr.Message, "ghost-order")
}

func TestCancelOrder_Success(t *testing.T) {
	var gotBody map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(CancelResult{Success: true})
	})

	result, err := client.CancelOrder(context.Background(), "old-order", "")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "old-order", gotBody["orderId"])
}

func TestNetworkError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "", "affiliate-1", "0.5")

	_, err := client.GetPermissions(context.Background(), "")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, CodeNetworkError, apiErr.Code)
	assert.Zero(t, apiErr.Status)
}

func TestRequestFixedQuote_RequiresAmount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := client.RequestFixedQuote(context.Background(), FixedQuoteRequest{
		DepositCoin: "BTC", DepositNetwork: "bitcoin",
		SettleCoin: "ETH", SettleNetwork: "base",
	}, "")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, CodeValidationError, apiErr.Code)
}

func TestCreateFixedShift_ExpiredQuotePassesProviderErrorThrough(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"quote expired"}}`))
	})

	_, err := client.CreateFixedShift(context.Background(), FixedShiftRequest{
		QuoteID:       "quote-1",
		SettleAddress: "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
	}, "")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, CodeInvalidRequest, apiErr.Code)
	assert.Equal(t, "quote expired", apiErr.Message)
}

func TestSetRefundAddress(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(Shift{
			ID: "shift-3", DepositCoin: "BTC", SettleCoin: "ETH",
			DepositNetwork: "bitcoin", SettleNetwork: "base",
			DepositAddress: "bc1qdeposit", RefundAddress: gotBody["address"],
			Status: StatusWaiting,
		})
	})

	shift, err := client.SetRefundAddress(context.Background(), "shift-3", "bc1qrefund", "", "")
	require.NoError(t, err)
	assert.Equal(t, "/shifts/shift-3/set-refund-address", gotPath)
	assert.Equal(t, "bc1qrefund", shift.RefundAddress)
	assert.NotContains(t, gotBody, "memo")
}
