package payment

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// newDarajaServer stands up a fake provider answering the token endpoint with
// a fixed bearer and dispatching push/query to the supplied handlers.
func newDarajaServer(t *testing.T, tokenCalls *int32, push, query http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(tokenCalls, 1)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "key" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token": "test-token",
			"expires_in":   "3599",
		})
	})
	if push != nil {
		mux.HandleFunc(stkPushPath, push)
	}
	if query != nil {
		mux.HandleFunc(stkQueryPath, query)
	}
	return httptest.NewServer(mux)
}

func testClient(baseURL string) *DarajaClient {
	return NewDarajaClient(Config{
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		ShortCode:      "174379",
		PassKey:        "passkey",
		CallbackURL:    "https://example.com/api/v1/payments/callback",
		BaseURL:        baseURL,
	})
}

func TestInitiateSTKPushSendsSignedRequest(t *testing.T) {
	var tokenCalls int32
	var got stkPushRequest
	srv := newDarajaServer(t, &tokenCalls, func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-token" {
			t.Errorf("push Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode push request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(stkPushResponse{
			ResponseCode:      "0",
			MerchantRequestID: "mr-1",
			CheckoutRequestID: "ws_CO_123",
			CustomerMessage:   "Success. Request accepted for processing",
		})
	}, nil)
	defer srv.Close()

	c := testClient(srv.URL)
	res, err := c.InitiateSTKPush(context.Background(), "254712345678", 1900, "Table-5", "Jikoni order for table 5")
	if err != nil {
		t.Fatalf("InitiateSTKPush: %v", err)
	}
	if res.CheckoutRequestID != "ws_CO_123" || res.MerchantRequestID != "mr-1" {
		t.Errorf("unexpected result: %+v", res)
	}

	if got.BusinessShortCode != "174379" || got.PartyB != "174379" {
		t.Errorf("shortcode not propagated: %+v", got)
	}
	if got.PartyA != "254712345678" || got.PhoneNumber != "254712345678" {
		t.Errorf("phone not propagated: %+v", got)
	}
	if got.Amount != 1900 {
		t.Errorf("Amount = %d, want 1900", got.Amount)
	}
	if got.TransactionType != "CustomerPayBillOnline" {
		t.Errorf("TransactionType = %q", got.TransactionType)
	}
	if len(got.Timestamp) != 14 {
		t.Errorf("Timestamp = %q, want 14-digit YYYYMMDDHHmmss", got.Timestamp)
	}
	raw, err := base64.StdEncoding.DecodeString(got.Password)
	if err != nil {
		t.Fatalf("password is not base64: %v", err)
	}
	if want := "174379" + "passkey" + got.Timestamp; string(raw) != want {
		t.Errorf("password decodes to %q, want shortcode+passkey+timestamp", raw)
	}
}

func TestTokenCachedAcrossCalls(t *testing.T) {
	var tokenCalls int32
	srv := newDarajaServer(t, &tokenCalls, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(stkPushResponse{ResponseCode: "0", CheckoutRequestID: "ws_CO_1"})
	}, nil)
	defer srv.Close()

	c := testClient(srv.URL)
	for i := 0; i < 2; i++ {
		if _, err := c.InitiateSTKPush(context.Background(), "254712345678", 100, "Table-1", "d"); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if n := atomic.LoadInt32(&tokenCalls); n != 1 {
		t.Errorf("token endpoint hit %d times, want 1", n)
	}
}

func TestInitiateSTKPushRejection(t *testing.T) {
	var tokenCalls int32
	srv := newDarajaServer(t, &tokenCalls, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"errorCode":    "400.002.02",
			"errorMessage": "Bad Request - Invalid Amount",
		})
	}, nil)
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.InitiateSTKPush(context.Background(), "254712345678", 0, "Table-1", "d")
	var rej *Rejection
	if !errors.As(err, &rej) {
		t.Fatalf("error = %v (%T), want *Rejection", err, err)
	}
	if rej.Code != "400.002.02" {
		t.Errorf("rejection code = %q", rej.Code)
	}
	if !strings.Contains(rej.Description, "Invalid Amount") {
		t.Errorf("rejection description = %q", rej.Description)
	}
}

func TestUnauthorizedDropsCachedToken(t *testing.T) {
	var tokenCalls int32
	srv := newDarajaServer(t, &tokenCalls, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errorMessage":"Invalid Access Token"}`))
	}, nil)
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.InitiateSTKPush(context.Background(), "254712345678", 100, "Table-1", "d")
	var ae *AuthError
	if !errors.As(err, &ae) {
		t.Fatalf("error = %v (%T), want *AuthError", err, err)
	}

	// The stale token must be gone so the next call re-authenticates.
	if _, err := c.InitiateSTKPush(context.Background(), "254712345678", 100, "Table-1", "d"); err == nil {
		t.Fatal("expected second push to fail against 401 server")
	}
	if n := atomic.LoadInt32(&tokenCalls); n != 2 {
		t.Errorf("token endpoint hit %d times, want 2 (cache dropped after 401)", n)
	}
}

func TestQuerySTKStatus(t *testing.T) {
	responses := map[string]stkQueryResponse{
		"ws_CO_paid":    {ResponseCode: "0", ResultCode: "0", ResultDesc: "The service request is processed successfully."},
		"ws_CO_cancel":  {ResponseCode: "0", ResultCode: "1032", ResultDesc: "Request cancelled by user"},
		"ws_CO_waiting": {ErrorCode: stillProcessingCode, ErrorMessage: "The transaction is being processed"},
	}
	var tokenCalls int32
	srv := newDarajaServer(t, &tokenCalls, nil, func(w http.ResponseWriter, r *http.Request) {
		var req stkQueryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode query request: %v", err)
		}
		resp, ok := responses[req.CheckoutRequestID]
		if !ok {
			t.Fatalf("unexpected CheckoutRequestID %q", req.CheckoutRequestID)
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
	defer srv.Close()

	c := testClient(srv.URL)

	out, err := c.QuerySTKStatus(context.Background(), "ws_CO_paid")
	if err != nil {
		t.Fatalf("query paid: %v", err)
	}
	if out == nil || !out.Success() {
		t.Errorf("paid outcome = %+v, want success", out)
	}

	out, err = c.QuerySTKStatus(context.Background(), "ws_CO_cancel")
	if err != nil {
		t.Fatalf("query cancelled: %v", err)
	}
	if out == nil || out.Success() || out.ResultCode != "1032" {
		t.Errorf("cancelled outcome = %+v, want ResultCode 1032", out)
	}

	out, err = c.QuerySTKStatus(context.Background(), "ws_CO_waiting")
	if err != nil {
		t.Fatalf("query waiting: %v", err)
	}
	if out != nil {
		t.Errorf("waiting outcome = %+v, want nil (still pending)", out)
	}
}

func TestTransportFailureWrapped(t *testing.T) {
	var tokenCalls int32
	srv := newDarajaServer(t, &tokenCalls, nil, nil)
	srv.Close() // connection refused from here on

	c := testClient(srv.URL)
	_, err := c.InitiateSTKPush(context.Background(), "254712345678", 100, "Table-1", "d")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("error = %v (%T), want *TransportError", err, err)
	}
}
