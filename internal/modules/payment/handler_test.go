package payment

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func noGuard(next http.Handler) http.Handler { return next }

func newTestRouter(svc Service) *chi.Mux {
	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r, noGuard)
	return r
}

func TestCallbackAlwaysAcknowledges(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeGateway{}, &fakeOrders{})
	router := newTestRouter(svc)

	payloads := []string{
		// well-formed success for an unknown transaction
		`{"Body":{"stkCallback":{"CheckoutRequestID":"ws_CO_unknown","ResultCode":0,"ResultDesc":"ok"}}}`,
		// malformed body
		`{"Body":`,
		// empty body
		``,
	}
	for _, payload := range payloads {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/callback", strings.NewReader(payload))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("payload %q: status = %d, want 200", payload, rec.Code)
			continue
		}
		var ack struct {
			ResultCode int    `json:"ResultCode"`
			ResultDesc string `json:"ResultDesc"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &ack); err != nil {
			t.Errorf("payload %q: decode ack: %v", payload, err)
			continue
		}
		if ack.ResultCode != 0 {
			t.Errorf("payload %q: ResultCode = %d, want 0", payload, ack.ResultCode)
		}
	}
}

func TestCallbackResolvesTransaction(t *testing.T) {
	repo := newFakeRepo()
	orders := &fakeOrders{}
	svc := NewService(repo, &fakeGateway{}, orders)
	pendingTx(repo, "ws_CO_1")
	router := newTestRouter(svc)

	payload := `{"Body":{"stkCallback":{
		"MerchantRequestID":"mr-1",
		"CheckoutRequestID":"ws_CO_1",
		"ResultCode":0,
		"ResultDesc":"The service request is processed successfully.",
		"CallbackMetadata":{"Item":[
			{"Name":"Amount","Value":500},
			{"Name":"MpesaReceiptNumber","Value":"QK12XYZ789"},
			{"Name":"PhoneNumber","Value":254712345678}
		]}}}}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/callback", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	tx, err := repo.GetByCheckoutRequestID(req.Context(), "ws_CO_1")
	if err != nil {
		t.Fatalf("transaction lookup: %v", err)
	}
	if tx.Status != TxCompleted || tx.ReceiptNumber != "QK12XYZ789" {
		t.Errorf("transaction = %+v", tx)
	}
	if orders.count() != 1 {
		t.Errorf("orders created = %d, want 1", orders.count())
	}
}

func TestStatusEndpointRequiresID(t *testing.T) {
	router := newTestRouter(NewService(newFakeRepo(), &fakeGateway{}, &fakeOrders{}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/status", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestStatusEndpointShapes(t *testing.T) {
	repo := newFakeRepo()
	repo.byID["ws_CO_done"] = &Transaction{CheckoutRequestID: "ws_CO_done", Status: TxCompleted, ReceiptNumber: "QK12XYZ789"}
	repo.byID["ws_CO_wait"] = &Transaction{CheckoutRequestID: "ws_CO_wait", Status: TxPending}
	router := newTestRouter(NewService(repo, &fakeGateway{}, &fakeOrders{}))

	body := func(id string) map[string]interface{} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/status",
			strings.NewReader(`{"checkout_request_id":"`+id+`"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status poll for %s = %d", id, rec.Code)
		}
		var out map[string]interface{}
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return out
	}

	done := body("ws_CO_done")
	if done["success"] != true || done["transaction_id"] != "QK12XYZ789" {
		t.Errorf("completed response = %v", done)
	}

	wait := body("ws_CO_wait")
	if wait["success"] != false || wait["status"] != string(TxPending) {
		t.Errorf("pending response = %v", wait)
	}
}

func TestErrorTaxonomyMapsToStatusCodes(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&ValidationError{Field: "amount", Reason: "must be greater than 0"}, http.StatusBadRequest},
		{&AuthError{Err: errors.New("token endpoint returned 400")}, http.StatusBadGateway},
		{&TransportError{Err: errors.New("connection refused")}, http.StatusServiceUnavailable},
		{&Rejection{Code: "1", Description: "insufficient balance"}, http.StatusUnprocessableEntity},
		{ErrTransactionNotFound, http.StatusNotFound},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		respondError(rec, c.err)
		if rec.Code != c.want {
			t.Errorf("respondError(%T) = %d, want %d", c.err, rec.Code, c.want)
		}
	}
}
