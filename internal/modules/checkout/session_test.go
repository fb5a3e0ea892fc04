package checkout

import (
	"context"
	"sync"
	"testing"

	"github.com/mwangikb/jikoni-backend/internal/modules/payment"
)

type fakePayments struct {
	mu sync.Mutex

	initiateRes *payment.InitiateResult
	initiateErr error
	statusRes   *payment.StatusResult
	statusErr   error

	initiateCalls int
	statusCalls   int
	lastInitiate  payment.InitiateRequest
}

func (f *fakePayments) Initiate(ctx context.Context, req payment.InitiateRequest) (*payment.InitiateResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initiateCalls++
	f.lastInitiate = req
	return f.initiateRes, f.initiateErr
}

func (f *fakePayments) QueryStatus(ctx context.Context, id string) (*payment.StatusResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	return f.statusRes, f.statusErr
}

func readySession(f *fakePayments) *Session {
	s := newSession(f)
	s.SetTable("5")
	s.AddItem(CartItem{MenuItemID: "m1", Name: "Nyama Choma", UnitPrice: price("650"), Quantity: 2})
	return s
}

func TestInitiatePaymentHappyPath(t *testing.T) {
	f := &fakePayments{initiateRes: &payment.InitiateResult{CheckoutRequestID: "ws_CO_1"}}
	s := readySession(f)

	if !s.InitiatePayment(context.Background(), "0712345678") {
		t.Fatalf("InitiatePayment failed: %+v", s.Snapshot())
	}

	v := s.Snapshot()
	if v.State != StatePending || !v.IsProcessing {
		t.Errorf("view = %+v, want pending", v)
	}
	if v.CheckoutRequestID != "ws_CO_1" {
		t.Errorf("checkout request id = %q", v.CheckoutRequestID)
	}
	if f.lastInitiate.Amount != 1300 || f.lastInitiate.TableNumber != "5" {
		t.Errorf("initiate request = %+v", f.lastInitiate)
	}
	if len(f.lastInitiate.Items) == 0 {
		t.Error("cart snapshot not attached to initiation")
	}
}

func TestInitiatePaymentGuards(t *testing.T) {
	t.Run("empty cart", func(t *testing.T) {
		f := &fakePayments{}
		s := newSession(f)
		s.SetTable("5")
		if s.InitiatePayment(context.Background(), "0712345678") {
			t.Fatal("empty cart initiated a payment")
		}
		if f.initiateCalls != 0 {
			t.Error("empty cart reached the payment service")
		}
	})

	t.Run("no table", func(t *testing.T) {
		f := &fakePayments{}
		s := newSession(f)
		s.AddItem(CartItem{MenuItemID: "m1", UnitPrice: price("650"), Quantity: 1})
		if s.InitiatePayment(context.Background(), "0712345678") {
			t.Fatal("tableless session initiated a payment")
		}
		if f.initiateCalls != 0 {
			t.Error("tableless session reached the payment service")
		}
	})

	t.Run("bad phone", func(t *testing.T) {
		f := &fakePayments{}
		s := readySession(f)
		if s.InitiatePayment(context.Background(), "not-a-phone") {
			t.Fatal("invalid phone initiated a payment")
		}
		if f.initiateCalls != 0 {
			t.Error("invalid phone reached the payment service")
		}
		v := s.Snapshot()
		if v.LastError == "" || v.TechnicalDetail == "" {
			t.Errorf("view = %+v, want user message and gated detail", v)
		}
	})

	t.Run("already pending", func(t *testing.T) {
		f := &fakePayments{initiateRes: &payment.InitiateResult{CheckoutRequestID: "ws_CO_1"}}
		s := readySession(f)
		if !s.InitiatePayment(context.Background(), "0712345678") {
			t.Fatal("first initiation failed")
		}
		if s.InitiatePayment(context.Background(), "0712345678") {
			t.Fatal("second initiation accepted while pending")
		}
		if f.initiateCalls != 1 {
			t.Errorf("payment service called %d times, want 1", f.initiateCalls)
		}
	})
}

func TestCheckStatusWithoutActivePayment(t *testing.T) {
	f := &fakePayments{}
	s := newSession(f)

	if s.CheckStatus(context.Background()) {
		t.Fatal("CheckStatus confirmed with no payment in flight")
	}
	if f.statusCalls != 0 {
		t.Errorf("payment service queried %d times, want 0", f.statusCalls)
	}
	if v := s.Snapshot(); v.LastError != "No payment in progress." {
		t.Errorf("last error = %q", v.LastError)
	}
}

func TestCheckStatusSuccessClearsCartOnce(t *testing.T) {
	f := &fakePayments{initiateRes: &payment.InitiateResult{CheckoutRequestID: "ws_CO_1"}}
	s := readySession(f)
	if !s.InitiatePayment(context.Background(), "0712345678") {
		t.Fatal("initiation failed")
	}

	f.statusRes = &payment.StatusResult{Status: payment.TxCompleted, ReceiptNumber: "QK12XYZ789"}
	if !s.CheckStatus(context.Background()) {
		t.Fatal("CheckStatus did not confirm a completed payment")
	}

	v := s.Snapshot()
	if v.State != StateSuccess || v.TransactionID != "QK12XYZ789" {
		t.Errorf("view = %+v", v)
	}
	if len(v.Cart.Items) != 0 {
		t.Errorf("cart not cleared on success: %+v", v.Cart.Items)
	}

	// New items added after success belong to the next order and must survive.
	s.AddItem(CartItem{MenuItemID: "m2", Name: "Ugali", UnitPrice: price("100"), Quantity: 1})
	if len(s.Snapshot().Cart.Items) != 1 {
		t.Error("post-success cart item lost")
	}
}

func TestCheckStatusPendingKeepsPolling(t *testing.T) {
	f := &fakePayments{
		initiateRes: &payment.InitiateResult{CheckoutRequestID: "ws_CO_1"},
		statusRes:   &payment.StatusResult{Status: payment.TxPending},
	}
	s := readySession(f)
	s.InitiatePayment(context.Background(), "0712345678")

	if s.CheckStatus(context.Background()) {
		t.Fatal("pending payment reported as confirmed")
	}
	v := s.Snapshot()
	if v.State != StatePending || !v.IsProcessing {
		t.Errorf("view = %+v, want still pending", v)
	}
	if len(v.Cart.Items) == 0 {
		t.Error("cart cleared before payment confirmation")
	}
}

func TestCheckStatusTransportErrorStaysPending(t *testing.T) {
	f := &fakePayments{
		initiateRes: &payment.InitiateResult{CheckoutRequestID: "ws_CO_1"},
		statusErr:   &payment.TransportError{Err: context.DeadlineExceeded},
	}
	s := readySession(f)
	s.InitiatePayment(context.Background(), "0712345678")

	if s.CheckStatus(context.Background()) {
		t.Fatal("transport failure reported as confirmed")
	}
	v := s.Snapshot()
	if v.State != StatePending {
		t.Errorf("state = %s, want pending (failure says nothing about the money)", v.State)
	}
	if v.LastError == "" || v.TechnicalDetail == "" {
		t.Errorf("view = %+v, want user message and gated detail", v)
	}
}

func TestCheckStatusFailure(t *testing.T) {
	f := &fakePayments{
		initiateRes: &payment.InitiateResult{CheckoutRequestID: "ws_CO_1"},
		statusRes:   &payment.StatusResult{Status: payment.TxFailed, ResultDescription: "Request cancelled by user"},
	}
	s := readySession(f)
	s.InitiatePayment(context.Background(), "0712345678")

	if s.CheckStatus(context.Background()) {
		t.Fatal("failed payment reported as confirmed")
	}
	v := s.Snapshot()
	if v.State != StateFailed || v.LastError != "Request cancelled by user" {
		t.Errorf("view = %+v", v)
	}
	if len(v.Cart.Items) == 0 {
		t.Error("cart cleared on failure; customer should retry with it intact")
	}
}

func TestCancelPayment(t *testing.T) {
	f := &fakePayments{initiateRes: &payment.InitiateResult{CheckoutRequestID: "ws_CO_1"}}
	s := readySession(f)
	s.InitiatePayment(context.Background(), "0712345678")

	s.CancelPayment()
	v := s.Snapshot()
	if v.State != StateIdle || v.CheckoutRequestID != "" {
		t.Errorf("view after cancel = %+v", v)
	}
	if len(v.Cart.Items) == 0 {
		t.Error("cancel emptied the cart")
	}

	// cancelling an idle session stays idle
	s.CancelPayment()
	if s.Snapshot().State != StateIdle {
		t.Error("cancel of idle session changed state")
	}
}

func TestResetTransactionAfterTerminalState(t *testing.T) {
	f := &fakePayments{
		initiateRes: &payment.InitiateResult{CheckoutRequestID: "ws_CO_1"},
		statusRes:   &payment.StatusResult{Status: payment.TxCompleted, ReceiptNumber: "QK12XYZ789"},
	}
	s := readySession(f)
	s.InitiatePayment(context.Background(), "0712345678")
	s.CheckStatus(context.Background())

	s.ResetTransaction()
	v := s.Snapshot()
	if v.State != StateIdle || v.TransactionID != "" || v.CheckoutRequestID != "" {
		t.Errorf("view after reset = %+v", v)
	}
}

func TestManagerKeepsSessionsApart(t *testing.T) {
	m := NewManager(&fakePayments{})

	a := m.Session("token-a")
	b := m.Session("token-b")
	if a == b {
		t.Fatal("distinct tokens share a session")
	}
	a.AddItem(CartItem{MenuItemID: "m1", UnitPrice: price("650"), Quantity: 1})
	if len(b.Snapshot().Cart.Items) != 0 {
		t.Error("cart leaked across sessions")
	}
	if m.Session("token-a") != a {
		t.Error("same token returned a new session")
	}
}
