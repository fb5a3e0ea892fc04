package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/mwangikb/jikoni-backend/internal/modules/payment"
)

// State is the orchestrator's view of one customer session's payment.
type State string

const (
	StateIdle    State = "idle"
	StatePending State = "pending"
	StateSuccess State = "success"
	StateFailed  State = "failed"
)

// PaymentService is the slice of the payment module a session needs.
type PaymentService interface {
	Initiate(ctx context.Context, req payment.InitiateRequest) (*payment.InitiateResult, error)
	QueryStatus(ctx context.Context, checkoutRequestID string) (*payment.StatusResult, error)
}

// Session coordinates initiate → poll → resolve for a single customer,
// enforcing at most one active transaction at a time. The provider never
// pushes results to the browser, so resolution is observed only by polling;
// the authoritative record stays in the transaction store either way.
type Session struct {
	mu sync.Mutex

	Cart Cart

	state             State
	checkoutRequestID string
	transactionID     string // gateway receipt number once paid
	lastError         string // short, user-facing; never carries secrets
	technicalDetail   string // gated diagnostic text, hidden by default in the UI
	cartCleared       bool

	payments PaymentService
}

// View is the JSON-safe snapshot handed to the client.
type View struct {
	State             State  `json:"state"`
	IsProcessing      bool   `json:"is_processing"`
	CheckoutRequestID string `json:"checkout_request_id,omitempty"`
	TransactionID     string `json:"transaction_id,omitempty"`
	LastError         string `json:"last_error,omitempty"`
	TechnicalDetail   string `json:"technical_detail,omitempty"`
	Cart              Cart   `json:"cart"`
}

func newSession(payments PaymentService) *Session {
	return &Session{state: StateIdle, payments: payments}
}

// SetTable binds the session to the physical table resolved from the QR code.
func (s *Session) SetTable(tableNumber string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Cart.TableNumber = tableNumber
}

func (s *Session) AddItem(item CartItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Cart.AddItem(item)
}

func (s *Session) RemoveItem(menuItemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Cart.RemoveItem(menuItemID)
}

// InitiatePayment validates locally, then asks the payment service to push the
// prompt. Returns true when the prompt was sent and the session is pending.
// Validation failures never reach the gateway.
func (s *Session) InitiatePayment(ctx context.Context, phoneNumber string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StatePending {
		s.lastError = "A payment is already in progress for this session."
		return false
	}
	amount := s.Cart.AmountDue()
	if amount <= 0 {
		s.lastError = "Your cart is empty."
		return false
	}
	if s.Cart.TableNumber == "" {
		s.lastError = "Scan the QR code on your table first."
		return false
	}
	if _, err := payment.NormalizePhone(phoneNumber); err != nil {
		s.lastError = "Enter a valid M-Pesa phone number (e.g. 0712345678)."
		s.technicalDetail = err.Error()
		return false
	}

	items, err := json.Marshal(s.Cart.Items)
	if err != nil {
		s.lastError = "Could not prepare your order."
		s.technicalDetail = err.Error()
		return false
	}

	res, err := s.payments.Initiate(ctx, payment.InitiateRequest{
		PhoneNumber: phoneNumber,
		Amount:      amount,
		TableNumber: s.Cart.TableNumber,
		Items:       items,
	})
	if err != nil {
		s.recordError(err)
		return false
	}

	s.state = StatePending
	s.checkoutRequestID = res.CheckoutRequestID
	s.transactionID = ""
	s.lastError = ""
	s.technicalDetail = ""
	s.cartCleared = false
	return true
}

// CheckStatus polls the payment service. Returns true once the payment is
// confirmed complete. A still-pending or transport-level outcome keeps the
// session pending so the caller can poll again.
func (s *Session) CheckStatus(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePending || s.checkoutRequestID == "" {
		s.lastError = "No payment in progress."
		return false
	}

	res, err := s.payments.QueryStatus(ctx, s.checkoutRequestID)
	if err != nil {
		// Stay pending: transport and auth problems say nothing about whether
		// the customer paid.
		s.recordError(err)
		return false
	}

	switch res.Status {
	case payment.TxCompleted:
		s.state = StateSuccess
		s.transactionID = res.ReceiptNumber
		s.lastError = ""
		s.technicalDetail = ""
		s.clearCartOnce()
		return true
	case payment.TxFailed:
		s.state = StateFailed
		s.lastError = res.ResultDescription
		if s.lastError == "" {
			s.lastError = "The payment was not completed."
		}
		return false
	default:
		s.lastError = "Payment not confirmed yet. Complete the prompt on your phone, then check again."
		return false
	}
}

// CancelPayment stops caring about the outcome locally. The provider has no
// cancellation primitive for an already-pushed prompt; if it later resolves,
// the callback path still settles the transaction store.
func (s *Session) CancelPayment() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePending && s.state != StateFailed {
		return
	}
	s.state = StateIdle
	s.checkoutRequestID = ""
	s.lastError = ""
	s.technicalDetail = ""
}

// ResetTransaction clears identifiers after the caller has consumed a terminal
// state, e.g. after showing the receipt.
func (s *Session) ResetTransaction() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkoutRequestID = ""
	s.transactionID = ""
	s.lastError = ""
	s.technicalDetail = ""
	if s.state == StateSuccess || s.state == StateFailed {
		s.state = StateIdle
	}
}

// Snapshot returns the current externally visible state.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart := s.Cart
	cart.Items = append([]CartItem(nil), s.Cart.Items...)
	return View{
		State:             s.state,
		IsProcessing:      s.state == StatePending,
		CheckoutRequestID: s.checkoutRequestID,
		TransactionID:     s.transactionID,
		LastError:         s.lastError,
		TechnicalDetail:   s.technicalDetail,
		Cart:              cart,
	}
}

// recordError translates the payment module's typed taxonomy into a short
// user-facing message plus a gated technical detail. No message inspection:
// classification happened at the point of failure.
func (s *Session) recordError(err error) {
	var (
		validation *payment.ValidationError
		auth       *payment.AuthError
		transport  *payment.TransportError
		rejection  *payment.Rejection
	)
	switch {
	case errors.As(err, &validation):
		s.lastError = "Check your details and try again."
	case errors.As(err, &auth):
		s.lastError = "The payment service is misconfigured. Please ask a member of staff."
	case errors.As(err, &transport):
		s.lastError = "Could not reach the payment service. Check your connection and try again."
	case errors.As(err, &rejection):
		s.lastError = "The payment service declined the request."
	case errors.Is(err, payment.ErrTransactionNotFound):
		s.lastError = "This payment is no longer tracked."
	default:
		s.lastError = "Something went wrong. Please try again."
	}
	s.technicalDetail = err.Error()
}

func (s *Session) clearCartOnce() {
	if s.cartCleared {
		return
	}
	s.Cart.Items = nil
	s.cartCleared = true
}

// Manager owns all live sessions, keyed by an opaque client-held token.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	payments PaymentService
}

// NewManager creates the session registry shared by all checkout handlers.
func NewManager(payments PaymentService) *Manager {
	return &Manager{sessions: make(map[string]*Session), payments: payments}
}

// Session returns the session for a token, creating it on first use.
func (m *Manager) Session(token string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		s = newSession(m.payments)
		m.sessions[token] = s
	}
	return s
}
