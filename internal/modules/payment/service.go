package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/google/uuid"
)

// OrderCreator materializes an order from a completed payment. Implemented by
// the order module; failure here is logged and never rolls back the COMPLETED
// status — the customer has already paid.
type OrderCreator interface {
	CreateFromPayment(ctx context.Context, tx *Transaction) error
}

// Service defines the push-payment transaction lifecycle.
type Service interface {
	// Initiate validates the request, asks the gateway to push a prompt to the
	// payer's phone, and records a PENDING transaction for the returned
	// CheckoutRequestID. A failed gateway call produces no transaction row.
	Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error)

	// HandleCallback reconciles the provider's asynchronous resolution notice.
	// Idempotent: replays against a terminal transaction are no-ops.
	HandleCallback(ctx context.Context, cb StkCallback) error

	// QueryStatus answers "has this payment completed?". The store is consulted
	// first; only a still-PENDING transaction triggers a provider query.
	QueryStatus(ctx context.Context, checkoutRequestID string) (*StatusResult, error)

	// GetTransaction and ListTransactions back the staff dashboard.
	GetTransaction(ctx context.Context, checkoutRequestID string) (*Transaction, error)
	ListTransactions(ctx context.Context, status string, limit, offset int) ([]*Transaction, error)
}

type service struct {
	repo    Repository
	gateway Gateway
	orders  OrderCreator
}

// NewService wires the transaction store, the gateway client and the order
// module together. All three are constructed in main and passed in explicitly.
func NewService(repo Repository, gateway Gateway, orders OrderCreator) Service {
	return &service{repo: repo, gateway: gateway, orders: orders}
}

func (s *service) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error) {
	if req.Amount <= 0 {
		return nil, &ValidationError{Field: "amount", Reason: "must be greater than 0"}
	}
	if req.TableNumber == "" {
		return nil, &ValidationError{Field: "table_number", Reason: "is required"}
	}
	phone, err := NormalizePhone(req.PhoneNumber)
	if err != nil {
		return nil, err
	}

	accountRef := "Table-" + req.TableNumber
	res, err := s.gateway.InitiateSTKPush(ctx, phone, req.Amount, accountRef,
		fmt.Sprintf("Jikoni order for table %s", req.TableNumber))
	if err != nil {
		return nil, err
	}

	tx := &Transaction{
		ID:                uuid.New(),
		CheckoutRequestID: res.CheckoutRequestID,
		MerchantRequestID: res.MerchantRequestID,
		PhoneNumber:       phone,
		Amount:            req.Amount,
		TableNumber:       req.TableNumber,
		Items:             req.Items,
		Status:            TxPending,
	}
	if err := s.repo.Create(ctx, tx); err != nil {
		// The prompt is already on its way to the customer's phone; reporting
		// failure now would be worse than a missing audit row.
		log.Printf("payment: failed to persist transaction %s: %v", res.CheckoutRequestID, err)
	}

	return res, nil
}

func (s *service) HandleCallback(ctx context.Context, cb StkCallback) error {
	tx, err := s.repo.GetByCheckoutRequestID(ctx, cb.CheckoutRequestID)
	if errors.Is(err, ErrTransactionNotFound) {
		// Reconciliation anomaly: the provider knows a push we never recorded.
		// Logged internally; the handler still acknowledges.
		log.Printf("payment: callback for unknown checkout request %q (result %d)", cb.CheckoutRequestID, cb.ResultCode)
		return nil
	}
	if err != nil {
		return err
	}
	if tx.Status != TxPending {
		// Duplicate delivery after resolution; nothing left to do.
		return nil
	}

	if cb.ResultCode != 0 {
		if _, err := s.repo.MarkFailed(ctx, cb.CheckoutRequestID, cb.ResultDesc); err != nil {
			return err
		}
		return nil
	}

	receipt, _, payerPhone := cb.metadata()
	won, err := s.repo.MarkCompleted(ctx, cb.CheckoutRequestID, receipt, payerPhone, cb.ResultDesc)
	if err != nil {
		return err
	}
	if won {
		s.materializeOrder(ctx, cb.CheckoutRequestID)
	}
	return nil
}

func (s *service) QueryStatus(ctx context.Context, checkoutRequestID string) (*StatusResult, error) {
	if checkoutRequestID == "" {
		return nil, &ValidationError{Field: "checkout_request_id", Reason: "is required"}
	}

	tx, err := s.repo.GetByCheckoutRequestID(ctx, checkoutRequestID)
	if err != nil {
		return nil, err
	}
	if tx.Status != TxPending {
		// Terminal already; avoid redundant provider load.
		return &StatusResult{
			Status:            tx.Status,
			ReceiptNumber:     tx.ReceiptNumber,
			ResultDescription: tx.ResultDescription,
		}, nil
	}

	outcome, err := s.gateway.QuerySTKStatus(ctx, checkoutRequestID)
	if err != nil {
		return nil, err
	}
	if outcome == nil {
		// Still awaiting the customer; the caller decides whether to poll again.
		return &StatusResult{Status: TxPending}, nil
	}

	if outcome.Success() {
		won, err := s.repo.MarkCompleted(ctx, checkoutRequestID, "", "", outcome.ResultDesc)
		if err != nil {
			return nil, err
		}
		if won {
			s.materializeOrder(ctx, checkoutRequestID)
		}
		refreshed, err := s.repo.GetByCheckoutRequestID(ctx, checkoutRequestID)
		if err != nil {
			return nil, err
		}
		return &StatusResult{
			Status:            TxCompleted,
			ReceiptNumber:     refreshed.ReceiptNumber,
			ResultDescription: refreshed.ResultDescription,
		}, nil
	}

	if _, err := s.repo.MarkFailed(ctx, checkoutRequestID, outcome.ResultDesc); err != nil {
		return nil, err
	}
	return &StatusResult{Status: TxFailed, ResultDescription: outcome.ResultDesc}, nil
}

func (s *service) GetTransaction(ctx context.Context, checkoutRequestID string) (*Transaction, error) {
	return s.repo.GetByCheckoutRequestID(ctx, checkoutRequestID)
}

func (s *service) ListTransactions(ctx context.Context, status string, limit, offset int) ([]*Transaction, error) {
	return s.repo.List(ctx, status, limit, offset)
}

// materializeOrder is called only by the winner of a PENDING→COMPLETED
// transition, so at most one order is ever created per transaction.
func (s *service) materializeOrder(ctx context.Context, checkoutRequestID string) {
	tx, err := s.repo.GetByCheckoutRequestID(ctx, checkoutRequestID)
	if err != nil {
		log.Printf("payment: reload transaction %s for order creation: %v", checkoutRequestID, err)
		return
	}
	if err := s.orders.CreateFromPayment(ctx, tx); err != nil {
		log.Printf("payment: order creation failed for %s: %v", checkoutRequestID, err)
	}
}

// metadata extracts the receipt number, transaction date and payer phone from
// the callback's {Name, Value} items. Missing or unknown items stay empty.
func (cb StkCallback) metadata() (receipt, date, phone string) {
	if cb.CallbackMetadata == nil {
		return "", "", ""
	}
	for _, item := range cb.CallbackMetadata.Item {
		switch item.Name {
		case "MpesaReceiptNumber":
			receipt = metadataString(item.Value)
		case "TransactionDate":
			date = metadataString(item.Value)
		case "PhoneNumber":
			phone = metadataString(item.Value)
		}
	}
	return receipt, date, phone
}

// metadataString renders a metadata value; numbers arrive as JSON floats.
func metadataString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
