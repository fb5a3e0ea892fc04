package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mwangikb/jikoni-backend/internal/modules/payment"
)

// Service defines the order management business logic.
type Service interface {
	// CreateFromPayment materializes an order from a completed payment
	// transaction. Called by the payment module exactly once per transaction;
	// the checkout-request-ID lookup backstops that guarantee.
	CreateFromPayment(ctx context.Context, tx *payment.Transaction) error

	// GetOrder retrieves a full order with its items.
	GetOrder(ctx context.Context, id string) (*Order, error)

	// ListOrders returns orders for the staff dashboard, filtered by table
	// and/or status.
	ListOrders(ctx context.Context, tableNumber, status string) ([]*Order, error)

	// UpdateStatus advances an order through the kitchen lifecycle.
	UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*Order, error)
}

type service struct {
	repo Repository
}

// NewService creates a new order service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateFromPayment(ctx context.Context, tx *payment.Transaction) error {
	if tx.Status != payment.TxCompleted {
		return fmt.Errorf("transaction %s is %s, only COMPLETED payments create orders",
			tx.CheckoutRequestID, tx.Status)
	}

	if _, err := s.repo.GetOrderByCheckoutRequestID(ctx, tx.CheckoutRequestID); err == nil {
		// Already materialized; a replayed callback or a poll race lost to us.
		return nil
	} else if !errors.Is(err, ErrOrderNotFound) {
		return err
	}

	items, err := itemsFromSnapshot(tx.Items)
	if err != nil {
		return fmt.Errorf("parse cart snapshot for %s: %w", tx.CheckoutRequestID, err)
	}

	o := &Order{
		ID:                uuid.New(),
		OrderNumber:       generateOrderNumber(),
		TableNumber:       tx.TableNumber,
		CustomerName:      "Guest",
		PhoneNumber:       tx.PhoneNumber,
		CheckoutRequestID: tx.CheckoutRequestID,
		Status:            StatusPending,
		Total:             tx.Amount,
		Items:             items,
	}
	return s.repo.CreateOrder(ctx, o)
}

func (s *service) GetOrder(ctx context.Context, id string) (*Order, error) {
	return s.repo.GetOrderByID(ctx, id)
}

func (s *service) ListOrders(ctx context.Context, tableNumber, status string) ([]*Order, error) {
	return s.repo.ListOrders(ctx, tableNumber, status)
}

func (s *service) UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*Order, error) {
	o, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	newStatus := OrderStatus(strings.ToUpper(req.Status))
	valid := false
	for _, allowed := range validTransitions[o.Status] {
		if allowed == newStatus {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("cannot transition order from %s to %s", o.Status, newStatus)
	}

	if err := s.repo.UpdateStatus(ctx, id, newStatus); err != nil {
		return nil, err
	}
	o.Status = newStatus
	return o, nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

// itemsFromSnapshot maps the frozen cart lines into order items. This is the
// single mapping point between the checkout-side cart shape and the persisted
// order shape.
func itemsFromSnapshot(snapshot json.RawMessage) ([]*OrderItem, error) {
	if len(snapshot) == 0 {
		return nil, nil
	}
	var lines []snapshotItem
	if err := json.Unmarshal(snapshot, &lines); err != nil {
		return nil, err
	}
	items := make([]*OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, &OrderItem{
			ID:         uuid.New(),
			MenuItemID: line.MenuItemID,
			Name:       line.Name,
			UnitPrice:  line.UnitPrice,
			Quantity:   line.Quantity,
			LineTotal:  line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))),
		})
	}
	return items, nil
}

// generateOrderNumber creates a human-readable order number: ORD-YYYYMMDD-XXXX
func generateOrderNumber() string {
	date := time.Now().UTC().Format("20060102")
	suffix := strings.ToUpper(uuid.New().String()[:4])
	return fmt.Sprintf("ORD-%s-%s", date, suffix)
}
