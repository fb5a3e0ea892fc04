package order

import (
	"context"
	"errors"
)

// ErrOrderNotFound is returned when no order matches the given key.
var ErrOrderNotFound = errors.New("order not found")

// Repository defines data access for orders.
type Repository interface {
	// CreateOrder persists a new order and its items atomically.
	CreateOrder(ctx context.Context, o *Order) error

	// GetOrderByID retrieves an order with its items by UUID.
	GetOrderByID(ctx context.Context, id string) (*Order, error)

	// GetOrderByCheckoutRequestID retrieves the order created for a payment,
	// or ErrOrderNotFound if the payment never materialized one.
	GetOrderByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*Order, error)

	// ListOrders returns orders newest first, optionally filtered by table
	// number and/or status.
	ListOrders(ctx context.Context, tableNumber, status string) ([]*Order, error)

	// UpdateStatus advances an order to a new status.
	UpdateStatus(ctx context.Context, id string, status OrderStatus) error
}
