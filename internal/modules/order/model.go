package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the kitchen-side lifecycle of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPreparing OrderStatus = "PREPARING"
	StatusServed    OrderStatus = "SERVED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// validTransitions defines the allowed status state machine.
var validTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusServed},
	StatusServed:    {},
	StatusCancelled: {},
}

// Order is a paid order bound to a physical table. Orders are created exactly
// once per completed payment, keyed by the payment's CheckoutRequestID.
type Order struct {
	ID                uuid.UUID    `json:"id"`
	OrderNumber       string       `json:"order_number"`
	TableNumber       string       `json:"table_number"`
	CustomerName      string       `json:"customer_name"`
	PhoneNumber       string       `json:"phone_number"`
	CheckoutRequestID string       `json:"checkout_request_id"`
	Status            OrderStatus  `json:"status"`
	Total             int64        `json:"total"` // whole shillings, as charged
	Items             []*OrderItem `json:"items,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// OrderItem is a single line item within an order.
type OrderItem struct {
	ID         uuid.UUID       `json:"id"`
	OrderID    uuid.UUID       `json:"order_id"`
	MenuItemID string          `json:"menu_item_id"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	LineTotal  decimal.Decimal `json:"line_total"`
}

// snapshotItem mirrors the cart line shape frozen into the payment's items
// snapshot. Parsing happens once, when the order is materialized.
type snapshotItem struct {
	MenuItemID string          `json:"menu_item_id"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
}

// UpdateStatusRequest is the payload for advancing an order's status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}
