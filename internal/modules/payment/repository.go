package payment

import "context"

// Repository defines data access for payment transactions.
//
// Transitions out of PENDING are compare-and-set: the row is updated only when
// its status is still PENDING, and the boolean result reports whether this
// caller won the transition. The winner owns the side effects (order creation);
// a losing writer must do nothing. Rows are never deleted.
type Repository interface {
	// Create inserts a new PENDING transaction keyed by CheckoutRequestID.
	Create(ctx context.Context, tx *Transaction) error

	// GetByCheckoutRequestID retrieves a transaction, or ErrTransactionNotFound.
	GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*Transaction, error)

	// List returns transactions for the staff dashboard, newest first,
	// optionally filtered by status.
	List(ctx context.Context, status string, limit, offset int) ([]*Transaction, error)

	// MarkCompleted transitions PENDING→COMPLETED, recording the receipt.
	MarkCompleted(ctx context.Context, checkoutRequestID, receiptNumber, payerPhone, resultDesc string) (won bool, err error)

	// MarkFailed transitions PENDING→FAILED with the provider's description.
	MarkFailed(ctx context.Context, checkoutRequestID, resultDesc string) (won bool, err error)
}
