package checkout

import (
	"github.com/shopspring/decimal"
)

// CartItem is a single menu line in a session cart. Prices are decimals so
// subtotals never accumulate float drift before the minor-unit rounding.
type CartItem struct {
	MenuItemID string          `json:"menu_item_id"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
}

// Cart holds what a customer at a table intends to order. It lives inside a
// Session and is snapshotted into the transaction at payment initiation.
type Cart struct {
	TableNumber string     `json:"table_number"`
	Items       []CartItem `json:"items"`
}

// AddItem merges quantity into an existing line or appends a new one.
func (c *Cart) AddItem(item CartItem) {
	for i := range c.Items {
		if c.Items[i].MenuItemID == item.MenuItemID {
			c.Items[i].Quantity += item.Quantity
			return
		}
	}
	c.Items = append(c.Items, item)
}

// RemoveItem drops a line entirely; removing an absent item is a no-op.
func (c *Cart) RemoveItem(menuItemID string) {
	for i := range c.Items {
		if c.Items[i].MenuItemID == menuItemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// Subtotal is the exact decimal sum of all lines.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range c.Items {
		sum = sum.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return sum
}

// AmountDue rounds the subtotal to a whole-shilling amount. The gateway rejects
// fractional amounts, so 1899.50 becomes 1900 here, before initiation.
func (c *Cart) AmountDue() int64 {
	return c.Subtotal().Round(0).IntPart()
}
