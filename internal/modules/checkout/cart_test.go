package checkout

import (
	"testing"

	"github.com/shopspring/decimal"
)

func price(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestCartAddItemMergesLines(t *testing.T) {
	var cart Cart
	cart.AddItem(CartItem{MenuItemID: "m1", Name: "Nyama Choma", UnitPrice: price("650"), Quantity: 1})
	cart.AddItem(CartItem{MenuItemID: "m2", Name: "Ugali", UnitPrice: price("100"), Quantity: 2})
	cart.AddItem(CartItem{MenuItemID: "m1", Name: "Nyama Choma", UnitPrice: price("650"), Quantity: 1})

	if len(cart.Items) != 2 {
		t.Fatalf("got %d lines, want 2", len(cart.Items))
	}
	if cart.Items[0].Quantity != 2 {
		t.Errorf("merged quantity = %d, want 2", cart.Items[0].Quantity)
	}
}

func TestCartRemoveItem(t *testing.T) {
	var cart Cart
	cart.AddItem(CartItem{MenuItemID: "m1", UnitPrice: price("650"), Quantity: 1})
	cart.AddItem(CartItem{MenuItemID: "m2", UnitPrice: price("100"), Quantity: 2})

	cart.RemoveItem("m1")
	if len(cart.Items) != 1 || cart.Items[0].MenuItemID != "m2" {
		t.Errorf("items after remove = %+v", cart.Items)
	}

	// absent item is a no-op
	cart.RemoveItem("m9")
	if len(cart.Items) != 1 {
		t.Errorf("removing absent item changed the cart: %+v", cart.Items)
	}
}

func TestCartAmountDueRoundsToWholeShillings(t *testing.T) {
	cases := []struct {
		items []CartItem
		want  int64
	}{
		{
			[]CartItem{{MenuItemID: "m1", UnitPrice: price("949.75"), Quantity: 2}},
			1900, // 1899.50 rounds up
		},
		{
			[]CartItem{{MenuItemID: "m1", UnitPrice: price("100.20"), Quantity: 2}},
			200, // 200.40 rounds down
		},
		{
			[]CartItem{
				{MenuItemID: "m1", UnitPrice: price("650"), Quantity: 2},
				{MenuItemID: "m2", UnitPrice: price("100"), Quantity: 3},
			},
			1600,
		},
		{nil, 0},
	}
	for _, c := range cases {
		cart := Cart{Items: c.items}
		if got := cart.AmountDue(); got != c.want {
			t.Errorf("AmountDue(%v) = %d, want %d", c.items, got, c.want)
		}
	}
}
