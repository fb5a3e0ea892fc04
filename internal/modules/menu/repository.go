package menu

import (
	"context"
	"errors"
)

// ErrMenuItemNotFound is returned when no menu item matches the given ID.
var ErrMenuItemNotFound = errors.New("menu item not found")

// Repository defines data access for menu items.
type Repository interface {
	Create(ctx context.Context, item *MenuItem) error
	GetByID(ctx context.Context, id string) (*MenuItem, error)
	List(ctx context.Context, category string, availableOnly bool) ([]*MenuItem, error)
	Update(ctx context.Context, item *MenuItem) error
	SetAvailability(ctx context.Context, id string, available bool) error
}
