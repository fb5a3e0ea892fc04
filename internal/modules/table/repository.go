package table

import (
	"context"
	"errors"
)

// ErrTableNotFound is returned when no table matches the given key.
var ErrTableNotFound = errors.New("table not found")

// Repository defines data access for dining tables.
type Repository interface {
	Create(ctx context.Context, t *DiningTable) error
	GetByQRSlug(ctx context.Context, slug string) (*DiningTable, error)
	GetByNumber(ctx context.Context, number string) (*DiningTable, error)
	List(ctx context.Context) ([]*DiningTable, error)
	SetActive(ctx context.Context, id string, active bool) error
}
