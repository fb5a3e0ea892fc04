package reservation

import (
	"context"
	"errors"
)

// ErrReservationNotFound is returned when no reservation matches the given ID.
var ErrReservationNotFound = errors.New("reservation not found")

// Repository defines data access for reservations.
type Repository interface {
	Create(ctx context.Context, res *Reservation) error
	GetByID(ctx context.Context, id string) (*Reservation, error)
	List(ctx context.Context, status string) ([]*Reservation, error)
	UpdateStatus(ctx context.Context, id string, status ReservationStatus) error
}
