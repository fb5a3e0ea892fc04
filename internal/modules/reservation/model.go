package reservation

import (
	"time"

	"github.com/google/uuid"
)

// ReservationStatus tracks a booking through the front-of-house workflow.
type ReservationStatus string

const (
	StatusNew       ReservationStatus = "NEW"
	StatusConfirmed ReservationStatus = "CONFIRMED"
	StatusCancelled ReservationStatus = "CANCELLED"
)

// Reservation is a table booking submitted from the public site.
type Reservation struct {
	ID         uuid.UUID         `json:"id"`
	Name       string            `json:"name"`
	Phone      string            `json:"phone"`
	Email      string            `json:"email,omitempty"`
	PartySize  int               `json:"party_size"`
	ReservedAt time.Time         `json:"reserved_at"`
	Notes      string            `json:"notes,omitempty"`
	Status     ReservationStatus `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// CreateReservationRequest is the public booking-form payload.
type CreateReservationRequest struct {
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Email      string    `json:"email,omitempty"`
	PartySize  int       `json:"party_size"`
	ReservedAt time.Time `json:"reserved_at"`
	Notes      string    `json:"notes,omitempty"`
}
