package table

import (
	"time"

	"github.com/google/uuid"
)

// DiningTable is a physical table in the restaurant. Each table carries a QR
// slug printed on its QR code; scanning resolves the slug to the table number
// the checkout session binds to.
type DiningTable struct {
	ID        uuid.UUID `json:"id"`
	Number    string    `json:"number"`
	QRSlug    string    `json:"qr_slug"`
	Seats     int       `json:"seats"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateTableRequest is the payload for registering a new table.
type CreateTableRequest struct {
	Number string `json:"number"`
	Seats  int    `json:"seats"`
}
