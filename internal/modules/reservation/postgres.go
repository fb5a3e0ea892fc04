package reservation

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates the Postgres-backed reservation store.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Create(ctx context.Context, res *Reservation) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reservations
		  (id, name, phone, email, party_size, reserved_at, notes, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		res.ID, res.Name, res.Phone, res.Email, res.PartySize,
		res.ReservedAt, res.Notes, res.Status)
	return err
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Reservation, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrReservationNotFound
	}
	return r.scan(r.db.QueryRowContext(ctx, selectSQL+" WHERE id=$1", uid))
}

func (r *postgresRepo) List(ctx context.Context, status string) ([]*Reservation, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if status != "" {
		rows, err = r.db.QueryContext(ctx, selectSQL+" WHERE status=$1 ORDER BY reserved_at", status)
	} else {
		rows, err = r.db.QueryContext(ctx, selectSQL+" ORDER BY reserved_at")
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations := []*Reservation{}
	for rows.Next() {
		res, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id string, status ReservationStatus) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET status=$1, updated_at=$2 WHERE id=$3`,
		status, time.Now(), id)
	return err
}

const selectSQL = `
	SELECT id, name, phone, email, party_size, reserved_at, notes, status,
	       created_at, updated_at
	FROM reservations`

type rowScanner interface{ Scan(dest ...interface{}) error }

func (r *postgresRepo) scan(row rowScanner) (*Reservation, error) {
	res := &Reservation{}
	var email, notes sql.NullString
	err := row.Scan(&res.ID, &res.Name, &res.Phone, &email, &res.PartySize,
		&res.ReservedAt, &notes, &res.Status, &res.CreatedAt, &res.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	if email.Valid {
		res.Email = email.String
	}
	if notes.Valid {
		res.Notes = notes.String
	}
	return res, nil
}
