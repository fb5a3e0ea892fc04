package table

import (
	"context"
	"database/sql"
	"time"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates the Postgres-backed table store.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Create(ctx context.Context, t *DiningTable) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO dining_tables (id, number, qr_slug, seats, is_active)
		VALUES ($1,$2,$3,$4,$5)`,
		t.ID, t.Number, t.QRSlug, t.Seats, t.IsActive)
	return err
}

func (r *postgresRepo) GetByQRSlug(ctx context.Context, slug string) (*DiningTable, error) {
	return r.scan(r.db.QueryRowContext(ctx, selectSQL+" WHERE qr_slug=$1", slug))
}

func (r *postgresRepo) GetByNumber(ctx context.Context, number string) (*DiningTable, error) {
	return r.scan(r.db.QueryRowContext(ctx, selectSQL+" WHERE number=$1", number))
}

func (r *postgresRepo) List(ctx context.Context) ([]*DiningTable, error) {
	rows, err := r.db.QueryContext(ctx, selectSQL+" ORDER BY number")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := []*DiningTable{}
	for rows.Next() {
		t, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

func (r *postgresRepo) SetActive(ctx context.Context, id string, active bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE dining_tables SET is_active=$1, updated_at=$2 WHERE id=$3`,
		active, time.Now(), id)
	return err
}

const selectSQL = `
	SELECT id, number, qr_slug, seats, is_active, created_at, updated_at
	FROM dining_tables`

type rowScanner interface{ Scan(dest ...interface{}) error }

func (r *postgresRepo) scan(row rowScanner) (*DiningTable, error) {
	t := &DiningTable{}
	err := row.Scan(&t.ID, &t.Number, &t.QRSlug, &t.Seats, &t.IsActive,
		&t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrTableNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}
