package menu

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates the Postgres-backed menu store.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Create(ctx context.Context, item *MenuItem) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO menu_items
		  (id, name, description, category, price, image_url, is_available)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		item.ID, item.Name, item.Description, item.Category,
		item.Price, item.ImageURL, item.IsAvailable)
	return err
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*MenuItem, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrMenuItemNotFound
	}
	return r.scan(r.db.QueryRowContext(ctx, selectSQL+" WHERE id=$1", uid))
}

func (r *postgresRepo) List(ctx context.Context, category string, availableOnly bool) ([]*MenuItem, error) {
	query := selectSQL
	args := []interface{}{}
	where := ""
	if category != "" {
		args = append(args, category)
		where = " WHERE category=$1"
	}
	if availableOnly {
		if where == "" {
			where = " WHERE is_available"
		} else {
			where += " AND is_available"
		}
	}
	rows, err := r.db.QueryContext(ctx, query+where+" ORDER BY category, name", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*MenuItem{}
	for rows.Next() {
		item, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *postgresRepo) Update(ctx context.Context, item *MenuItem) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE menu_items
		SET name=$1, description=$2, category=$3, price=$4, image_url=$5,
		    is_available=$6, updated_at=$7
		WHERE id=$8`,
		item.Name, item.Description, item.Category, item.Price,
		item.ImageURL, item.IsAvailable, time.Now(), item.ID)
	return err
}

func (r *postgresRepo) SetAvailability(ctx context.Context, id string, available bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE menu_items SET is_available=$1, updated_at=$2 WHERE id=$3`,
		available, time.Now(), id)
	return err
}

// ── helpers ──────────────────────────────────────────────────────────────────

const selectSQL = `
	SELECT id, name, description, category, price, image_url, is_available,
	       created_at, updated_at
	FROM menu_items`

type rowScanner interface{ Scan(dest ...interface{}) error }

func (r *postgresRepo) scan(row rowScanner) (*MenuItem, error) {
	item := &MenuItem{}
	var description, imageURL sql.NullString
	err := row.Scan(&item.ID, &item.Name, &description, &item.Category,
		&item.Price, &imageURL, &item.IsAvailable, &item.CreatedAt, &item.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrMenuItemNotFound
	}
	if err != nil {
		return nil, err
	}
	if description.Valid {
		item.Description = description.String
	}
	if imageURL.Valid {
		item.ImageURL = imageURL.String
	}
	return item, nil
}
