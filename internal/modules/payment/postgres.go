package payment

import (
	"context"
	"database/sql"
	"time"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates the Postgres-backed transaction store.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Create(ctx context.Context, tx *Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payment_transactions
		  (id, checkout_request_id, merchant_request_id, phone_number, amount,
		   table_number, items, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		tx.ID, tx.CheckoutRequestID, tx.MerchantRequestID, tx.PhoneNumber,
		tx.Amount, tx.TableNumber, nullableJSON(tx.Items), tx.Status)
	return err
}

func (r *postgresRepo) GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*Transaction, error) {
	return r.scan(r.db.QueryRowContext(ctx, selectSQL+" WHERE checkout_request_id=$1", checkoutRequestID))
}

func (r *postgresRepo) List(ctx context.Context, status string, limit, offset int) ([]*Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	var (
		rows *sql.Rows
		err  error
	)
	if status != "" {
		rows, err = r.db.QueryContext(ctx,
			selectSQL+" WHERE status=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3",
			status, limit, offset)
	} else {
		rows, err = r.db.QueryContext(ctx,
			selectSQL+" ORDER BY created_at DESC LIMIT $1 OFFSET $2",
			limit, offset)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanRows(rows)
}

// MarkCompleted only touches rows still PENDING; RowsAffected==1 means this
// caller performed the transition and owns the follow-up side effects.
func (r *postgresRepo) MarkCompleted(ctx context.Context, checkoutRequestID, receiptNumber, payerPhone, resultDesc string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE payment_transactions
		SET status=$1,
		    receipt_number=COALESCE(NULLIF($2,''), receipt_number),
		    phone_number=COALESCE(NULLIF($3,''), phone_number),
		    result_description=COALESCE(NULLIF($4,''), result_description),
		    updated_at=$5
		WHERE checkout_request_id=$6 AND status=$7`,
		TxCompleted, receiptNumber, payerPhone, resultDesc, time.Now(), checkoutRequestID, TxPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *postgresRepo) MarkFailed(ctx context.Context, checkoutRequestID, resultDesc string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE payment_transactions
		SET status=$1, result_description=$2, updated_at=$3
		WHERE checkout_request_id=$4 AND status=$5`,
		TxFailed, resultDesc, time.Now(), checkoutRequestID, TxPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// ── Scanner ───────────────────────────────────────────────────────────────────

const selectSQL = `
	SELECT id, checkout_request_id, merchant_request_id, phone_number, amount,
	       table_number, items, status, receipt_number, result_description,
	       created_at, updated_at
	FROM payment_transactions`

type rowScanner interface{ Scan(dest ...interface{}) error }

func (r *postgresRepo) scan(row rowScanner) (*Transaction, error) {
	tx := &Transaction{}
	var items []byte
	var receipt, resultDesc sql.NullString

	err := row.Scan(
		&tx.ID, &tx.CheckoutRequestID, &tx.MerchantRequestID, &tx.PhoneNumber,
		&tx.Amount, &tx.TableNumber, &items, &tx.Status,
		&receipt, &resultDesc, &tx.CreatedAt, &tx.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	tx.Items = items
	if receipt.Valid {
		tx.ReceiptNumber = receipt.String
	}
	if resultDesc.Valid {
		tx.ResultDescription = resultDesc.String
	}
	return tx, nil
}

func (r *postgresRepo) scanRows(rows *sql.Rows) ([]*Transaction, error) {
	txs := []*Transaction{}
	for rows.Next() {
		tx, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func nullableJSON(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}
