package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var batchColumns = []string{
	"id", "product_id", "batch_number", "barcode", "input_quantity", "output_quantity",
	"inventory", "date_of_manufacture", "expiry_date", "created_at", "updated_at",
}

// Repository provides PostgreSQL backed persistence for batches and ledgers.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// mergeBatchSQL increments quantities in a single statement so concurrent receipts
// against the same batch never lose an update. xmax is zero only for fresh inserts.
const mergeBatchSQL = `
INSERT INTO product_details (product_id, batch_number, barcode, input_quantity, output_quantity, inventory,
                             date_of_manufacture, expiry_date, created_at, updated_at)
VALUES ($1, $2, $2, $3, 0, $3, $4, $5, $6, $6)
ON CONFLICT ON CONSTRAINT product_details_product_batch_key DO UPDATE
SET input_quantity = product_details.input_quantity + EXCLUDED.input_quantity,
    inventory      = product_details.input_quantity + EXCLUDED.input_quantity - product_details.output_quantity,
    updated_at     = EXCLUDED.updated_at
RETURNING id, product_id, batch_number, barcode, input_quantity, output_quantity, inventory,
          date_of_manufacture, expiry_date, created_at, updated_at, (xmax = 0) AS created`

type mergeRow struct {
	Batch
	Created bool `db:"created"`
}

// MergeBatch adds quantity to the (product, batch number) lot, creating it when new.
func (r *Repository) MergeBatch(ctx context.Context, in MergeInput) (MergeResult, error) {
	if err := in.Validate(); err != nil {
		return MergeResult{}, err
	}
	var row mergeRow
	err := pgxscan.Get(ctx, r.pool, &row, mergeBatchSQL,
		in.ProductID.String(), in.BatchNumber, in.Quantity, in.ManufacturedAt, in.ExpiresAt, in.At)
	if err != nil {
		return MergeResult{}, fmt.Errorf("inventory: merge batch %s/%s: %w", in.ProductID, in.BatchNumber, err)
	}
	return MergeResult{Batch: row.Batch, Created: row.Created}, nil
}

// ListBatches returns the batches of a product, soonest expiry first.
func (r *Repository) ListBatches(ctx context.Context, productID uuid.UUID) ([]Batch, error) {
	q := psql.Select(batchColumns...).
		From("product_details").
		Where(squirrel.Eq{"product_id": productID.String()}).
		OrderBy("expiry_date ASC", "batch_number ASC")
	return selectAll[Batch](ctx, r.pool, q)
}

func expiringBefore(cutoff time.Time) squirrel.And {
	return squirrel.And{squirrel.Gt{"inventory": 0}, squirrel.LtOrEq{"expiry_date": cutoff}}
}

// ListExpiring returns batches with stock on hand that expire before cutoff.
func (r *Repository) ListExpiring(ctx context.Context, cutoff time.Time, limit uint64) ([]Batch, error) {
	q := psql.Select(batchColumns...).
		From("product_details").
		Where(expiringBefore(cutoff)).
		OrderBy("expiry_date ASC").
		Limit(limit)
	return selectAll[Batch](ctx, r.pool, q)
}

// CountExpiring counts every batch with stock on hand that expires before cutoff.
func (r *Repository) CountExpiring(ctx context.Context, cutoff time.Time) (int64, error) {
	sql, args, err := psql.Select("COUNT(*)").
		From("product_details").
		Where(expiringBefore(cutoff)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("inventory: build expiring count: %w", err)
	}
	var n int64
	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("inventory: count expiring: %w", err)
	}
	return n, nil
}

// InsertStockHistory appends a stock ledger entry.
func (r *Repository) InsertStockHistory(ctx context.Context, h StockHistory) error {
	var related any
	if h.RelatedReceiptID != nil {
		related = h.RelatedReceiptID.String()
	}
	sql, args, err := psql.Insert("stock_history").
		Columns("product_id", "batch_number", "action", "quantity", "related_receipt_id", "note", "user_name", "created_at").
		Values(h.ProductID.String(), h.BatchNumber, string(h.Action), h.Quantity, related, h.Note, h.UserName, h.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("inventory: build stock history insert: %w", err)
	}
	if _, err := r.pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("inventory: insert stock history: %w", err)
	}
	return nil
}

// InsertPriceHistory appends a price ledger entry.
func (r *Repository) InsertPriceHistory(ctx context.Context, h PriceHistory) error {
	sql, args, err := psql.Insert("price_history").
		Columns("product_id", "old_input_price", "new_input_price", "old_output_price", "new_output_price", "changed_at", "user_name", "note").
		Values(h.ProductID.String(), h.OldInputPrice, h.NewInputPrice, h.OldOutputPrice, h.NewOutputPrice, h.ChangedAt, h.UserName, h.Note).
		ToSql()
	if err != nil {
		return fmt.Errorf("inventory: build price history insert: %w", err)
	}
	if _, err := r.pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("inventory: insert price history: %w", err)
	}
	return nil
}

// ListStockHistory returns the newest stock ledger entries of a product.
func (r *Repository) ListStockHistory(ctx context.Context, productID uuid.UUID, limit uint64) ([]StockHistory, error) {
	q := psql.Select("id", "product_id", "batch_number", "action", "quantity", "related_receipt_id", "note", "user_name", "created_at").
		From("stock_history").
		Where(squirrel.Eq{"product_id": productID.String()}).
		OrderBy("created_at DESC").
		Limit(limit)
	return selectAll[StockHistory](ctx, r.pool, q)
}

// ListPriceHistory returns the newest price ledger entries of a product.
func (r *Repository) ListPriceHistory(ctx context.Context, productID uuid.UUID, limit uint64) ([]PriceHistory, error) {
	q := psql.Select("id", "product_id", "old_input_price", "new_input_price", "old_output_price", "new_output_price", "changed_at", "user_name", "note").
		From("price_history").
		Where(squirrel.Eq{"product_id": productID.String()}).
		OrderBy("changed_at DESC").
		Limit(limit)
	return selectAll[PriceHistory](ctx, r.pool, q)
}

func selectAll[T any](ctx context.Context, db pgxscan.Querier, q squirrel.SelectBuilder) ([]T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("inventory: build query: %w", err)
	}
	items := []T{}
	if err := pgxscan.Select(ctx, db, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("inventory: select: %w", err)
	}
	return items, nil
}
