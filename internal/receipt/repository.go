package receipt

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-retail/internal/platform/db"
)

// uniqueOrderFormConstraint guarantees one receipt per order form.
const uniqueOrderFormConstraint = "warehouse_receipts_supplier_receipt_key"

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var receiptColumns = []string{
	"id", "supplier_id", "supplier_receipt_id", "receipt_code", "product_details",
	"user_name", "created_at", "updated_at",
}

// Repository persists warehouse receipts in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ExistsForOrderForm reports whether a receipt already consumed the order form.
func (r *Repository) ExistsForOrderForm(ctx context.Context, orderFormID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM warehouse_receipts WHERE supplier_receipt_id = $1)`,
		orderFormID.String()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("receipt: exists for order form: %w", err)
	}
	return exists, nil
}

// Create inserts a receipt. A second receipt for the same order form fails with
// ErrDuplicateReceipt.
func (r *Repository) Create(ctx context.Context, in NewReceipt) (WarehouseReceipt, error) {
	sql, args, err := psql.Insert("warehouse_receipts").
		Columns("supplier_id", "supplier_receipt_id", "receipt_code", "product_details", "user_name", "created_at", "updated_at").
		Values(in.SupplierID.String(), in.SupplierReceiptID.String(), in.ReceiptCode, []byte(in.ProductDetails), in.UserName, in.At, in.At).
		Suffix("RETURNING id, supplier_id, supplier_receipt_id, receipt_code, product_details, user_name, created_at, updated_at").
		ToSql()
	if err != nil {
		return WarehouseReceipt{}, fmt.Errorf("receipt: build insert: %w", err)
	}
	var rec WarehouseReceipt
	if err := pgxscan.Get(ctx, r.pool, &rec, sql, args...); err != nil {
		if db.IsUniqueViolation(err, uniqueOrderFormConstraint) {
			return WarehouseReceipt{}, ErrDuplicateReceipt
		}
		return WarehouseReceipt{}, fmt.Errorf("receipt: insert: %w", err)
	}
	return rec, nil
}

// SetCode stores the receipt code computed after insertion.
func (r *Repository) SetCode(ctx context.Context, id uuid.UUID, code string, at time.Time) error {
	sql, args, err := psql.Update("warehouse_receipts").
		Set("receipt_code", code).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("receipt: build code update: %w", err)
	}
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("receipt: set code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Get loads a receipt by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (WarehouseReceipt, error) {
	sql, args, err := psql.Select(receiptColumns...).From("warehouse_receipts").
		Where(squirrel.Eq{"id": id.String()}).Limit(1).ToSql()
	if err != nil {
		return WarehouseReceipt{}, fmt.Errorf("receipt: build get: %w", err)
	}
	var rec WarehouseReceipt
	if err := pgxscan.Get(ctx, r.pool, &rec, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return WarehouseReceipt{}, ErrNotFound
		}
		return WarehouseReceipt{}, fmt.Errorf("receipt: get: %w", err)
	}
	return rec, nil
}

// List returns receipts created inside window, newest first. A nil window lists all.
func (r *Repository) List(ctx context.Context, window *Range) ([]WarehouseReceipt, error) {
	q := psql.Select(receiptColumns...).From("warehouse_receipts").OrderBy("created_at DESC", "id DESC")
	if window != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": window.From}).Where(squirrel.Lt{"created_at": window.To})
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("receipt: build list: %w", err)
	}
	receipts := []WarehouseReceipt{}
	if err := pgxscan.Select(ctx, r.pool, &receipts, sql, args...); err != nil {
		return nil, fmt.Errorf("receipt: list: %w", err)
	}
	return receipts, nil
}

// DeleteAll removes every receipt and returns how many were deleted.
func (r *Repository) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM warehouse_receipts`)
	if err != nil {
		return 0, fmt.Errorf("receipt: delete all: %w", err)
	}
	return tag.RowsAffected(), nil
}
