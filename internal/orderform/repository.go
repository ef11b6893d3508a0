package orderform

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-retail/internal/platform/db"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repository provides PostgreSQL backed persistence for order forms.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get returns the order form header and its lines.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (OrderForm, error) {
	sql, args, err := psql.Select("id", "supplier_id", "status", "created_at", "updated_at").
		From("order_forms").
		Where(squirrel.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return OrderForm{}, fmt.Errorf("orderform: build query: %w", err)
	}
	var form OrderForm
	if err := pgxscan.Get(ctx, r.pool, &form, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return OrderForm{}, ErrNotFound
		}
		return OrderForm{}, fmt.Errorf("orderform: get: %w", err)
	}

	sql, args, err = psql.Select("product_id", "unit_id", "quantity", "input_price", "note").
		From("order_form_lines").
		Where(squirrel.Eq{"order_form_id": id.String()}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return OrderForm{}, fmt.Errorf("orderform: build lines query: %w", err)
	}
	if err := pgxscan.Select(ctx, r.pool, &form.Lines, sql, args...); err != nil {
		return OrderForm{}, fmt.Errorf("orderform: lines: %w", err)
	}
	return form, nil
}

// Exists reports whether the order form is present.
func (r *Repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM order_forms WHERE id = $1)`, id.String()).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("orderform: exists: %w", err)
	}
	return ok, nil
}

// MarkCompleted moves the order form to its terminal status.
func (r *Repository) MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE order_forms SET status = $2, updated_at = $3 WHERE id = $1`, id.String(), string(StatusCompleted), at)
	if err != nil {
		return fmt.Errorf("orderform: mark completed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the order form together with its lines.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM order_form_lines WHERE order_form_id = $1`, id.String()); err != nil {
			return fmt.Errorf("orderform: delete lines: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM order_forms WHERE id = $1`, id.String())
		if err != nil {
			return fmt.Errorf("orderform: delete: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}
