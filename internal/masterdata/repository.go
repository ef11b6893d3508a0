package masterdata

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repository reads master data and maintains product prices in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetSupplier loads a supplier by id.
func (r *Repository) GetSupplier(ctx context.Context, id uuid.UUID) (Supplier, error) {
	var s Supplier
	err := r.getByID(ctx, &s, "suppliers", id, "id", "name", "address", "phone", "email", "created_at", "updated_at")
	return s, err
}

// GetProduct loads a product by id.
func (r *Repository) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	var p Product
	err := r.getByID(ctx, &p, "products", id, "id", "supplier_id", "category_id", "name", "input_price", "output_price", "created_at", "updated_at")
	return p, err
}

// GetCategory loads a category by id.
func (r *Repository) GetCategory(ctx context.Context, id uuid.UUID) (Category, error) {
	var c Category
	err := r.getByID(ctx, &c, "categories", id, "id", "name", "discount", "created_at", "updated_at")
	return c, err
}

// GetUnit loads a unit by id.
func (r *Repository) GetUnit(ctx context.Context, id uuid.UUID) (Unit, error) {
	var u Unit
	err := r.getByID(ctx, &u, "units", id, "id", "name", "equal", "created_at", "updated_at")
	return u, err
}

func (r *Repository) getByID(ctx context.Context, dest any, table string, id uuid.UUID, cols ...string) error {
	sql, args, err := psql.Select(cols...).From(table).Where(squirrel.Eq{"id": id.String()}).Limit(1).ToSql()
	if err != nil {
		return fmt.Errorf("masterdata: build %s query: %w", table, err)
	}
	if err := pgxscan.Get(ctx, r.pool, dest, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("masterdata: get %s: %w", table, err)
	}
	return nil
}

// MissingProducts returns the ids from ids that have no product row, in input order.
func (r *Repository) MissingProducts(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}
	rows, err := r.pool.Query(ctx, `SELECT id::text FROM products WHERE id = ANY($1::uuid[])`, raw)
	if err != nil {
		return nil, fmt.Errorf("masterdata: product set: %w", err)
	}
	defer rows.Close()
	found := make(map[string]struct{}, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	var missing []uuid.UUID
	for _, id := range ids {
		if _, ok := found[id.String()]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// UpdateProductPrices overwrites both prices of a product.
func (r *Repository) UpdateProductPrices(ctx context.Context, id uuid.UUID, input, output decimal.Decimal, at time.Time) error {
	sql, args, err := psql.Update("products").
		Set("input_price", input).
		Set("output_price", output).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("masterdata: build price update: %w", err)
	}
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("masterdata: update prices: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
