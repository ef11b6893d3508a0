package main

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/odyssey-erp/odyssey-retail/internal/app"
	"github.com/odyssey-erp/odyssey-retail/internal/platform/db"
)

// Fixed identifiers keep the seed idempotent and easy to reference from curl.
var (
	supplierID   = uuid.MustParse("6f1c2b1e-0000-4000-8000-000000000001")
	dairyID      = uuid.MustParse("6f1c2b1e-0000-4000-8000-000000000101")
	snacksID     = uuid.MustParse("6f1c2b1e-0000-4000-8000-000000000102")
	pieceID      = uuid.MustParse("6f1c2b1e-0000-4000-8000-000000000201")
	cartonID     = uuid.MustParse("6f1c2b1e-0000-4000-8000-000000000202")
	milkID       = uuid.MustParse("6f1c2b1e-0000-4000-8000-000000000301")
	chipsID      = uuid.MustParse("6f1c2b1e-0000-4000-8000-000000000302")
	orderFormID  = uuid.MustParse("6f1c2b1e-0000-4000-8000-000000000401")
	orderForm2ID = uuid.MustParse("6f1c2b1e-0000-4000-8000-000000000402")
)

func main() {
	ctx := context.Background()
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	fmt.Println("→ Migrating schema...")
	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	fmt.Println("→ Seeding master data...")
	if err := db.WithTx(ctx, pool, seedMasterData); err != nil {
		log.Fatalf("seed master data: %v", err)
	}

	fmt.Println("→ Seeding order forms...")
	if err := db.WithTx(ctx, pool, seedOrderForms); err != nil {
		log.Fatalf("seed order forms: %v", err)
	}

	fmt.Println("✓ Seed complete")
	fmt.Printf("  supplier_id=%s\n  supplier_receipt_id=%s (and %s)\n  products=%s, %s\n  units=%s (piece), %s (carton x24)\n",
		supplierID, orderFormID, orderForm2ID, milkID, chipsID, pieceID, cartonID)
}

func seedMasterData(tx pgx.Tx) error {
	ctx := context.Background()
	if _, err := tx.Exec(ctx, `
		INSERT INTO suppliers (id, name, address, phone, email)
		VALUES ($1, 'Vinamilk Distribution', '10 Tan Trao, District 7, HCMC', '028 5415 5555', 'orders@example.vn')
		ON CONFLICT (id) DO NOTHING`, supplierID); err != nil {
		return err
	}

	categories := []struct {
		id       uuid.UUID
		name     string
		discount string
	}{
		{dairyID, "Dairy", "15"},
		{snacksID, "Snacks", "25"},
	}
	for _, c := range categories {
		if _, err := tx.Exec(ctx, `
			INSERT INTO categories (id, name, discount) VALUES ($1, $2, $3::numeric)
			ON CONFLICT (id) DO NOTHING`, c.id, c.name, c.discount); err != nil {
			return err
		}
	}

	units := []struct {
		id    uuid.UUID
		name  string
		equal *string
	}{
		{pieceID, "piece", nil},
		{cartonID, "carton", ptr("24")},
	}
	for _, u := range units {
		if _, err := tx.Exec(ctx, `
			INSERT INTO units (id, name, equal) VALUES ($1, $2, $3::numeric)
			ON CONFLICT (id) DO NOTHING`, u.id, u.name, u.equal); err != nil {
			return err
		}
	}

	products := []struct {
		id       uuid.UUID
		category uuid.UUID
		name     string
		input    string
		output   string
	}{
		{milkID, dairyID, "Fresh milk 1L", "28000", "32200"},
		{chipsID, snacksID, "Potato chips 90g", "12000", "15000"},
	}
	for _, p := range products {
		if _, err := tx.Exec(ctx, `
			INSERT INTO products (id, supplier_id, category_id, name, input_price, output_price)
			VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric)
			ON CONFLICT (id) DO NOTHING`, p.id, supplierID, p.category, p.name, p.input, p.output); err != nil {
			return err
		}
	}
	return nil
}

func seedOrderForms(tx pgx.Tx) error {
	ctx := context.Background()
	for _, id := range []uuid.UUID{orderFormID, orderForm2ID} {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_forms (id, supplier_id, status) VALUES ($1, $2, 'pending')
			ON CONFLICT (id) DO NOTHING`, id, supplierID); err != nil {
			return err
		}
	}
	lines := []struct {
		form    uuid.UUID
		product uuid.UUID
		unit    uuid.UUID
		qty     string
	}{
		{orderFormID, milkID, cartonID, "5"},
		{orderFormID, chipsID, pieceID, "40"},
		{orderForm2ID, milkID, pieceID, "12"},
	}
	for _, l := range lines {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_form_lines (order_form_id, product_id, unit_id, quantity)
			SELECT $1, $2, $3, $4::numeric
			WHERE NOT EXISTS (
				SELECT 1 FROM order_form_lines WHERE order_form_id = $1 AND product_id = $2 AND unit_id = $3
			)`, l.form, l.product, l.unit, l.qty); err != nil {
			return err
		}
	}
	return nil
}

func ptr(s string) *string { return &s }
