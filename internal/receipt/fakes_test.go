package receipt

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-retail/internal/inventory"
	"github.com/odyssey-erp/odyssey-retail/internal/masterdata"
	"github.com/odyssey-erp/odyssey-retail/internal/orderform"
)

var errBoom = errors.New("boom")

// memoryWorld backs every port of Service with maps.
type memoryWorld struct {
	mu         sync.Mutex
	suppliers  map[uuid.UUID]masterdata.Supplier
	products   map[uuid.UUID]masterdata.Product
	categories map[uuid.UUID]masterdata.Category
	units      map[uuid.UUID]masterdata.Unit
	forms      map[uuid.UUID]orderform.Status
	batches    map[string]*inventory.Batch
	stock      []inventory.StockHistory
	prices     []inventory.PriceHistory
	receipts   []WarehouseReceipt
	listCalls  int

	failMerge    map[string]bool
	failPrices   bool
	failComplete bool
	failSetCode  bool
	failCreate   error
}

func newMemoryWorld() *memoryWorld {
	return &memoryWorld{
		suppliers:  map[uuid.UUID]masterdata.Supplier{},
		products:   map[uuid.UUID]masterdata.Product{},
		categories: map[uuid.UUID]masterdata.Category{},
		units:      map[uuid.UUID]masterdata.Unit{},
		forms:      map[uuid.UUID]orderform.Status{},
		batches:    map[string]*inventory.Batch{},
		failMerge:  map[string]bool{},
	}
}

func batchKey(productID uuid.UUID, batch string) string {
	return productID.String() + "|" + batch
}

func (m *memoryWorld) GetSupplier(ctx context.Context, id uuid.UUID) (masterdata.Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.suppliers[id]
	if !ok {
		return masterdata.Supplier{}, masterdata.ErrNotFound
	}
	return s, nil
}

func (m *memoryWorld) GetProduct(ctx context.Context, id uuid.UUID) (masterdata.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return masterdata.Product{}, masterdata.ErrNotFound
	}
	return p, nil
}

func (m *memoryWorld) GetCategory(ctx context.Context, id uuid.UUID) (masterdata.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return masterdata.Category{}, masterdata.ErrNotFound
	}
	return c, nil
}

func (m *memoryWorld) GetUnit(ctx context.Context, id uuid.UUID) (masterdata.Unit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.units[id]
	if !ok {
		return masterdata.Unit{}, masterdata.ErrNotFound
	}
	return u, nil
}

func (m *memoryWorld) MissingProducts(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var missing []uuid.UUID
	for _, id := range ids {
		if _, ok := m.products[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (m *memoryWorld) UpdateProductPrices(ctx context.Context, id uuid.UUID, input, output decimal.Decimal, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPrices {
		return errBoom
	}
	p, ok := m.products[id]
	if !ok {
		return masterdata.ErrNotFound
	}
	p.InputPrice, p.OutputPrice, p.UpdatedAt = input, output, at
	m.products[id] = p
	return nil
}

func (m *memoryWorld) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.forms[id]
	return ok, nil
}

func (m *memoryWorld) MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failComplete {
		return errBoom
	}
	if _, ok := m.forms[id]; !ok {
		return orderform.ErrNotFound
	}
	m.forms[id] = orderform.StatusCompleted
	return nil
}

func (m *memoryWorld) MergeBatch(ctx context.Context, in inventory.MergeInput) (inventory.MergeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := in.Validate(); err != nil {
		return inventory.MergeResult{}, err
	}
	if m.failMerge[in.BatchNumber] {
		return inventory.MergeResult{}, errBoom
	}
	key := batchKey(in.ProductID, in.BatchNumber)
	if b, ok := m.batches[key]; ok {
		b.InputQuantity = b.InputQuantity.Add(in.Quantity)
		b.Inventory = b.InputQuantity.Sub(b.OutputQuantity)
		b.UpdatedAt = in.At
		return inventory.MergeResult{Batch: *b}, nil
	}
	b := &inventory.Batch{
		ID:                uuid.New(),
		ProductID:         in.ProductID,
		BatchNumber:       in.BatchNumber,
		Barcode:           in.BatchNumber,
		InputQuantity:     in.Quantity,
		OutputQuantity:    decimal.Zero,
		Inventory:         in.Quantity,
		DateOfManufacture: in.ManufacturedAt,
		ExpiryDate:        in.ExpiresAt,
		CreatedAt:         in.At,
		UpdatedAt:         in.At,
	}
	m.batches[key] = b
	return inventory.MergeResult{Batch: *b, Created: true}, nil
}

func (m *memoryWorld) InsertStockHistory(ctx context.Context, h inventory.StockHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stock = append(m.stock, h)
	return nil
}

func (m *memoryWorld) InsertPriceHistory(ctx context.Context, h inventory.PriceHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices = append(m.prices, h)
	return nil
}

func (m *memoryWorld) ExistsForOrderForm(ctx context.Context, orderFormID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.receipts {
		if r.SupplierReceiptID == orderFormID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryWorld) Create(ctx context.Context, in NewReceipt) (WarehouseReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return WarehouseReceipt{}, m.failCreate
	}
	for _, r := range m.receipts {
		if r.SupplierReceiptID == in.SupplierReceiptID {
			return WarehouseReceipt{}, ErrDuplicateReceipt
		}
	}
	rec := WarehouseReceipt{
		ID:                uuid.New(),
		SupplierID:        in.SupplierID,
		SupplierReceiptID: in.SupplierReceiptID,
		ReceiptCode:       in.ReceiptCode,
		ProductDetails:    in.ProductDetails,
		UserName:          in.UserName,
		CreatedAt:         in.At,
		UpdatedAt:         in.At,
	}
	m.receipts = append(m.receipts, rec)
	return rec, nil
}

func (m *memoryWorld) SetCode(ctx context.Context, id uuid.UUID, code string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSetCode {
		return errBoom
	}
	for i := range m.receipts {
		if m.receipts[i].ID == id {
			m.receipts[i].ReceiptCode = code
			m.receipts[i].UpdatedAt = at
			return nil
		}
	}
	return ErrNotFound
}

func (m *memoryWorld) Get(ctx context.Context, id uuid.UUID) (WarehouseReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.receipts {
		if r.ID == id {
			return r, nil
		}
	}
	return WarehouseReceipt{}, ErrNotFound
}

func (m *memoryWorld) List(ctx context.Context, window *Range) ([]WarehouseReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	out := []WarehouseReceipt{}
	for i := len(m.receipts) - 1; i >= 0; i-- {
		r := m.receipts[i]
		if window != nil && (r.CreatedAt.Before(window.From) || !r.CreatedAt.Before(window.To)) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *memoryWorld) DeleteAll(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.receipts))
	m.receipts = nil
	return n, nil
}

func (m *memoryWorld) batch(productID uuid.UUID, batch string) (inventory.Batch, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[batchKey(productID, batch)]
	if !ok {
		return inventory.Batch{}, false
	}
	return *b, true
}

type stubLocker struct {
	err      error
	acquired []string
	released int
}

func (l *stubLocker) Acquire(ctx context.Context, key string) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}
	l.acquired = append(l.acquired, key)
	return func() { l.released++ }, nil
}

// fixture is a seeded world: one supplier, one pending order form, a product in a
// 20% category and a carton unit of 10.
type fixture struct {
	world     *memoryWorld
	supplier  uuid.UUID
	orderForm uuid.UUID
	product   uuid.UUID
	category  uuid.UUID
	carton    uuid.UUID
	piece     uuid.UUID
	now       time.Time
}

func newFixture() *fixture {
	f := &fixture{
		world:     newMemoryWorld(),
		supplier:  uuid.New(),
		orderForm: uuid.New(),
		product:   uuid.New(),
		category:  uuid.New(),
		carton:    uuid.New(),
		piece:     uuid.New(),
		now:       time.Date(2024, 3, 5, 3, 0, 0, 0, time.UTC),
	}
	cat := f.category
	f.world.suppliers[f.supplier] = masterdata.Supplier{ID: f.supplier, Name: "Acme"}
	f.world.forms[f.orderForm] = orderform.StatusPending
	f.world.categories[f.category] = masterdata.Category{ID: f.category, Name: "Dairy", Discount: decimal.NewFromInt(20)}
	f.world.products[f.product] = masterdata.Product{ID: f.product, CategoryID: &cat, Name: "Milk", InputPrice: decimal.NewFromInt(900), OutputPrice: decimal.NewFromInt(1080)}
	f.world.units[f.carton] = masterdata.Unit{ID: f.carton, Name: "carton", Equal: decimal.NewNullDecimal(decimal.NewFromInt(10))}
	f.world.units[f.piece] = masterdata.Unit{ID: f.piece, Name: "piece"}
	return f
}

func (f *fixture) service(opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	svc := NewService(f.world, f.world, f.world, f.world, opts)
	svc.now = func() time.Time { return f.now }
	return svc
}

func (f *fixture) line(productID, unitID uuid.UUID, qty int64, price string) LineInput {
	return LineInput{
		ProductID:  productID.String(),
		UnitID:     unitID.String(),
		Quantity:   decimal.NewFromInt(qty),
		InputPrice: []byte(price),
	}
}

func (f *fixture) input(lines ...LineInput) CreateInput {
	return CreateInput{
		SupplierID:        f.supplier.String(),
		SupplierReceiptID: f.orderForm.String(),
		ProductDetails:    lines,
		UserName:          "kho1",
	}
}
