package receipt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/odyssey-erp/odyssey-retail/internal/inventory"
	"github.com/odyssey-erp/odyssey-retail/internal/masterdata"
	"github.com/odyssey-erp/odyssey-retail/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-retail/internal/platform/lock"
)

var tracer = otel.Tracer("odyssey/receipt")

// ReasonLookupFailed marks a line skipped because master data could not be read.
const ReasonLookupFailed = "lookup_failed"

// Store persists warehouse receipts.
type Store interface {
	ExistsForOrderForm(ctx context.Context, orderFormID uuid.UUID) (bool, error)
	Create(ctx context.Context, in NewReceipt) (WarehouseReceipt, error)
	SetCode(ctx context.Context, id uuid.UUID, code string, at time.Time) error
	Get(ctx context.Context, id uuid.UUID) (WarehouseReceipt, error)
	List(ctx context.Context, window *Range) ([]WarehouseReceipt, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// MasterData reads referenced entities and maintains product prices.
type MasterData interface {
	GetSupplier(ctx context.Context, id uuid.UUID) (masterdata.Supplier, error)
	GetProduct(ctx context.Context, id uuid.UUID) (masterdata.Product, error)
	GetCategory(ctx context.Context, id uuid.UUID) (masterdata.Category, error)
	GetUnit(ctx context.Context, id uuid.UUID) (masterdata.Unit, error)
	MissingProducts(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
	UpdateProductPrices(ctx context.Context, id uuid.UUID, input, output decimal.Decimal, at time.Time) error
}

// OrderForms checks and completes order forms.
type OrderForms interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time) error
}

// Inventory merges batches and appends ledger entries.
type Inventory interface {
	MergeBatch(ctx context.Context, in inventory.MergeInput) (inventory.MergeResult, error)
	InsertStockHistory(ctx context.Context, h inventory.StockHistory) error
	InsertPriceHistory(ctx context.Context, h inventory.PriceHistory) error
}

// Locker leases a named lock.
type Locker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

// Options carries the optional collaborators of Service.
type Options struct {
	Logger   *slog.Logger
	Location *time.Location
	Locker   Locker
	Cache    *cache.Versioned
	Metrics  *Metrics
}

// Service runs the warehouse receipt workflow.
type Service struct {
	receipts   Store
	master     MasterData
	orderForms OrderForms
	stock      Inventory
	locker     Locker
	cache      *cache.Versioned
	metrics    *Metrics
	logger     *slog.Logger
	loc        *time.Location
	now        func() time.Time
}

// NewService wires the receipt workflow.
func NewService(receipts Store, master MasterData, orderForms OrderForms, stock Inventory, opts Options) *Service {
	svc := &Service{
		receipts:   receipts,
		master:     master,
		orderForms: orderForms,
		stock:      stock,
		locker:     opts.Locker,
		cache:      opts.Cache,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
		loc:        opts.Location,
		now:        time.Now,
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	if svc.loc == nil {
		svc.loc = time.UTC
	}
	return svc
}

// Create validates and records a receipt, then applies its lines to inventory one
// by one. Lines whose product or unit is gone are skipped and reported; a failing
// batch merge aborts the remaining lines.
func (s *Service) Create(ctx context.Context, in CreateInput) (Result, error) {
	ctx, span := tracer.Start(ctx, "receipt.create",
		trace.WithAttributes(attribute.Int("receipt.lines", len(in.ProductDetails))))
	defer span.End()

	res, err := s.create(ctx, in)
	s.metrics.observeLines(res.LineResults)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.observeReceipt(outcome(err))
		return res, err
	}
	span.SetAttributes(attribute.String("receipt.id", res.ID.String()))
	s.metrics.observeReceipt("created")
	return res, nil
}

func (s *Service) create(ctx context.Context, in CreateInput) (Result, error) {
	p, err := prepare(in)
	if err != nil {
		return Result{}, err
	}
	if err := s.validateReferences(ctx, p); err != nil {
		return Result{}, err
	}

	release, err := s.acquire(ctx, p.orderFormID)
	if err != nil {
		return Result{}, err
	}
	defer release()

	if err := s.guardUnique(ctx, p.orderFormID); err != nil {
		return Result{}, err
	}

	rec, err := s.persist(ctx, p, in)
	if err != nil {
		return Result{}, err
	}
	defer s.invalidateList(ctx)

	userName := strings.TrimSpace(in.UserName)
	if userName == "" {
		userName = UnspecifiedUser
	}
	result := Result{WarehouseReceipt: rec, LineResults: make([]LineResult, 0, len(p.lines))}
	for _, line := range p.lines {
		lr, err := s.reconcileLine(ctx, rec, line, userName)
		result.LineResults = append(result.LineResults, lr)
		if err != nil {
			return result, err
		}
	}

	result.OrderFormCompleted = s.completeOrderForm(ctx, p.orderFormID)
	return result, nil
}

func (s *Service) validateReferences(ctx context.Context, p prepared) error {
	if _, err := s.master.GetSupplier(ctx, p.supplierID); err != nil {
		if errors.Is(err, masterdata.ErrNotFound) {
			return &MissingError{Kind: "supplier", IDs: []string{p.supplierID.String()}}
		}
		return fmt.Errorf("receipt: load supplier: %w", err)
	}
	exists, err := s.orderForms.Exists(ctx, p.orderFormID)
	if err != nil {
		return fmt.Errorf("receipt: load order form: %w", err)
	}
	if !exists {
		return &MissingError{Kind: "order form", IDs: []string{p.orderFormID.String()}}
	}
	missing, err := s.master.MissingProducts(ctx, p.productIDs())
	if err != nil {
		return fmt.Errorf("receipt: check products: %w", err)
	}
	if len(missing) > 0 {
		ids := make([]string, len(missing))
		for i, id := range missing {
			ids[i] = id.String()
		}
		return &MissingError{Kind: "product", IDs: ids}
	}
	return nil
}

func lockKey(orderFormID uuid.UUID) string {
	return "receipt:order-form:" + orderFormID.String() + ":lock"
}

// acquire leases the order form for this request. Lock backend failures only
// log; the unique index still rejects a second receipt.
func (s *Service) acquire(ctx context.Context, orderFormID uuid.UUID) (func(), error) {
	noop := func() {}
	if s.locker == nil {
		return noop, nil
	}
	release, err := s.locker.Acquire(ctx, lockKey(orderFormID))
	switch {
	case err == nil:
		return release, nil
	case errors.Is(err, lock.ErrHeld):
		return nil, duplicate(orderFormID)
	default:
		s.logger.Warn("receipt lock unavailable", slog.String("order_form_id", orderFormID.String()), slog.Any("error", err))
		return noop, nil
	}
}

func (s *Service) guardUnique(ctx context.Context, orderFormID uuid.UUID) error {
	exists, err := s.receipts.ExistsForOrderForm(ctx, orderFormID)
	if err != nil {
		return fmt.Errorf("receipt: uniqueness check: %w", err)
	}
	if exists {
		return duplicate(orderFormID)
	}
	return nil
}

func duplicate(orderFormID uuid.UUID) error {
	return &FieldError{Err: ErrDuplicateReceipt, Field: "supplier_receipt_id", Value: orderFormID.String()}
}

func (s *Service) persist(ctx context.Context, p prepared, in CreateInput) (WarehouseReceipt, error) {
	snapshot, err := in.Snapshot()
	if err != nil {
		return WarehouseReceipt{}, fmt.Errorf("%w: snapshot lines: %w", ErrPersistence, err)
	}
	rec, err := s.receipts.Create(ctx, NewReceipt{
		SupplierID:        p.supplierID,
		SupplierReceiptID: p.orderFormID,
		ReceiptCode:       strings.TrimSpace(in.ReceiptCode),
		ProductDetails:    snapshot,
		UserName:          strings.TrimSpace(in.UserName),
		At:                s.now(),
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateReceipt) {
			return WarehouseReceipt{}, duplicate(p.orderFormID)
		}
		return WarehouseReceipt{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	code := ReceiptCode(rec.ID.String(), rec.CreatedAt.In(s.loc))
	at := s.now()
	if err := s.receipts.SetCode(ctx, rec.ID, code, at); err != nil {
		s.logger.Warn("receipt code backfill failed", slog.String("receipt_id", rec.ID.String()), slog.Any("error", err))
		return rec, nil
	}
	rec.ReceiptCode = code
	rec.UpdatedAt = at
	return rec, nil
}

func (s *Service) reconcileLine(ctx context.Context, rec WarehouseReceipt, line preparedLine, userName string) (LineResult, error) {
	ctx, span := tracer.Start(ctx, "receipt.line", trace.WithAttributes(
		attribute.Int("line.index", line.index),
		attribute.String("line.product_id", line.productID.String()),
	))
	defer span.End()

	res := LineResult{Index: line.index, ProductID: line.productID.String(), Status: LineApplied, Quantity: decimal.Zero}
	log := s.logger.With(slog.String("receipt_id", rec.ID.String()), slog.Int("line", line.index), slog.String("product_id", res.ProductID))

	product, err := s.master.GetProduct(ctx, line.productID)
	if err != nil {
		return s.skip(log, res, ReasonProductNotFound, err), nil
	}
	unit, err := s.master.GetUnit(ctx, line.unitID)
	if err != nil {
		return s.skip(log, res, ReasonUnitNotFound, err), nil
	}

	discount := decimal.Zero
	if product.CategoryID == nil {
		res.Warnings = append(res.Warnings, WarnCategoryMissing)
	} else if category, err := s.master.GetCategory(ctx, *product.CategoryID); err != nil {
		log.Warn("category unavailable, no markup applied", slog.Any("error", err))
		res.Warnings = append(res.Warnings, WarnCategoryMissing)
	} else {
		discount = category.Discount
	}

	now := s.now()
	local := now.In(s.loc)
	res.BatchNumber = BatchNumber(line.input.BatchNumber, line.productID, local)
	mfg, exp, dateWarnings := LineDates(line.input.DateOfManufacture, line.input.ExpiryDate, local)
	if len(dateWarnings) > 0 {
		log.Warn("line dates defaulted",
			slog.String("date_of_manufacture", line.input.DateOfManufacture),
			slog.String("expiry_date", line.input.ExpiryDate))
		res.Warnings = append(res.Warnings, dateWarnings...)
	}
	res.Quantity = BaseQuantity(line.quantity, unit)

	merged, err := s.stock.MergeBatch(ctx, inventory.MergeInput{
		ProductID:      line.productID,
		BatchNumber:    res.BatchNumber,
		Quantity:       res.Quantity,
		ManufacturedAt: mfg,
		ExpiresAt:      exp,
		At:             now,
	})
	if err != nil {
		log.Error("batch merge failed", slog.String("batch_number", res.BatchNumber), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch merge failed")
		res.Status = LineFailed
		res.Reason = ReasonBatchMergeFailed
		return res, &BatchError{Index: line.index, ProductID: res.ProductID, BatchNumber: res.BatchNumber, Err: err}
	}
	res.BatchCreated = merged.Created

	output := OutputPrice(line.price, discount)
	if err := s.master.UpdateProductPrices(ctx, line.productID, line.price, output, now); err != nil {
		log.Error("product price update failed", slog.Any("error", err))
		res.Status = LinePartial
		res.Reason = ReasonPriceUpdateFailed
		return res, nil
	}

	s.recordAudit(ctx, log, &res, rec, line, product, output, userName, now)
	return res, nil
}

func (s *Service) skip(log *slog.Logger, res LineResult, reason string, err error) LineResult {
	if !errors.Is(err, masterdata.ErrNotFound) {
		reason = ReasonLookupFailed
	}
	log.Warn("receipt line skipped", slog.String("reason", reason), slog.Any("error", err))
	res.Status = LineSkipped
	res.Reason = reason
	return res
}

func (s *Service) recordAudit(ctx context.Context, log *slog.Logger, res *LineResult, rec WarehouseReceipt, line preparedLine, product masterdata.Product, output decimal.Decimal, userName string, now time.Time) {
	receiptID := rec.ID
	err := s.stock.InsertStockHistory(ctx, inventory.StockHistory{
		ProductID:        line.productID,
		BatchNumber:      res.BatchNumber,
		Action:           inventory.ActionImport,
		Quantity:         res.Quantity,
		RelatedReceiptID: &receiptID,
		Note:             line.input.Note,
		UserName:         userName,
		CreatedAt:        now,
	})
	if err != nil {
		log.Error("stock history not recorded", slog.Any("error", err))
		res.Warnings = append(res.Warnings, WarnStockHistoryFailed)
	}

	if product.InputPrice.Equal(line.price) {
		return
	}
	err = s.stock.InsertPriceHistory(ctx, inventory.PriceHistory{
		ProductID:      line.productID,
		OldInputPrice:  product.InputPrice,
		NewInputPrice:  line.price,
		OldOutputPrice: product.OutputPrice,
		NewOutputPrice: output,
		ChangedAt:      now,
		UserName:       userName,
		Note:           priceNote(rec.ReceiptCode),
	})
	if err != nil {
		log.Error("price history not recorded", slog.Any("error", err))
		res.Warnings = append(res.Warnings, WarnPriceHistoryFailed)
	}
}

func (s *Service) completeOrderForm(ctx context.Context, orderFormID uuid.UUID) bool {
	if err := s.orderForms.MarkCompleted(ctx, orderFormID, s.now()); err != nil {
		s.logger.Error("order form not completed", slog.String("order_form_id", orderFormID.String()), slog.Any("error", err))
		return false
	}
	return true
}

func (s *Service) invalidateList(ctx context.Context) {
	if err := s.cache.Bump(context.WithoutCancel(ctx)); err != nil {
		s.logger.Warn("receipt list cache bump failed", slog.Any("error", err))
	}
}

// Get loads one receipt.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (WarehouseReceipt, error) {
	return s.receipts.Get(ctx, id)
}

// List returns receipts in the requested date bucket, newest first.
func (s *Service) List(ctx context.Context, bucket, customDate string) ([]WarehouseReceipt, error) {
	window, err := DateRange(bucket, customDate, s.now(), s.loc)
	if err != nil {
		return nil, err
	}
	load := func(ctx context.Context) (any, error) {
		return s.receipts.List(ctx, window)
	}
	key, err := s.cache.BuildKey(ctx, "list", listKey(window))
	if err != nil {
		s.logger.Warn("receipt list cache unavailable", slog.Any("error", err))
		return s.receipts.List(ctx, window)
	}
	var out []WarehouseReceipt
	if err := s.cache.FetchJSON(ctx, key, &out, load); err != nil {
		s.logger.Warn("receipt list cache fetch failed", slog.Any("error", err))
		return s.receipts.List(ctx, window)
	}
	return out, nil
}

func listKey(window *Range) string {
	if window == nil {
		return "all"
	}
	return window.From.Format("20060102") + "-" + window.To.Format("20060102")
}

// Warm fills the list cache for the given buckets.
func (s *Service) Warm(ctx context.Context, buckets []string) error {
	var errs []error
	for _, bucket := range buckets {
		if _, err := s.List(ctx, bucket, ""); err != nil {
			errs = append(errs, fmt.Errorf("bucket %q: %w", bucket, err))
		}
	}
	return errors.Join(errs...)
}

// DeleteAll wipes every receipt.
func (s *Service) DeleteAll(ctx context.Context) (int64, error) {
	n, err := s.receipts.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	s.invalidateList(ctx)
	return n, nil
}

func outcome(err error) string {
	for _, candidate := range []struct {
		err  error
		name string
	}{
		{ErrInvalidReference, "invalid_reference"},
		{ErrReferenceNotFound, "reference_not_found"},
		{ErrDuplicateReceipt, "duplicate"},
		{ErrInvalidPrice, "invalid_price"},
		{ErrInvalidQuantity, "invalid_quantity"},
		{ErrPersistence, "persistence_error"},
		{ErrBatchCreation, "batch_error"},
	} {
		if errors.Is(err, candidate.err) {
			return candidate.name
		}
	}
	return "error"
}
