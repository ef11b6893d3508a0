package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-retail/internal/inventory"
	jobmetrics "github.com/odyssey-erp/odyssey-retail/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

const defaultExpiryWindowDays = 30

// ExpiringLister finds stocked batches expiring inside a window.
type ExpiringLister interface {
	ExpiringWithin(ctx context.Context, window time.Duration, limit int) ([]inventory.Batch, error)
	CountExpiringWithin(ctx context.Context, window time.Duration) (int64, error)
}

// ExpiryScanJob logs and counts batches that are about to expire.
type ExpiryScanJob struct {
	Inventory ExpiringLister
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// NewExpiryScanJob wires dependencies for the expiry scan handler.
func NewExpiryScanJob(lister ExpiringLister, logger *slog.Logger, metrics *jobmetrics.Metrics) *ExpiryScanJob {
	return &ExpiryScanJob{Inventory: lister, Logger: logger, Metrics: metrics}
}

// Handle processes expiry scan tasks.
func (j *ExpiryScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Inventory == nil {
		return errors.New("expiry scan: handler not configured")
	}
	var payload ExpiryScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.WindowDays <= 0 {
		payload.WindowDays = defaultExpiryWindowDays
	}

	metrics := j.metrics()
	tracker := metrics.Track(TaskInventoryExpiryScan)
	logger := j.logger().With(slog.Int("window_days", payload.WindowDays))

	window := time.Duration(payload.WindowDays) * 24 * time.Hour
	total, err := j.Inventory.CountExpiringWithin(ctx, window)
	if err != nil {
		logger.Error("count expiring batches", slog.Any("error", err))
		return tracker.End(err)
	}
	batches, err := j.Inventory.ExpiringWithin(ctx, window, payload.Limit)
	if err != nil {
		logger.Error("list expiring batches", slog.Any("error", err))
		return tracker.End(err)
	}
	for _, b := range batches {
		logger.Warn("batch expiring",
			slog.String("product_id", b.ProductID.String()),
			slog.String("batch_number", b.BatchNumber),
			slog.String("inventory", b.Inventory.String()),
			slog.Time("expiry_date", b.ExpiryDate))
	}
	metrics.SetExpiringBatches(total)
	logger.Info("expiry scan completed", slog.Int64("batches", total), slog.Int("listed", len(batches)))
	return tracker.End(nil)
}

func (j *ExpiryScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskInventoryExpiryScan))
	}
	return slog.Default().With(slog.String("job", TaskInventoryExpiryScan))
}

func (j *ExpiryScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
