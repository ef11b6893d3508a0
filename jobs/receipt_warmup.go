package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/odyssey-retail/internal/jobs"
)

// ListWarmer fills the receipt list cache for date buckets.
type ListWarmer interface {
	Warm(ctx context.Context, buckets []string) error
}

// ReceiptWarmupJob keeps the warehouse receipt list cache hot.
type ReceiptWarmupJob struct {
	Receipts ListWarmer
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
	Timeout  time.Duration
}

// NewReceiptWarmupJob wires dependencies for the warmup handler.
func NewReceiptWarmupJob(receipts ListWarmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReceiptWarmupJob {
	return &ReceiptWarmupJob{Receipts: receipts, Logger: logger, Metrics: metrics, Timeout: 30 * time.Second}
}

// Handle processes receipt list warmup tasks.
func (j *ReceiptWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Receipts == nil {
		return errors.New("receipt warmup: handler not configured")
	}
	var payload ReceiptWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if len(payload.Buckets) == 0 {
		payload.Buckets = DefaultWarmupBuckets
	}

	tracker := j.metrics().Track(TaskReceiptListWarmup)
	logger := j.logger()

	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}
	start := time.Now()
	if err := j.Receipts.Warm(ctx, payload.Buckets); err != nil {
		logger.Error("warm receipt list", slog.Any("error", err))
		return tracker.End(err)
	}
	logger.Info("receipt list warmed", slog.Int("buckets", len(payload.Buckets)), slog.Duration("duration", time.Since(start)))
	return tracker.End(nil)
}

func (j *ReceiptWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReceiptListWarmup))
	}
	return slog.Default().With(slog.String("job", TaskReceiptListWarmup))
}

func (j *ReceiptWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
