package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-retail/internal/inventory"
	jobmetrics "github.com/odyssey-erp/odyssey-retail/internal/jobs"
	_ "github.com/odyssey-erp/odyssey-retail/testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubLister struct {
	window  time.Duration
	batches []inventory.Batch
	total   int64
	err     error
}

func (s *stubLister) CountExpiringWithin(ctx context.Context, window time.Duration) (int64, error) {
	s.window = window
	if s.err != nil {
		return 0, s.err
	}
	if s.total == 0 {
		return int64(len(s.batches)), nil
	}
	return s.total, nil
}

func (s *stubLister) ExpiringWithin(ctx context.Context, window time.Duration, limit int) ([]inventory.Batch, error) {
	s.window = window
	return s.batches, s.err
}

type stubWarmer struct {
	buckets []string
	err     error
}

func (s *stubWarmer) Warm(ctx context.Context, buckets []string) error {
	s.buckets = buckets
	return s.err
}

func scrape(t *testing.T, registry *prometheus.Registry) string {
	t.Helper()
	rr := httptest.NewRecorder()
	promhttp.HandlerFor(registry, promhttp.HandlerOpts{}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rr.Body.String()
}

func TestExpiryScanSetsGauge(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(registry)
	lister := &stubLister{batches: []inventory.Batch{
		{BatchNumber: "A", Inventory: decimal.NewFromInt(3)},
		{BatchNumber: "B", Inventory: decimal.NewFromInt(1)},
	}}
	job := NewExpiryScanJob(lister, discardLogger(), metrics)

	task, err := NewExpiryScanTask(14)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, 14*24*time.Hour, lister.window)

	body := scrape(t, registry)
	require.Contains(t, body, "odyssey_inventory_expiring_batches 2")
	require.Contains(t, body, `odyssey_jobs_total{job="inventory:expiry_scan",status="success"} 1`)
}

func TestExpiryScanGaugeCountsBeyondListedSample(t *testing.T) {
	registry := prometheus.NewRegistry()
	lister := &stubLister{
		batches: []inventory.Batch{{BatchNumber: "A", Inventory: decimal.NewFromInt(3)}},
		total:   120,
	}
	job := NewExpiryScanJob(lister, discardLogger(), jobmetrics.NewMetrics(registry))

	task, err := NewExpiryScanTask(30)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	require.Contains(t, scrape(t, registry), "odyssey_inventory_expiring_batches 120")
}

func TestExpiryScanDefaultsWindowAndReportsFailure(t *testing.T) {
	registry := prometheus.NewRegistry()
	lister := &stubLister{err: errors.New("db down")}
	job := NewExpiryScanJob(lister, discardLogger(), jobmetrics.NewMetrics(registry))

	err := job.Handle(context.Background(), asynq.NewTask(TaskInventoryExpiryScan, []byte(`{}`)))
	require.Error(t, err)
	require.Equal(t, 30*24*time.Hour, lister.window)
	require.Contains(t, scrape(t, registry), `odyssey_jobs_failures_total{job="inventory:expiry_scan"} 1`)
}

func TestHandlersSkipRetryOnBadPayload(t *testing.T) {
	expiry := NewExpiryScanJob(&stubLister{}, discardLogger(), jobmetrics.NewMetrics(prometheus.NewRegistry()))
	err := expiry.Handle(context.Background(), asynq.NewTask(TaskInventoryExpiryScan, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)

	warmup := NewReceiptWarmupJob(&stubWarmer{}, discardLogger(), jobmetrics.NewMetrics(prometheus.NewRegistry()))
	err = warmup.Handle(context.Background(), asynq.NewTask(TaskReceiptListWarmup, []byte("[")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestReceiptWarmupUsesPayloadBuckets(t *testing.T) {
	warmer := &stubWarmer{}
	job := NewReceiptWarmupJob(warmer, discardLogger(), jobmetrics.NewMetrics(prometheus.NewRegistry()))

	task, err := NewReceiptWarmupTask(nil)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, DefaultWarmupBuckets, warmer.buckets)

	task, err = NewReceiptWarmupTask([]string{"60"})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, []string{"60"}, warmer.buckets)

	warmer.err = errors.New("redis down")
	require.Error(t, job.Handle(context.Background(), task))
}

func TestNewTaskByName(t *testing.T) {
	task, err := NewTask(TaskInventoryExpiryScan, 7)
	require.NoError(t, err)
	require.JSONEq(t, `{"window_days":7}`, string(task.Payload()))

	_, err = NewTask("mail:send", 7)
	var unknown *UnknownTaskError
	require.ErrorAs(t, err, &unknown)
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return s.info, s.err
}

func TestJobsHealth(t *testing.T) {
	serve := func(inspector QueueInspector) *httptest.ResponseRecorder {
		r := chi.NewRouter()
		r.Route("/jobs", NewHandler(inspector, discardLogger()).MountRoutes)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
		return rr
	}

	rr := serve(stubInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 4, Retry: 1}})
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, strings.Contains(rr.Body.String(), `"pending":4`))

	rr = serve(stubInspector{err: errors.New("redis down")})
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)

	rr = serve(nil)
	require.Equal(t, http.StatusOK, rr.Code)
}
