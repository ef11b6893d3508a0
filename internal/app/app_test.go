package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-retail/internal/masterdata"
	"github.com/odyssey-erp/odyssey-retail/internal/observability"
	"github.com/odyssey-erp/odyssey-retail/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-retail/jobs"
	_ "github.com/odyssey-erp/odyssey-retail/testing"
)

type productStub map[uuid.UUID]masterdata.Product

func (s productStub) GetProduct(ctx context.Context, id uuid.UUID) (masterdata.Product, error) {
	p, ok := s[id]
	if !ok {
		return masterdata.Product{}, masterdata.ErrNotFound
	}
	return p, nil
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("RECEIPT_LOCK_TTL", "45s")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.AppAddr)
	require.Equal(t, "vi", cfg.AppLanguage)
	require.Equal(t, 45*time.Second, cfg.ReceiptLockTTL)
	require.Equal(t, 30, cfg.ExpiryWindowDays)
	require.False(t, cfg.IsProduction())

	loc, err := cfg.Location()
	require.NoError(t, err)
	require.Equal(t, time.UTC, loc)
}

func TestLoadConfigRejectsUnknownTimezone(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "Mars/Olympus")
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestRouterServesHealthMetricsAndProducts(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pid := uuid.New()
	router := NewRouter(RouterParams{
		Logger:         logger,
		Config:         &Config{AppEnv: "test", RateLimitPerMinute: 1000},
		ProductHandler: masterdata.NewHandler(logger, productStub{pid: {ID: pid, Name: "Milk", InputPrice: decimal.NewFromInt(1000), OutputPrice: decimal.NewFromInt(1200)}}),
		JobHandler:     jobs.NewHandler(nil, logger),
		Metrics:        observability.NewMetrics(),
	})

	get := func(path string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Accept-Language", "en")
		router.ServeHTTP(rr, req)
		return rr
	}

	rr := get("/healthz")
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	require.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))

	rr = get("/products/" + pid.String())
	require.Equal(t, http.StatusOK, rr.Code)
	var product masterdata.Product
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &product))
	require.Equal(t, "Milk", product.Name)

	rr = get("/jobs/health")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = get("/nowhere")
	require.Equal(t, http.StatusNotFound, rr.Code)
	var pd httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &pd))
	require.Equal(t, httpx.CodeNotFound, pd.Code)

	rr = get("/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `odyssey_http_requests_total{code="200",route="/healthz"} 1`)
}

func TestTestModeFlag(t *testing.T) {
	t.Setenv("ODYSSEY_TEST_MODE", "1")
	RefreshTestMode()
	require.True(t, InTestMode())
	t.Setenv("ODYSSEY_TEST_MODE", "0")
	RefreshTestMode()
	require.False(t, InTestMode())
}

func TestPackageTestsRunInTestMode(t *testing.T) {
	require.Equal(t, "1", os.Getenv("ODYSSEY_TEST_MODE"))
	require.NotEmpty(t, os.Getenv("APP_TIMEZONE"))
	RefreshTestMode()
	require.True(t, InTestMode())
}
