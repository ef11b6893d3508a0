package inventory

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-retail/internal/platform/httpx"
)

// Handler wires HTTP endpoints for inventory reads under /products/{id}.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs inventory handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{id}/batches", h.handleBatches)
	r.Get("/{id}/stock-history", h.handleStockHistory)
	r.Get("/{id}/price-history", h.handlePriceHistory)
}

func productID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		httpx.NotFound(w, r, "product", raw)
		return uuid.Nil, false
	}
	return id, true
}

func limitParam(r *http.Request) int {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return limit
}

func (h *Handler) handleBatches(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	batches, err := h.service.Batches(r.Context(), id)
	if err != nil {
		h.logger.Error("list batches", slog.String("product_id", id.String()), slog.Any("error", err))
		httpx.Internal(w, r)
		return
	}
	httpx.JSON(w, http.StatusOK, batches)
}

func (h *Handler) handleStockHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	entries, err := h.service.StockHistory(r.Context(), id, limitParam(r))
	if err != nil {
		h.logger.Error("list stock history", slog.String("product_id", id.String()), slog.Any("error", err))
		httpx.Internal(w, r)
		return
	}
	httpx.JSON(w, http.StatusOK, entries)
}

func (h *Handler) handlePriceHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	entries, err := h.service.PriceHistory(r.Context(), id, limitParam(r))
	if err != nil {
		h.logger.Error("list price history", slog.String("product_id", id.String()), slog.Any("error", err))
		httpx.Internal(w, r)
		return
	}
	httpx.JSON(w, http.StatusOK, entries)
}
