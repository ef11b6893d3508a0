package masterdata

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-retail/internal/platform/httpx"
)

// ProductReader is the lookup used by Handler.
type ProductReader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (Product, error)
}

// Handler exposes read-only master data endpoints.
type Handler struct {
	logger   *slog.Logger
	products ProductReader
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, products ProductReader) *Handler {
	return &Handler{logger: logger, products: products}
}

// MountRoutes registers product routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{id}", h.getProduct)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		httpx.NotFound(w, r, "product", raw)
		return
	}
	product, err := h.products.GetProduct(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		httpx.NotFound(w, r, "product", raw)
		return
	}
	if err != nil {
		h.logger.Error("get product", slog.String("product_id", raw), slog.Any("error", err))
		httpx.Internal(w, r)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}
