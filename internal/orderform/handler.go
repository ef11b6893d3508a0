package orderform

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/odyssey-erp/odyssey-retail/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-retail/internal/platform/i18n"
)

const codeInvalidID = "InvalidOrderFormID"

func init() {
	i18n.Register(language.Vietnamese, map[string]string{
		codeInvalidID + ".title":      "Mã phiếu đặt hàng không hợp lệ",
		codeInvalidID + ".detail":     "Giá trị %q không phải là mã hợp lệ.",
		codeInvalidID + ".suggestion": "Chọn lại phiếu đặt hàng từ danh sách.",
	})
	i18n.Register(language.English, map[string]string{
		codeInvalidID + ".title":      "Invalid order form id",
		codeInvalidID + ".detail":     "%q is not a valid identifier.",
		codeInvalidID + ".suggestion": "Pick the order form from the list again.",
	})
}

// Store is the persistence used by Handler.
type Store interface {
	Get(ctx context.Context, id uuid.UUID) (OrderForm, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Handler serves the supplier-receipt routes, which operate on order forms.
type Handler struct {
	logger *slog.Logger
	store  Store
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, store Store) *Handler {
	return &Handler{logger: logger, store: store}
}

// MountRoutes registers order form routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		httpx.Problem(w, r, http.StatusUnprocessableEntity, codeInvalidID, raw)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	form, err := h.store.Get(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		httpx.NotFound(w, r, "order form", id.String())
		return
	}
	if err != nil {
		h.logger.Error("get order form", slog.String("order_form_id", id.String()), slog.Any("error", err))
		httpx.Internal(w, r)
		return
	}
	if form.Lines == nil {
		form.Lines = []Line{}
	}
	httpx.JSON(w, http.StatusOK, form)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	err := h.store.Delete(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		httpx.NotFound(w, r, "order form", id.String())
		return
	}
	if err != nil {
		h.logger.Error("delete order form", slog.String("order_form_id", id.String()), slog.Any("error", err))
		httpx.Internal(w, r)
		return
	}
	h.logger.Info("order form deleted", slog.String("order_form_id", id.String()))
	httpx.JSON(w, http.StatusOK, map[string]any{"_id": id, "deleted": true})
}
