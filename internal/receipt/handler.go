package receipt

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-retail/internal/platform/httpx"
)

// Handler serves the warehouse-receipt routes.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers receipt routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Delete("/", h.deleteAll)
	r.Get("/{id}", h.get)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.InvalidBody(w, r, err)
		return
	}
	res, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.Info("warehouse receipt created",
		slog.String("receipt_id", res.ID.String()),
		slog.String("receipt_code", res.ReceiptCode),
		slog.Int("lines", len(res.LineResults)))
	httpx.JSON(w, http.StatusCreated, res)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	receipts, err := h.service.List(r.Context(), q.Get("date"), q.Get("customDate"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, receipts)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		httpx.Problem(w, r, http.StatusUnprocessableEntity, CodeInvalidReference, "id", raw)
		return
	}
	rec, err := h.service.Get(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		httpx.NotFound(w, r, "warehouse receipt", raw)
		return
	}
	if err != nil {
		h.logger.Error("get warehouse receipt", slog.String("receipt_id", raw), slog.Any("error", err))
		httpx.Internal(w, r)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) deleteAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.DeleteAll(r.Context())
	if err != nil {
		h.logger.Error("delete warehouse receipts", slog.Any("error", err))
		httpx.Internal(w, r)
		return
	}
	h.logger.Warn("warehouse receipts wiped", slog.Int64("deleted", n))
	httpx.JSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		missing *MissingError
		batch   *BatchError
		field   *FieldError
	)
	switch {
	case errors.As(err, &missing):
		httpx.Problem(w, r, http.StatusNotFound, CodeReferenceNotFound, missing.Kind, strings.Join(missing.IDs, ", "))
	case errors.As(err, &batch):
		httpx.Problem(w, r, http.StatusInternalServerError, CodeBatchCreationError, batch.ProductID, batch.BatchNumber)
	case errors.As(err, &field):
		switch {
		case errors.Is(field.Err, ErrDuplicateReceipt):
			httpx.Problem(w, r, http.StatusConflict, CodeDuplicateReceipt, field.Value)
		case errors.Is(field.Err, ErrInvalidPrice):
			httpx.Problem(w, r, http.StatusUnprocessableEntity, CodeInvalidPrice, field.Field, field.Value)
		case errors.Is(field.Err, ErrInvalidQuantity):
			httpx.Problem(w, r, http.StatusUnprocessableEntity, CodeInvalidQuantity, field.Field, field.Value)
		case errors.Is(field.Err, ErrInvalidDateFilter):
			httpx.Problem(w, r, http.StatusUnprocessableEntity, CodeInvalidDateFilter, field.Field, field.Value)
		default:
			httpx.Problem(w, r, http.StatusUnprocessableEntity, CodeInvalidReference, field.Field, field.Value)
		}
	case errors.Is(err, ErrPersistence):
		h.logger.Error("warehouse receipt not persisted", slog.Any("error", err))
		httpx.Problem(w, r, http.StatusInternalServerError, CodePersistenceError)
	default:
		h.logger.Error("warehouse receipt request failed", slog.Any("error", err))
		httpx.Internal(w, r)
	}
}
