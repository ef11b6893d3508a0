package orderform

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-retail/internal/platform/httpx"
)

type memoryStore struct {
	forms map[uuid.UUID]OrderForm
}

func (m *memoryStore) Get(ctx context.Context, id uuid.UUID) (OrderForm, error) {
	f, ok := m.forms[id]
	if !ok {
		return OrderForm{}, ErrNotFound
	}
	return f, nil
}

func (m *memoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.forms[id]; !ok {
		return ErrNotFound
	}
	delete(m.forms, id)
	return nil
}

func newTestRouter(store Store) http.Handler {
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), store)
	r := chi.NewRouter()
	r.Route("/supplier-receipt", h.MountRoutes)
	return r
}

func do(router http.Handler, method, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Accept-Language", "en")
	router.ServeHTTP(rr, req)
	return rr
}

func TestGetOrderForm(t *testing.T) {
	id := uuid.New()
	store := &memoryStore{forms: map[uuid.UUID]OrderForm{
		id: {ID: id, SupplierID: uuid.New(), Status: StatusPending, Lines: []Line{{ProductID: uuid.New(), UnitID: uuid.New(), Quantity: decimal.NewFromInt(5)}}},
	}}
	router := newTestRouter(store)

	rr := do(router, http.MethodGet, "/supplier-receipt/"+id.String())
	require.Equal(t, http.StatusOK, rr.Code)

	var got OrderForm
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Equal(t, StatusPending, got.Status)
	require.Len(t, got.Lines, 1)
}

func TestGetOrderFormErrors(t *testing.T) {
	router := newTestRouter(&memoryStore{forms: map[uuid.UUID]OrderForm{}})

	rr := do(router, http.MethodGet, "/supplier-receipt/xyz")
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	var body httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, codeInvalidID, body.Code)
	require.Equal(t, "Invalid order form id", body.Title)

	rr = do(router, http.MethodGet, "/supplier-receipt/"+uuid.NewString())
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteOrderForm(t *testing.T) {
	id := uuid.New()
	store := &memoryStore{forms: map[uuid.UUID]OrderForm{id: {ID: id}}}
	router := newTestRouter(store)

	rr := do(router, http.MethodDelete, "/supplier-receipt/"+id.String())
	require.Equal(t, http.StatusOK, rr.Code)
	require.Empty(t, store.forms)

	rr = do(router, http.MethodDelete, "/supplier-receipt/"+id.String())
	require.Equal(t, http.StatusNotFound, rr.Code)
}
