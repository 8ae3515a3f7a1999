package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avdeyev/storeserv/internal/repos/accounts"
)

type fakeAdminBackend struct {
	rebuildErr   error
	rebuildCalls int
	tabs         int

	balances map[uint32]int64
	loadErr  error
}

func (f *fakeAdminBackend) Rebuild(_ context.Context) error {
	f.rebuildCalls++

	return f.rebuildErr
}

func (f *fakeAdminBackend) TabCount() int { return f.tabs }

func (f *fakeAdminBackend) Load(_ context.Context, accountID uint32, _ bool) (int64, error) {
	if f.loadErr != nil {
		return 0, f.loadErr
	}

	points, ok := f.balances[accountID]
	if !ok {
		return 0, accounts.ErrAccountNotFound
	}

	return points, nil
}

func newTestRouter(backend *fakeAdminBackend, token string) http.Handler {
	return NewRouter(NewHandler(backend, backend), token)
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakeAdminBackend{}, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestReloadCatalog(t *testing.T) {
	t.Parallel()

	backend := &fakeAdminBackend{tabs: 3}
	router := newTestRouter(backend, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/store/reload", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, backend.rebuildCalls)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, float64(3), body["tabs"])
}

func TestReloadCatalogFailure(t *testing.T) {
	t.Parallel()

	backend := &fakeAdminBackend{rebuildErr: errors.New("storage down")}
	router := newTestRouter(backend, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/store/reload", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestReloadCatalogTokenGate(t *testing.T) {
	t.Parallel()

	backend := &fakeAdminBackend{}
	router := newTestRouter(backend, "sekrit")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/store/reload", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, 0, backend.rebuildCalls)

	req := httptest.NewRequest(http.MethodPost, "/store/reload", nil)
	req.Header.Set("X-Admin-Token", "sekrit")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, backend.rebuildCalls)
}

func TestGetPoints(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakeAdminBackend{balances: map[uint32]int64{42: 150}}, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/account/42/points", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, float64(42), body["accountId"])
	require.Equal(t, float64(150), body["points"])
}

func TestGetPointsErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		backend  *fakeAdminBackend
		path     string
		wantCode int
	}{
		{
			name:     "unknown_account",
			backend:  &fakeAdminBackend{balances: map[uint32]int64{}},
			path:     "/account/9/points",
			wantCode: http.StatusNotFound,
		},
		{
			name:     "non_numeric_id",
			backend:  &fakeAdminBackend{},
			path:     "/account/abc/points",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "id_overflows_uint32",
			backend:  &fakeAdminBackend{},
			path:     "/account/4294967296/points",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "storage_failure",
			backend:  &fakeAdminBackend{loadErr: errors.New("storage down")},
			path:     "/account/42/points",
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := newTestRouter(tt.backend, "")

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			require.Equal(t, tt.wantCode, rec.Code)
		})
	}
}
