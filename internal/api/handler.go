package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/avdeyev/storeserv/internal/repos/accounts"
)

// Rebuilder swaps in a freshly loaded catalog.
type Rebuilder interface {
	Rebuild(ctx context.Context) error
	TabCount() int
}

// PointsReader reads an account's balance, bypassing the cache on demand.
type PointsReader interface {
	Load(ctx context.Context, accountID uint32, force bool) (int64, error)
}

// Handler wraps the stores the admin surface operates on.
type Handler struct {
	catalog Rebuilder
	ledger  PointsReader
}

func NewHandler(cat Rebuilder, led PointsReader) *Handler {
	return &Handler{catalog: cat, ledger: led}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseAccountIDFromPath(r *http.Request) (uint32, error) {
	idStr := chi.URLParam(r, "accountID")
	if idStr == "" {
		return 0, fmt.Errorf("missing accountID")
	}

	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid accountID: %w", err)
	}

	return uint32(id), nil
}

// --- Handlers ---

// ReloadCatalogHandler handles POST /store/reload. This is the administrative
// reload path (the in-game GM command in the original deployment); it
// invalidates every positional reference clients are holding.
func (h *Handler) ReloadCatalogHandler(w http.ResponseWriter, r *http.Request) {
	err := h.catalog.Rebuild(r.Context())
	if err != nil {
		slog.Error("catalog reload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "catalog reload failed")

		return
	}

	tabs := h.catalog.TabCount()
	slog.Info("catalog reloaded", "tabs", tabs)

	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "tabs": tabs})
}

// GetPointsHandler handles GET /account/{accountID}/points with a forced
// read-through, so operators see durable truth, not the cache.
func (h *Handler) GetPointsHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accountID in path")

		return
	}

	points, err := h.ledger.Load(r.Context(), accountID, true)
	if err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, "account not found")

			return
		}

		slog.Error("points lookup failed", "account_id", accountID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"accountId": accountID,
		"points":    points,
	})
}
