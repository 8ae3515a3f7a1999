package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter constructs the admin router. If token is non-empty, mutating
// endpoints require it in the X-Admin-Token header; who may hold the token
// is the deployment's concern, not this service's.
func NewRouter(h *Handler, token string) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Group(func(r chi.Router) {
		r.Use(requireToken(token))

		r.Post("/store/reload", h.ReloadCatalogHandler)
		r.Get("/account/{accountID}/points", h.GetPointsHandler)
	})

	return r
}

func requireToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token != "" && r.Header.Get("X-Admin-Token") != token {
				writeError(w, http.StatusUnauthorized, "missing or invalid admin token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
