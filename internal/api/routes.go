package api

import (
	"net/http"
)

// RegisterRoutes регистрирует маршруты monitor API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	chain := Chain(
		RequestLogger(h.logger),
		Recovery(),
		Logging(),
	)

	mux.Handle("GET /healthz", chain(http.HandlerFunc(h.Healthz)))
	mux.Handle("GET /metrics", h.Metrics())

	mux.Handle("GET /api/v1/runs", chain(http.HandlerFunc(h.ListRuns)))
	mux.Handle("GET /api/v1/runs/{id}", chain(http.HandlerFunc(h.GetRun)))
}
