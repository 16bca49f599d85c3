package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Plankit/internal/domain"
	"github.com/shaiso/Plankit/internal/monitor"
)

// Handler — HTTP API plankit-monitor.
type Handler struct {
	board     *monitor.Board
	gatherer  prometheus.Gatherer
	connected func() bool
	logger    *slog.Logger
}

// Config — конфигурация Handler.
type Config struct {
	// Board — источник данных о run.
	Board *monitor.Board

	// Gatherer для /metrics (если nil — prometheus.DefaultGatherer).
	Gatherer prometheus.Gatherer

	// Connected сообщает состояние соединения с RabbitMQ для /healthz
	// (если nil — считается подключённым).
	Connected func() bool

	Logger *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	connected := cfg.Connected
	if connected == nil {
		connected = func() bool { return true }
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		board:     cfg.Board,
		gatherer:  gatherer,
		connected: connected,
		logger:    logger,
	}
}

// Healthz — GET /healthz. 503, если соединение с RabbitMQ потеряно.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if !h.connected() {
		Unavailable(w, "rabbitmq connection lost")
		return
	}
	Success(w, map[string]string{"status": "ok"})
}

// Metrics — GET /metrics.
func (h *Handler) Metrics() http.Handler {
	return promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})
}

// ListRuns возвращает последние run.
// GET /api/v1/runs?status=RUNNING
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	status := domain.RunStatus(r.URL.Query().Get("status"))

	switch status {
	case "", domain.RunStatusPending, domain.RunStatusRunning,
		domain.RunStatusSucceeded, domain.RunStatusFailed, domain.RunStatusCancelled:
	default:
		BadRequest(w, "invalid status")
		return
	}

	runs := h.board.List(status)
	List(w, runs, len(runs))
}

// GetRun возвращает run с событиями узлов и деревом плана.
// GET /api/v1/runs/{id}
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid run id")
		return
	}

	view, ok := h.board.Get(id)
	if !ok {
		NotFound(w, "run not found")
		return
	}

	Success(w, view)
}
