// Package telemetry обеспечивает наблюдаемость Plankit.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики выполнения планов
//
// Уровень и формат логов приходят из config.Settings
// (LOG_LEVEL, LOG_FORMAT). Метрики регистрируются в переданном
// prometheus.Registerer; `plankit schedule --metrics-addr` отдаёт их на /metrics.
package telemetry
