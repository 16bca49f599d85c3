// Package api — HTTP API plankit-monitor.
//
// Структура:
//   - handler.go    — Handler: healthz, metrics, runs
//   - routes.go     — регистрация маршрутов
//   - middleware.go — request_id, logging, recovery
//   - response.go   — JSON-ответы и ошибки
//
// Маршруты:
//
//	GET /healthz
//	GET /metrics
//	GET /api/v1/runs[?status=RUNNING]
//	GET /api/v1/runs/{id}
package api
