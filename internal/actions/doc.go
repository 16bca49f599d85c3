// Package actions содержит действия, которые YAML план может вызывать
// по имени.
//
// # Обзор
//
// Действие — это pipeline.ActionFunc, созданная фабрикой из
// конфигурации узла:
//
//	- action: http
//	  label: Notify release
//	  with:
//	    url: https://hooks.example.com/release
//
// Фабрика проверяет конфигурацию сразу, поэтому ошибки видны при
// сборке плана (plandef.Build), а не посреди выполнения.
//
// # Registry
//
//	registry := actions.DefaultRegistry()  // delay, http, fail, log, noop
//	fn, err := registry.Build("delay", map[string]any{"duration_ms": 500})
//	if errors.Is(err, actions.ErrUnknownAction) {
//	    // неизвестное действие
//	}
//
// # Действия
//
//   - delay — пауза (duration_sec или duration_ms), прерывается отменой ctx
//   - http — HTTP запрос; статус >= 400 возвращает *HTTPError
//   - fail — всегда ошибка ErrActionFailed с message
//   - log — пишет message в логгер узла (telemetry.FromContext)
//   - noop — ничего не делает
//
// # Файлы пакета
//
//   - action.go   — Factory, ошибки, GetConfig* helpers
//   - registry.go — Registry
//   - delay.go    — delay
//   - http.go     — http, HTTPError
//   - basic.go    — fail, log, noop
package actions
