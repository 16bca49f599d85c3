package actions

import (
	"errors"

	"github.com/shaiso/Plankit/internal/pipeline"
)

// Ошибки действий.
var (
	// ErrUnknownAction — действие не найдено в реестре.
	ErrUnknownAction = errors.New("unknown action")

	// ErrInvalidConfig — невалидная конфигурация действия.
	ErrInvalidConfig = errors.New("invalid action config")

	// ErrActionCancelled — выполнение действия отменено.
	ErrActionCancelled = errors.New("action cancelled")

	// ErrActionFailed — действие fail.
	ErrActionFailed = errors.New("action failed")

	// ErrHTTPStatus — HTTP ответ со статусом >= 400.
	ErrHTTPStatus = errors.New("http status error")
)

// Factory создаёт ActionFunc по конфигурации из поля `with`.
//
// Конфигурация проверяется при создании, а не при выполнении:
// ошибка в плане видна ещё до запуска.
type Factory func(cfg map[string]any) (pipeline.ActionFunc, error)

// GetConfigString извлекает строковое значение из конфига.
func GetConfigString(config map[string]any, key string) string {
	if v, ok := config[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetConfigInt извлекает числовое значение из конфига.
// YAML декодирует числа как int, JSON — как float64.
func GetConfigInt(config map[string]any, key string) int {
	if v, ok := config[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case int64:
			return int(n)
		case uint64:
			return int(n)
		case float64:
			return int(n)
		}
	}
	return 0
}

// GetConfigBool извлекает булево значение из конфига.
func GetConfigBool(config map[string]any, key string, defaultVal bool) bool {
	if v, ok := config[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}

// GetConfigMapString извлекает map[string]string из конфига.
func GetConfigMapString(config map[string]any, key string) map[string]string {
	if v, ok := config[key]; ok {
		switch m := v.(type) {
		case map[string]string:
			return m
		case map[string]any:
			result := make(map[string]string, len(m))
			for k, val := range m {
				if s, ok := val.(string); ok {
					result[k] = s
				}
			}
			return result
		}
	}
	return nil
}
