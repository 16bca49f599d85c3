package actions

import (
	"context"
	"fmt"
	"time"

	"github.com/shaiso/Plankit/internal/pipeline"
)

const (
	// ActionDelay — пауза.
	ActionDelay = "delay"

	configDurationSec = "duration_sec"
	configDurationMs  = "duration_ms"
)

// NewDelay создаёт действие паузы.
//
// Конфигурация:
//
//	with:
//	  duration_sec: 10   # или
//	  duration_ms: 500
//
// Пауза прерывается отменой контекста.
func NewDelay(cfg map[string]any) (pipeline.ActionFunc, error) {
	duration, err := parseDuration(cfg)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context) error {
		timer := time.NewTimer(duration)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrActionCancelled, ctx.Err())
		case <-timer.C:
			return nil
		}
	}, nil
}

// parseDuration извлекает длительность из конфигурации.
func parseDuration(cfg map[string]any) (time.Duration, error) {
	if sec := GetConfigInt(cfg, configDurationSec); sec > 0 {
		return time.Duration(sec) * time.Second, nil
	}

	if ms := GetConfigInt(cfg, configDurationMs); ms > 0 {
		return time.Duration(ms) * time.Millisecond, nil
	}

	return 0, fmt.Errorf("%w: %s: duration_sec or duration_ms required",
		ErrInvalidConfig, ActionDelay)
}
