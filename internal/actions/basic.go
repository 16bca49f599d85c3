package actions

import (
	"context"
	"fmt"

	"github.com/shaiso/Plankit/internal/pipeline"
	"github.com/shaiso/Plankit/internal/telemetry"
)

const (
	// ActionFail — всегда неуспешное действие.
	ActionFail = "fail"

	// ActionLog — запись в лог.
	ActionLog = "log"

	// ActionNoop — ничего не делает.
	ActionNoop = "noop"

	configMessage = "message"
	configLevel   = "level"
)

// NewFail создаёт действие, которое всегда возвращает ошибку.
// Нужно для проверки recover веток.
//
//	with:
//	  message: deploy rejected
func NewFail(cfg map[string]any) (pipeline.ActionFunc, error) {
	message := GetConfigString(cfg, configMessage)
	if message == "" {
		message = "fail action"
	}

	return func(context.Context) error {
		return fmt.Errorf("%w: %s", ErrActionFailed, message)
	}, nil
}

// NewLog создаёт действие, пишущее message в логгер узла.
//
//	with:
//	  message: release started
//	  level: warn   # debug, info (default), warn, error
func NewLog(cfg map[string]any) (pipeline.ActionFunc, error) {
	message := GetConfigString(cfg, configMessage)
	if message == "" {
		return nil, fmt.Errorf("%w: %s: message is required", ErrInvalidConfig, ActionLog)
	}

	level := telemetry.ParseLevel(GetConfigString(cfg, configLevel))

	return func(ctx context.Context) error {
		telemetry.FromContext(ctx).Log(ctx, level, message)
		return nil
	}, nil
}

// NewNoop создаёт пустое действие.
func NewNoop(map[string]any) (pipeline.ActionFunc, error) {
	return func(context.Context) error { return nil }, nil
}
