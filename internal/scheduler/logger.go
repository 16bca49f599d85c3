package scheduler

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

// cronLogger направляет логи robfig/cron в slog.
//
// Info у cron шумный (каждый wake/run), поэтому уходит в Debug.
type cronLogger struct {
	logger *slog.Logger
}

var _ cron.Logger = cronLogger{}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
