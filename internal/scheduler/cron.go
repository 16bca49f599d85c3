package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrInvalidCron — cron-выражение не разбирается.
var ErrInvalidCron = errors.New("invalid cron expression")

// cronParser понимает стандартные 5 полей и дескрипторы (@daily, @every 5m).
var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ParseCron разбирает cron-выражение.
// Префикс "CRON_TZ=Europe/Moscow " задаёт часовой пояс выражения.
func ParseCron(expr string) (cron.Schedule, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidCron, expr, err)
	}
	return sched, nil
}

// ValidateCronExpr проверяет cron-выражение.
func ValidateCronExpr(expr string) error {
	_, err := ParseCron(expr)
	return err
}

// NextRuns возвращает n ближайших срабатываний после from.
//
// Время считается в часовом поясе from (если в выражении нет CRON_TZ).
func NextRuns(expr string, from time.Time, n int) ([]time.Time, error) {
	sched, err := ParseCron(expr)
	if err != nil {
		return nil, err
	}

	out := make([]time.Time, 0, max(n, 0))
	next := from
	for range n {
		next = sched.Next(next)
		if next.IsZero() {
			break
		}
		out = append(out, next)
	}
	return out, nil
}

// LoadLocation загружает часовой пояс. Пустое имя или неизвестный
// пояс дают UTC.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
