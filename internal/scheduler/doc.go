// Package scheduler запускает планы по cron-расписанию (robfig/cron).
//
// Структура:
//   - cron.go      — разбор выражений и предпросмотр ближайших запусков
//   - scheduler.go — Scheduler: задания, Trigger, Start
//   - logger.go    — адаптер cron.Logger поверх slog
//
// Использование:
//
//	sched := scheduler.New(scheduler.Config{Executor: exec, Logger: logger})
//	if err := sched.Add(scheduler.Job{Name: "deploy", Cron: "0 3 * * *", Plan: plan}); err != nil {
//	    return err
//	}
//	return sched.Start(ctx) // до отмены ctx
package scheduler
