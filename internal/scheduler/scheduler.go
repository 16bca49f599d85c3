package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shaiso/Plankit/internal/domain"
	"github.com/shaiso/Plankit/internal/pipeline"
)

// Ошибки Scheduler.
var (
	ErrDuplicateJob = errors.New("job already scheduled")
	ErrJobNotFound  = errors.New("job not found")
	ErrEmptyJob     = errors.New("job needs a name and a plan")
)

// Job — план, запускаемый по расписанию.
type Job struct {
	// Name — имя плана; им же помечается run.
	Name string

	// Cron — cron-выражение (5 полей или дескриптор).
	Cron string

	// Plan — выполняемый план.
	Plan pipeline.Plan
}

// JobInfo — состояние задания для вывода.
type JobInfo struct {
	Name string    `json:"name"`
	Cron string    `json:"cron"`
	Next time.Time `json:"next"`
	Prev time.Time `json:"prev,omitzero"`
}

// Config — конфигурация Scheduler.
type Config struct {
	// Executor (обязательно).
	Executor *pipeline.Executor

	// Logger (если nil — slog.Default()).
	Logger *slog.Logger

	// Location — часовой пояс расписаний (default: UTC).
	Location *time.Location

	// OnRun вызывается после каждого run (опционально).
	OnRun func(run *domain.Run, err error)
}

// Scheduler запускает планы по cron.
//
// Запуски одного задания не перекрываются: если предыдущий run
// ещё выполняется, очередное срабатывание пропускается.
type Scheduler struct {
	cron     *cron.Cron
	executor *pipeline.Executor
	logger   *slog.Logger
	onRun    func(*domain.Run, error)

	mu   sync.Mutex
	ctx  context.Context
	jobs map[string]scheduled
}

type scheduled struct {
	job Job
	id  cron.EntryID
}

// New создаёт Scheduler.
func New(cfg Config) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "scheduler")

	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	cl := cronLogger{logger: logger}

	return &Scheduler{
		cron: cron.New(
			cron.WithParser(cronParser),
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		executor: cfg.Executor,
		logger:   logger,
		onRun:    cfg.OnRun,
		ctx:      context.Background(),
		jobs:     make(map[string]scheduled),
	}
}

// Add регистрирует задание.
func (s *Scheduler) Add(job Job) error {
	if job.Name == "" || job.Plan == nil {
		return ErrEmptyJob
	}

	sched, err := ParseCron(job.Cron)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[job.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, job.Name)
	}

	id := s.cron.Schedule(sched, cron.FuncJob(func() {
		s.fire(job)
	}))
	s.jobs[job.Name] = scheduled{job: job, id: id}

	s.logger.Info("job scheduled", "pipeline", job.Name, "cron", job.Cron)
	return nil
}

// Remove снимает задание с расписания.
// Уже запущенный run не прерывается.
func (s *Scheduler) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sj, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}

	s.cron.Remove(sj.id)
	delete(s.jobs, name)
	return nil
}

// Jobs возвращает задания, отсортированные по имени.
// Next заполнен только после Start.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobInfo, 0, len(s.jobs))
	for name, sj := range s.jobs {
		entry := s.cron.Entry(sj.id)
		out = append(out, JobInfo{
			Name: name,
			Cron: sj.job.Cron,
			Next: entry.Next,
			Prev: entry.Prev,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Trigger выполняет задание немедленно, вне расписания.
func (s *Scheduler) Trigger(ctx context.Context, name string) (*domain.Run, error) {
	s.mu.Lock()
	sj, ok := s.jobs[name]
	s.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}

	return s.execute(ctx, sj.job)
}

// Start запускает расписание и блокируется до отмены ctx.
// После отмены ждёт завершения выполняющихся run.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.Jobs()))

	<-ctx.Done()

	s.logger.Info("scheduler stopping")
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")

	return nil
}

// fire — срабатывание по расписанию.
func (s *Scheduler) fire(job Job) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	s.execute(ctx, job)
}

func (s *Scheduler) execute(ctx context.Context, job Job) (*domain.Run, error) {
	run, err := s.executor.Execute(ctx, job.Name, job.Plan)

	if err != nil {
		s.logger.Warn("scheduled run failed",
			"pipeline", job.Name,
			"run_id", run.ID,
			"status", run.Status,
			"error", err,
		)
	} else {
		s.logger.Info("scheduled run completed",
			"pipeline", job.Name,
			"run_id", run.ID,
			"duration", run.Duration(),
		)
	}

	if s.onRun != nil {
		s.onRun(run, err)
	}

	return run, err
}
