package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/shaiso/Plankit/internal/domain"
	"github.com/shaiso/Plankit/internal/telemetry"
)

// SequentialMode определяет, как выполняется SequentialNode.
type SequentialMode string

const (
	// SequentialStrict — следующий ребёнок стартует только после
	// успешного завершения предыдущего. Режим по умолчанию.
	SequentialStrict SequentialMode = "strict"

	// SequentialConcurrent — дети стартуют одновременно, как в Parallel.
	// Совместимость со старым поведением.
	SequentialConcurrent SequentialMode = "concurrent"
)

// ParseSequentialMode парсит строку режима. Пустая строка — SequentialStrict.
func ParseSequentialMode(s string) (SequentialMode, error) {
	switch SequentialMode(strings.ToLower(s)) {
	case "", SequentialStrict:
		return SequentialStrict, nil
	case SequentialConcurrent:
		return SequentialConcurrent, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSequentialMode, s)
	}
}

// Observer получает события выполнения.
//
// Методы могут вызываться конкурентно из веток Parallel.
// Реализация: mq.EventSink.
type Observer interface {
	// RunStarted вызывается перед выполнением плана.
	RunStarted(ctx context.Context, run *domain.Run, description string)

	// RunFinished вызывается после завершения run (в любом статусе).
	RunFinished(ctx context.Context, run *domain.Run)

	// NodeEvent вызывается для stage и recover узлов.
	NodeEvent(ctx context.Context, ev domain.NodeEvent)
}

// Config — конфигурация Executor.
type Config struct {
	// Logger (если nil — slog.Default()).
	Logger *slog.Logger

	// Metrics (опционально).
	Metrics *telemetry.Metrics

	// Observer (опционально).
	Observer Observer

	// SequentialMode (default: SequentialStrict).
	SequentialMode SequentialMode

	// MaxParallel — ограничение числа одновременно выполняемых детей
	// одного Parallel узла. 0 — без ограничения.
	MaxParallel int
}

// Executor выполняет планы.
//
// Executor не хранит состояния между запусками и может
// использоваться конкурентно.
type Executor struct {
	logger      *slog.Logger
	metrics     *telemetry.Metrics
	observer    Observer
	mode        SequentialMode
	maxParallel int
}

// NewExecutor создаёт новый Executor.
func NewExecutor(cfg Config) *Executor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mode := cfg.SequentialMode
	if mode == "" {
		mode = SequentialStrict
	}

	maxParallel := cfg.MaxParallel
	if maxParallel < 0 {
		maxParallel = 0
	}

	return &Executor{
		logger:      logger,
		metrics:     cfg.Metrics,
		observer:    cfg.Observer,
		mode:        mode,
		maxParallel: maxParallel,
	}
}

// Run выполняет план executor'ом с настройками по умолчанию.
func Run(ctx context.Context, p Plan) error {
	return NewExecutor(Config{}).Run(ctx, p)
}

// Run выполняет план и возвращает первую неперехваченную ошибку.
func (e *Executor) Run(ctx context.Context, p Plan) error {
	return e.run(ctx, p, scope{root: ctx, logger: e.logger})
}

// Execute выполняет план как отдельный run: создаёт domain.Run,
// ведёт его статус, пишет метрики и уведомляет Observer.
//
// Ошибка плана возвращается вместе с run (run.Status = FAILED
// или CANCELLED).
func (e *Executor) Execute(ctx context.Context, name string, p Plan) (*domain.Run, error) {
	run := domain.NewRun(name)

	logger := telemetry.WithPipeline(telemetry.WithRunID(e.logger, run.ID.String()), name)
	sc := scope{root: ctx, runID: run.ID, pipeline: name, logger: logger}

	run.MarkRunning()
	logger.Info("run started")

	if e.observer != nil {
		e.observer.RunStarted(ctx, run, Describe(p))
	}

	err := e.run(ctx, p, sc)

	switch {
	case err == nil:
		run.MarkSucceeded()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		run.MarkCancelled(err.Error())
	default:
		run.MarkFailed(err.Error())
	}

	e.metrics.ObserveRun(run.Status, run.Duration())

	if err != nil {
		logger.Warn("run finished",
			"status", run.Status,
			"duration", run.Duration(),
			"error", err,
		)
	} else {
		logger.Info("run finished",
			"status", run.Status,
			"duration", run.Duration(),
		)
	}

	if e.observer != nil {
		e.observer.RunFinished(ctx, run)
	}

	return run, err
}

// scope — данные текущей позиции в плане.
type scope struct {
	// root — контекст всего run. Контексты errgroup отменяются при
	// ошибке соседней ветки, root отменяет только вызывающий.
	root     context.Context
	runID    uuid.UUID
	pipeline string
	path     string
	logger   *slog.Logger
}

// enter возвращает scope вложенного stage.
func (s scope) enter(stage string) scope {
	if s.path == "" {
		s.path = stage
	} else {
		s.path = s.path + "/" + stage
	}
	return s
}

// log возвращает логгер с путём текущего stage.
func (s scope) log() *slog.Logger {
	if s.path == "" {
		return s.logger
	}
	return telemetry.WithPath(s.logger, s.path)
}

// run выполняет узел и учитывает его результат в метриках.
func (e *Executor) run(ctx context.Context, p Plan, sc scope) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrRunCancelled, err)
	}

	err := e.dispatch(ctx, p, sc)
	e.metrics.ObserveNode(Kind(p), phaseOf(err))
	return err
}

func (e *Executor) dispatch(ctx context.Context, p Plan, sc scope) error {
	switch n := p.(type) {
	case *StageNode:
		return e.runStage(ctx, n, sc)
	case *CommandNode:
		// Команды не выполняются: лист-заглушка.
		sc.log().Debug("command skipped", "command", n.Text)
		return nil
	case *ActionNode:
		return e.runAction(ctx, n, sc)
	case *ParallelNode:
		return e.runConcurrent(ctx, n.Children, sc)
	case *SequentialNode:
		if e.mode == SequentialConcurrent {
			return e.runConcurrent(ctx, n.Children, sc)
		}
		return e.runSequential(ctx, n.Children, sc)
	case *RecoverNode:
		return e.runRecover(ctx, n, sc)
	default:
		panic(unknownNode(p))
	}
}

// runStage выполняет ребёнка stage. Ошибка возвращается без изменений.
func (e *Executor) runStage(ctx context.Context, n *StageNode, sc scope) error {
	sc = sc.enter(n.Name)
	logger := sc.log()

	logger.Debug("stage started")
	e.emit(ctx, sc, domain.NodeKindStage, domain.NodePhaseStarted, nil, 0)

	start := time.Now()
	err := e.run(ctx, n.Child, sc)
	elapsed := time.Since(start)

	if err != nil {
		logger.Warn("stage failed", "duration", elapsed, "error", err)
	} else {
		logger.Debug("stage succeeded", "duration", elapsed)
	}
	e.emit(ctx, sc, domain.NodeKindStage, phaseOf(err), err, elapsed)

	return err
}

// runAction вызывает ActionFunc. Логгер узла передаётся через контекст.
func (e *Executor) runAction(ctx context.Context, n *ActionNode, sc scope) error {
	logger := sc.log().With("action", n.Label)
	actx := telemetry.WithLogger(ctx, logger)

	start := time.Now()
	err := invoke(actx, n.Run)

	if err != nil {
		logger.Warn("action failed", "duration", time.Since(start), "error", err)
		return err
	}

	logger.Debug("action succeeded", "duration", time.Since(start))
	return nil
}

// invoke вызывает fn, превращая panic в ошибку.
func invoke(ctx context.Context, fn ActionFunc) (err error) {
	if fn == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrActionPanic, r)
		}
	}()

	return fn(ctx)
}

// runSequential выполняет детей по очереди до первой ошибки.
func (e *Executor) runSequential(ctx context.Context, children []Plan, sc scope) error {
	for _, child := range children {
		if err := e.run(ctx, child, sc); err != nil {
			return err
		}
	}
	return nil
}

// runConcurrent запускает всех детей одновременно.
//
// Первая ошибка отменяет общий контекст; возврат происходит после
// завершения всех запущенных детей.
func (e *Executor) runConcurrent(ctx context.Context, children []Plan, sc scope) error {
	g, gctx := errgroup.WithContext(ctx)
	if e.maxParallel > 0 {
		g.SetLimit(e.maxParallel)
	}

	for _, child := range children {
		g.Go(func() error {
			return e.run(gctx, child, sc)
		})
	}

	return g.Wait()
}

// runRecover выполняет Primary, а при ошибке — Fallback.
//
// Fallback не запускается, если отменён сам run или Primary не
// выполнялся из-за отмены (ErrRunCancelled). Ошибка соседней ветки
// Parallel fallback не отменяет: он выполняется под контекстом run.
func (e *Executor) runRecover(ctx context.Context, n *RecoverNode, sc scope) error {
	err := e.run(ctx, n.Primary, sc)
	if err == nil {
		return nil
	}

	if sc.root.Err() != nil || errors.Is(err, ErrRunCancelled) {
		return err
	}

	sc.log().Warn("primary failed, running fallback", "error", err)
	e.metrics.ObserveRecovery()
	e.emit(ctx, sc, domain.NodeKindRecover, domain.NodePhaseRecovering, err, 0)

	if ctx.Err() != nil {
		ctx = sc.root
	}
	return e.run(ctx, n.Fallback, sc)
}

// emit отправляет событие узла Observer'у.
func (e *Executor) emit(ctx context.Context, sc scope, kind domain.NodeKind, phase domain.NodePhase, err error, elapsed time.Duration) {
	if e.observer == nil {
		return
	}

	ev := domain.NodeEvent{
		RunID:     sc.runID,
		Pipeline:  sc.pipeline,
		Path:      sc.path,
		Kind:      kind,
		Phase:     phase,
		Timestamp: time.Now(),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	if phase.IsTerminal() {
		ev.DurationMs = elapsed.Milliseconds()
	}

	e.observer.NodeEvent(ctx, ev)
}

func phaseOf(err error) domain.NodePhase {
	if err != nil {
		return domain.NodePhaseFailed
	}
	return domain.NodePhaseSucceeded
}
