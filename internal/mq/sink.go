package mq

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/shaiso/Plankit/internal/domain"
)

const (
	// DefaultPublishTimeout — таймаут публикации события run.
	DefaultPublishTimeout = 5 * time.Second

	// DefaultNodeEventTimeout — таймаут публикации события узла.
	// События узлов публикуются на горячем пути Executor'а.
	DefaultNodeEventTimeout = 500 * time.Millisecond

	// DefaultNodeEventCooldown — сколько события узлов пропускаются
	// после неудачной публикации.
	DefaultNodeEventCooldown = 30 * time.Second
)

// EventPublisher — публикация событий run. Реализация: *Publisher.
type EventPublisher interface {
	PublishRunStarted(ctx context.Context, run *domain.Run) error
	PublishRunFinished(ctx context.Context, run *domain.Run) error
	PublishNodeEvent(ctx context.Context, ev domain.NodeEvent) error
	PublishDescription(ctx context.Context, payload DescriptionPayload) error
}

// EventSink отправляет события Executor'а в RabbitMQ.
//
// Реализует pipeline.Observer. Ошибки публикации только логируются:
// недоступный брокер не должен ронять run.
type EventSink struct {
	publisher   EventPublisher
	logger      *slog.Logger
	timeout     time.Duration
	nodeTimeout time.Duration
	cooldown    time.Duration

	// nodesPausedUntil — UnixNano, до которого события узлов не публикуются.
	nodesPausedUntil atomic.Int64
}

// NewEventSink создаёт EventSink.
func NewEventSink(publisher EventPublisher, logger *slog.Logger) *EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventSink{
		publisher:   publisher,
		logger:      logger,
		timeout:     DefaultPublishTimeout,
		nodeTimeout: DefaultNodeEventTimeout,
		cooldown:    DefaultNodeEventCooldown,
	}
}

// RunStarted публикует run.started и дерево плана.
func (s *EventSink) RunStarted(ctx context.Context, run *domain.Run, description string) {
	s.send(ctx, "run.started", s.timeout, func(ctx context.Context) error {
		return s.publisher.PublishRunStarted(ctx, run)
	})

	if description == "" {
		return
	}
	s.send(ctx, "description", s.timeout, func(ctx context.Context) error {
		return s.publisher.PublishDescription(ctx, DescriptionPayload{
			RunID:    run.ID,
			Pipeline: run.Pipeline,
			Tree:     description,
		})
	})
}

// RunFinished публикует run.finished.
func (s *EventSink) RunFinished(ctx context.Context, run *domain.Run) {
	s.send(ctx, "run.finished", s.timeout, func(ctx context.Context) error {
		return s.publisher.PublishRunFinished(ctx, run)
	})
}

// NodeEvent публикует событие узла.
//
// После неудачной публикации события узлов пропускаются в течение
// cooldown, чтобы недоступный брокер не тормозил каждый stage.
func (s *EventSink) NodeEvent(ctx context.Context, ev domain.NodeEvent) {
	if time.Now().UnixNano() < s.nodesPausedUntil.Load() {
		return
	}

	event := string(NodeRoutingKey(ev.Phase))
	err := s.send(ctx, event, s.nodeTimeout, func(ctx context.Context) error {
		return s.publisher.PublishNodeEvent(ctx, ev)
	})
	if err != nil {
		s.nodesPausedUntil.Store(time.Now().Add(s.cooldown).UnixNano())
		s.logger.Warn("node events paused", "cooldown", s.cooldown)
	}
}

// send публикует с собственным таймаутом. Отмена run не отменяет
// публикацию: run.finished для отменённого run тоже должен дойти.
func (s *EventSink) send(ctx context.Context, event string, timeout time.Duration, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	err := fn(ctx)
	if err != nil {
		s.logger.Warn("failed to publish event", "event", event, "error", err)
	}
	return err
}
