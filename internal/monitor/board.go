package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/shaiso/Plankit/internal/domain"
	"github.com/shaiso/Plankit/internal/mq"
)

// DefaultRetain — сколько run хранит Board.
const DefaultRetain = 100

// ErrUnknownMessage — тип сообщения не поддерживается.
var ErrUnknownMessage = errors.New("unknown message type")

// RunView — run, собранный из событий.
type RunView struct {
	Run         *domain.Run        `json:"run"`
	Description string             `json:"description,omitempty"`
	Events      []domain.NodeEvent `json:"events"`
}

// BoardConfig — конфигурация Board.
type BoardConfig struct {
	// Logger (если nil — slog.Default()).
	Logger *slog.Logger

	// Registerer для метрик (если nil — метрики не регистрируются).
	Registerer prometheus.Registerer

	// Retain — сколько последних run хранить (default: DefaultRetain).
	Retain int
}

// Board — live-view запусков: последние run с их событиями.
//
// Сообщения одного run могут прийти в любом порядке (две очереди),
// поэтому запись создаётся по первому сообщению с данным run_id.
type Board struct {
	logger *slog.Logger
	retain int

	messages *prometheus.CounterVec

	mu    sync.RWMutex
	runs  map[uuid.UUID]*RunView
	order []uuid.UUID // от старых к новым

	// evicted — недавно вытесненные run. Поздние сообщения для них
	// отбрасываются, иначе они вытеснили бы живые run.
	evicted      map[uuid.UUID]struct{}
	evictedOrder []uuid.UUID
}

// NewBoard создаёт Board.
func NewBoard(cfg BoardConfig) *Board {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	retain := cfg.Retain
	if retain <= 0 {
		retain = DefaultRetain
	}

	reg := cfg.Registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Board{
		logger: logger,
		retain: retain,
		messages: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "plankit_monitor_messages_total",
			Help: "Messages consumed by plankit-monitor, by type",
		}, []string{"type"}),
		runs:    make(map[uuid.UUID]*RunView),
		evicted: make(map[uuid.UUID]struct{}),
	}
}

// Handle — mq.Handler для очередей pipelines.events и pipelines.descriptions.
// Сообщение неизвестного типа подтверждается и пропускается.
func (b *Board) Handle(ctx context.Context, d *mq.Delivery) error {
	err := b.Apply(&d.Message)
	if errors.Is(err, ErrUnknownMessage) {
		b.logger.Warn("skipping message", "type", d.Message.Type, "message_id", d.Message.ID)
		return nil
	}
	return err
}

// Apply применяет сообщение к доске.
func (b *Board) Apply(msg *mq.Message) error {
	switch msg.Type {
	case mq.MessageTypeRunStarted, mq.MessageTypeRunFinished:
		ev, err := mq.ParsePayload[domain.RunEvent](msg)
		if err != nil {
			return err
		}
		if ev.Run == nil {
			return fmt.Errorf("%s: payload has no run", msg.Type)
		}
		b.applyRun(ev.Run)
		b.logRun(msg.Type, ev.Run)

	case mq.MessageTypeNodeEvent:
		ev, err := mq.ParsePayload[domain.NodeEvent](msg)
		if err != nil {
			return err
		}
		b.applyNode(ev)
		b.logger.Info("node event",
			"run_id", ev.RunID,
			"path", ev.Path,
			"kind", ev.Kind,
			"phase", ev.Phase,
			"error", ev.Error,
		)

	case mq.MessageTypeDescription:
		p, err := mq.ParsePayload[mq.DescriptionPayload](msg)
		if err != nil {
			return err
		}
		b.applyDescription(p)
		b.logger.Debug("plan description", "run_id", p.RunID, "pipeline", p.Pipeline)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}

	b.messages.WithLabelValues(string(msg.Type)).Inc()
	return nil
}

func (b *Board) logRun(t mq.MessageType, run *domain.Run) {
	attrs := []any{"run_id", run.ID, "pipeline", run.Pipeline, "status", run.Status}
	if run.Error != "" {
		attrs = append(attrs, "error", run.Error)
	}
	b.logger.Info(string(t), attrs...)
}

func (b *Board) applyRun(run *domain.Run) {
	b.mu.Lock()
	defer b.mu.Unlock()

	v := b.view(run.ID, run.Pipeline)
	if v == nil {
		return
	}
	// run.finished мог прийти раньше run.started
	if v.Run.IsFinished() && !run.IsFinished() {
		return
	}
	v.Run = run
}

func (b *Board) applyNode(ev domain.NodeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	v := b.view(ev.RunID, ev.Pipeline)
	if v == nil {
		return
	}
	v.Events = append(v.Events, ev)
}

func (b *Board) applyDescription(p mq.DescriptionPayload) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if v := b.view(p.RunID, p.Pipeline); v != nil {
		v.Description = p.Tree
	}
}

// view возвращает запись run, создавая её при необходимости.
// Для недавно вытесненного run возвращает nil.
// Вызывается под b.mu.
func (b *Board) view(id uuid.UUID, pipeline string) *RunView {
	if v, ok := b.runs[id]; ok {
		return v
	}
	if _, ok := b.evicted[id]; ok {
		b.logger.Debug("dropping message for evicted run", "run_id", id)
		return nil
	}

	v := &RunView{
		Run:    &domain.Run{ID: id, Pipeline: pipeline, Status: domain.RunStatusPending},
		Events: []domain.NodeEvent{},
	}
	b.runs[id] = v
	b.order = append(b.order, id)

	for len(b.order) > b.retain {
		b.evict(b.order[0])
		b.order = b.order[1:]
	}

	return v
}

// evict удаляет run и запоминает его ID. Помнится не больше retain ID.
func (b *Board) evict(id uuid.UUID) {
	delete(b.runs, id)

	b.evicted[id] = struct{}{}
	b.evictedOrder = append(b.evictedOrder, id)
	if len(b.evictedOrder) > b.retain {
		delete(b.evicted, b.evictedOrder[0])
		b.evictedOrder = b.evictedOrder[1:]
	}
}

// List возвращает run от новых к старым.
// Пустой status — все статусы.
func (b *Board) List(status domain.RunStatus) []RunView {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]RunView, 0, len(b.order))
	for _, id := range slices.Backward(b.order) {
		v := b.runs[id]
		if status != "" && v.Run.Status != status {
			continue
		}
		out = append(out, v.snapshot())
	}
	return out
}

// Get возвращает run по ID.
func (b *Board) Get(id uuid.UUID) (RunView, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	v, ok := b.runs[id]
	if !ok {
		return RunView{}, false
	}
	return v.snapshot(), true
}

// snapshot копирует запись, чтобы её можно было отдать наружу без блокировки.
func (v *RunView) snapshot() RunView {
	run := *v.Run
	return RunView{
		Run:         &run,
		Description: v.Description,
		Events:      slices.Clone(v.Events),
	}
}
