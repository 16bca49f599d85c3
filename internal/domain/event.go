package domain

import (
	"time"

	"github.com/google/uuid"
)

// NodeEvent — событие выполнения узла плана.
//
// Executor отправляет события слушателю (например, mq.EventSink),
// чтобы live-view мог показывать прогресс каждого запущенного pipeline.
type NodeEvent struct {
	// RunID — идентификатор run, к которому относится событие.
	RunID uuid.UUID `json:"run_id"`

	// Pipeline — имя плана.
	Pipeline string `json:"pipeline,omitempty"`

	// Path — путь из имён stage через "/" (например, "Test/Unit test").
	// Пустой для узлов вне stage.
	Path string `json:"path"`

	// Kind — вид узла.
	Kind NodeKind `json:"kind"`

	// Phase — фаза выполнения.
	Phase NodePhase `json:"phase"`

	// Error — текст ошибки для FAILED и RECOVERING.
	Error string `json:"error,omitempty"`

	// DurationMs — длительность выполнения узла (только для финальных фаз).
	DurationMs int64 `json:"duration_ms,omitempty"`

	// Timestamp — время события.
	Timestamp time.Time `json:"timestamp"`
}

// RunEvent — событие начала или завершения run.
type RunEvent struct {
	Run *Run `json:"run"`

	// Description — дерево плана (pipeline.Describe), только для run.started.
	Description string `json:"description,omitempty"`
}
