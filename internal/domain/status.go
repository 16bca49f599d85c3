package domain

// RunStatus — статус выполнения pipeline.
//
// Жизненный цикл:
//
//	PENDING → RUNNING → SUCCEEDED
//	                  ↘ FAILED
//	                  ↘ CANCELLED (контекст запуска отменён)
type RunStatus string

const (
	// RunStatusPending — run создан, но ещё не начал выполняться.
	RunStatusPending RunStatus = "PENDING"

	// RunStatusRunning — run в процессе выполнения.
	RunStatusRunning RunStatus = "RUNNING"

	// RunStatusSucceeded — run успешно завершён.
	RunStatusSucceeded RunStatus = "SUCCEEDED"

	// RunStatusFailed — run завершился с ошибкой.
	RunStatusFailed RunStatus = "FAILED"

	// RunStatusCancelled — run отменён через context.
	RunStatusCancelled RunStatus = "CANCELLED"
)

// IsTerminal возвращает true, если статус финальный (run завершён).
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusSucceeded, RunStatusFailed, RunStatusCancelled:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление RunStatus.
func (s RunStatus) String() string {
	return string(s)
}

// NodePhase — фаза выполнения узла плана.
//
// Жизненный цикл:
//
//	STARTED → SUCCEEDED
//	        ↘ FAILED
//	        ↘ RECOVERING → (fallback) → SUCCEEDED | FAILED
type NodePhase string

const (
	// NodePhaseStarted — узел начал выполняться.
	NodePhaseStarted NodePhase = "STARTED"

	// NodePhaseSucceeded — узел завершился успешно.
	NodePhaseSucceeded NodePhase = "SUCCEEDED"

	// NodePhaseFailed — узел завершился ошибкой.
	NodePhaseFailed NodePhase = "FAILED"

	// NodePhaseRecovering — основная ветка recover упала, запускается fallback.
	NodePhaseRecovering NodePhase = "RECOVERING"
)

// IsTerminal возвращает true, если фаза финальная.
func (p NodePhase) IsTerminal() bool {
	return p == NodePhaseSucceeded || p == NodePhaseFailed
}

// NodeKind — вид узла плана.
type NodeKind string

// Виды узлов.
const (
	NodeKindStage      NodeKind = "stage"
	NodeKindCommand    NodeKind = "command"
	NodeKindAction     NodeKind = "action"
	NodeKindParallel   NodeKind = "parallel"
	NodeKindSequential NodeKind = "sequential"
	NodeKindRecover    NodeKind = "recover"
)

// IsLeaf возвращает true для листовых узлов (command, action).
func (k NodeKind) IsLeaf() bool {
	return k == NodeKindCommand || k == NodeKindAction
}
