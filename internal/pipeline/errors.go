package pipeline

import (
	"errors"
	"fmt"
)

// Ошибки выполнения.
var (
	// ErrActionPanic — ActionFunc вызвала panic.
	ErrActionPanic = errors.New("action panicked")

	// ErrRunCancelled — контекст run отменён до запуска узла.
	ErrRunCancelled = errors.New("run cancelled")

	// ErrInvalidSequentialMode — неизвестный режим выполнения Sequential.
	ErrInvalidSequentialMode = errors.New("invalid sequential mode")
)

// unknownNode формирует сообщение panic для узла вне закрытого набора.
func unknownNode(p Plan) string {
	return fmt.Sprintf("pipeline: unknown plan node %T", p)
}
