package pipeline

import (
	"context"

	"github.com/shaiso/Plankit/internal/domain"
)

// DefaultActionLabel — подпись Action в Describe, если метка не задана.
const DefaultActionLabel = "Custom script"

// ActionFunc — побочный эффект листа Action.
//
// Функция должна проверять ctx.Done() для отмены.
// Возвращённая ошибка — ошибка узла.
type ActionFunc func(ctx context.Context) error

// Plan — узел плана.
//
// Набор реализаций закрыт: StageNode, CommandNode, ActionNode,
// ParallelNode, SequentialNode, RecoverNode. Интерпретаторы
// разбирают план через type switch по этим типам.
type Plan interface {
	isPlan()
}

// StageNode — именованная обёртка над под-планом.
type StageNode struct {
	Name  string
	Child Plan
}

// CommandNode — описание shell-команды. Executor её не выполняет.
type CommandNode struct {
	Text string
}

// ActionNode — лист с побочным эффектом.
type ActionNode struct {
	// Label — подпись в Describe.
	Label string

	// Run — побочный эффект. nil считается успешным no-op.
	Run ActionFunc
}

// ParallelNode — дети выполняются параллельно.
type ParallelNode struct {
	Children []Plan
}

// SequentialNode — дети выполняются по очереди.
type SequentialNode struct {
	Children []Plan
}

// RecoverNode — Primary, а при его ошибке — Fallback.
type RecoverNode struct {
	Primary  Plan
	Fallback Plan
}

func (*StageNode) isPlan()      {}
func (*CommandNode) isPlan()    {}
func (*ActionNode) isPlan()     {}
func (*ParallelNode) isPlan()   {}
func (*SequentialNode) isPlan() {}
func (*RecoverNode) isPlan()    {}

// Stage создаёт именованный stage вокруг child.
func Stage(name string, child Plan) Plan {
	return &StageNode{Name: name, Child: child}
}

// Cmd создаёт лист-команду.
func Cmd(text string) Plan {
	return &CommandNode{Text: text}
}

// Action создаёт лист с побочным эффектом run.
func Action(run ActionFunc) Plan {
	return &ActionNode{Label: DefaultActionLabel, Run: run}
}

// NamedAction создаёт Action с собственной подписью для Describe.
func NamedAction(label string, run ActionFunc) Plan {
	if label == "" {
		label = DefaultActionLabel
	}
	return &ActionNode{Label: label, Run: run}
}

// Kind возвращает вид узла.
func Kind(p Plan) domain.NodeKind {
	switch p.(type) {
	case *StageNode:
		return domain.NodeKindStage
	case *CommandNode:
		return domain.NodeKindCommand
	case *ActionNode:
		return domain.NodeKindAction
	case *ParallelNode:
		return domain.NodeKindParallel
	case *SequentialNode:
		return domain.NodeKindSequential
	case *RecoverNode:
		return domain.NodeKindRecover
	default:
		panic(unknownNode(p))
	}
}

// Children возвращает копию списка прямых потомков узла.
// Для Recover — [Primary, Fallback].
func Children(p Plan) []Plan {
	switch n := p.(type) {
	case *StageNode:
		return []Plan{n.Child}
	case *CommandNode, *ActionNode:
		return nil
	case *ParallelNode:
		return append([]Plan(nil), n.Children...)
	case *SequentialNode:
		return append([]Plan(nil), n.Children...)
	case *RecoverNode:
		return []Plan{n.Primary, n.Fallback}
	default:
		panic(unknownNode(p))
	}
}

// Walk обходит план в pre-order. Если fn возвращает false,
// потомки узла пропускаются.
func Walk(p Plan, fn func(Plan) bool) {
	if !fn(p) {
		return
	}
	for _, child := range Children(p) {
		Walk(child, fn)
	}
}

// Count возвращает количество узлов каждого вида.
func Count(p Plan) map[domain.NodeKind]int {
	counts := make(map[domain.NodeKind]int)
	Walk(p, func(n Plan) bool {
		counts[Kind(n)]++
		return true
	})
	return counts
}
