package pipeline

import "github.com/shaiso/Plankit/internal/tree"

// Подписи служебных узлов в Describe.
const (
	LabelParallel   = "(Parallel)"
	LabelSequential = "(Sequential)"
	LabelRecover    = "!!Recover!!"
)

// Describe рисует план в виде дерева, ничего не выполняя.
//
// Результат детерминирован: повторный вызов на том же плане
// даёт ту же строку, дети выводятся в порядке объявления.
func Describe(p Plan) string {
	return tree.Render(Lower(p))
}

// Lower переводит план в дерево подписей.
//
// Recover отображается как Sequential из основной ветки и
// служебного stage "!!Recover!!" вокруг fallback.
func Lower(p Plan) tree.Node {
	switch n := p.(type) {
	case *ActionNode:
		return tree.Leaf(n.Label)
	case *CommandNode:
		return tree.Leaf(n.Text)
	case *StageNode:
		return tree.Branch(n.Name, Lower(n.Child))
	case *RecoverNode:
		return tree.Branch(LabelSequential,
			Lower(n.Primary),
			tree.Branch(LabelRecover, Lower(n.Fallback)),
		)
	case *ParallelNode:
		return tree.Branch(LabelParallel, lowerAll(n.Children)...)
	case *SequentialNode:
		return tree.Branch(LabelSequential, lowerAll(n.Children)...)
	default:
		panic(unknownNode(p))
	}
}

func lowerAll(plans []Plan) []tree.Node {
	nodes := make([]tree.Node, len(plans))
	for i, p := range plans {
		nodes[i] = Lower(p)
	}
	return nodes
}
