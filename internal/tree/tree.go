// Package tree рисует деревья с метками в виде текстовой схемы
// с псевдографикой (┬ ├─ │ └─).
//
// Пакет ничего не знает о pipeline: на вход подаётся любое дерево,
// для которого заданы функции получения метки и дочерних узлов.
//
//	┬ root
//	├─┬ a
//	│ └── a1
//	└── b
package tree

import "strings"

// Префиксы строк.
const (
	branchMark = "┬ "
	leafMark   = "─ "

	firstChild     = "├─"
	firstLastChild = "└─"
	restChild      = "│ "
	restLastChild  = "  "
)

// Node — узел дерева с меткой.
type Node struct {
	// Label — текст узла. Пустая метка не выводится, но дети выводятся.
	Label string

	// Children — дочерние узлы в порядке вывода.
	Children []Node
}

// Leaf создаёт лист.
func Leaf(label string) Node {
	return Node{Label: label}
}

// Branch создаёт узел с дочерними узлами.
func Branch(label string, children ...Node) Node {
	return Node{Label: label, Children: children}
}

// IsLeaf возвращает true, если у узла нет детей.
func (n Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Render рисует дерево из Node.
func Render(root Node) string {
	return Stringify(root,
		func(n Node) string { return n.Label },
		func(n Node) []Node { return n.Children },
	)
}

// Stringify рисует произвольное дерево.
//
// name возвращает метку узла (пустая строка — узел без собственной строки),
// children — дочерние узлы. Корень выводится без соединителя.
// Результат детерминирован и зависит только от входного дерева.
func Stringify[T any](root T, name func(T) string, children func(T) []T) string {
	return strings.Join(lines(root, name, children), "\n")
}

// lines возвращает строки поддерева с корнем n.
func lines[T any](n T, name func(T) string, children func(T) []T) []string {
	kids := children(n)
	label := name(n)

	if len(kids) == 0 {
		if label == "" {
			return nil
		}
		return []string{leafMark + label}
	}

	out := make([]string, 0, len(kids)+1)
	if label != "" {
		out = append(out, branchMark+label)
	}

	for i, kid := range kids {
		out = append(out, prefixChild(lines(kid, name, children), i == len(kids)-1)...)
	}

	return out
}

// prefixChild добавляет соединители к строкам дочернего поддерева.
func prefixChild(strs []string, last bool) []string {
	out := make([]string, len(strs))
	for i, s := range strs {
		var prefix string
		switch {
		case i == 0 && last:
			prefix = firstLastChild
		case i == 0:
			prefix = firstChild
		case last:
			prefix = restLastChild
		default:
			prefix = restChild
		}
		out[i] = prefix + s
	}
	return out
}
