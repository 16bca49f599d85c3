package pipeline

// Operator — унарное преобразование плана.
// Then, And и Recover возвращают Operator, чтобы план читался
// сверху вниз через Pipe.
type Operator func(Plan) Plan

// Pipe применяет операторы к p слева направо.
func Pipe(p Plan, ops ...Operator) Plan {
	for _, op := range ops {
		p = op(p)
	}
	return p
}

// Then возвращает оператор "a, затем b".
// Sequential-операнды не вкладываются, а раскрываются.
func Then(b Plan) Operator {
	return func(a Plan) Plan {
		return &SequentialNode{Children: concat(sequentialChildren(a), sequentialChildren(b))}
	}
}

// And возвращает оператор "a и b параллельно".
// Parallel-операнды не вкладываются, а раскрываются.
func And(b Plan) Operator {
	return func(a Plan) Plan {
		return &ParallelNode{Children: concat(parallelChildren(a), parallelChildren(b))}
	}
}

// Recover возвращает оператор "primary, при ошибке — fallback".
func Recover(fallback Plan) Operator {
	return func(primary Plan) Plan {
		return &RecoverNode{Primary: primary, Fallback: fallback}
	}
}

// Seq собирает Sequential из plans по тем же правилам, что и Then.
func Seq(plans ...Plan) Plan {
	var children []Plan
	for _, p := range plans {
		children = concat(children, sequentialChildren(p))
	}
	return &SequentialNode{Children: children}
}

// Par собирает Parallel из plans по тем же правилам, что и And.
func Par(plans ...Plan) Plan {
	var children []Plan
	for _, p := range plans {
		children = concat(children, parallelChildren(p))
	}
	return &ParallelNode{Children: children}
}

func sequentialChildren(p Plan) []Plan {
	if s, ok := p.(*SequentialNode); ok {
		return s.Children
	}
	return []Plan{p}
}

func parallelChildren(p Plan) []Plan {
	if s, ok := p.(*ParallelNode); ok {
		return s.Children
	}
	return []Plan{p}
}

// concat всегда создаёт новый срез: узлы не делят backing array.
func concat(a, b []Plan) []Plan {
	out := make([]Plan, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
