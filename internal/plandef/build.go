package plandef

import (
	"fmt"
	"strings"

	"github.com/shaiso/Plankit/internal/actions"
	"github.com/shaiso/Plankit/internal/pipeline"
)

// Options — параметры сборки плана.
type Options struct {
	// Registry действий (если nil — actions.DefaultRegistry()).
	Registry *actions.Registry

	// Inputs переопределяют inputs определения.
	Inputs map[string]any

	// Env для {{ .Env.X }}.
	Env map[string]string
}

// Build проверяет определение и собирает из него pipeline.Plan.
//
// Проверяет:
// - Наличие pipeline
// - Ровно один ключ вида в каждом узле
// - Имена stage и наличие `do`
// - Непустые parallel и sequential
// - Наличие try и fallback у recover
// - Существование действий и их конфигурацию
//
// Шаблоны в cmd, label и with рендерятся здесь же.
func Build(def *Definition, opts Options) (pipeline.Plan, error) {
	if def == nil || def.Pipeline == nil {
		return nil, NewValidationError("", "pipeline", "plan definition has no pipeline", ErrEmptyDefinition)
	}

	registry := opts.Registry
	if registry == nil {
		registry = actions.DefaultRegistry()
	}

	inputs := make(map[string]any, len(def.Inputs)+len(opts.Inputs))
	for k, v := range def.Inputs {
		inputs[k] = v
	}
	for k, v := range opts.Inputs {
		inputs[k] = v
	}

	b := &builder{
		registry: registry,
		tmpl:     NewContext(def.Name, inputs, opts.Env),
	}

	return b.node(def.Pipeline, "pipeline")
}

// Validate проверяет определение без сохранения плана.
func Validate(def *Definition, opts Options) error {
	_, err := Build(def, opts)
	return err
}

type builder struct {
	registry *actions.Registry
	tmpl     *Context
}

func (b *builder) node(n *Node, path string) (pipeline.Plan, error) {
	if n == nil {
		return nil, NewValidationError(path, "", "node is empty", ErrEmptyNode)
	}

	kinds := n.Kinds()
	switch len(kinds) {
	case 0:
		return nil, NewValidationError(path, "",
			"node needs one of: "+strings.Join(kindKeys, ", "), ErrEmptyNode)
	case 1:
	default:
		return nil, NewValidationError(path, "",
			fmt.Sprintf("node has several kinds: %s", strings.Join(kinds, ", ")), ErrAmbiguousNode)
	}

	switch kinds[0] {
	case KeyStage:
		return b.stage(n, path)
	case KeyCmd:
		text, err := b.render(n.Cmd, path, KeyCmd)
		if err != nil {
			return nil, err
		}
		return pipeline.Cmd(text), nil
	case KeyAction:
		return b.action(n, path)
	case KeyParallel:
		children, err := b.children(n.Parallel, path+"."+KeyParallel)
		if err != nil {
			return nil, err
		}
		return pipeline.Par(children...), nil
	case KeySequential:
		children, err := b.children(n.Sequential, path+"."+KeySequential)
		if err != nil {
			return nil, err
		}
		return pipeline.Seq(children...), nil
	default:
		return b.recoverNode(n, path)
	}
}

func (b *builder) stage(n *Node, path string) (pipeline.Plan, error) {
	name := strings.TrimSpace(n.Stage)
	if name == "" {
		return nil, NewValidationError(path, KeyStage, "stage has empty name", ErrEmptyStageName)
	}
	if n.Do == nil {
		return nil, NewValidationError(path, "do",
			fmt.Sprintf("stage %q has no body", name), ErrMissingStageBody)
	}

	child, err := b.node(n.Do, path+".do")
	if err != nil {
		return nil, err
	}

	return pipeline.Stage(name, child), nil
}

func (b *builder) action(n *Node, path string) (pipeline.Plan, error) {
	if !b.registry.Has(n.Action) {
		return nil, NewValidationError(path, KeyAction,
			fmt.Sprintf("unknown action: %s (known: %s)", n.Action, strings.Join(b.registry.Names(), ", ")),
			ErrUnknownAction)
	}

	cfg, err := RenderConfig(n.With, b.tmpl)
	if err != nil {
		return nil, NewValidationError(path, "with", err.Error(), err)
	}

	fn, err := b.registry.Build(n.Action, cfg)
	if err != nil {
		return nil, NewValidationError(path, "with", err.Error(), err)
	}

	label, err := b.render(n.Label, path, "label")
	if err != nil {
		return nil, err
	}
	if label == "" {
		label = pipeline.DefaultActionLabel
	}

	return pipeline.NamedAction(label, fn), nil
}

func (b *builder) children(nodes []*Node, path string) ([]pipeline.Plan, error) {
	if len(nodes) == 0 {
		return nil, NewValidationError(path, "", "node has no children", ErrEmptyChildren)
	}

	plans := make([]pipeline.Plan, 0, len(nodes))
	for i, child := range nodes {
		p, err := b.node(child, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, nil
}

func (b *builder) recoverNode(n *Node, path string) (pipeline.Plan, error) {
	path += "." + KeyRecover
	if n.Recover == nil || n.Recover.Try == nil || n.Recover.Fallback == nil {
		return nil, NewValidationError(path, "", "recover needs try and fallback", ErrIncompleteRecover)
	}

	primary, err := b.node(n.Recover.Try, path+".try")
	if err != nil {
		return nil, err
	}
	fallback, err := b.node(n.Recover.Fallback, path+".fallback")
	if err != nil {
		return nil, err
	}

	return pipeline.Pipe(primary, pipeline.Recover(fallback)), nil
}

func (b *builder) render(s, path, field string) (string, error) {
	out, err := Render(s, b.tmpl)
	if err != nil {
		return "", NewValidationError(path, field, err.Error(), err)
	}
	return out, nil
}
