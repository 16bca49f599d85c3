package plandef

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Ключи вида узла. Узел содержит ровно один из них.
const (
	KeyStage      = "stage"
	KeyCmd        = "cmd"
	KeyAction     = "action"
	KeyParallel   = "parallel"
	KeySequential = "sequential"
	KeyRecover    = "recover"
)

var kindKeys = []string{KeyStage, KeyCmd, KeyAction, KeyParallel, KeySequential, KeyRecover}

// Допустимые ключи узла.
var nodeFields = map[string]bool{
	KeyStage: true, "do": true,
	KeyCmd:    true,
	KeyAction: true, "with": true, "label": true,
	KeyParallel:   true,
	KeySequential: true,
	KeyRecover:    true,
}

// Definition — YAML определение плана.
//
//	name: deploy
//	description: Build, test and release
//	schedule: "0 3 * * *"
//	inputs:
//	  version: 1.2.3
//	pipeline:
//	  sequential:
//	    - stage: Build
//	      do: {cmd: npm run build}
//	    - recover:
//	        try: {stage: Release, do: {action: http, with: {url: "..."}}}
//	        fallback: {stage: Rollback, do: {cmd: ./rollback.sh}}
type Definition struct {
	Name        string         `yaml:"name" json:"name"`
	Description string         `yaml:"description,omitempty" json:"description,omitempty"`
	Schedule    string         `yaml:"schedule,omitempty" json:"schedule,omitempty"`
	Inputs      map[string]any `yaml:"inputs,omitempty" json:"inputs,omitempty"`
	Pipeline    *Node          `yaml:"pipeline" json:"pipeline"`
}

// Node — узел плана в YAML.
type Node struct {
	Stage      string         `yaml:"stage,omitempty" json:"stage,omitempty"`
	Do         *Node          `yaml:"do,omitempty" json:"do,omitempty"`
	Cmd        string         `yaml:"cmd,omitempty" json:"cmd,omitempty"`
	Action     string         `yaml:"action,omitempty" json:"action,omitempty"`
	Label      string         `yaml:"label,omitempty" json:"label,omitempty"`
	With       map[string]any `yaml:"with,omitempty" json:"with,omitempty"`
	Parallel   []*Node        `yaml:"parallel,omitempty" json:"parallel,omitempty"`
	Sequential []*Node        `yaml:"sequential,omitempty" json:"sequential,omitempty"`
	Recover    *RecoverDef    `yaml:"recover,omitempty" json:"recover,omitempty"`

	// kinds — ключи вида, реально присутствующие в YAML.
	kinds []string
	line  int
}

// RecoverDef — тело recover узла.
type RecoverDef struct {
	Try      *Node `yaml:"try" json:"try"`
	Fallback *Node `yaml:"fallback" json:"fallback"`
}

// UnmarshalYAML запоминает, какие ключи вида были заданы.
// Пустые значения (`parallel: []`) так отличаются от отсутствующих.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: node must be a mapping", value.Line)
	}

	type plain Node
	if err := value.Decode((*plain)(n)); err != nil {
		return err
	}

	n.line = value.Line
	n.kinds = nil
	for i := 0; i+1 < len(value.Content); i += 2 {
		key := value.Content[i].Value
		if !nodeFields[key] {
			return fmt.Errorf("line %d: %w: %q", value.Content[i].Line, ErrUnknownField, key)
		}
		for _, k := range kindKeys {
			if key == k {
				n.kinds = append(n.kinds, key)
			}
		}
	}

	return nil
}

// Kinds возвращает ключи вида узла.
//
// Для узлов, собранных в коде (без YAML), вид определяется по
// непустым полям.
func (n *Node) Kinds() []string {
	if n.kinds != nil || n.line != 0 {
		return n.kinds
	}

	var kinds []string
	if n.Stage != "" || n.Do != nil {
		kinds = append(kinds, KeyStage)
	}
	if n.Cmd != "" {
		kinds = append(kinds, KeyCmd)
	}
	if n.Action != "" {
		kinds = append(kinds, KeyAction)
	}
	if n.Parallel != nil {
		kinds = append(kinds, KeyParallel)
	}
	if n.Sequential != nil {
		kinds = append(kinds, KeySequential)
	}
	if n.Recover != nil {
		kinds = append(kinds, KeyRecover)
	}
	return kinds
}

// Line возвращает строку узла в исходном YAML (0 — неизвестна).
func (n *Node) Line() int {
	return n.line
}

// Parse разбирает YAML определение.
// Неизвестные ключи верхнего уровня — ошибка.
func Parse(data []byte) (*Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var def Definition
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDefinition
		}
		return nil, fmt.Errorf("parse plan: %w", err)
	}

	return &def, nil
}

// Load читает и разбирает файл определения.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}

	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return def, nil
}
