package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaiso/Plankit/internal/domain"
	"github.com/shaiso/Plankit/internal/pipeline"
	"github.com/shaiso/Plankit/internal/plandef"
)

// planFlags — флаги команд, читающих план из файла.
type planFlags struct {
	file   string
	inputs []string
}

func (f *planFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "Plan definition file (required)")
	cmd.Flags().StringSliceVar(&f.inputs, "input", nil, "Input values as KEY=VALUE (repeatable)")
	cmd.MarkFlagRequired("file")
}

// load читает определение и собирает план.
func (f *planFlags) load(app *App) (*plandef.Definition, pipeline.Plan, error) {
	def, err := plandef.Load(f.file)
	if err != nil {
		return nil, nil, err
	}

	inputs, err := parseInputs(f.inputs)
	if err != nil {
		return nil, nil, err
	}

	plan, err := plandef.Build(def, plandef.Options{
		Inputs: inputs,
		Env:    app.Environ,
	})
	if err != nil {
		return def, nil, err
	}

	return def, plan, nil
}

// parseInputs разбирает KEY=VALUE.
func parseInputs(kvs []string) (map[string]any, error) {
	if len(kvs) == 0 {
		return nil, nil
	}

	inputs := make(map[string]any, len(kvs))
	for _, kv := range kvs {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid input format %q, expected KEY=VALUE", kv)
		}
		inputs[key] = value
	}
	return inputs, nil
}

// planName — имя из определения или имя файла.
func planName(def *plandef.Definition, file string) string {
	if def != nil && def.Name != "" {
		return def.Name
	}
	return file
}

// PlanSummary — JSON вывод describe и validate.
type PlanSummary struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description,omitempty"`
	Schedule    string                  `json:"schedule,omitempty"`
	Valid       bool                    `json:"valid"`
	Nodes       map[domain.NodeKind]int `json:"nodes"`
	Tree        string                  `json:"tree,omitempty"`
}

func summarize(def *plandef.Definition, file string, plan pipeline.Plan) PlanSummary {
	return PlanSummary{
		Name:        planName(def, file),
		Description: def.Description,
		Schedule:    def.Schedule,
		Valid:       true,
		Nodes:       pipeline.Count(plan),
	}
}

// NewDescribeCmd создаёт команду describe.
func NewDescribeCmd(appFn func() *App, outputFn func() *Output) *cobra.Command {
	var flags planFlags

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Print the plan as a tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			def, plan, err := flags.load(appFn())
			if err != nil {
				return err
			}

			tree := pipeline.Describe(plan)
			if out.JSONMode() {
				summary := summarize(def, flags.file, plan)
				summary.Tree = tree
				out.JSON(summary)
				return nil
			}

			out.Text(tree)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// NewValidateCmd создаёт команду validate.
func NewValidateCmd(appFn func() *App, outputFn func() *Output) *cobra.Command {
	var flags planFlags

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a plan definition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			def, plan, err := flags.load(appFn())
			if err != nil {
				return err
			}

			summary := summarize(def, flags.file, plan)
			if out.JSONMode() {
				out.JSON(summary)
				return nil
			}

			out.Success(fmt.Sprintf("Plan %s is valid: %d stages, %d commands, %d actions",
				summary.Name,
				summary.Nodes[domain.NodeKindStage],
				summary.Nodes[domain.NodeKindCommand],
				summary.Nodes[domain.NodeKindAction],
			))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
