package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/shaiso/Plankit/internal/filter"
)

// TriageResult — обращение и сработавшие правила.
type TriageResult struct {
	Request filter.SupportRequest `json:"request"`
	Tags    []string              `json:"tags"`
}

// loadInbox читает список обращений из YAML.
func loadInbox(path string) ([]filter.SupportRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read inbox: %w", err)
	}

	var requests []filter.SupportRequest
	if err := yaml.Unmarshal(data, &requests); err != nil {
		return nil, fmt.Errorf("parse inbox %s: %w", path, err)
	}
	return requests, nil
}

// Triage размечает обращения правилами. Если only не пусто,
// остаются только обращения, попавшие под правило only.
func Triage(requests []filter.SupportRequest, now time.Time, only string) ([]TriageResult, error) {
	presets := filter.Presets(func() time.Time { return now })

	var keep filter.Filter = filter.Always
	if only != "" {
		keep = nil
		for _, p := range presets {
			if p.Name == only {
				keep = p.Filter
			}
		}
		if keep == nil {
			names := make([]string, len(presets))
			for i, p := range presets {
				names[i] = p.Name
			}
			return nil, fmt.Errorf("unknown rule %q (known: %s)", only, strings.Join(names, ", "))
		}
	}

	results := make([]TriageResult, 0, len(requests))
	for _, r := range filter.Select(requests, keep) {
		tags := filter.Tags(presets, r)
		if tags == nil {
			tags = []string{}
		}
		results = append(results, TriageResult{Request: r, Tags: tags})
	}
	return results, nil
}

// NewTriageCmd создаёт команду triage.
func NewTriageCmd(appFn func() *App, outputFn func() *Output) *cobra.Command {
	var file string
	var nowStr string
	var only string

	cmd := &cobra.Command{
		Use:   "triage",
		Short: "Tag support requests with the preset rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			now := time.Now()
			if nowStr != "" {
				t, err := time.Parse(time.RFC3339, nowStr)
				if err != nil {
					return fmt.Errorf("invalid --now: %w", err)
				}
				now = t
			}

			requests, err := loadInbox(file)
			if err != nil {
				return err
			}

			results, err := Triage(requests, now, only)
			if err != nil {
				return err
			}

			rows := make([][]string, len(results))
			for i, r := range results {
				rows[i] = []string{
					r.Request.From,
					r.Request.Object,
					now.Sub(r.Request.RequestedAt).Truncate(time.Minute).String(),
					strings.Join(r.Tags, ","),
				}
			}

			out.Print([]string{"FROM", "OBJECT", "AGE", "TAGS"}, rows, results)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Inbox file with support requests (required)")
	cmd.Flags().StringVar(&nowStr, "now", "", "Current time, RFC3339 (default: now)")
	cmd.Flags().StringVar(&only, "only", "", "Show only requests matching this rule")
	cmd.MarkFlagRequired("file")

	return cmd
}
