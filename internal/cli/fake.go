package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/Plankit/internal/fake"
	"github.com/shaiso/Plankit/internal/filter"
)

// fakeKinds — генераторы команды fake.
func fakeKinds(now time.Time) map[string]fake.Fake[any] {
	return map[string]fake.Fake[any]{
		"int":     fake.Any(fake.Int),
		"bool":    fake.Any(fake.Boolean),
		"string":  fake.Any(fake.String),
		"object":  fake.Any(fake.Object),
		"request": fake.Any(filter.FakeRequest(now)),
	}
}

// Generate генерирует count значений вида kind.
func Generate(kind string, seed uint64, count int, now time.Time) ([]any, error) {
	kinds := fakeKinds(now)

	gen, ok := kinds[kind]
	if !ok {
		names := make([]string, 0, len(kinds))
		for name := range kinds {
			names = append(names, name)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("unknown kind %q (known: %v)", kind, names)
	}

	return fake.Run(fake.ArrayN(gen, count), seed), nil
}

// NewFakeCmd создаёт команду fake.
func NewFakeCmd(appFn func() *App, outputFn func() *Output) *cobra.Command {
	var seed uint64
	var kind string
	var count int

	cmd := &cobra.Command{
		Use:   "fake",
		Short: "Generate random data as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			if !cmd.Flags().Changed("seed") {
				seed = uint64(time.Now().UnixNano())
			}

			values, err := Generate(kind, seed, count, time.Now())
			if err != nil {
				return err
			}

			appFn().Logger.Debug("generated fake data", "kind", kind, "seed", seed, "count", count)

			if count == 1 {
				out.JSON(values[0])
				return nil
			}
			out.JSON(values)
			return nil
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed (default: current time)")
	cmd.Flags().StringVar(&kind, "kind", "object", "Kind: int, bool, string, object, request")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of values")

	return cmd
}
