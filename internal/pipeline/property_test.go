package pipeline

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/shaiso/Plankit/internal/domain"
	"github.com/shaiso/Plankit/internal/fake"
)

const propertySeeds = 200

var (
	stageNames = fake.OneOf("Build", "Test", "Release", "Deploy", "Rollback", "Lint")
	commands   = fake.OneOf("make", "npm run build", "go test ./...", "docker push")
	labels     = fake.OneOf("deploy.sh", "notify", DefaultActionLabel)
)

// genLeaf генерирует Cmd или Action.
func genLeaf() fake.Fake[Plan] {
	cmd := fake.Map(commands, func(s string) Plan { return Cmd(s) })
	action := fake.Map(labels, func(s string) Plan { return NamedAction(s, noop) })
	return fake.OrElse(cmd, action)
}

// genPlan генерирует план глубиной не больше depth.
func genPlan(depth int) fake.Fake[Plan] {
	if depth <= 0 {
		return genLeaf()
	}

	children := func() fake.Fake[[]Plan] {
		return fake.Chain(fake.IntWithinRange(0, 3), func(n int) fake.Fake[[]Plan] {
			return fake.ArrayN(genPlan(depth-1), n)
		})
	}

	return fake.Chain(fake.IntWithinRange(0, 5), func(kind int) fake.Fake[Plan] {
		switch kind {
		case 0:
			return genLeaf()
		case 1:
			return fake.Chain(stageNames, func(name string) fake.Fake[Plan] {
				return fake.Map(genPlan(depth-1), func(child Plan) Plan { return Stage(name, child) })
			})
		case 2:
			return fake.Map(children(), func(ps []Plan) Plan { return Seq(ps...) })
		case 3:
			return fake.Map(children(), func(ps []Plan) Plan { return Par(ps...) })
		default:
			return fake.Map(fake.Zip(genPlan(depth-1), genPlan(depth-1)), func(p fake.Pair[Plan, Plan]) Plan {
				return Pipe(p.First, Recover(p.Second))
			})
		}
	})
}

// genTriple генерирует три независимых плана.
func genTriple() fake.Fake[[]Plan] {
	return fake.Sequence(genPlan(3), genPlan(3), genPlan(3))
}

func TestProperty_DescribeIdempotent(t *testing.T) {
	for seed := uint64(0); seed < propertySeeds; seed++ {
		p := fake.Run(genPlan(4), seed)
		if first, second := Describe(p), Describe(p); first != second {
			t.Fatalf("seed %d: Describe not idempotent:\n%s\n---\n%s", seed, first, second)
		}
	}
}

func TestProperty_ThenAssociative(t *testing.T) {
	for seed := uint64(0); seed < propertySeeds; seed++ {
		ps := fake.Run(genTriple(), seed)
		a, b, c := ps[0], ps[1], ps[2]

		left := Describe(Then(c)(Then(b)(a)))
		right := Describe(Then(Then(c)(b))(a))
		if diff := cmp.Diff(left, right); diff != "" {
			t.Fatalf("seed %d: Then not associative (-left +right):\n%s", seed, diff)
		}
	}
}

func TestProperty_AndAssociative(t *testing.T) {
	for seed := uint64(0); seed < propertySeeds; seed++ {
		ps := fake.Run(genTriple(), seed)
		a, b, c := ps[0], ps[1], ps[2]

		left := Describe(And(c)(And(b)(a)))
		right := Describe(And(And(c)(b))(a))
		if diff := cmp.Diff(left, right); diff != "" {
			t.Fatalf("seed %d: And not associative (-left +right):\n%s", seed, diff)
		}
	}
}

func TestProperty_ThenPreservesLeaves(t *testing.T) {
	leaves := func(p Plan) int {
		c := Count(p)
		return c[domain.NodeKindCommand] + c[domain.NodeKindAction]
	}

	for seed := uint64(0); seed < propertySeeds; seed++ {
		ps := fake.Run(genTriple(), seed)
		a, b := ps[0], ps[1]

		if got, want := leaves(Then(b)(a)), leaves(a)+leaves(b); got != want {
			t.Fatalf("seed %d: Then leaves = %d, want %d", seed, got, want)
		}
		if got, want := leaves(And(b)(a)), leaves(a)+leaves(b); got != want {
			t.Fatalf("seed %d: And leaves = %d, want %d", seed, got, want)
		}
	}
}

func TestProperty_SucceedingPlansRun(t *testing.T) {
	for _, mode := range []SequentialMode{SequentialStrict, SequentialConcurrent} {
		exec := NewExecutor(Config{SequentialMode: mode})
		for seed := uint64(0); seed < 50; seed++ {
			p := fake.Run(genPlan(4), seed)
			if err := exec.Run(context.Background(), p); err != nil {
				t.Fatalf("%s seed %d: Run() error = %v\n%s", mode, seed, err, Describe(p))
			}
		}
	}
}
