package fake

import (
	"math"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
)

// scripted — Random, возвращающий заранее заданные значения.
type scripted struct {
	values []int
	calls  int
}

func (s *scripted) IntN(n int) int {
	v := s.values[s.calls%len(s.values)] % n
	s.calls++
	return v
}

func TestSequence(t *testing.T) {
	tests := []struct {
		name string
		fake Fake[[]string]
		want []string
	}{
		{"no fake", Sequence[string](), []string{}},
		{"single fake", Sequence(Always("A")), []string{"A"}},
		{"many fakes", Sequence(Always("A"), Always("B"), Always("C"), Always("D")), []string{"A", "B", "C", "D"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Run(tt.fake, 1)); diff != "" {
				t.Errorf("Sequence() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]Fake[any]
		want   map[string]any
	}{
		{"no fake", map[string]Fake[any]{}, map[string]any{}},
		{"single fake", map[string]Fake[any]{"a": Any(Always("A"))}, map[string]any{"a": "A"}},
		{
			"many fakes",
			map[string]Fake[any]{
				"a": Any(Always("A")),
				"b": Any(Always(2)),
				"c": Any(Always(true)),
			},
			map[string]any{"a": "A", "b": 2, "c": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Run(Struct(tt.fields), 1)); diff != "" {
				t.Errorf("Struct() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStruct_SortedFieldOrder(t *testing.T) {
	// Первый вызов IntN достаётся полю "a", второй — "b".
	r := &scripted{values: []int{1, 2}}
	f := Struct(map[string]Fake[any]{
		"b": Any(IntWithinRange(0, 9)),
		"a": Any(IntWithinRange(0, 9)),
	})

	got := f(r)
	want := map[string]any{"a": 1, "b": 2}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Struct() mismatch (-want +got):\n%s", diff)
	}
}

func TestArrayN(t *testing.T) {
	tests := []struct {
		name  string
		count int
		want  []string
	}{
		{"0 items", 0, []string{}},
		{"negative", -1, []string{}},
		{"1 item", 1, []string{"A"}},
		{"many items", 3, []string{"A", "A", "A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Run(ArrayN(Always("A"), tt.count), 1)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ArrayN() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRun_Deterministic(t *testing.T) {
	program := Zip(
		Sequence(Any(Array(Int)), Any(Int), Any(Boolean), Any(String)),
		Object,
	)

	for seed := uint64(0); seed < 20; seed++ {
		first := Run(program, seed)
		second := Run(program, seed)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Fatalf("seed %d: results differ (-first +second):\n%s", seed, diff)
		}
	}
}

func TestRun_SeedsDiffer(t *testing.T) {
	seen := make(map[int]bool)
	for seed := uint64(0); seed < 20; seed++ {
		seen[Run(Int, seed)] = true
	}
	if len(seen) < 2 {
		t.Errorf("Int produced %d distinct values over 20 seeds", len(seen))
	}
}

func TestIntWithinRange(t *testing.T) {
	tests := []struct {
		name   string
		lo, hi int
	}{
		{"normal", 3, 7},
		{"single", 5, 5},
		{"swapped", 7, 3},
		{"negative", -10, -1},
		{"full int range", math.MinInt, math.MaxInt},
		{"up to max int", 0, math.MaxInt},
		{"from min int", math.MinInt, 0},
		{"max int only", math.MaxInt, math.MaxInt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := tt.lo, tt.hi
			if hi < lo {
				lo, hi = hi, lo
			}
			r := NewRandom(7)
			f := IntWithinRange(tt.lo, tt.hi)
			for i := 0; i < 200; i++ {
				if v := f(r); v < lo || v > hi {
					t.Fatalf("value %d out of [%d, %d]", v, lo, hi)
				}
			}
		})
	}
}

func TestBoolean_BothValues(t *testing.T) {
	r := NewRandom(3)
	seen := map[bool]int{}
	for i := 0; i < 200; i++ {
		seen[Boolean(r)]++
	}
	if seen[true] == 0 || seen[false] == 0 {
		t.Errorf("Boolean distribution = %v", seen)
	}
}

func TestNullable(t *testing.T) {
	r := NewRandom(11)
	var nils, values int
	for i := 0; i < 200; i++ {
		v := Nullable(Always(42))(r)
		if v == nil {
			nils++
			continue
		}
		if *v != 42 {
			t.Fatalf("Nullable value = %d, want 42", *v)
		}
		values++
	}
	if nils == 0 || values == 0 {
		t.Errorf("Nullable: nils=%d values=%d", nils, values)
	}
}

func TestOrElse(t *testing.T) {
	// 1 — true, берём левую ветку.
	if got := OrElse(Always("left"), Always("right"))(&scripted{values: []int{1}}); got != "left" {
		t.Errorf("OrElse() = %q, want left", got)
	}
	if got := OrElse(Always("left"), Always("right"))(&scripted{values: []int{0}}); got != "right" {
		t.Errorf("OrElse() = %q, want right", got)
	}
}

func TestZip_Order(t *testing.T) {
	r := &scripted{values: []int{4, 8}}
	got := Zip(IntWithinRange(0, 9), IntWithinRange(0, 9))(r)
	if got.First != 4 || got.Second != 8 {
		t.Errorf("Zip() = %+v, want {4 8}", got)
	}
}

func TestChain_SharesSource(t *testing.T) {
	r := &scripted{values: []int{2, 9, 9}}
	f := Chain(IntWithinRange(0, 5), func(n int) Fake[[]int] {
		return ArrayN(IntWithinRange(0, 9), n)
	})

	got := f(r)
	if diff := cmp.Diff([]int{9, 9}, got); diff != "" {
		t.Errorf("Chain() mismatch (-want +got):\n%s", diff)
	}
}

func TestArray_Bounds(t *testing.T) {
	r := NewRandom(5)
	for i := 0; i < 200; i++ {
		if n := len(Array(Always(1))(r)); n > 5 {
			t.Fatalf("Array length %d > 5", n)
		}
	}
}

func TestString_Bounds(t *testing.T) {
	r := NewRandom(9)
	for i := 0; i < 200; i++ {
		s := String(r)
		if !utf8.ValidString(s) {
			t.Fatalf("invalid utf8: %q", s)
		}
		if n := utf8.RuneCountInString(s); n > 10 {
			t.Fatalf("string %q has %d runes", s, n)
		}
		for _, c := range s {
			if c > 1000 {
				t.Fatalf("rune %U out of range", c)
			}
		}
	}
}

func TestObject_Shape(t *testing.T) {
	r := NewRandom(13)
	for i := 0; i < 100; i++ {
		obj := Object(r)
		if len(obj) < 1 || len(obj) > 5 {
			t.Fatalf("object has %d keys", len(obj))
		}
		for k, v := range obj {
			switch v.(type) {
			case int, bool, string:
			default:
				t.Fatalf("key %q: unexpected value type %T", k, v)
			}
		}
	}
}

func TestOneOf(t *testing.T) {
	if got := Run(OneOf[string](), 1); got != "" {
		t.Errorf("OneOf() = %q, want zero value", got)
	}

	r := NewRandom(2)
	for i := 0; i < 50; i++ {
		switch v := OneOf("a", "b", "c")(r); v {
		case "a", "b", "c":
		default:
			t.Fatalf("OneOf() = %q", v)
		}
	}
}
