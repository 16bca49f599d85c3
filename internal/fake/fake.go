// Package fake — генераторы случайных данных, детерминированные по seed.
//
// Генератор Fake[A] — функция от источника случайности. Генераторы
// собираются комбинаторами (Chain, Map, Zip, Sequence, Struct ...)
// и запускаются через Run.
//
//	person := fake.Struct(map[string]fake.Fake[any]{
//	    "age":    fake.Any(fake.IntWithinRange(18, 90)),
//	    "active": fake.Any(fake.Boolean),
//	})
//	v := fake.Run(person, 42)
//
// Используется CLI командой `plankit fake` и property-тестами pipeline.
package fake

import (
	"math"
	"math/rand/v2"
	"sort"
	"strings"
)

// Random — источник случайности генераторов.
// *rand.Rand из math/rand/v2 удовлетворяет интерфейсу.
type Random interface {
	IntN(n int) int
}

// Fake — генератор значений типа A.
type Fake[A any] func(r Random) A

// Pair — результат Zip.
type Pair[A, B any] struct {
	First  A
	Second B
}

// pcgStream — второе слово состояния PCG.
const pcgStream = 0x9e3779b97f4a7c15

// NewRandom создаёт детерминированный источник для seed.
func NewRandom(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, pcgStream))
}

// Run запускает генератор. Одинаковый seed даёт одинаковый результат.
func Run[A any](f Fake[A], seed uint64) A {
	return f(NewRandom(seed))
}

// =============================================================================
// Операторы
// =============================================================================

// Chain передаёт значение fa в fn и запускает полученный генератор.
func Chain[A, B any](fa Fake[A], fn func(A) Fake[B]) Fake[B] {
	return func(r Random) B {
		return fn(fa(r))(r)
	}
}

// Map преобразует значение генератора.
func Map[A, B any](fa Fake[A], fn func(A) B) Fake[B] {
	return func(r Random) B {
		return fn(fa(r))
	}
}

// Zip генерирует пару: сначала fa, затем fb.
func Zip[A, B any](fa Fake[A], fb Fake[B]) Fake[Pair[A, B]] {
	return func(r Random) Pair[A, B] {
		a := fa(r)
		return Pair[A, B]{First: a, Second: fb(r)}
	}
}

// OrElse выбирает fa или fb по случайному boolean.
func OrElse[A any](fa, fb Fake[A]) Fake[A] {
	return Chain(Boolean, func(b bool) Fake[A] {
		if b {
			return fa
		}
		return fb
	})
}

// Nullable в половине случаев возвращает nil.
func Nullable[A any](fa Fake[A]) Fake[*A] {
	return Chain(Boolean, func(b bool) Fake[*A] {
		if !b {
			return Always[*A](nil)
		}
		return Map(fa, func(a A) *A { return &a })
	})
}

// Sequence запускает генераторы по порядку.
// Результат никогда не nil.
func Sequence[A any](fas ...Fake[A]) Fake[[]A] {
	return func(r Random) []A {
		out := make([]A, 0, len(fas))
		for _, fa := range fas {
			out = append(out, fa(r))
		}
		return out
	}
}

// Struct генерирует map по генераторам полей.
// Поля генерируются в порядке сортировки ключей, чтобы результат
// не зависел от порядка обхода map.
func Struct(fields map[string]Fake[any]) Fake[map[string]any] {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return func(r Random) map[string]any {
		out := make(map[string]any, len(keys))
		for _, k := range keys {
			out[k] = fields[k](r)
		}
		return out
	}
}

// ArrayN генерирует ровно n элементов.
func ArrayN[A any](fa Fake[A], n int) Fake[[]A] {
	if n <= 0 {
		return Always([]A{})
	}
	fas := make([]Fake[A], n)
	for i := range fas {
		fas[i] = fa
	}
	return Sequence(fas...)
}

// Array генерирует от 0 до 5 элементов.
func Array[A any](fa Fake[A]) Fake[[]A] {
	return Chain(IntWithinRange(0, 5), func(n int) Fake[[]A] {
		return ArrayN(fa, n)
	})
}

// Any стирает тип генератора. Нужен для Struct и смешанных значений.
func Any[A any](fa Fake[A]) Fake[any] {
	return Map(fa, func(a A) any { return a })
}

// =============================================================================
// Конструкторы
// =============================================================================

// IntWithinRange генерирует целое в [lo, hi] включительно.
// Если hi < lo, границы меняются местами. Допустим любой диапазон,
// вплоть до [math.MinInt, math.MaxInt].
func IntWithinRange(lo, hi int) Fake[int] {
	if hi < lo {
		lo, hi = hi, lo
	}

	span := uint64(hi) - uint64(lo)
	if span < math.MaxInt {
		n := int(span) + 1
		return func(r Random) int {
			return lo + r.IntN(n)
		}
	}

	// Ширина диапазона не помещается в int: 64 бита набираются из
	// двух вызовов IntN, лишнее отбрасывается.
	return func(r Random) int {
		for {
			u := uint64(r.IntN(math.MaxInt)) | uint64(r.IntN(2))<<63
			if u <= span {
				return int(uint64(lo) + u)
			}
		}
	}
}

// Int генерирует целое в [0, 99999].
var Int = IntWithinRange(0, 99999)

// Always всегда возвращает a.
func Always[A any](a A) Fake[A] {
	return func(Random) A { return a }
}

// Boolean генерирует true или false.
var Boolean Fake[bool] = Map(IntWithinRange(0, 1), func(n int) bool { return n == 1 })

// String генерирует строку из 0..10 символов с кодами 0..1000.
var String Fake[string] = Chain(IntWithinRange(0, 10), func(n int) Fake[string] {
	return Map(ArrayN(IntWithinRange(0, 1000), n), func(codes []int) string {
		var b strings.Builder
		for _, c := range codes {
			b.WriteRune(rune(c))
		}
		return b.String()
	})
})

// Object генерирует map с 1..5 случайными ключами.
// Значение каждого ключа — int, bool или string.
// Совпавшие ключи схлопываются.
var Object Fake[map[string]any] = Chain(
	Chain(IntWithinRange(1, 5), func(n int) Fake[[]string] { return ArrayN(String, n) }),
	func(keys []string) Fake[map[string]any] {
		value := OrElse(OrElse(Any(Int), Any(Boolean)), Any(String))
		fields := make(map[string]Fake[any], len(keys))
		for _, k := range keys {
			fields[k] = value
		}
		return Struct(fields)
	},
)

// OneOf выбирает один из вариантов равновероятно.
// Пустой список — нулевое значение.
func OneOf[A any](choices ...A) Fake[A] {
	if len(choices) == 0 {
		var zero A
		return Always(zero)
	}
	return Map(IntWithinRange(0, len(choices)-1), func(i int) A { return choices[i] })
}
