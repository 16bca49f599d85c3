// Package filter — DSL фильтров обращений в поддержку.
//
// Filter — предикат над SupportRequest. Конструкторы проверяют одно
// свойство обращения, комбинаторы And, Or, Not, All, Any собирают из
// них правила. Готовые правила лежат в presets.go и используются
// командой `plankit triage`.
package filter

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Tier — тариф клиента. Закодирован префиксом идентификатора клиента:
// "gold-client-id".
type Tier string

const (
	TierDiscovery Tier = "discovery"
	TierSilver    Tier = "silver"
	TierGold      Tier = "gold"
)

// SupportRequest — обращение в поддержку.
type SupportRequest struct {
	Object      string    `yaml:"object" json:"object"`
	Body        string    `yaml:"body" json:"body"`
	From        string    `yaml:"from" json:"from"`
	RequestedAt time.Time `yaml:"requested_at" json:"requested_at"`
}

// Filter — предикат над обращением.
type Filter func(SupportRequest) bool

// =============================================================================
// Конструкторы
// =============================================================================

// ObjectMatches проверяет тему обращения.
func ObjectMatches(re *regexp.Regexp) Filter {
	return func(r SupportRequest) bool {
		return re.MatchString(r.Object)
	}
}

// BodyMatches проверяет текст обращения.
func BodyMatches(re *regexp.Regexp) Filter {
	return func(r SupportRequest) bool {
		return re.MatchString(r.Body)
	}
}

// IsTier проверяет тариф клиента (без учёта регистра).
func IsTier(tier Tier) Filter {
	prefix := strings.ToLower(string(tier)) + "-"
	return func(r SupportRequest) bool {
		return strings.HasPrefix(strings.ToLower(r.From), prefix)
	}
}

// Op — оператор сравнения возраста.
type Op string

const (
	OpGreater      Op = ">"
	OpLess         Op = "<"
	OpGreaterEqual Op = ">="
	OpLessEqual    Op = "<="
)

// ParseOp парсит оператор сравнения.
func ParseOp(s string) (Op, error) {
	switch op := Op(s); op {
	case OpGreater, OpLess, OpGreaterEqual, OpLessEqual:
		return op, nil
	default:
		return "", fmt.Errorf("filter: unknown comparison %q", s)
	}
}

// Age сравнивает возраст обращения (now() - RequestedAt) с d.
// Неизвестный op — паника: операторы задаются в коде или через ParseOp.
func Age(now func() time.Time, op Op, d time.Duration) Filter {
	return func(r SupportRequest) bool {
		age := now().Sub(r.RequestedAt)
		switch op {
		case OpGreater:
			return age > d
		case OpLess:
			return age < d
		case OpGreaterEqual:
			return age >= d
		case OpLessEqual:
			return age <= d
		default:
			panic(fmt.Sprintf("filter: unknown comparison %q", op))
		}
	}
}

// Always пропускает любое обращение.
func Always(SupportRequest) bool { return true }

// Never не пропускает ни одного обращения.
func Never(SupportRequest) bool { return false }

// =============================================================================
// Комбинаторы
// =============================================================================

// And — оба фильтра.
func And(a, b Filter) Filter {
	return func(r SupportRequest) bool {
		return a(r) && b(r)
	}
}

// Or — хотя бы один фильтр.
func Or(a, b Filter) Filter {
	return func(r SupportRequest) bool {
		return a(r) || b(r)
	}
}

// Not — отрицание.
func Not(f Filter) Filter {
	return func(r SupportRequest) bool {
		return !f(r)
	}
}

// All — все фильтры. Пустой список пропускает всё.
func All(filters ...Filter) Filter {
	return func(r SupportRequest) bool {
		for _, f := range filters {
			if !f(r) {
				return false
			}
		}
		return true
	}
}

// Any — хотя бы один фильтр. Пустой список не пропускает ничего.
func Any(filters ...Filter) Filter {
	return func(r SupportRequest) bool {
		for _, f := range filters {
			if f(r) {
				return true
			}
		}
		return false
	}
}

// Select возвращает обращения, прошедшие фильтр, в исходном порядке.
func Select(requests []SupportRequest, f Filter) []SupportRequest {
	var out []SupportRequest
	for _, r := range requests {
		if f(r) {
			out = append(out, r)
		}
	}
	return out
}
