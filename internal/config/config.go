// Package config — композиционное чтение конфигурации из окружения.
//
// Config[A] — функция от окружения, возвращающая значение или *Error.
// Конструкторы читают одну переменную (String, Int, URL, Bool, Literal),
// комбинаторы (Optional, DefaultTo, OrElse, Map, Struct) собирают
// из них конфигурацию приложения.
//
//	port := config.DefaultTo(8083, config.Int("MONITOR_PORT"))
//	v, err := port(config.Environ())
//
// Settings (settings.go) — конфигурация бинарников Plankit.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Env — переменные окружения.
type Env map[string]string

// Environ возвращает окружение текущего процесса.
func Environ() Env {
	env := make(Env)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

// Config — чтение значения типа A из окружения.
type Config[A any] func(env Env) (A, error)

// =============================================================================
// Конструкторы
// =============================================================================

// lookup возвращает значение переменной. Пустое значение — Missing.
func lookup(env Env, variable string) (string, error) {
	v := env[variable]
	if v == "" {
		return "", missing(variable)
	}
	return v, nil
}

// String читает строку.
func String(variable string) Config[string] {
	return func(env Env) (string, error) {
		return lookup(env, variable)
	}
}

// Int читает целое число.
func Int(variable string) Config[int] {
	return func(env Env) (int, error) {
		v, err := lookup(env, variable)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, invalid(variable, "Must be a number")
		}
		return n, nil
	}
}

// URL читает http(s) адрес. Проверяется только префикс "http".
func URL(variable string) Config[string] {
	return func(env Env) (string, error) {
		v, err := lookup(env, variable)
		if err != nil {
			return "", err
		}
		if !strings.HasPrefix(v, "http") {
			return "", invalid(variable, "Must be a url")
		}
		return v, nil
	}
}

// Bool читает "true" или "false".
func Bool(variable string) Config[bool] {
	return func(env Env) (bool, error) {
		v, err := lookup(env, variable)
		if err != nil {
			return false, err
		}
		switch v {
		case "true":
			return true, nil
		case "false":
			return false, nil
		default:
			return false, invalid(variable, "Must be a boolean")
		}
	}
}

// Literal читает одно из допустимых значений.
func Literal(variable string, allowed ...string) Config[string] {
	quoted := make([]string, len(allowed))
	for i, a := range allowed {
		quoted[i] = strconv.Quote(a)
	}
	reason := "Must be one of " + strings.Join(quoted, " | ")

	return func(env Env) (string, error) {
		v, err := lookup(env, variable)
		if err != nil {
			return "", err
		}
		for _, a := range allowed {
			if v == a {
				return v, nil
			}
		}
		return "", invalid(variable, reason)
	}
}

// Always всегда возвращает a.
func Always[A any](a A) Config[A] {
	return func(Env) (A, error) {
		return a, nil
	}
}

// Fail всегда возвращает ошибку.
func Fail[A any](reason string) Config[A] {
	return func(Env) (A, error) {
		var zero A
		return zero, fmt.Errorf("%w: %s", ErrFailed, reason)
	}
}

// =============================================================================
// Комбинаторы
// =============================================================================

// Optional превращает Missing в nil. Invalid остаётся ошибкой.
func Optional[A any](cfg Config[A]) Config[*A] {
	return func(env Env) (*A, error) {
		v, err := cfg(env)
		if err != nil {
			if isMissing(err) {
				return nil, nil
			}
			return nil, err
		}
		return &v, nil
	}
}

// DefaultTo превращает Missing в def. Invalid остаётся ошибкой.
func DefaultTo[A any](def A, cfg Config[A]) Config[A] {
	return func(env Env) (A, error) {
		v, err := cfg(env)
		if err != nil && isMissing(err) {
			return def, nil
		}
		return v, err
	}
}

// OrElse при любой ошибке cfg пробует alt.
// Если alt тоже неуспешен, возвращается ошибка alt.
func OrElse[A any](cfg, alt Config[A]) Config[A] {
	return func(env Env) (A, error) {
		if v, err := cfg(env); err == nil {
			return v, nil
		}
		return alt(env)
	}
}

// Map преобразует прочитанное значение.
func Map[A, B any](cfg Config[A], fn func(A) B) Config[B] {
	return func(env Env) (B, error) {
		v, err := cfg(env)
		if err != nil {
			var zero B
			return zero, err
		}
		return fn(v), nil
	}
}

// FieldSpec — поле Struct.
type FieldSpec struct {
	Name string
	read func(Env) (any, error)
}

// Field описывает поле Struct.
func Field[A any](name string, cfg Config[A]) FieldSpec {
	return FieldSpec{
		Name: name,
		read: func(env Env) (any, error) {
			return cfg(env)
		},
	}
}

// Struct читает поля по порядку и останавливается на первой ошибке.
func Struct(fields ...FieldSpec) Config[map[string]any] {
	return func(env Env) (map[string]any, error) {
		out := make(map[string]any, len(fields))
		for _, f := range fields {
			v, err := f.read(env)
			if err != nil {
				return nil, err
			}
			out[f.Name] = v
		}
		return out, nil
	}
}

// Bind читает cfg в dst. Удобно для заполнения структур.
func Bind[A any](env Env, cfg Config[A], dst *A) error {
	v, err := cfg(env)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
