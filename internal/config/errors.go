package config

import "errors"

var (
	// ErrMissing — переменная не задана или пустая.
	ErrMissing = errors.New("config variable is missing")

	// ErrInvalid — значение переменной не проходит проверку.
	ErrInvalid = errors.New("config variable is invalid")

	// ErrFailed — чтение конфигурации безусловно неуспешно (Fail).
	ErrFailed = errors.New("config failed")
)

// Kind — вид ошибки чтения.
type Kind int

const (
	KindMissing Kind = iota
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "Missing"
	case KindInvalid:
		return "Invalid"
	default:
		return "Unknown"
	}
}

// Error — ошибка чтения одной переменной.
type Error struct {
	Kind     Kind   // Missing или Invalid
	Variable string // имя переменной окружения
	Reason   string // только для Invalid, например "Must be a number"
}

// Error реализует интерфейс error.
func (e *Error) Error() string {
	if e.Kind == KindMissing {
		return "missing variable " + e.Variable
	}
	return "invalid variable " + e.Variable + ": " + e.Reason
}

// Unwrap возвращает ErrMissing или ErrInvalid.
func (e *Error) Unwrap() error {
	if e.Kind == KindMissing {
		return ErrMissing
	}
	return ErrInvalid
}

func missing(variable string) *Error {
	return &Error{Kind: KindMissing, Variable: variable}
}

func invalid(variable, reason string) *Error {
	return &Error{Kind: KindInvalid, Variable: variable, Reason: reason}
}

// isMissing сообщает, что err — ошибка Missing.
func isMissing(err error) bool {
	var cerr *Error
	return errors.As(err, &cerr) && cerr.Kind == KindMissing
}
