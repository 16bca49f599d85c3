package plandef

import (
	"errors"

	"github.com/shaiso/Plankit/internal/actions"
)

// Ошибки валидации определения плана.
var (
	// ErrEmptyDefinition — определение не содержит pipeline.
	ErrEmptyDefinition = errors.New("plan definition has no pipeline")

	// ErrEmptyNode — узел не содержит ни одного ключа вида.
	ErrEmptyNode = errors.New("node has no kind")

	// ErrAmbiguousNode — узел содержит несколько ключей вида.
	ErrAmbiguousNode = errors.New("node has more than one kind")

	// ErrUnknownField — неизвестный ключ узла.
	ErrUnknownField = errors.New("unknown node field")

	// ErrEmptyStageName — stage без имени.
	ErrEmptyStageName = errors.New("stage has empty name")

	// ErrMissingStageBody — stage без `do`.
	ErrMissingStageBody = errors.New("stage has no body")

	// ErrEmptyChildren — parallel или sequential без детей.
	ErrEmptyChildren = errors.New("node has no children")

	// ErrIncompleteRecover — recover без try или fallback.
	ErrIncompleteRecover = errors.New("recover needs try and fallback")

	// ErrUnknownAction — действие не зарегистрировано.
	ErrUnknownAction = actions.ErrUnknownAction

	// ErrInvalidConfig — невалидная конфигурация действия.
	ErrInvalidConfig = actions.ErrInvalidConfig
)

// Ошибки рендеринга шаблонов.
var (
	// ErrTemplateRender — ошибка рендеринга шаблона.
	ErrTemplateRender = errors.New("template render failed")

	// ErrTemplateParse — ошибка парсинга шаблона.
	ErrTemplateParse = errors.New("template parse failed")
)

// ValidationError — ошибка валидации с контекстом.
type ValidationError struct {
	Path    string // путь узла, например pipeline.sequential[1].do
	Field   string // поле, вызвавшее ошибку
	Message string // описание ошибки
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	if e.Path != "" {
		return e.Path + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError создаёт новую ошибку валидации.
func NewValidationError(path, field, message string, err error) *ValidationError {
	return &ValidationError{
		Path:    path,
		Field:   field,
		Message: message,
		Err:     err,
	}
}
