package actions

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shaiso/Plankit/internal/pipeline"
)

// Registry — реестр действий, доступных в YAML планах.
//
// Потокобезопасен.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// DefaultRegistry создаёт реестр со всеми стандартными действиями.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(ActionDelay, NewDelay)
	r.Register(ActionHTTP, NewHTTP)
	r.Register(ActionFail, NewFail)
	r.Register(ActionLog, NewLog)
	r.Register(ActionNoop, NewNoop)

	return r
}

// Register регистрирует действие.
// Если действие с таким именем уже есть, оно будет перезаписано.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// Get возвращает фабрику действия.
// Возвращает ErrUnknownAction, если действие не найдено.
func (r *Registry) Get(name string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, exists := r.factories[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, name)
	}

	return f, nil
}

// Build создаёт ActionFunc действия name с конфигурацией cfg.
func (r *Registry) Build(name string, cfg map[string]any) (pipeline.ActionFunc, error) {
	f, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = make(map[string]any)
	}
	return f(cfg)
}

// Has проверяет, зарегистрировано ли действие.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.factories[name]
	return exists
}

// Names возвращает отсортированный список действий.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Count возвращает количество зарегистрированных действий.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.factories)
}

// Unregister удаляет действие из реестра.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.factories, name)
}
