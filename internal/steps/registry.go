package steps

import (
	"fmt"
	"sort"
	"sync"
)

// Registry — реестр шагов по имени.
//
// Потокобезопасен.
type Registry struct {
	mu    sync.RWMutex
	steps map[string]Step
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{
		steps: make(map[string]Step),
	}
}

// DefaultRegistry создаёт реестр со всеми шагами pipeline.
// Если rnd == nil, симулируемые шаги используют SystemRand().
func DefaultRegistry(store RecordStore, rnd Rand) *Registry {
	r := NewRegistry()

	r.Register(NewProcessStep())
	r.Register(NewInventoryStep(rnd))
	r.Register(NewPaymentStep(rnd))
	r.Register(NewStoreStep(store))

	return r
}

// Register регистрирует шаг в реестре.
// Шаг с тем же именем перезаписывается.
func (r *Registry) Register(step Step) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps[step.Name()] = step
}

// Get возвращает шаг по имени.
// Возвращает ErrUnknownStep, если шаг не найден.
func (r *Registry) Get(name string) (Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	step, exists := r.steps[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStep, name)
	}

	return step, nil
}

// Has проверяет, зарегистрирован ли шаг.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.steps[name]
	return exists
}

// Names возвращает отсортированный список имён шагов.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.steps))
	for name := range r.steps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count возвращает количество зарегистрированных шагов.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.steps)
}
