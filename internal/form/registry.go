package form

import (
	"sync"

	"github.com/akm12109/SDM-Admin/internal/domain"
)

// Observable is the form surface streamed to the console.
type Observable interface {
	Name() string
	State() State
	Observe() (<-chan State, func())
}

// Registry gives every console user their own controller for one form, so one
// admin's submission never blocks another's.
type Registry[T domain.Record] struct {
	build func() *Controller[T]

	mu          sync.Mutex
	controllers map[string]*Controller[T]
}

func NewRegistry[T domain.Record](build func() *Controller[T]) *Registry[T] {
	return &Registry[T]{build: build, controllers: map[string]*Controller[T]{}}
}

// For returns owner's controller, creating it on first use.
func (r *Registry[T]) For(owner string) *Controller[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.controllers[owner]
	if !ok {
		c = r.build()
		r.controllers[owner] = c
	}
	return c
}

func (r *Registry[T]) Observable(owner string) Observable {
	return r.For(owner)
}
