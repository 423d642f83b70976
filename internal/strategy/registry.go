package strategy

import (
	"sync"

	"github.com/Atypix/Smart100-sub002/pkg/errors"
)

// Registry manages all available strategies.
type Registry interface {
	Register(strategy Strategy) error
	Get(id string) (Strategy, error)
	List() []Strategy
	Remove(id string) error
	Count() int
}

// RegistryV1 manages all available strategies. List returns strategies in
// registration order so candidate enumeration stays deterministic.
type RegistryV1 struct {
	strategies map[string]Strategy
	order      []string
	mu         sync.RWMutex
}

// NewRegistry creates a new strategy registry.
func NewRegistry() Registry {
	return &RegistryV1{
		strategies: make(map[string]Strategy),
		order:      make([]string, 0),
		mu:         sync.RWMutex{},
	}
}

// Register adds a strategy to the registry.
func (r *RegistryV1) Register(strategy Strategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := strategy.ID()
	if _, exists := r.strategies[id]; exists {
		return errors.Newf(errors.ErrCodeStrategyAlreadyExists, "Register: strategy with id %s already registered", id)
	}

	r.strategies[id] = strategy
	r.order = append(r.order, id)

	return nil
}

// Get retrieves a strategy by id. Strategies carrying internal state are
// reset on every resolve so state never leaks between runs.
func (r *RegistryV1) Get(id string) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	strategy, exists := r.strategies[id]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeStrategyNotFound, "Get: strategy with id %s not found", id)
	}

	if resettable, ok := strategy.(Resettable); ok {
		resettable.Reset()
	}

	return strategy, nil
}

// List returns all registered strategies in registration order.
func (r *RegistryV1) List() []Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	strategies := make([]Strategy, 0, len(r.strategies))
	for _, id := range r.order {
		strategies = append(strategies, r.strategies[id])
	}

	return strategies
}

// Remove removes a strategy from the registry.
func (r *RegistryV1) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.strategies[id]; !exists {
		return errors.Newf(errors.ErrCodeStrategyNotFound, "Remove: strategy with id %s not found", id)
	}

	delete(r.strategies, id)

	for i, registered := range r.order {
		if registered == id {
			r.order = append(r.order[:i], r.order[i+1:]...)

			break
		}
	}

	return nil
}

// Count returns the number of registered strategies.
func (r *RegistryV1) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.strategies)
}
