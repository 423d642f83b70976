package selector

import (
	"sync"

	"github.com/moznion/go-optional"

	"github.com/Atypix/Smart100-sub002/internal/types"
)

// SelectionStore persists the winning strategy per symbol. Writes follow
// last-write-wins; records are never deleted. Implementations must be safe
// for concurrent use.
type SelectionStore interface {
	// Put records the selection for a symbol, replacing any previous one.
	Put(symbol string, record types.SelectionRecord) error
	// Get returns the selection for a symbol, or none when no evaluation
	// has selected for it yet.
	Get(symbol string) (optional.Option[types.SelectionRecord], error)
}

// MemoryStore keeps selections in process memory. It is the default store;
// engines that need persistence across restarts inject their own.
type MemoryStore struct {
	records map[string]types.SelectionRecord
	mu      sync.RWMutex
}

// NewMemoryStore creates an empty in-memory selection store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]types.SelectionRecord),
	}
}

// Put implements SelectionStore.
func (s *MemoryStore) Put(symbol string, record types.SelectionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[symbol] = record

	return nil
}

// Get implements SelectionStore.
func (s *MemoryStore) Get(symbol string) (optional.Option[types.SelectionRecord], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.records[symbol]
	if !exists {
		return optional.None[types.SelectionRecord](), nil
	}

	return optional.Some(record), nil
}

// Symbols returns every symbol with a recorded selection.
func (s *MemoryStore) Symbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	symbols := make([]string, 0, len(s.records))
	for symbol := range s.records {
		symbols = append(symbols, symbol)
	}

	return symbols
}
