package strategy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/newthinker/quantlab/internal/core"
	"go.uber.org/zap"
)

// Engine manages registered strategies
type Engine struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
	logger     *zap.Logger
}

// NewEngine creates a new strategy engine
func NewEngine(logger ...*zap.Logger) *Engine {
	var l *zap.Logger
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	} else {
		l = zap.NewNop()
	}
	return &Engine{
		strategies: make(map[string]Strategy),
		logger:     l,
	}
}

// Register adds a strategy to the engine, replacing one with the same name
func (e *Engine) Register(s Strategy) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.strategies[s.Name()]; exists {
		e.logger.Warn("replacing registered strategy", zap.String("strategy", s.Name()))
	}
	e.strategies[s.Name()] = s
}

// Get retrieves a strategy by name
func (e *Engine) Get(name string) (Strategy, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.strategies[name]
	return s, ok
}

// Lookup resolves names to strategies, failing on the first unknown name
func (e *Engine) Lookup(names ...string) ([]Strategy, error) {
	result := make([]Strategy, 0, len(names))
	for _, name := range names {
		s, ok := e.Get(name)
		if !ok {
			return nil, core.WrapError(core.ErrStrategyNotFound, fmt.Errorf("%q", name))
		}
		result = append(result, s)
	}
	return result, nil
}

// GetAll returns all registered strategies ordered by name
func (e *Engine) GetAll() []Strategy {
	e.mu.RLock()
	defer e.mu.RUnlock()

	result := make([]Strategy, 0, len(e.strategies))
	for _, s := range e.strategies {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name() < result[j].Name()
	})
	return result
}

// Names returns the registered strategy names in order
func (e *Engine) Names() []string {
	all := e.GetAll()
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = s.Name()
	}
	return names
}
