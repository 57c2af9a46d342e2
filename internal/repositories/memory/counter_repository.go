package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/developer0071/Tech-House-programing/internal/repositories"
)

type counterState struct {
	currentValue int64
	step         int64
	maxValue     *int64
	updatedAt    time.Time
}

// CounterRepository implements repositories.CounterRepository with a mutex-guarded map.
type CounterRepository struct {
	mu       sync.Mutex
	counters map[string]*counterState
	clock    func() time.Time
}

// NewCounterRepository constructs an empty counter store.
func NewCounterRepository() *CounterRepository {
	return &CounterRepository{
		counters: make(map[string]*counterState),
		clock:    time.Now,
	}
}

// Next increments the counter identified by counterID and returns the next value. Unknown
// counters start at step (or 1); a non-positive step reuses the stored step.
func (r *CounterRepository) Next(_ context.Context, counterID string, step int64) (int64, error) {
	id := strings.TrimSpace(counterID)
	if id == "" {
		return 0, repositories.NewCounterError(repositories.CounterErrorInvalidInput, "", "counter id is required")
	}
	if step < 0 {
		return 0, repositories.NewCounterError(repositories.CounterErrorInvalidInput, id, fmt.Sprintf("step must not be negative, got %d", step))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock().UTC()
	state, ok := r.counters[id]
	if !ok {
		increment := step
		if increment <= 0 {
			increment = 1
		}
		r.counters[id] = &counterState{currentValue: increment, step: increment, updatedAt: now}
		return increment, nil
	}

	increment := step
	if increment <= 0 {
		if state.step > 0 {
			increment = state.step
		} else {
			increment = 1
		}
	}

	newValue := state.currentValue + increment
	if state.maxValue != nil && newValue > *state.maxValue {
		return 0, repositories.NewCounterError(repositories.CounterErrorExhausted, id, fmt.Sprintf("exceeded max value %d", *state.maxValue))
	}

	state.currentValue = newValue
	state.step = increment
	state.updatedAt = now
	return newValue, nil
}

// Configure updates the step and max value of the counter. InitialValue only ever raises the
// current value, so issued numbers are never handed out again.
func (r *CounterRepository) Configure(_ context.Context, counterID string, cfg repositories.CounterConfig) error {
	id := strings.TrimSpace(counterID)
	if id == "" {
		return repositories.NewCounterError(repositories.CounterErrorInvalidInput, "", "counter id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.counters[id]
	if !ok {
		state = &counterState{}
		r.counters[id] = state
	}
	if cfg.Step > 0 {
		state.step = cfg.Step
	}
	if cfg.MaxValue != nil {
		max := *cfg.MaxValue
		state.maxValue = &max
	}
	if cfg.InitialValue != nil && *cfg.InitialValue > state.currentValue {
		state.currentValue = *cfg.InitialValue
	}
	state.updatedAt = r.clock().UTC()
	return nil
}
