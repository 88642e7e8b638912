package oauth

import (
	"sync"
	"time"

	"github.com/jrsteele09/go-journal-client/internal/errors"
)

// FlowState is what is remembered between sending the user to the provider and the callback.
type FlowState struct {
	ReturnRoute string
	CreatedAt   time.Time
}

// FlowRepo stores pending flows keyed by their state parameter.
type FlowRepo interface {
	Upsert(state string, flow *FlowState) error
	Get(state string) (*FlowState, error)
	Delete(state string) error
}

// InMemoryFlowRepo is a thread-safe in-memory FlowRepo.
type InMemoryFlowRepo struct {
	mu     sync.RWMutex
	states map[string]*FlowState
}

func NewInMemoryFlowRepo() *InMemoryFlowRepo {
	return &InMemoryFlowRepo{
		states: make(map[string]*FlowState),
	}
}

func (r *InMemoryFlowRepo) Upsert(state string, flow *FlowState) error {
	if state == "" {
		return errors.Wrapf(errors.ErrInvalidState, "state cannot be empty")
	}
	if flow == nil {
		return errors.Wrapf(errors.ErrInvalidInput, "flow cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *flow
	r.states[state] = &copied
	return nil
}

func (r *InMemoryFlowRepo) Get(state string) (*FlowState, error) {
	if state == "" {
		return nil, errors.Wrapf(errors.ErrInvalidState, "state cannot be empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	flow, exists := r.states[state]
	if !exists {
		return nil, errors.Wrapf(errors.ErrNotFound, "state %s", state)
	}
	copied := *flow
	return &copied, nil
}

func (r *InMemoryFlowRepo) Delete(state string) error {
	if state == "" {
		return errors.Wrapf(errors.ErrInvalidState, "state cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, state)
	return nil
}

// Prune drops flows created before cutoff.
func (r *InMemoryFlowRepo) Prune(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for state, flow := range r.states {
		if flow.CreatedAt.Before(cutoff) {
			delete(r.states, state)
			n++
		}
	}
	return n
}
