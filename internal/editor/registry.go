package editor

import (
	"context"
	"fmt"
	"sync"

	"github.com/meur/tierzen/internal/models"
)

// Store is the storage the registry loads boards from
type Store interface {
	Persister
	GetBoard(ctx context.Context, id string) (*models.Board, error)
}

// Registry keeps one Editor per board so that every request for a board goes
// through the same controller.
type Registry struct {
	mu      sync.Mutex
	store   Store
	opts    Options
	editors map[string]*Editor
}

// NewRegistry creates an empty registry
func NewRegistry(store Store, opts Options) *Registry {
	return &Registry{
		store:   store,
		opts:    opts,
		editors: make(map[string]*Editor),
	}
}

// Get returns the editor of a board, loading the board on first use
func (r *Registry) Get(ctx context.Context, id string) (*Editor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.editors[id]; ok {
		return e, nil
	}

	b, err := r.store.GetBoard(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load board %s: %w", id, err)
	}
	if b == nil {
		return nil, fmt.Errorf("load board %s: %w", id, ErrNotFound)
	}

	e := New(*b, r.store, r.opts)
	r.editors[id] = e
	return e, nil
}

// Forget drops the cached editor of a board, e.g. after it was deleted
func (r *Registry) Forget(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.editors, id)
}
