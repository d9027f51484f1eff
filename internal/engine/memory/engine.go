// Package memory provides an in-memory engine implementation for tests and
// local development. It mimics the real engine's contract: name uniqueness
// on create, conflict rejection for overlapping destroys, and a bookkeeping
// entry that survives until explicitly removed.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/geostacks/sitehost/internal/domain"
	"github.com/geostacks/sitehost/internal/engine"
	"github.com/geostacks/sitehost/internal/sitespec"
)

// Engine is an in-memory implementation of engine.Client.
type Engine struct {
	region string

	mu     sync.Mutex
	stacks map[string]*stackRecord

	// destroyHold keeps a destroy in flight for the given duration so tests
	// can provoke overlapping-teardown conflicts.
	destroyHold time.Duration

	// failNextDestroy makes the next destroy fail partway, leaving the
	// bookkeeping entry behind.
	failNextDestroy bool
}

type stackRecord struct {
	outputs engine.Outputs
	busy    bool
}

// Ensure Engine implements engine.Client.
var _ engine.Client = (*Engine)(nil)

// New creates a new in-memory engine.
func New(region string) *Engine {
	return &Engine{
		region: region,
		stacks: make(map[string]*stackRecord),
	}
}

// SetDestroyHold makes every subsequent destroy take at least d.
func (e *Engine) SetDestroyHold(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.destroyHold = d
}

// FailNextDestroy makes the next destroy return a generic engine failure.
func (e *Engine) FailNextDestroy() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failNextDestroy = true
}

// CreateStack registers a stack and fabricates the outputs a real apply
// would compute.
func (e *Engine) CreateStack(ctx context.Context, name string, spec sitespec.Spec) (engine.Outputs, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.stacks[name]; ok {
		return nil, fmt.Errorf("stack %q: %w", name, domain.ErrAlreadyExists)
	}

	// Physical bucket names get a random suffix, so the endpoint is unique
	// per create even when a name is reused.
	endpoint := fmt.Sprintf("%s-%s.s3-website-%s.amazonaws.com", name, uuid.New().String()[:8], e.region)
	rec := &stackRecord{
		outputs: engine.Outputs{sitespec.WebsiteURLOutput: endpoint},
	}
	e.stacks[name] = rec

	return rec.outputs.Clone(), nil
}

// SelectStackOutputs returns the current outputs of an existing stack.
func (e *Engine) SelectStackOutputs(ctx context.Context, name string) (engine.Outputs, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok := e.stacks[name]
	if !ok {
		return nil, fmt.Errorf("stack %q: %w", name, domain.ErrNotFound)
	}
	return rec.outputs.Clone(), nil
}

// ListStacks enumerates stack names in map order.
func (e *Engine) ListStacks(ctx context.Context) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	names := make([]string, 0, len(e.stacks))
	for name := range e.stacks {
		names = append(names, name)
	}
	return names, nil
}

// DestroyStack clears the stack's resources. Overlapping destroys against
// the same stack fail with domain.ErrConflict, matching the real engine's
// concurrent-update rejection.
func (e *Engine) DestroyStack(ctx context.Context, name string) error {
	e.mu.Lock()
	rec, ok := e.stacks[name]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("stack %q: %w", name, domain.ErrNotFound)
	}
	if rec.busy {
		e.mu.Unlock()
		return fmt.Errorf("stack %q: update in progress: %w", name, domain.ErrConflict)
	}
	if e.failNextDestroy {
		e.failNextDestroy = false
		e.mu.Unlock()
		return fmt.Errorf("stack %q: teardown failed partway", name)
	}
	rec.busy = true
	hold := e.destroyHold
	e.mu.Unlock()

	if hold > 0 {
		time.Sleep(hold)
	}

	e.mu.Lock()
	rec.outputs = engine.Outputs{}
	rec.busy = false
	e.mu.Unlock()
	return nil
}

// RemoveStack deletes the bookkeeping entry, freeing the name for reuse.
func (e *Engine) RemoveStack(ctx context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok := e.stacks[name]
	if !ok {
		return fmt.Errorf("stack %q: %w", name, domain.ErrNotFound)
	}
	if rec.busy {
		return fmt.Errorf("stack %q: update in progress: %w", name, domain.ErrConflict)
	}
	delete(e.stacks, name)
	return nil
}
