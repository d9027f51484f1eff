// Package engine wraps the declarative provisioning engine that owns all
// durable deployment state. The Client interface returns tagged domain
// errors so callers branch on error kind instead of matching SDK error
// types.
package engine

import (
	"context"

	"github.com/geostacks/sitehost/internal/sitespec"
)

// Outputs is the set of named values computed by the engine after a
// successful apply.
type Outputs map[string]string

// Clone returns a copy so callers cannot mutate engine-held state.
func (o Outputs) Clone() Outputs {
	c := make(Outputs, len(o))
	for k, v := range o {
		c[k] = v
	}
	return c
}

// Client defines the operations the lifecycle controller needs from the
// provisioning engine. Implementations must be safe for concurrent use and
// must distinguish domain.ErrAlreadyExists, domain.ErrNotFound, and
// domain.ErrConflict from generic failures.
type Client interface {
	// CreateStack provisions a new stack from the spec and applies it.
	// Fails with domain.ErrAlreadyExists if the name is taken; the
	// pre-existing stack is never mutated in that case.
	CreateStack(ctx context.Context, name string, spec sitespec.Spec) (Outputs, error)

	// SelectStackOutputs reads the current outputs of an existing stack
	// without running any mutating logic. Fails with domain.ErrNotFound
	// if no stack with the name exists.
	SelectStackOutputs(ctx context.Context, name string) (Outputs, error)

	// ListStacks enumerates stack names in the project namespace, in
	// whatever order the engine yields them.
	ListStacks(ctx context.Context) ([]string, error)

	// DestroyStack tears down every resource the stack created. Fails
	// with domain.ErrNotFound if no such stack, or domain.ErrConflict if
	// another update or destroy is already running against it. The
	// stack's bookkeeping entry survives a failed teardown.
	DestroyStack(ctx context.Context, name string) error

	// RemoveStack deletes the stack's bookkeeping entry, freeing the
	// name for reuse. Call only after a successful DestroyStack.
	RemoveStack(ctx context.Context, name string) error
}
