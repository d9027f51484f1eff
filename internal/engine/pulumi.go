package engine

import (
	"context"
	"fmt"
	"io"

	"github.com/pulumi/pulumi/sdk/v3/go/auto"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optdestroy"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optup"
	"github.com/pulumi/pulumi/sdk/v3/go/common/tokens"
	"github.com/pulumi/pulumi/sdk/v3/go/common/workspace"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/geostacks/sitehost/internal/domain"
	"github.com/geostacks/sitehost/internal/sitespec"
)

// PulumiClient drives stacks through the Pulumi Automation API using inline
// programs. It holds no state of its own; the local Pulumi workspace is the
// system of record.
type PulumiClient struct {
	project  string
	region   string
	progress io.Writer
}

// Ensure PulumiClient implements Client.
var _ Client = (*PulumiClient)(nil)

// NewPulumi creates a new Pulumi-backed engine client. Progress output from
// apply and destroy is streamed to progress as a side channel.
func NewPulumi(project, region string, progress io.Writer) *PulumiClient {
	return &PulumiClient{
		project:  project,
		region:   region,
		progress: progress,
	}
}

// noopProgram is selected alongside existing stacks for reads and destroys;
// it never declares resources.
func noopProgram(*pulumi.Context) error { return nil }

// CreateStack provisions a new stack from the spec and applies it.
func (c *PulumiClient) CreateStack(ctx context.Context, name string, spec sitespec.Spec) (Outputs, error) {
	stack, err := auto.NewStackInlineSource(ctx, name, c.project, spec.Program())
	if err != nil {
		if auto.IsCreateStack409Error(err) {
			return nil, fmt.Errorf("stack %q: %w", name, domain.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("creating stack %q: %w", name, err)
	}

	if err := stack.SetConfig(ctx, "aws:region", auto.ConfigValue{Value: c.region}); err != nil {
		return nil, fmt.Errorf("configuring stack %q: %w", name, err)
	}

	res, err := stack.Up(ctx, optup.ProgressStreams(c.progress))
	if err != nil {
		if auto.IsConcurrentUpdateError(err) {
			return nil, fmt.Errorf("stack %q: %w", name, domain.ErrConflict)
		}
		return nil, fmt.Errorf("applying stack %q: %w", name, err)
	}

	return fromOutputMap(res.Outputs), nil
}

// SelectStackOutputs reads the outputs of an existing stack.
func (c *PulumiClient) SelectStackOutputs(ctx context.Context, name string) (Outputs, error) {
	stack, err := c.selectStack(ctx, name)
	if err != nil {
		return nil, err
	}

	outs, err := stack.Outputs(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading outputs of stack %q: %w", name, err)
	}
	return fromOutputMap(outs), nil
}

// ListStacks enumerates stack names in the project namespace.
func (c *PulumiClient) ListStacks(ctx context.Context) ([]string, error) {
	ws, err := c.workspace(ctx)
	if err != nil {
		return nil, err
	}

	summaries, err := ws.ListStacks(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing stacks: %w", err)
	}

	names := make([]string, 0, len(summaries))
	for _, s := range summaries {
		names = append(names, s.Name)
	}
	return names, nil
}

// DestroyStack tears down every resource the stack created. The bookkeeping
// entry is left in place so a failed teardown can be retried.
func (c *PulumiClient) DestroyStack(ctx context.Context, name string) error {
	stack, err := c.selectStack(ctx, name)
	if err != nil {
		return err
	}

	if _, err := stack.Destroy(ctx, optdestroy.ProgressStreams(c.progress)); err != nil {
		if auto.IsConcurrentUpdateError(err) {
			return fmt.Errorf("stack %q: %w", name, domain.ErrConflict)
		}
		return fmt.Errorf("destroying stack %q: %w", name, err)
	}
	return nil
}

// RemoveStack deletes the stack's bookkeeping entry, freeing the name.
func (c *PulumiClient) RemoveStack(ctx context.Context, name string) error {
	stack, err := c.selectStack(ctx, name)
	if err != nil {
		return err
	}

	if err := stack.Workspace().RemoveStack(ctx, name); err != nil {
		return fmt.Errorf("removing stack %q: %w", name, err)
	}
	return nil
}

func (c *PulumiClient) selectStack(ctx context.Context, name string) (auto.Stack, error) {
	stack, err := auto.SelectStackInlineSource(ctx, name, c.project, noopProgram)
	if err != nil {
		if auto.IsSelectStack404Error(err) {
			return auto.Stack{}, fmt.Errorf("stack %q: %w", name, domain.ErrNotFound)
		}
		return auto.Stack{}, fmt.Errorf("selecting stack %q: %w", name, err)
	}
	return stack, nil
}

// workspace opens a local workspace scoped to the project namespace, so
// ListStacks sees exactly the stacks this controller manages.
func (c *PulumiClient) workspace(ctx context.Context) (auto.Workspace, error) {
	ws, err := auto.NewLocalWorkspace(ctx, auto.Project(workspace.Project{
		Name:    tokens.PackageName(c.project),
		Runtime: workspace.NewProjectRuntimeInfo("go", nil),
	}))
	if err != nil {
		return nil, fmt.Errorf("opening workspace: %w", err)
	}
	return ws, nil
}

// fromOutputMap flattens engine output values to strings. Secrets are not
// part of the site graph, so plain rendering is sufficient.
func fromOutputMap(m auto.OutputMap) Outputs {
	outs := make(Outputs, len(m))
	for k, v := range m {
		outs[k] = fmt.Sprint(v.Value)
	}
	return outs
}
