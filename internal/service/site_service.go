// Package service contains the stack lifecycle controller.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/geostacks/sitehost/internal/domain"
	"github.com/geostacks/sitehost/internal/engine"
	"github.com/geostacks/sitehost/internal/sitespec"
	"github.com/geostacks/sitehost/internal/validation"
)

// SiteService maps site lifecycle requests onto idempotent engine
// operations. It is stateless and holds no locks: name uniqueness and
// serialization of conflicting operations belong to the engine, and engine
// failures are surfaced to the caller, never retried here.
type SiteService struct {
	engine  engine.Client
	project string
	logger  *slog.Logger
}

// NewSiteService creates a new SiteService.
func NewSiteService(client engine.Client, project string, logger *slog.Logger) *SiteService {
	return &SiteService{
		engine:  client,
		project: project,
		logger:  logger,
	}
}

// Project returns the namespace grouping all stacks this service manages.
func (s *SiteService) Project() string {
	return s.project
}

// Create provisions a new site and returns it with its public URL. The
// request blocks until the engine has finished applying the resource graph.
func (s *SiteService) Create(ctx context.Context, name string, params domain.SiteParams) (*domain.Site, error) {
	if err := validation.ValidateSiteName(name); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, err)
	}

	outs, err := s.engine.CreateStack(ctx, name, sitespec.New(params))
	if err != nil {
		return nil, err
	}

	url, ok := outs[sitespec.WebsiteURLOutput]
	if !ok {
		return nil, fmt.Errorf("stack %q: apply finished without %s output", name, sitespec.WebsiteURLOutput)
	}

	s.logger.Info("site provisioned", "site", name, "project", s.project, "url", url)
	return &domain.Site{ID: name, URL: url}, nil
}

// Get reads an existing site's URL from current engine outputs. It runs no
// mutating logic and is safe to call arbitrarily often and concurrently.
func (s *SiteService) Get(ctx context.Context, name string) (*domain.Site, error) {
	outs, err := s.engine.SelectStackOutputs(ctx, name)
	if err != nil {
		return nil, err
	}

	url, ok := outs[sitespec.WebsiteURLOutput]
	if !ok {
		return nil, fmt.Errorf("stack %q: missing %s output", name, sitespec.WebsiteURLOutput)
	}

	return &domain.Site{ID: name, URL: url}, nil
}

// List enumerates all site names in the project namespace, in engine order.
func (s *SiteService) List(ctx context.Context) ([]string, error) {
	return s.engine.ListStacks(ctx)
}

// Delete tears down a site's resources and then removes its bookkeeping
// entry so the name can be reused. If teardown fails partway, the entry is
// left in place so a retried delete cannot orphan resources.
func (s *SiteService) Delete(ctx context.Context, name string) error {
	if err := s.engine.DestroyStack(ctx, name); err != nil {
		return err
	}

	if err := s.engine.RemoveStack(ctx, name); err != nil {
		return err
	}

	s.logger.Info("site removed", "site", name, "project", s.project)
	return nil
}
