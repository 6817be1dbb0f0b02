package popup

import (
	"context"
	"fmt"

	"github.com/mktbedugroup/ditalentweb-sub001/internal/domain"
	"github.com/mktbedugroup/ditalentweb-sub001/internal/pkg/logger"
	"github.com/mktbedugroup/ditalentweb-sub001/internal/targeting"
)

// Service implements popup catalog business logic. It is safe for concurrent use.
type Service struct {
	repo Repository
}

// NewService creates a popup service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ActiveForViewer returns the popups a page visit may see: active popups
// whose targeting matches the route, device, and role, in priority order.
// Malformed popups are skipped, never surfaced. Private routes get nothing.
func (s *Service) ActiveForViewer(ctx context.Context, route string, device domain.Device, role domain.Role) ([]domain.Popup, error) {
	if domain.IsPrivateRoute(route) {
		return nil, nil
	}

	all, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active popups: %w", err)
	}

	candidates := targeting.SelectCandidates(all, route, device, role)
	out := candidates[:0]
	for _, c := range candidates {
		if err := c.Validate(); err != nil {
			logger.Warn("excluding malformed popup from candidates", "error", err)
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// Get returns a popup by ID.
func (s *Service) Get(ctx context.Context, id string) (*domain.Popup, error) {
	if id == "" {
		return nil, fmt.Errorf("popup id is required")
	}
	return s.repo.Get(ctx, id)
}

// List returns popups for the admin back-office.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]domain.Popup, int, error) {
	return s.repo.List(ctx, filter)
}

// Create validates and inserts a new popup.
func (s *Service) Create(ctx context.Context, p *domain.Popup) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Content.Title.ES == "" {
		return fmt.Errorf("popup title requires at least the base (es) locale")
	}
	return s.repo.Create(ctx, p)
}

// Update validates and replaces an existing popup.
func (s *Service) Update(ctx context.Context, p *domain.Popup) error {
	if p.ID == "" {
		return fmt.Errorf("popup id is required")
	}
	if err := p.Validate(); err != nil {
		return err
	}
	return s.repo.Update(ctx, p)
}

// Delete removes a popup from the catalog.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("popup id is required")
	}
	return s.repo.Delete(ctx, id)
}

// RecordImpression bumps the popup's display counter. Counter failures are
// logged and dropped; a lost impression must never fail the caller's request.
func (s *Service) RecordImpression(ctx context.Context, id string) {
	if err := s.repo.IncrementImpressions(ctx, id); err != nil {
		logger.Warn("impression counter update dropped", "popup_id", id, "error", err)
	}
}

// RecordClick bumps the popup's click-through counter, same failure policy
// as RecordImpression.
func (s *Service) RecordClick(ctx context.Context, id string) {
	if err := s.repo.IncrementClicks(ctx, id); err != nil {
		logger.Warn("click counter update dropped", "popup_id", id, "error", err)
	}
}
