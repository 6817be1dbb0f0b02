package popup

import (
	"context"

	"github.com/mktbedugroup/ditalentweb-sub001/internal/domain"
)

// Repository defines the data access contract for the popup catalog.
type Repository interface {
	// ListActive returns all active popups ordered by priority (highest
	// first), then creation time.
	ListActive(ctx context.Context) ([]domain.Popup, error)

	// Get returns a popup by ID. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id string) (*domain.Popup, error)

	// List returns popups matching the filter, newest first, plus the total.
	List(ctx context.Context, filter ListFilter) ([]domain.Popup, int, error)

	// Create inserts a new popup. The ID is assigned if empty.
	Create(ctx context.Context, p *domain.Popup) error

	// Update replaces an existing popup. Returns ErrNotFound if it doesn't exist.
	Update(ctx context.Context, p *domain.Popup) error

	// Delete removes a popup. Returns ErrNotFound if it doesn't exist.
	Delete(ctx context.Context, id string) error

	// IncrementImpressions bumps the display counter.
	IncrementImpressions(ctx context.Context, id string) error

	// IncrementClicks bumps the click-through counter.
	IncrementClicks(ctx context.Context, id string) error
}

// ListFilter controls pagination and filtering for popup listings.
type ListFilter struct {
	ActiveOnly bool
	Limit      int
	Offset     int
}
