package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/mktbedugroup/ditalentweb-sub001/internal/domain"
	"github.com/mktbedugroup/ditalentweb-sub001/internal/pkg/logger"
	"github.com/mktbedugroup/ditalentweb-sub001/internal/suppression"
	"github.com/mktbedugroup/ditalentweb-sub001/internal/trigger"
)

// Fetcher supplies candidate popups for a page visit, already pre-filtered
// server-side by route, device, and role, in priority order.
type Fetcher interface {
	FetchActivePopups(ctx context.Context, route string, device domain.Device, role domain.Role) ([]domain.Popup, error)
}

// Engine orchestrates popup display for a single viewer.
type Engine struct {
	fetcher      Fetcher
	policy       *suppression.Policy
	fetchTimeout time.Duration

	mu          sync.Mutex
	generation  uint64
	cancelFetch context.CancelFunc
	handle      *trigger.Handle
	armed       *domain.Popup
	active      *domain.Popup
	isExiting   bool
	onChange    func(*domain.Popup)
}

// New creates an engine over the given candidate source and frequency policy.
func New(fetcher Fetcher, policy *suppression.Policy, fetchTimeout time.Duration) *Engine {
	if fetchTimeout <= 0 {
		fetchTimeout = 5 * time.Second
	}
	return &Engine{fetcher: fetcher, policy: policy, fetchTimeout: fetchTimeout}
}

// SetOnChange registers a callback invoked when the active popup changes
// (armed popup fired, or dismissal). Called with nil when the popup clears.
// Must be set before the first Visit.
func (e *Engine) SetOnChange(fn func(*domain.Popup)) {
	e.mu.Lock()
	e.onChange = fn
	e.mu.Unlock()
}

// Visit starts a new route visit. It synchronously cancels anything armed for
// the previous visit, then — for public routes — fetches candidates and arms
// the first eligible one. It returns without waiting for the fetch.
func (e *Engine) Visit(route string, device domain.Device, role domain.Role, signals trigger.Signals) {
	e.mu.Lock()
	gen := e.reset()
	if domain.IsPrivateRoute(route) {
		e.mu.Unlock()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.fetchTimeout)
	e.cancelFetch = cancel
	e.mu.Unlock()

	go e.fetchAndArm(ctx, gen, route, device, role, signals)
}

// Active returns the currently displayed popup, or nil.
func (e *Engine) Active() *domain.Popup {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Armed returns the popup whose trigger is attached but has not fired yet.
func (e *Engine) Armed() *domain.Popup {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.armed
}

// Close dismisses the active popup, recording it as shown so its frequency
// rule can suppress it next time.
func (e *Engine) Close(ctx context.Context) {
	e.mu.Lock()
	p := e.active
	e.active = nil
	fn := e.onChange
	e.mu.Unlock()

	if p == nil {
		return
	}
	e.policy.MarkShown(ctx, p.ID, p.Frequency)
	if fn != nil {
		fn(nil)
	}
}

// Teardown clears all visit state and listeners. Call when the viewer's
// surface goes away entirely.
func (e *Engine) Teardown() {
	e.mu.Lock()
	e.reset()
	e.mu.Unlock()
}

// reset invalidates the current visit: bumps the generation, cancels any
// in-flight fetch and armed trigger, and clears per-visit state.
// Caller must hold e.mu.
func (e *Engine) reset() uint64 {
	e.generation++
	if e.cancelFetch != nil {
		e.cancelFetch()
		e.cancelFetch = nil
	}
	if e.handle != nil {
		e.handle.Cancel()
		e.handle = nil
	}
	e.armed = nil
	e.active = nil
	e.isExiting = false
	return e.generation
}

func (e *Engine) fetchAndArm(ctx context.Context, gen uint64, route string, device domain.Device, role domain.Role, signals trigger.Signals) {
	candidates, err := e.fetcher.FetchActivePopups(ctx, route, device, role)
	if err != nil {
		// Silent no-op: the absence of a popup is indistinguishable from
		// "no popup configured".
		logger.Debug("popup candidate fetch failed", "route", route, "error", err)
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation {
		// A newer navigation happened while the fetch was in flight.
		return
	}

	for _, c := range candidates {
		if err := c.Validate(); err != nil {
			logger.Warn("skipping malformed popup candidate", "error", err)
			continue
		}
		if !c.IsActive {
			continue
		}
		if c.Trigger.Type == domain.TriggerExitIntent && device == domain.DeviceMobile {
			continue
		}
		if e.policy.IsSuppressed(ctx, c.ID, c.Frequency) {
			continue
		}

		// First eligible candidate wins; no other trigger is ever attached
		// for this visit.
		e.arm(c, gen, signals)
		return
	}
}

// arm attaches the trigger listener for the chosen popup.
// Caller must hold e.mu.
func (e *Engine) arm(p domain.Popup, gen uint64, signals trigger.Signals) {
	rule := e.ruleFor(p, signals)
	if rule == nil {
		return
	}

	popup := p
	e.armed = &popup
	e.handle = rule.Arm(func() { e.fired(&popup, gen) })
}

func (e *Engine) ruleFor(p domain.Popup, signals trigger.Signals) trigger.Rule {
	switch p.Trigger.Type {
	case domain.TriggerDelay:
		return trigger.Delay{Seconds: p.Trigger.Value}
	case domain.TriggerScroll:
		return trigger.ScrollThreshold{Percent: p.Trigger.Value, Scroll: signals.Scroll}
	case domain.TriggerExitIntent:
		return trigger.ExitIntent{PointerLeave: signals.PointerLeave}
	default:
		return nil
	}
}

// fired runs when an armed trigger goes off.
func (e *Engine) fired(p *domain.Popup, gen uint64) {
	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		return
	}
	if p.Trigger.Type == domain.TriggerExitIntent {
		if e.isExiting {
			e.mu.Unlock()
			return
		}
		e.isExiting = true
	}
	e.armed = nil
	fn := e.onChange
	e.mu.Unlock()

	// Re-check suppression at fire time: another tab may have shown this
	// popup since wiring.
	if e.policy.IsSuppressed(context.Background(), p.ID, p.Frequency) {
		return
	}

	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		return
	}
	e.active = p
	e.mu.Unlock()

	if fn != nil {
		fn(p)
	}
}
