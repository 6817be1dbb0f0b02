package suppression

import (
	"context"
	"strconv"
	"time"

	"github.com/mktbedugroup/ditalentweb-sub001/internal/domain"
	"github.com/mktbedugroup/ditalentweb-sub001/internal/pkg/logger"
)

const msPerDay = 86_400_000

// Policy evaluates frequency rules against a viewer's shown-records.
type Policy struct {
	store Store
	now   func() time.Time
}

// NewPolicy creates a policy over the given store.
func NewPolicy(store Store) *Policy {
	return &Policy{store: store, now: time.Now}
}

// NewPolicyAt creates a policy with an injected clock, for tests.
func NewPolicyAt(store Store, now func() time.Time) *Policy {
	return &Policy{store: store, now: now}
}

// shownKey is the record key for one popup. Keyed only by popup ID: if a
// popup is retargeted with a different frequency type, the old value may be
// read under the new rule. The value formats are disjoint (flag "1" vs epoch
// millis), so the worst case is one extra display, never a stuck popup.
func shownKey(popupID string) string {
	return "popup_" + popupID + "_shown"
}

// IsSuppressed reports whether the popup's frequency cooldown has not yet
// elapsed for this viewer. Store errors degrade to false.
func (p *Policy) IsSuppressed(ctx context.Context, popupID string, freq domain.Frequency) bool {
	switch freq.Type {
	case domain.FrequencyAlways:
		return false

	case domain.FrequencySession:
		_, ok, err := p.store.Get(ctx, ScopeSession, shownKey(popupID))
		if err != nil {
			logger.Warn("suppression read failed, treating as not suppressed",
				"popup_id", popupID, "error", err)
			return false
		}
		return ok

	case domain.FrequencyDays:
		val, ok, err := p.store.Get(ctx, ScopePersistent, shownKey(popupID))
		if err != nil {
			logger.Warn("suppression read failed, treating as not suppressed",
				"popup_id", popupID, "error", err)
			return false
		}
		if !ok {
			return false
		}
		shownAt, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			// Stale record from an earlier frequency rule; not interpretable.
			return false
		}
		window := int64(freq.WindowDays()) * msPerDay
		return p.now().UnixMilli()-shownAt < window

	default:
		return false
	}
}

// MarkShown records that the popup was displayed to this viewer. A no-op for
// always-frequency popups. Store errors are dropped, not propagated.
func (p *Policy) MarkShown(ctx context.Context, popupID string, freq domain.Frequency) {
	var err error
	switch freq.Type {
	case domain.FrequencySession:
		err = p.store.Set(ctx, ScopeSession, shownKey(popupID), "1")
	case domain.FrequencyDays:
		err = p.store.Set(ctx, ScopePersistent, shownKey(popupID),
			strconv.FormatInt(p.now().UnixMilli(), 10))
	case domain.FrequencyAlways:
		return
	default:
		return
	}
	if err != nil {
		logger.Warn("suppression write dropped", "popup_id", popupID, "error", err)
	}
}
