package suppression

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mktbedugroup/ditalentweb-sub001/internal/domain"
)

func TestSessionSuppression_IdempotentWithinSession(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	p := NewPolicy(store)
	freq := domain.Frequency{Type: domain.FrequencySession}

	assert.False(t, p.IsSuppressed(ctx, "pop-1", freq))

	p.MarkShown(ctx, "pop-1", freq)
	assert.True(t, p.IsSuppressed(ctx, "pop-1", freq))

	// A second mark does not change the result.
	p.MarkShown(ctx, "pop-1", freq)
	assert.True(t, p.IsSuppressed(ctx, "pop-1", freq))
}

func TestSessionSuppression_ClearsWithSession(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	p := NewPolicy(store)
	freq := domain.Frequency{Type: domain.FrequencySession}

	p.MarkShown(ctx, "pop-1", freq)
	store.EndSession()

	assert.False(t, p.IsSuppressed(ctx, "pop-1", freq))
}

func TestDaysSuppression_RespectsWindow(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	freq := domain.Frequency{Type: domain.FrequencyDays, Value: 2}

	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := t0
	p := NewPolicyAt(store, func() time.Time { return clock })

	p.MarkShown(ctx, "pop-1", freq)

	clock = t0.Add(24 * time.Hour)
	assert.True(t, p.IsSuppressed(ctx, "pop-1", freq), "inside the 2-day window")

	clock = t0.Add(3 * 24 * time.Hour)
	assert.False(t, p.IsSuppressed(ctx, "pop-1", freq), "window elapsed")
}

func TestDaysSuppression_DefaultsToOneDay(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	freq := domain.Frequency{Type: domain.FrequencyDays} // no value

	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	clock := t0
	p := NewPolicyAt(store, func() time.Time { return clock })

	p.MarkShown(ctx, "pop-1", freq)

	clock = t0.Add(12 * time.Hour)
	assert.True(t, p.IsSuppressed(ctx, "pop-1", freq))

	clock = t0.Add(25 * time.Hour)
	assert.False(t, p.IsSuppressed(ctx, "pop-1", freq))
}

func TestAlwaysFrequency_NeverSuppresses(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	p := NewPolicy(store)
	freq := domain.Frequency{Type: domain.FrequencyAlways}

	for i := 0; i < 3; i++ {
		p.MarkShown(ctx, "pop-1", freq)
		assert.False(t, p.IsSuppressed(ctx, "pop-1", freq))
	}

	// No record is kept at all.
	_, ok, _ := store.Get(ctx, ScopeSession, shownKey("pop-1"))
	assert.False(t, ok)
	_, ok, _ = store.Get(ctx, ScopePersistent, shownKey("pop-1"))
	assert.False(t, ok)
}

func TestSuppressionKeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	p := NewPolicy(store)
	freq := domain.Frequency{Type: domain.FrequencySession}

	p.MarkShown(ctx, "pop-1", freq)

	assert.True(t, p.IsSuppressed(ctx, "pop-1", freq))
	assert.False(t, p.IsSuppressed(ctx, "pop-2", freq))
}

func TestStaleSessionFlagUnderDaysRule(t *testing.T) {
	// A popup shown under a session rule, then retargeted to a days rule:
	// the stored flag is not a timestamp and must not suppress.
	ctx := context.Background()
	store := NewMemoryStore()
	p := NewPolicy(store)

	p.MarkShown(ctx, "pop-1", domain.Frequency{Type: domain.FrequencySession})

	// The days rule reads the persistent scope, where nothing was written.
	assert.False(t, p.IsSuppressed(ctx, "pop-1", domain.Frequency{Type: domain.FrequencyDays, Value: 7}))

	// Force an uninterpretable persistent value; still not suppressed.
	_ = store.Set(ctx, ScopePersistent, shownKey("pop-2"), "1")
	assert.False(t, p.IsSuppressed(ctx, "pop-2", domain.Frequency{Type: domain.FrequencyDays, Value: 7}))
}

// failingStore errors on every operation.
type failingStore struct{}

func (failingStore) Get(context.Context, Scope, string) (string, bool, error) {
	return "", false, errors.New("storage unavailable")
}

func (failingStore) Set(context.Context, Scope, string, string) error {
	return errors.New("storage unavailable")
}

func TestStoreFailure_DegradesToNotSuppressed(t *testing.T) {
	ctx := context.Background()
	p := NewPolicy(failingStore{})

	for _, freq := range []domain.Frequency{
		{Type: domain.FrequencySession},
		{Type: domain.FrequencyDays, Value: 2},
		{Type: domain.FrequencyAlways},
	} {
		assert.False(t, p.IsSuppressed(ctx, "pop-1", freq))
		// Writes must not panic or propagate.
		p.MarkShown(ctx, "pop-1", freq)
	}
}
