package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mktbedugroup/ditalentweb-sub001/internal/domain"
	"github.com/mktbedugroup/ditalentweb-sub001/internal/suppression"
	"github.com/mktbedugroup/ditalentweb-sub001/internal/trigger"
)

// fakeFetcher serves canned candidates per route. A route listed in gates
// blocks until its gate closes, to simulate slow fetches.
type fakeFetcher struct {
	mu      sync.Mutex
	calls   []string
	byRoute map[string][]domain.Popup
	err     error
	gates   map[string]chan struct{}
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		byRoute: make(map[string][]domain.Popup),
		gates:   make(map[string]chan struct{}),
	}
}

func (f *fakeFetcher) FetchActivePopups(ctx context.Context, route string, device domain.Device, role domain.Role) ([]domain.Popup, error) {
	f.mu.Lock()
	f.calls = append(f.calls, route)
	gate := f.gates[route]
	err := f.err
	popups := f.byRoute[route]
	f.mu.Unlock()

	if gate != nil {
		// Deliberately ignores ctx: the slow response still arrives, and the
		// engine's generation guard has to discard it.
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return popups, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func delayPopup(id string, seconds float64) domain.Popup {
	return domain.Popup{
		ID:        id,
		IsActive:  true,
		Trigger:   domain.Trigger{Type: domain.TriggerDelay, Value: seconds},
		Frequency: domain.Frequency{Type: domain.FrequencySession},
	}
}

func newTestEngine(f Fetcher) (*Engine, *suppression.Policy) {
	policy := suppression.NewPolicy(suppression.NewMemoryStore())
	return New(f, policy, time.Second), policy
}

func waitArmed(t *testing.T, e *Engine, id string) {
	t.Helper()
	require.Eventually(t, func() bool {
		p := e.Armed()
		return p != nil && p.ID == id
	}, time.Second, 2*time.Millisecond, "popup %s was never armed", id)
}

func TestVisit_FirstEligibleCandidateWins(t *testing.T) {
	f := newFakeFetcher()
	// The second candidate's delay is much shorter, but only the first may
	// ever be armed.
	f.byRoute["/"] = []domain.Popup{delayPopup("slow", 0.5), delayPopup("fast", 0.01)}
	e, _ := newTestEngine(f)
	defer e.Teardown()

	e.Visit("/", domain.DeviceDesktop, domain.RoleGuest, trigger.Signals{})

	waitArmed(t, e, "slow")

	// Past the fast candidate's delay: nothing fired, first still armed.
	time.Sleep(50 * time.Millisecond)
	assert.Nil(t, e.Active())
	require.NotNil(t, e.Armed())
	assert.Equal(t, "slow", e.Armed().ID)
}

func TestVisit_PrivateRoutesRunNoPopupLogic(t *testing.T) {
	f := newFakeFetcher()
	f.byRoute["/admin/users"] = []domain.Popup{delayPopup("p", 0)}
	e, _ := newTestEngine(f)
	defer e.Teardown()

	for _, route := range []string{"/admin/users", "/candidate/profile", "/company/dashboard"} {
		e.Visit(route, domain.DeviceDesktop, domain.RoleAdmin, trigger.Signals{})
	}

	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, f.callCount(), "no fetch may be issued for private routes")
	assert.Nil(t, e.Armed())
	assert.Nil(t, e.Active())
}

func TestVisit_RouteChangeCancelsPendingTrigger(t *testing.T) {
	f := newFakeFetcher()
	f.byRoute["/a"] = []domain.Popup{delayPopup("a-popup", 0.05)}
	e, _ := newTestEngine(f)
	defer e.Teardown()

	e.Visit("/a", domain.DeviceDesktop, domain.RoleGuest, trigger.Signals{})
	waitArmed(t, e, "a-popup")

	// Navigate away before the delay elapses.
	e.Visit("/b", domain.DeviceDesktop, domain.RoleGuest, trigger.Signals{})

	time.Sleep(100 * time.Millisecond)
	assert.Nil(t, e.Active(), "cancelled delay trigger must not fire on the new route")
}

func TestVisit_StaleFetchResponseDiscarded(t *testing.T) {
	f := newFakeFetcher()
	f.byRoute["/a"] = []domain.Popup{delayPopup("a-popup", 0)}
	f.byRoute["/b"] = []domain.Popup{delayPopup("b-popup", 0.2)}
	f.gates["/a"] = make(chan struct{})
	e, _ := newTestEngine(f)
	defer e.Teardown()

	e.Visit("/a", domain.DeviceDesktop, domain.RoleGuest, trigger.Signals{})
	e.Visit("/b", domain.DeviceDesktop, domain.RoleGuest, trigger.Signals{})
	waitArmed(t, e, "b-popup")

	// The /a fetch resolves only now, after a newer navigation.
	close(f.gates["/a"])

	time.Sleep(30 * time.Millisecond)
	require.NotNil(t, e.Armed())
	assert.Equal(t, "b-popup", e.Armed().ID, "stale response must not re-arm")
	assert.Nil(t, e.Active())
}

func TestVisit_FetchFailureIsSilent(t *testing.T) {
	f := newFakeFetcher()
	f.err = errors.New("backend down")
	e, _ := newTestEngine(f)
	defer e.Teardown()

	e.Visit("/", domain.DeviceDesktop, domain.RoleGuest, trigger.Signals{})

	time.Sleep(30 * time.Millisecond)
	assert.Nil(t, e.Armed())
	assert.Nil(t, e.Active())
}

func TestVisit_MalformedCandidateSkipped(t *testing.T) {
	f := newFakeFetcher()
	bad := domain.Popup{
		ID:        "bad",
		IsActive:  true,
		Trigger:   domain.Trigger{Type: "hover"}, // unknown trigger type
		Frequency: domain.Frequency{Type: domain.FrequencySession},
	}
	f.byRoute["/"] = []domain.Popup{bad, delayPopup("good", 0.5)}
	e, _ := newTestEngine(f)
	defer e.Teardown()

	e.Visit("/", domain.DeviceDesktop, domain.RoleGuest, trigger.Signals{})
	waitArmed(t, e, "good")
}

func TestVisit_SuppressedCandidateSkipped(t *testing.T) {
	f := newFakeFetcher()
	f.byRoute["/"] = []domain.Popup{delayPopup("seen", 0.5), delayPopup("fresh", 0.5)}
	e, policy := newTestEngine(f)
	defer e.Teardown()

	policy.MarkShown(context.Background(), "seen", domain.Frequency{Type: domain.FrequencySession})

	e.Visit("/", domain.DeviceDesktop, domain.RoleGuest, trigger.Signals{})
	waitArmed(t, e, "fresh")
}

func TestVisit_ExitIntentNeverArmedOnMobile(t *testing.T) {
	f := newFakeFetcher()
	exitPopup := domain.Popup{
		ID:        "exit",
		IsActive:  true,
		Trigger:   domain.Trigger{Type: domain.TriggerExitIntent},
		Frequency: domain.Frequency{Type: domain.FrequencyAlways},
		Targeting: domain.Targeting{Devices: []domain.Device{domain.DeviceDesktop, domain.DeviceMobile}},
	}
	f.byRoute["/"] = []domain.Popup{exitPopup}
	e, _ := newTestEngine(f)
	defer e.Teardown()

	e.Visit("/", domain.DeviceMobile, domain.RoleGuest, trigger.Signals{})

	time.Sleep(30 * time.Millisecond)
	assert.Nil(t, e.Armed())

	// The same popup is armed on desktop.
	e.Visit("/", domain.DeviceDesktop, domain.RoleGuest, trigger.Signals{})
	waitArmed(t, e, "exit")
}

func TestFire_ActivatesPopup(t *testing.T) {
	f := newFakeFetcher()
	f.byRoute["/"] = []domain.Popup{delayPopup("p", 0.005)}
	e, _ := newTestEngine(f)
	defer e.Teardown()

	var notified *domain.Popup
	var mu sync.Mutex
	e.SetOnChange(func(p *domain.Popup) {
		mu.Lock()
		notified = p
		mu.Unlock()
	})

	e.Visit("/", domain.DeviceDesktop, domain.RoleGuest, trigger.Signals{})

	require.Eventually(t, func() bool { return e.Active() != nil }, time.Second, 2*time.Millisecond)
	assert.Equal(t, "p", e.Active().ID)
	mu.Lock()
	require.NotNil(t, notified)
	assert.Equal(t, "p", notified.ID)
	mu.Unlock()
}

func TestFire_RechecksSuppression(t *testing.T) {
	f := newFakeFetcher()
	f.byRoute["/"] = []domain.Popup{delayPopup("p", 0.05)}
	e, policy := newTestEngine(f)
	defer e.Teardown()

	e.Visit("/", domain.DeviceDesktop, domain.RoleGuest, trigger.Signals{})
	waitArmed(t, e, "p")

	// Shown elsewhere (another tab) between wiring and firing.
	policy.MarkShown(context.Background(), "p", domain.Frequency{Type: domain.FrequencySession})

	time.Sleep(100 * time.Millisecond)
	assert.Nil(t, e.Active(), "fire must re-check suppression before activating")
}

func TestClose_MarksShownAndClears(t *testing.T) {
	f := newFakeFetcher()
	f.byRoute["/"] = []domain.Popup{delayPopup("p", 0.005)}
	e, policy := newTestEngine(f)
	defer e.Teardown()

	e.Visit("/", domain.DeviceDesktop, domain.RoleGuest, trigger.Signals{})
	require.Eventually(t, func() bool { return e.Active() != nil }, time.Second, 2*time.Millisecond)

	e.Close(context.Background())

	assert.Nil(t, e.Active())
	assert.True(t, policy.IsSuppressed(context.Background(), "p",
		domain.Frequency{Type: domain.FrequencySession}))

	// The next visit skips the now-suppressed popup.
	e.Visit("/", domain.DeviceDesktop, domain.RoleGuest, trigger.Signals{})
	time.Sleep(30 * time.Millisecond)
	assert.Nil(t, e.Armed())
	assert.Nil(t, e.Active())
}

func TestExitIntent_LatchLimitsToOneFirePerVisit(t *testing.T) {
	f := newFakeFetcher()
	exitPopup := domain.Popup{
		ID:        "exit",
		IsActive:  true,
		Trigger:   domain.Trigger{Type: domain.TriggerExitIntent},
		Frequency: domain.Frequency{Type: domain.FrequencyAlways},
	}
	f.byRoute["/"] = []domain.Popup{exitPopup}
	e, _ := newTestEngine(f)
	defer e.Teardown()

	leave := make(chan trigger.PointerLeave, 2)
	e.Visit("/", domain.DeviceDesktop, domain.RoleGuest, trigger.Signals{PointerLeave: leave})
	waitArmed(t, e, "exit")

	leave <- trigger.PointerLeave{Y: -5}
	require.Eventually(t, func() bool { return e.Active() != nil }, time.Second, 2*time.Millisecond)

	// Dismiss, then a second top-edge exit in the same visit: the latch
	// keeps the popup from coming back until the next navigation.
	e.Close(context.Background())
	leave <- trigger.PointerLeave{Y: -5}
	time.Sleep(30 * time.Millisecond)
	assert.Nil(t, e.Active())
}
