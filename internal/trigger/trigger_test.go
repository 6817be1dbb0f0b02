package trigger

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScrollPosition_Percent(t *testing.T) {
	assert.InDelta(t, 50.0, ScrollPosition{Top: 500, FullHeight: 1500, ViewportHeight: 500}.Percent(), 0.01)
	assert.InDelta(t, 100.0, ScrollPosition{Top: 1000, FullHeight: 1500, ViewportHeight: 500}.Percent(), 0.01)
	assert.InDelta(t, 0.0, ScrollPosition{Top: 0, FullHeight: 1500, ViewportHeight: 500}.Percent(), 0.01)
	// Nothing to scroll counts as fully scrolled.
	assert.InDelta(t, 100.0, ScrollPosition{Top: 0, FullHeight: 400, ViewportHeight: 500}.Percent(), 0.01)
}

func TestDelay_Fires(t *testing.T) {
	fired := make(chan struct{})
	h := Delay{Seconds: 0.01}.Arm(func() { close(fired) })
	defer h.Cancel()

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("delay trigger did not fire")
	}
}

func TestDelay_CancelPreventsFire(t *testing.T) {
	var fires int32
	h := Delay{Seconds: 0.02}.Arm(func() { atomic.AddInt32(&fires, 1) })
	h.Cancel()
	h.Cancel() // idempotent

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&fires))
}

func TestScrollThreshold_FiresOnFirstCrossing(t *testing.T) {
	scroll := make(chan ScrollPosition)
	var fires int32
	h := ScrollThreshold{Percent: 50, Scroll: scroll}.Arm(func() { atomic.AddInt32(&fires, 1) })
	defer h.Cancel()

	// Below threshold: no fire.
	scroll <- ScrollPosition{Top: 100, FullHeight: 1500, ViewportHeight: 500}

	// First crossing fires.
	scroll <- ScrollPosition{Top: 600, FullHeight: 1500, ViewportHeight: 500}

	// The rule has detached; a second crossing must not fire again. The
	// channel has no reader anymore, so send without blocking.
	select {
	case scroll <- ScrollPosition{Top: 900, FullHeight: 1500, ViewportHeight: 500}:
	default:
	}

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&fires) == 1 },
		time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fires))
}

func TestScrollThreshold_CancelStopsSubscription(t *testing.T) {
	scroll := make(chan ScrollPosition, 1)
	var fires int32
	h := ScrollThreshold{Percent: 50, Scroll: scroll}.Arm(func() { atomic.AddInt32(&fires, 1) })
	h.Cancel()

	scroll <- ScrollPosition{Top: 900, FullHeight: 1500, ViewportHeight: 500}
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&fires))
}

func TestExitIntent_FiresOnTopEdgeOnly(t *testing.T) {
	leave := make(chan PointerLeave)
	fired := make(chan struct{})
	h := ExitIntent{PointerLeave: leave}.Arm(func() { close(fired) })
	defer h.Cancel()

	// Pointer left at the side or bottom: ignored.
	leave <- PointerLeave{Y: 300}

	select {
	case <-fired:
		t.Fatal("exit intent fired for a non-top exit")
	case <-time.After(20 * time.Millisecond):
	}

	// Top-edge exit fires.
	leave <- PointerLeave{Y: -1}
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("exit intent did not fire for a top-edge exit")
	}
}

func TestExitIntent_ClosedChannelEndsSubscription(t *testing.T) {
	leave := make(chan PointerLeave)
	var fires int32
	h := ExitIntent{PointerLeave: leave}.Arm(func() { atomic.AddInt32(&fires, 1) })
	defer h.Cancel()

	close(leave)
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&fires))
}
