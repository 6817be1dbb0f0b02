// Package trigger turns a popup's firing rule into a one-shot armed listener.
//
// Each rule variant (delay, scroll threshold, exit intent) exposes
// Arm(fire) -> *Handle. An armed rule invokes fire at most once, then
// detaches itself. Cancel releases the timer or subscription and is safe to
// call any number of times, before or after firing — the orchestrator calls
// it on every route change so nothing leaks across visits.
//
// Browser events are abstracted as channel-delivered page signals so the
// engine stays testable and transport-agnostic.
package trigger

import (
	"sync"
	"time"
)

// ScrollPosition is one scroll-change sample from the page.
type ScrollPosition struct {
	Top            float64 // pixels scrolled from the top
	FullHeight     float64 // total document height in pixels
	ViewportHeight float64 // visible height in pixels
}

// Percent returns the scrolled depth as a percentage of the scrollable range.
// A page with no scrollable range counts as fully scrolled.
func (s ScrollPosition) Percent() float64 {
	scrollable := s.FullHeight - s.ViewportHeight
	if scrollable <= 0 {
		return 100
	}
	return s.Top / scrollable * 100
}

// PointerLeave is a pointer-left-viewport sample. Y is the pointer's vertical
// coordinate at the moment it left; Y <= 0 means it exited at the top edge.
type PointerLeave struct {
	Y float64
}

// Signals carries the live page signals for one route visit. Channels are
// owned by the signal source; a closed channel simply ends the subscription.
type Signals struct {
	Scroll       <-chan ScrollPosition
	PointerLeave <-chan PointerLeave
}

// Rule is an armable firing rule.
type Rule interface {
	Arm(fire func()) *Handle
}

// Handle cancels an armed rule. Cancel is idempotent.
type Handle struct {
	once sync.Once
	stop func()
}

// Cancel releases the rule's timer or subscription.
func (h *Handle) Cancel() {
	h.once.Do(h.stop)
}

// Delay fires after a fixed number of seconds on the page.
type Delay struct {
	Seconds float64
}

func (d Delay) Arm(fire func()) *Handle {
	t := time.AfterFunc(time.Duration(d.Seconds*float64(time.Second)), fire)
	return &Handle{stop: func() { t.Stop() }}
}

// ScrollThreshold fires the first time scroll depth reaches Percent.
type ScrollThreshold struct {
	Percent float64
	Scroll  <-chan ScrollPosition
}

func (s ScrollThreshold) Arm(fire func()) *Handle {
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case pos, ok := <-s.Scroll:
				if !ok {
					return
				}
				if pos.Percent() >= s.Percent {
					fire()
					return
				}
			}
		}
	}()
	return &Handle{stop: func() { close(done) }}
}

// ExitIntent fires when the pointer leaves the viewport at the top edge.
// Desktop only; the orchestrator never arms it on mobile.
type ExitIntent struct {
	PointerLeave <-chan PointerLeave
}

func (e ExitIntent) Arm(fire func()) *Handle {
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case ev, ok := <-e.PointerLeave:
				if !ok {
					return
				}
				if ev.Y <= 0 {
					fire()
					return
				}
			}
		}
	}()
	return &Handle{stop: func() { close(done) }}
}
