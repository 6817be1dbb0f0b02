package domain

import (
	"fmt"
	"time"
)

// TriggerType enumerates how a popup decides when to fire.
type TriggerType string

const (
	TriggerDelay      TriggerType = "delay"       // fire after N seconds on the page
	TriggerScroll     TriggerType = "scroll"      // fire once scroll depth reaches N percent
	TriggerExitIntent TriggerType = "exit-intent" // fire when the pointer leaves the viewport at the top (desktop only)
)

// FrequencyType enumerates how often a popup may be re-shown to the same viewer.
type FrequencyType string

const (
	FrequencySession FrequencyType = "session" // at most once per browsing session
	FrequencyDays    FrequencyType = "days"    // at most once per N calendar days
	FrequencyAlways  FrequencyType = "always"  // no cap
)

// Trigger is a popup's firing rule. Value semantics depend on Type:
// seconds for delay, percent scrolled for scroll, unused for exit-intent.
type Trigger struct {
	Type  TriggerType `json:"type" db:"trigger_type"`
	Value float64     `json:"value,omitempty" db:"trigger_value"`
}

// Frequency is a popup's re-show cap. Value is the window in days and is only
// meaningful for FrequencyDays; zero means the default of 1 day.
type Frequency struct {
	Type  FrequencyType `json:"type" db:"frequency_type"`
	Value int           `json:"value,omitempty" db:"frequency_value"`
}

// Targeting restricts which page visits a popup is a candidate for.
// Pages entries are exact paths or prefix wildcards ("/jobs/*").
// Order of Pages is not significant; order of popups is (caller priority).
type Targeting struct {
	Pages   []string `json:"pages"`
	Devices []Device `json:"devices"`
	Users   []Role   `json:"users"`
}

// MultilingualString holds per-locale text. Spanish is the platform's base
// locale and the fallback when a translation is missing.
type MultilingualString struct {
	ES string `json:"es"`
	EN string `json:"en,omitempty"`
	FR string `json:"fr,omitempty"`
}

// CTAButton is a popup's call-to-action.
type CTAButton struct {
	Text MultilingualString `json:"text"`
	URL  string             `json:"url"`
}

// Content is the display payload of a popup.
type Content struct {
	ImageURL  string             `json:"image_url,omitempty"`
	Title     MultilingualString `json:"title"`
	Text      MultilingualString `json:"text"`
	CTAButton *CTAButton         `json:"cta_button,omitempty"`
}

// Appearance controls how a popup is rendered.
type Appearance struct {
	Size           string  `json:"size"`     // "small", "medium", "large", "fullscreen"
	Position       string  `json:"position"` // "center", "bottom-right", ...
	OverlayOpacity float64 `json:"overlay_opacity"` // 0..1
}

// Popup is a promotional popup as configured in the admin back-office.
// The engine treats it as read-only.
type Popup struct {
	ID         string     `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"`
	IsActive   bool       `json:"is_active" db:"is_active"`
	Priority   int        `json:"priority" db:"priority"`
	Content    Content    `json:"content" db:"content"`
	Appearance Appearance `json:"appearance" db:"appearance"`
	Trigger    Trigger    `json:"triggers" db:"trigger"`
	Frequency  Frequency  `json:"frequency" db:"frequency"`
	Targeting  Targeting  `json:"targeting" db:"targeting"`

	// Display counters (read-only, populated by queries)
	Impressions int64 `json:"impressions" db:"impressions"`
	Clicks      int64 `json:"clicks" db:"clicks"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Validate checks that the popup carries exactly one well-formed trigger rule
// and one well-formed frequency rule. Candidates failing validation are
// skipped by the engine, never fatal.
func (p *Popup) Validate() error {
	switch p.Trigger.Type {
	case TriggerDelay:
		if p.Trigger.Value < 0 {
			return fmt.Errorf("popup %s: delay trigger value must be >= 0, got %v", p.ID, p.Trigger.Value)
		}
	case TriggerScroll:
		if p.Trigger.Value <= 0 || p.Trigger.Value > 100 {
			return fmt.Errorf("popup %s: scroll trigger value must be in (0,100], got %v", p.ID, p.Trigger.Value)
		}
	case TriggerExitIntent:
		// value unused
	default:
		return fmt.Errorf("popup %s: unknown trigger type %q", p.ID, p.Trigger.Type)
	}

	switch p.Frequency.Type {
	case FrequencySession, FrequencyAlways:
	case FrequencyDays:
		if p.Frequency.Value < 0 {
			return fmt.Errorf("popup %s: days frequency value must be >= 0, got %d", p.ID, p.Frequency.Value)
		}
	default:
		return fmt.Errorf("popup %s: unknown frequency type %q", p.ID, p.Frequency.Type)
	}
	return nil
}

// WindowDays returns the suppression window for a days-type frequency.
// A missing or zero value defaults to 1 day.
func (f Frequency) WindowDays() int {
	if f.Value <= 0 {
		return 1
	}
	return f.Value
}
