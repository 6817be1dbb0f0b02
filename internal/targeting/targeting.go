// Package targeting filters candidate popups down to those whose targeting
// rules match the current page visit.
//
// The filter is pure: no side effects, no I/O. It runs server-side as the
// pre-filter behind the active-popups endpoint, and the orchestrator re-checks
// IsActive on whatever it receives.
package targeting

import (
	"strings"

	"github.com/mktbedugroup/ditalentweb-sub001/internal/domain"
)

// SelectCandidates returns the popups eligible for the given route, device,
// and role, in the same relative order they were supplied (caller priority).
// A popup is eligible when it is active and matches all three dimensions.
func SelectCandidates(popups []domain.Popup, route string, device domain.Device, role domain.Role) []domain.Popup {
	out := make([]domain.Popup, 0, len(popups))
	for _, p := range popups {
		if !p.IsActive {
			continue
		}
		if !MatchesRoute(p.Targeting.Pages, route) {
			continue
		}
		if !containsDevice(p.Targeting.Devices, device) {
			continue
		}
		if !containsRole(p.Targeting.Users, role) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// MatchesRoute reports whether any pattern matches the route. A pattern
// matches when it equals the route exactly, or when it ends in "/*" and its
// prefix (including the slash) starts the route: "/jobs/*" matches "/jobs/123"
// and "/jobs/" but not "/jobsearch".
func MatchesRoute(patterns []string, route string) bool {
	for _, pat := range patterns {
		if pat == route {
			return true
		}
		if prefix, ok := strings.CutSuffix(pat, "*"); ok {
			if strings.HasSuffix(prefix, "/") && strings.HasPrefix(route, prefix) {
				return true
			}
		}
	}
	return false
}

func containsDevice(devices []domain.Device, d domain.Device) bool {
	for _, v := range devices {
		if v == d {
			return true
		}
	}
	return false
}

func containsRole(roles []domain.Role, r domain.Role) bool {
	for _, v := range roles {
		if v == r {
			return true
		}
	}
	return false
}
