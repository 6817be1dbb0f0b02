package domain

import "strings"

// Device classifies the viewer's device for targeting purposes.
type Device string

const (
	DeviceDesktop Device = "desktop"
	DeviceMobile  Device = "mobile"
)

// ParseDevice maps a raw query/header value to a Device, defaulting to desktop.
func ParseDevice(s string) Device {
	if strings.EqualFold(strings.TrimSpace(s), string(DeviceMobile)) {
		return DeviceMobile
	}
	return DeviceDesktop
}

// Role classifies the viewer for targeting purposes. Unauthenticated viewers
// map to RoleGuest.
type Role string

const (
	RoleGuest     Role = "guest"
	RoleCandidate Role = "candidate"
	RoleCompany   Role = "company"
	RoleAdmin     Role = "admin"
)

// ParseRole maps a raw value to a Role, defaulting to guest.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleCandidate:
		return RoleCandidate
	case RoleCompany:
		return RoleCompany
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleGuest
	}
}

// PrivatePrefixes are the authenticated areas of the site. No popup logic
// runs for routes under these prefixes.
var PrivatePrefixes = []string{"/admin", "/candidate", "/company"}

// IsPrivateRoute reports whether the route belongs to an authenticated area.
func IsPrivateRoute(route string) bool {
	for _, p := range PrivatePrefixes {
		if route == p || strings.HasPrefix(route, p+"/") {
			return true
		}
	}
	return false
}
