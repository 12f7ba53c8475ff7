package auth

import "strings"

// Role is the closed set of actor roles known to the system.
type Role string

const (
	// RoleMinistry uploads title documents, manages policies and assigns
	// field verification work.
	RoleMinistry Role = "ministry"
	// RoleNGO receives assignments and submits verification reports.
	RoleNGO Role = "ngo"
)

// ParseRole maps a raw string onto the closed role set.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleMinistry:
		return RoleMinistry, true
	case RoleNGO:
		return RoleNGO, true
	default:
		return "", false
	}
}
