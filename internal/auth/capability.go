// Package auth derives staff capabilities from guild roles. Classification
// is a pure function over already-fetched role and config data; guards must
// re-run it against fresh state for every action.
package auth

import "github.com/ddex3/Shaked-Discord-Ticket-System/internal/domain"

// Capability is the closed set of permission levels. Levels are ordered:
// Admin covers SeniorStaff, which covers Staff.
type Capability int

const (
	CapabilityNone Capability = iota
	CapabilityStaff
	CapabilitySeniorStaff
	CapabilityAdmin
)

func (c Capability) String() string {
	switch c {
	case CapabilityAdmin:
		return "admin"
	case CapabilitySeniorStaff:
		return "senior_staff"
	case CapabilityStaff:
		return "staff"
	default:
		return "none"
	}
}

// AtLeast reports whether c covers the required level.
func (c Capability) AtLeast(required Capability) bool {
	return c >= required
}

// Classify resolves a member's capability. Guild administrators are Admin
// regardless of role assignment. Without a config record no staff role can
// be recognized, so everyone else is None.
func Classify(cfg *domain.GuildConfig, roleIDs []string, isAdmin bool) Capability {
	if isAdmin {
		return CapabilityAdmin
	}
	if cfg == nil {
		return CapabilityNone
	}
	if cfg.HighStaffRoleID != nil && hasRole(roleIDs, *cfg.HighStaffRoleID) {
		return CapabilitySeniorStaff
	}
	if cfg.LowStaffRoleID != nil && hasRole(roleIDs, *cfg.LowStaffRoleID) {
		return CapabilityStaff
	}
	return CapabilityNone
}

func hasRole(roleIDs []string, roleID string) bool {
	for _, id := range roleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}
