// Package auth derives a caller's authorized tool set from their roles.
// Authorization is decided once at run admission; the registry and
// orchestrator treat the resulting identifier list as opaque.
package auth

import (
	"strings"

	"github.com/service-bene-fit-co-nz/coachflow/core"
)

// Role names recognized by the default policy.
const (
	RoleAdmin = "admin"
	RoleCoach = "coach"
)

// Policy maps roles to tool-identifier patterns. A pattern ending in ".*"
// grants every tool sharing the prefix; any other pattern must match a tool
// identifier exactly.
type Policy struct {
	grants map[string][]string
}

// DefaultPolicy returns the built-in role policy. Coaches work within their
// selected client: client-scoped and utility tools only. Admins additionally
// get the cross-client and raw database surfaces. Callers with no recognized
// role keep utility tools so basic conversation still works.
func DefaultPolicy() *Policy {
	return &Policy{
		grants: map[string][]string{
			RoleCoach: {"client.*", "utility.*"},
			RoleAdmin: {"client.*", "utility.*", "allClients.*", "db.*"},
		},
	}
}

// NewPolicy builds a policy from explicit role grants.
func NewPolicy(grants map[string][]string) *Policy {
	copied := make(map[string][]string, len(grants))
	for role, patterns := range grants {
		copied[role] = append([]string(nil), patterns...)
	}
	return &Policy{grants: copied}
}

// AuthorizedToolIDs filters the catalog down to the identifiers the caller
// may use, preserving catalog order. Patterns from all of the caller's roles
// are combined.
func (p *Policy) AuthorizedToolIDs(caller core.Identity, catalog []string) []string {
	patterns := p.patternsFor(caller)
	if len(patterns) == 0 {
		return nil
	}

	var authorized []string
	for _, id := range catalog {
		if matchAny(patterns, id) {
			authorized = append(authorized, id)
		}
	}
	return authorized
}

func (p *Policy) patternsFor(caller core.Identity) []string {
	// Utility tools are granted to every authenticated caller.
	patterns := []string{"utility.*"}
	for _, role := range caller.Roles {
		patterns = append(patterns, p.grants[role]...)
	}
	return patterns
}

func matchAny(patterns []string, toolID string) bool {
	for _, pattern := range patterns {
		if matchPattern(pattern, toolID) {
			return true
		}
	}
	return false
}

func matchPattern(pattern, toolID string) bool {
	if pattern == "" || toolID == "" {
		return false
	}
	if strings.HasSuffix(pattern, ".*") {
		prefix := strings.TrimSuffix(pattern, "*")
		return strings.HasPrefix(toolID, prefix)
	}
	return pattern == toolID
}
