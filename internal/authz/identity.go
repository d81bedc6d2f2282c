package authz

import "taskflow/internal/models"

// Identity is the authenticated caller resolved from a bearer token.
type Identity struct {
	ID   string      `json:"id"`
	Role models.Role `json:"role"`
}

func (i Identity) IsAdmin() bool { return IsAdmin(i.Role) }

// Authorize reports whether the caller's role is in allowed.
func (i Identity) Authorize(allowed RoleSet) bool {
	return allowed.Allows(i.Role)
}
