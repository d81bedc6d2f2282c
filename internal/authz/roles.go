package authz

import "taskflow/internal/models"

// RoleSet is a declared set of roles allowed to perform an operation.
// Checks are set membership, not ordinal: moderator does not inherit admin.
type RoleSet map[models.Role]struct{}

func NewRoleSet(roles ...models.Role) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

// Allows reports whether role is a member of the set.
func (s RoleSet) Allows(role models.Role) bool {
	_, ok := s[role]
	return ok
}

func (s RoleSet) Roles() []models.Role {
	out := make([]models.Role, 0, len(s))
	for _, r := range []models.Role{models.RoleUser, models.RoleModerator, models.RoleAdmin} {
		if s.Allows(r) {
			out = append(out, r)
		}
	}
	return out
}

var (
	AdminOnly        = NewRoleSet(models.RoleAdmin)
	ModeratorOrAdmin = NewRoleSet(models.RoleModerator, models.RoleAdmin)
	AnyRole          = NewRoleSet(models.RoleUser, models.RoleModerator, models.RoleAdmin)
)

// Required-role set per operation.
var (
	ListUsers      = AdminOnly
	UpdateUser     = AdminOnly
	CreateTask     = AdminOnly
	ListTasks      = AdminOnly
	DeleteTask     = AdminOnly
	TaskStats      = AdminOnly
	TaskReport     = AdminOnly
	AdminDashboard = AdminOnly
	ModReports     = ModeratorOrAdmin
	GetTask        = AnyRole
	MyTasks        = AnyRole
	UpdateTask     = AnyRole
	PatchStatus    = AnyRole
	CurrentUser    = AnyRole
)

func IsAdmin(role models.Role) bool {
	return role == models.RoleAdmin
}

// SignupRole returns the role granted at signup: admin and moderator are
// honored when requested, anything else becomes user.
func SignupRole(requested string) models.Role {
	switch r := models.Role(requested); r {
	case models.RoleAdmin, models.RoleModerator:
		return r
	}
	return models.RoleUser
}
