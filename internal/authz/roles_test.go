package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"taskflow/internal/models"
)

func TestRoleSetMembership(t *testing.T) {
	assert.True(t, AdminOnly.Allows(models.RoleAdmin))
	assert.False(t, AdminOnly.Allows(models.RoleModerator))
	assert.False(t, AdminOnly.Allows(models.RoleUser))

	assert.True(t, ModeratorOrAdmin.Allows(models.RoleAdmin))
	assert.True(t, ModeratorOrAdmin.Allows(models.RoleModerator))
	assert.False(t, ModeratorOrAdmin.Allows(models.RoleUser))

	assert.False(t, AnyRole.Allows(models.Role("root")))
	assert.False(t, AnyRole.Allows(""))
}

func TestRoleSetRolesOrdered(t *testing.T) {
	assert.Equal(t, []models.Role{models.RoleModerator, models.RoleAdmin}, ModeratorOrAdmin.Roles())
	assert.Equal(t, []models.Role{models.RoleAdmin}, DeleteTask.Roles())
}

func TestSignupRole(t *testing.T) {
	assert.Equal(t, models.RoleAdmin, SignupRole("admin"))
	assert.Equal(t, models.RoleModerator, SignupRole("moderator"))
	assert.Equal(t, models.RoleUser, SignupRole(""))
	assert.Equal(t, models.RoleUser, SignupRole("superuser"))
	assert.Equal(t, models.RoleUser, SignupRole("Admin"))
}
