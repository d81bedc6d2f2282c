package models

import "time"

// Role is one of user, moderator or admin.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleModerator || r == RoleAdmin
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // не отдаём наружу
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserPatch is an administrative profile/role update.
type UserPatch struct {
	Name  *string
	Email *string
	Role  *Role
}

// Presence and format checks live in the user service so that the error
// messages stay the same whatever the transport.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type UpdateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Role  *Role   `json:"role" binding:"omitempty,role"`
}
