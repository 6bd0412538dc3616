package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the account role chosen at sign-up. It determines which
// sub-profile the user fills in during onboarding and is never changed
// afterwards.
type Role string

const (
	RoleSenior Role = "senior"
	RoleOrg    Role = "org"
)

// ValidRole reports whether s is a known role.
func ValidRole(s string) bool {
	return s == string(RoleSenior) || s == string(RoleOrg)
}

// User is an authentication account. Domain data lives in Profile,
// keyed by the user's ID.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserPublic is User without sensitive fields for API responses.
type UserPublic struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ToPublic converts User to UserPublic.
func (u *User) ToPublic() UserPublic {
	return UserPublic{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
