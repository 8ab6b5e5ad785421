package models

import "time"

type Role string

const (
	RoleMember    Role = "member"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// User is the profile of the signed-in account as returned by the API and
// cached in the credential store.
type User struct {
	ID         string    `json:"id" validate:"required"`
	Username   string    `json:"username" validate:"required"`
	Email      string    `json:"email" validate:"required,email"`
	AvatarURL  string    `json:"avatarUrl,omitempty"`
	Bio        string    `json:"bio,omitempty"`
	Role       Role      `json:"role,omitempty" validate:"omitempty,oneof=member moderator admin"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt,omitzero"`
}

// ProfileUpdate carries the user-editable profile fields. Nil fields are left
// unchanged.
type ProfileUpdate struct {
	Username  *string `json:"username,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

// Empty reports whether u changes nothing.
func (u ProfileUpdate) Empty() bool {
	return u.Username == nil && u.Bio == nil && u.AvatarURL == nil
}
