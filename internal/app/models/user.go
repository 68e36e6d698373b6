package models

import (
	"time"
)

// Identity is the signed-in user as seen by the rest of the application
type Identity struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     Role   `json:"role"`
}

// Profile is a row of the 'profiles' table
type Profile struct {
	ID            string    `json:"id" db:"id"`
	Email         string    `json:"email" db:"email"`
	FullName      string    `json:"fullName" db:"full_name"`
	Role          Role      `json:"role" db:"role"`
	PasswordHash  string    `json:"-" db:"password_hash"`
	EmailVerified bool      `json:"emailVerified" db:"email_verified"`
	AvatarURL     *string   `json:"avatarUrl,omitempty" db:"avatar_url"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// Identity projects the profile onto the identity shared with consumers
func (p *Profile) Identity() Identity {
	return Identity{
		ID:       p.ID,
		Email:    p.Email,
		FullName: p.FullName,
		Role:     p.Role,
	}
}
