package entity

import (
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	Role     Role   `json:"role"`
	Blocked  bool   `json:"blocked"`

	// Auth provider that issued the identity ("password", "google.com", ...).
	Provider string `json:"provider,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
