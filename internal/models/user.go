package models

import "time"

type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleSecretary  Role = "secretary"
	RoleNone       Role = ""
)

func ParseRole(s string) Role {
	switch Role(s) {
	case RoleStudent, RoleInstructor, RoleSecretary:
		return Role(s)
	default:
		return RoleNone
	}
}

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	Name         string
	Role         Role
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is one issued bearer credential. The token itself is opaque to the
// server; only its hash is stored.
type Session struct {
	ID         string
	UserID     string
	TokenHash  []byte
	IPAddress  string
	UserAgent  string
	CreatedAt  time.Time
	LastSeenAt time.Time
	ExpiresAt  time.Time
}
