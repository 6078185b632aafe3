package domain

import (
	"time"
)

// Role constants define the allowed user roles. New accounts are always
// created as RoleUser; the register flow never accepts a client-supplied role.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// IsValidRole checks whether the given role string is a valid user role.
func IsValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// Messages returned when a registration collides with an existing account.
// The same wording is used whether the collision is caught by the advisory
// pre-check or by the database unique constraint at insert time.
const (
	MsgUsernameTaken   = "Username is already taken"
	MsgEmailRegistered = "Email is already registered"
)

// User represents a registered user. PasswordHash is opaque to everything
// above the password hasher and is never serialized.
type User struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullName"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PublicUser is the projection of a User that is safe to return to clients.
type PublicUser struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Public returns the client-safe projection of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		FullName: u.FullName,
		Username: u.Username,
		Email:    u.Email,
	}
}
