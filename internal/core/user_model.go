package core

import (
	"context"
	"time"
)

// Roles a user can hold.
const (
	RoleAdmin      = "admin"
	RoleAuctioneer = "auctioneer"
	RoleClerk      = "clerk"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleAuctioneer, RoleClerk:
		return true
	}
	return false
}

// User is a member of staff who can sign in.
type User struct {
	ID           int
	Username     string
	DisplayName  string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
}

// UserInput holds the fields for a new user. PasswordHash is already hashed.
type UserInput struct {
	Username     string
	DisplayName  string
	PasswordHash string
	Role         string
}

// UserService provides user lookup and creation.
type UserService interface {
	// GetByUsername finds an active user by username.
	GetByUsername(ctx context.Context, username string) (*User, error)

	GetByID(ctx context.Context, userID int) (*User, error)

	Create(ctx context.Context, input UserInput) (*User, error)

	// List returns every user ordered by username.
	List(ctx context.Context) ([]User, error)
}
