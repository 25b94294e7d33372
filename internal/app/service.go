package app

import (
	"context"
	"errors"
)

// ErrInvalidCredentials is returned by AuthenticateUser for an unknown user,
// an inactive user or a wrong password alike.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ApplicationService is the single interface all UI adapters (CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println and no display logic of any kind.
type ApplicationService interface {
	// AuthenticateUser verifies credentials and returns a session on success.
	AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error)

	// GetUser returns user profile by ID.
	GetUser(ctx context.Context, userID int) (*UserResult, error)

	// CreateUser hashes the password and stores a new user.
	CreateUser(ctx context.Context, req CreateUserRequest) (*UserResult, error)

	ListUsers(ctx context.Context) (*UserListResult, error)

	// ListLots returns the sale catalogue in lot order.
	ListLots(ctx context.Context) (*LotListResult, error)

	CreateLot(ctx context.Context, req CreateLotRequest) (*LotResult, error)

	// GetDisplay returns what the projector currently shows.
	GetDisplay(ctx context.Context) (*DisplayResult, error)

	// SetBanner replaces the projector banner. Surrounding whitespace is trimmed.
	SetBanner(ctx context.Context, banner string) error

	// ShowLot puts a lot on the projector.
	ShowLot(ctx context.Context, number int) (*LotResult, error)
}
