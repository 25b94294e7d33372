package app

import "auction-house/internal/core"

// UserSession is returned by AuthenticateUser and becomes the token claims.
type UserSession struct {
	UserID      int
	Username    string
	DisplayName string
	Role        string
}

// UserResult is returned by GetUser and CreateUser.
type UserResult struct {
	UserID      int
	Username    string
	DisplayName string
	Role        string
	IsActive    bool
}

// UserListResult is returned by ListUsers.
type UserListResult struct {
	Users []UserResult
}

// LotResult is returned by lot operations.
type LotResult struct {
	Lot *core.Lot
}

// LotListResult is returned by ListLots.
type LotListResult struct {
	Lots []core.Lot
}

// DisplayResult is returned by GetDisplay.
type DisplayResult struct {
	Display *core.Display
}
