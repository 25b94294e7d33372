package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"auction-house/internal/core"
)

// MinPasswordLen is enforced by CreateUser.
const MinPasswordLen = 8

// dummyHash is compared against when the user does not exist so that an
// unknown username costs the same bcrypt work as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

type appService struct {
	users   core.UserService
	lots    core.LotService
	display core.DisplayService
	cost    int
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(users core.UserService, lots core.LotService, display core.DisplayService) ApplicationService {
	return &appService{users: users, lots: lots, display: display, cost: bcrypt.DefaultCost}
}

// AuthenticateUser verifies a username/password pair.
func (s *appService) AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, core.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("authenticate %q: %w", username, err)
	}
	if !u.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &UserSession{
		UserID:      u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Role:        u.Role,
	}, nil
}

// GetUser returns a user profile by ID.
func (s *appService) GetUser(ctx context.Context, userID int) (*UserResult, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toUserResult(u), nil
}

// CreateUser validates the request, hashes the password and stores the user.
func (s *appService) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResult, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if !core.ValidRole(req.Role) {
		return nil, fmt.Errorf("unknown role %q (want %s, %s or %s)", req.Role, core.RoleAdmin, core.RoleAuctioneer, core.RoleClerk)
	}
	if len(req.Password) < MinPasswordLen {
		return nil, fmt.Errorf("password must be at least %d characters", MinPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.users.Create(ctx, core.UserInput{
		Username:     username,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		PasswordHash: string(hash),
		Role:         req.Role,
	})
	if err != nil {
		return nil, err
	}
	return toUserResult(u), nil
}

// ListUsers returns every user.
func (s *appService) ListUsers(ctx context.Context) (*UserListResult, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := &UserListResult{Users: make([]UserResult, 0, len(users))}
	for i := range users {
		out.Users = append(out.Users, *toUserResult(&users[i]))
	}
	return out, nil
}

// ListLots returns the catalogue.
func (s *appService) ListLots(ctx context.Context) (*LotListResult, error) {
	lots, err := s.lots.List(ctx)
	if err != nil {
		return nil, err
	}
	return &LotListResult{Lots: lots}, nil
}

// CreateLot adds a lot to the catalogue.
func (s *appService) CreateLot(ctx context.Context, req CreateLotRequest) (*LotResult, error) {
	lot, err := s.lots.Create(ctx, core.LotInput{
		Number:       req.Number,
		Title:        strings.TrimSpace(req.Title),
		Description:  strings.TrimSpace(req.Description),
		EstimateLow:  req.EstimateLow,
		EstimateHigh: req.EstimateHigh,
	})
	if err != nil {
		return nil, err
	}
	return &LotResult{Lot: lot}, nil
}

// GetDisplay returns the projector state.
func (s *appService) GetDisplay(ctx context.Context) (*DisplayResult, error) {
	d, err := s.display.Get(ctx)
	if err != nil {
		return nil, err
	}
	return &DisplayResult{Display: d}, nil
}

// SetBanner trims and stores the projector banner.
func (s *appService) SetBanner(ctx context.Context, banner string) error {
	return s.display.SetBanner(ctx, strings.TrimSpace(banner))
}

// ShowLot puts the lot on the projector.
func (s *appService) ShowLot(ctx context.Context, number int) (*LotResult, error) {
	lot, err := s.display.ShowLot(ctx, number)
	if err != nil {
		return nil, err
	}
	return &LotResult{Lot: lot}, nil
}

func toUserResult(u *core.User) *UserResult {
	return &UserResult{
		UserID:      u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		IsActive:    u.IsActive,
	}
}
