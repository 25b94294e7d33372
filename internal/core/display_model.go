package core

import (
	"context"
	"time"
)

// Display is what the saleroom projector currently shows.
type Display struct {
	Banner     string
	CurrentLot *Lot
	UpdatedAt  time.Time
}

// DisplayService reads and changes the projector state.
type DisplayService interface {
	Get(ctx context.Context) (*Display, error)

	// SetBanner replaces the banner text. An empty banner hides it.
	SetBanner(ctx context.Context, banner string) error

	// ShowLot puts the lot with the given number on the projector.
	ShowLot(ctx context.Context, number int) (*Lot, error)
}
