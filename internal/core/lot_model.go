package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Lot is an item in the sale catalogue.
type Lot struct {
	ID           int
	Number       int
	Title        string
	Description  string
	EstimateLow  decimal.Decimal
	EstimateHigh decimal.Decimal
	CreatedAt    time.Time
}

// Estimate formats the estimate range in whole currency units, e.g.
// "200 - 300". It is empty when no estimate was set.
func (l Lot) Estimate() string {
	if l.EstimateLow.IsZero() && l.EstimateHigh.IsZero() {
		return ""
	}
	if l.EstimateLow.Equal(l.EstimateHigh) {
		return l.EstimateLow.StringFixed(0)
	}
	return l.EstimateLow.StringFixed(0) + " - " + l.EstimateHigh.StringFixed(0)
}

// LotInput holds the fields for a new lot.
type LotInput struct {
	Number       int
	Title        string
	Description  string
	EstimateLow  decimal.Decimal
	EstimateHigh decimal.Decimal
}

// Validate checks the lot number and the estimate range.
func (in LotInput) Validate() error {
	switch {
	case in.Number <= 0:
		return errInvalid("lot number must be positive")
	case in.Title == "":
		return errInvalid("lot title is required")
	case in.EstimateLow.IsNegative():
		return errInvalid("estimate cannot be negative")
	case in.EstimateHigh.LessThan(in.EstimateLow):
		return errInvalid("high estimate is below low estimate")
	}
	return nil
}

// LotService manages the catalogue.
type LotService interface {
	// List returns all lots ordered by lot number.
	List(ctx context.Context) ([]Lot, error)

	GetByNumber(ctx context.Context, number int) (*Lot, error)

	Create(ctx context.Context, input LotInput) (*Lot, error)
}
