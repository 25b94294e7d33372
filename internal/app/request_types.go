package app

import "github.com/shopspring/decimal"

// CreateUserRequest is the input for creating a new user.
type CreateUserRequest struct {
	Username    string
	DisplayName string
	Password    string
	Role        string
}

// CreateLotRequest is the input for adding a lot to the catalogue.
type CreateLotRequest struct {
	Number       int
	Title        string
	Description  string
	EstimateLow  decimal.Decimal
	EstimateHigh decimal.Decimal
}
