package types

import "github.com/shopspring/decimal"

// Money renders an øre amount as a decimal major-unit value for API
// responses. Internally every price is an integer øre amount.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// NewMoney converts cents (øre) into a two-decimal major-unit Money value.
func NewMoney(cents int64, currency string) Money {
	return Money{
		Amount:   decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).Round(2),
		Currency: currency,
	}
}
