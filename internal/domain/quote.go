package domain

import "github.com/shopspring/decimal"

// Quote is a snapshot of a symbol's market data from the external quote
// source. Quotes are never persisted; they are fetched fresh per request.
type Quote struct {
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	YearHigh      decimal.Decimal `json:"year_high"`
	YearLow       decimal.Decimal `json:"year_low"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"change_percent"`
}
