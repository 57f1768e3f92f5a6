package domain

import "github.com/shopspring/decimal"

// Holding is one portfolio line: a position priced at the current quote.
type Holding struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Shares int64           `json:"shares"`
	Price  decimal.Decimal `json:"price"`
	Value  decimal.Decimal `json:"value"`
}

// Portfolio is the read-side aggregation of a user's ledger: every open
// position valued at live prices, plus cash, plus the grand total.
type Portfolio struct {
	Holdings []Holding       `json:"holdings"`
	Cash     decimal.Decimal `json:"cash"`
	Total    decimal.Decimal `json:"total"`
}
