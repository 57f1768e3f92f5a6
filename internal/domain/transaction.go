package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionBuy  TransactionType = "buy"
	TransactionSell TransactionType = "sell"
)

// Transaction is one executed trade. The log is append-only: rows are
// never updated or deleted.
type Transaction struct {
	ID        uint            `json:"id"`
	UserID    uint            `json:"user_id"`
	Type      TransactionType `json:"type"`
	Symbol    string          `json:"symbol"`
	Shares    int64           `json:"shares"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
}

// Cost is the cash moved by the trade, price at execution times shares.
func (t Transaction) Cost() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(t.Shares))
}
