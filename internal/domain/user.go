package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID        uint            `json:"id"`
	Username  string          `json:"username"`
	Password  string          `json:"-"`
	Cash      decimal.Decimal `json:"cash"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
