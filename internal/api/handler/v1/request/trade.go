package request

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
)

var symbolExp = regexp.MustCompile(`^[A-Za-z.\-]{1,10}$`)

// TradeRequest is the body of both buy and sell. Shares must be a strictly
// positive integer; zero, negative and fractional counts are rejected here
// rather than left to parsing accidents downstream.
type TradeRequest struct {
	Symbol string `json:"symbol"`
	Shares int64  `json:"shares"`
}

func (req *TradeRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Symbol,
			validation.Required.Error("missing symbol"),
			validation.Match(symbolExp),
		),
		validation.Field(&req.Shares,
			validation.Required.Error("missing # of shares"),
			validation.Min(1),
		),
	)
}
