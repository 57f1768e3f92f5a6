package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"

	"github.com/stocksim/api/internal/domain"
)

var (
	// ErrSymbolNotFound means the quote source has no match for the symbol.
	ErrSymbolNotFound = errors.New("symbol not found")
	// ErrQuoteUnavailable means the quote source could not be reached or
	// kept failing after retries. Ledger state is never touched when a
	// lookup ends this way.
	ErrQuoteUnavailable = errors.New("quote source unavailable")
)

// Client fetches live quotes over HTTP. Transient failures are retried
// with exponential backoff; a 404 is terminal.
type Client struct {
	baseURL    string
	client     *http.Client
	maxElapsed time.Duration
}

type quoteResponse struct {
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	YearHigh      decimal.Decimal `json:"year_high"`
	YearLow       decimal.Decimal `json:"year_low"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"change_percent"`
}

func NewClient(baseURL string, timeout, maxElapsed time.Duration) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	if maxElapsed == 0 {
		maxElapsed = 5 * time.Second
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
		maxElapsed: maxElapsed,
	}
}

// Lookup fetches the current quote for symbol. The price is always
// fetched fresh; callers must not cache it across requests.
func (c *Client) Lookup(ctx context.Context, symbol string) (domain.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	var quote domain.Quote
	operation := func() error {
		q, err := c.fetch(ctx, symbol)
		if err != nil {
			if errors.Is(err, ErrSymbolNotFound) {
				return backoff.Permanent(err)
			}

			return err
		}

		quote = q

		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = c.maxElapsed

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		if errors.Is(err, ErrSymbolNotFound) {
			return domain.Quote{}, ErrSymbolNotFound
		}

		return domain.Quote{}, fmt.Errorf("%w: %v", ErrQuoteUnavailable, err)
	}

	return quote, nil
}

func (c *Client) fetch(ctx context.Context, symbol string) (domain.Quote, error) {
	endpoint := fmt.Sprintf("%s/quote?symbol=%s", c.baseURL, url.QueryEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Quote{}, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.Quote{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.Quote{}, ErrSymbolNotFound
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return domain.Quote{}, fmt.Errorf("quote api error: %d %s", resp.StatusCode, string(body))
	}

	var decoded quoteResponse
	if err = json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Quote{}, err
	}
	if decoded.Symbol == "" {
		return domain.Quote{}, ErrSymbolNotFound
	}

	return domain.Quote{
		Symbol:        decoded.Symbol,
		Name:          decoded.Name,
		Price:         decoded.Price,
		YearHigh:      decoded.YearHigh,
		YearLow:       decoded.YearLow,
		Change:        decoded.Change,
		ChangePercent: decoded.ChangePercent,
	}, nil
}
