package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocksim/api/internal/domain"
)

func newTradeFixture(t *testing.T) (*TradeService, *fakeStore, *fakeQuoteSource) {
	t.Helper()

	store := newFakeStore()
	quotes := &fakeQuoteSource{prices: map[string]decimal.Decimal{}}
	svc := NewTradeService(store, store, quotes)

	return svc, store, quotes
}

func TestBuy_CreatesPosition(t *testing.T) {
	svc, store, quotes := newTradeFixture(t)
	store.addUser(1, decimal.RequireFromString("10000.00"))
	quotes.setPrice("NFLX", decimal.RequireFromString("500.00"))

	transaction, err := svc.Buy(context.Background(), 1, "NFLX", 10)
	require.NoError(t, err)

	assert.Equal(t, domain.TransactionBuy, transaction.Type)
	assert.Equal(t, "NFLX", transaction.Symbol)
	assert.Equal(t, int64(10), transaction.Shares)
	assert.True(t, transaction.Price.Equal(decimal.RequireFromString("500.00")))

	assert.True(t, store.cash(1).Equal(decimal.RequireFromString("5000.00")))
	shares, ok := store.shares(1, "NFLX")
	require.True(t, ok)
	assert.Equal(t, int64(10), shares)
	assert.Equal(t, 1, store.transactionCount())
}

func TestBuy_AddsToExistingPosition(t *testing.T) {
	svc, store, quotes := newTradeFixture(t)
	store.addUser(1, decimal.RequireFromString("1000.00"))
	store.addPosition(1, "AAPL", 3)
	quotes.setPrice("AAPL", decimal.RequireFromString("100.00"))

	_, err := svc.Buy(context.Background(), 1, "AAPL", 2)
	require.NoError(t, err)

	shares, ok := store.shares(1, "AAPL")
	require.True(t, ok)
	assert.Equal(t, int64(5), shares)
	assert.True(t, store.cash(1).Equal(decimal.RequireFromString("800.00")))
}

func TestBuy_InsufficientFunds(t *testing.T) {
	svc, store, quotes := newTradeFixture(t)
	store.addUser(1, decimal.RequireFromString("100.00"))
	quotes.setPrice("AAPL", decimal.RequireFromString("150.00"))

	_, err := svc.Buy(context.Background(), 1, "AAPL", 1)
	require.ErrorIs(t, err, ErrInsufficientFunds)

	assert.True(t, store.cash(1).Equal(decimal.RequireFromString("100.00")))
	_, ok := store.shares(1, "AAPL")
	assert.False(t, ok)
	assert.Equal(t, 0, store.transactionCount())
}

// The funds check compares cash against the full order cost, not the unit
// price: enough cash for one share is not enough for five.
func TestBuy_CashBetweenUnitAndTotalCost(t *testing.T) {
	svc, store, quotes := newTradeFixture(t)
	store.addUser(1, decimal.RequireFromString("300.00"))
	quotes.setPrice("AAPL", decimal.RequireFromString("100.00"))

	_, err := svc.Buy(context.Background(), 1, "AAPL", 5)
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, 0, store.transactionCount())
}

func TestBuy_ExactCost(t *testing.T) {
	svc, store, quotes := newTradeFixture(t)
	store.addUser(1, decimal.RequireFromString("500.00"))
	quotes.setPrice("AAPL", decimal.RequireFromString("100.00"))

	_, err := svc.Buy(context.Background(), 1, "AAPL", 5)
	require.NoError(t, err)
	assert.True(t, store.cash(1).IsZero())
}

func TestBuy_UnknownSymbol(t *testing.T) {
	svc, store, _ := newTradeFixture(t)
	store.addUser(1, decimal.RequireFromString("10000.00"))

	_, err := svc.Buy(context.Background(), 1, "NOPE", 1)
	require.ErrorIs(t, err, ErrUnknownSymbol)
	assert.Equal(t, 0, store.transactionCount())
}

func TestBuy_QuoteUnavailable(t *testing.T) {
	svc, store, quotes := newTradeFixture(t)
	store.addUser(1, decimal.RequireFromString("10000.00"))
	quotes.err = ErrQuoteUnavailable

	_, err := svc.Buy(context.Background(), 1, "AAPL", 1)
	require.ErrorIs(t, err, ErrQuoteUnavailable)

	assert.True(t, store.cash(1).Equal(decimal.RequireFromString("10000.00")))
	assert.Equal(t, 0, store.transactionCount())
}

func TestSell_Partial(t *testing.T) {
	svc, store, quotes := newTradeFixture(t)
	store.addUser(1, decimal.RequireFromString("100.00"))
	store.addPosition(1, "AAPL", 10)
	quotes.setPrice("AAPL", decimal.RequireFromString("50.00"))

	transaction, err := svc.Sell(context.Background(), 1, "AAPL", 4)
	require.NoError(t, err)

	assert.Equal(t, domain.TransactionSell, transaction.Type)
	assert.True(t, store.cash(1).Equal(decimal.RequireFromString("300.00")))
	shares, ok := store.shares(1, "AAPL")
	require.True(t, ok)
	assert.Equal(t, int64(6), shares)
}

func TestSell_EntirePositionRemovesRow(t *testing.T) {
	svc, store, quotes := newTradeFixture(t)
	store.addUser(1, decimal.RequireFromString("0.00"))
	store.addPosition(1, "NFLX", 10)
	quotes.setPrice("NFLX", decimal.RequireFromString("550.00"))

	_, err := svc.Sell(context.Background(), 1, "NFLX", 10)
	require.NoError(t, err)

	assert.True(t, store.cash(1).Equal(decimal.RequireFromString("5500.00")))
	_, ok := store.shares(1, "NFLX")
	assert.False(t, ok)
}

func TestSell_InsufficientShares(t *testing.T) {
	svc, store, quotes := newTradeFixture(t)
	store.addUser(1, decimal.RequireFromString("100.00"))
	store.addPosition(1, "AAPL", 3)
	quotes.setPrice("AAPL", decimal.RequireFromString("50.00"))

	_, err := svc.Sell(context.Background(), 1, "AAPL", 5)
	require.ErrorIs(t, err, ErrInsufficientShares)

	assert.True(t, store.cash(1).Equal(decimal.RequireFromString("100.00")))
	shares, _ := store.shares(1, "AAPL")
	assert.Equal(t, int64(3), shares)
	assert.Equal(t, 0, store.transactionCount())
}

func TestSell_NoPosition(t *testing.T) {
	svc, store, quotes := newTradeFixture(t)
	store.addUser(1, decimal.RequireFromString("100.00"))

	_, err := svc.Sell(context.Background(), 1, "AAPL", 1)
	require.ErrorIs(t, err, ErrPositionNotFound)

	// The position lookup fails before any quote is fetched.
	assert.Equal(t, 0, quotes.calls)
	assert.Equal(t, 0, store.transactionCount())
}

// Buying then selling at a moved price follows the worked example: 10
// NFLX bought at 500.00 from 10000.00 leaves 5000.00; selling all 10 at
// 550.00 leaves 10500.00 with the position removed and two log entries.
func TestBuyThenSell_LedgerConservation(t *testing.T) {
	svc, store, quotes := newTradeFixture(t)
	store.addUser(1, decimal.RequireFromString("10000.00"))
	quotes.setPrice("NFLX", decimal.RequireFromString("500.00"))

	_, err := svc.Buy(context.Background(), 1, "NFLX", 10)
	require.NoError(t, err)
	assert.True(t, store.cash(1).Equal(decimal.RequireFromString("5000.00")))

	quotes.setPrice("NFLX", decimal.RequireFromString("550.00"))

	_, err = svc.Sell(context.Background(), 1, "NFLX", 10)
	require.NoError(t, err)

	assert.True(t, store.cash(1).Equal(decimal.RequireFromString("10500.00")))
	_, ok := store.shares(1, "NFLX")
	assert.False(t, ok)
	assert.Equal(t, 2, store.transactionCount())
}

func TestSell_RoundTripAtSamePrice(t *testing.T) {
	svc, store, quotes := newTradeFixture(t)
	store.addUser(1, decimal.RequireFromString("10000.00"))
	quotes.setPrice("AAPL", decimal.RequireFromString("123.45"))

	_, err := svc.Buy(context.Background(), 1, "AAPL", 7)
	require.NoError(t, err)
	_, err = svc.Sell(context.Background(), 1, "AAPL", 7)
	require.NoError(t, err)

	assert.True(t, store.cash(1).Equal(decimal.RequireFromString("10000.00")))
}

// Two concurrent sells of the same full position must not both pass the
// sufficiency check: the per-user lock serializes them, so exactly one
// succeeds and the other fails with ErrInsufficientShares.
func TestSell_ConcurrentSellsSerialize(t *testing.T) {
	svc, store, quotes := newTradeFixture(t)
	store.addUser(1, decimal.RequireFromString("0.00"))
	store.addPosition(1, "AAPL", 10)
	quotes.setPrice("AAPL", decimal.RequireFromString("100.00"))

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Sell(context.Background(), 1, "AAPL", 10)
		}(i)
	}
	wg.Wait()

	var succeeded, rejected int
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrInsufficientShares) || errors.Is(err, ErrPositionNotFound):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)
	assert.True(t, store.cash(1).Equal(decimal.RequireFromString("1000.00")))
	assert.Equal(t, 1, store.transactionCount())
}

func TestGetTransactions(t *testing.T) {
	svc, store, quotes := newTradeFixture(t)
	store.addUser(1, decimal.RequireFromString("10000.00"))
	store.addUser(2, decimal.RequireFromString("10000.00"))
	quotes.setPrice("AAPL", decimal.RequireFromString("100.00"))

	_, err := svc.Buy(context.Background(), 1, "AAPL", 1)
	require.NoError(t, err)
	_, err = svc.Buy(context.Background(), 2, "AAPL", 2)
	require.NoError(t, err)

	transactions, err := svc.GetTransactions(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, uint(1), transactions[0].UserID)
}
