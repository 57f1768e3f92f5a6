package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/stocksim/api/internal/domain"
	"github.com/stocksim/api/internal/quote"
	"github.com/stocksim/api/internal/repository"
)

// fakeQuoteSource serves fixed prices per symbol. Symbols without a price
// are unknown; a non-nil err fails every lookup.
type fakeQuoteSource struct {
	mu     sync.Mutex
	prices map[string]decimal.Decimal
	err    error
	calls  int
}

func (f *fakeQuoteSource) Lookup(_ context.Context, symbol string) (domain.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++

	if f.err != nil {
		return domain.Quote{}, f.err
	}

	symbol = strings.ToUpper(symbol)
	price, ok := f.prices[symbol]
	if !ok {
		return domain.Quote{}, quote.ErrSymbolNotFound
	}

	return domain.Quote{
		Symbol: symbol,
		Name:   symbol + " Inc.",
		Price:  price,
	}, nil
}

func (f *fakeQuoteSource) setPrice(symbol string, price decimal.Decimal) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.prices[strings.ToUpper(symbol)] = price
}

// fakeStore is an in-memory stand-in for the user and ledger repositories.
// ApplyTrade mirrors the real repository's atomic contract: it either
// applies every write or, when applyErr is set, none of them.
type fakeStore struct {
	mu           sync.Mutex
	users        map[uint]domain.User
	positions    map[string]domain.Position
	transactions []domain.Transaction
	applyErr     error

	nextTransactionID uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     make(map[uint]domain.User),
		positions: make(map[string]domain.Position),
	}
}

func (f *fakeStore) positionKey(userID uint, symbol string) string {
	return fmt.Sprintf("%d|%s", userID, symbol)
}

func (f *fakeStore) addUser(id uint, cash decimal.Decimal) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.users[id] = domain.User{ID: id, Username: fmt.Sprintf("user%d", id), Cash: cash}
}

func (f *fakeStore) addPosition(userID uint, symbol string, shares int64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.positions[f.positionKey(userID, symbol)] = domain.Position{
		UserID: userID,
		Symbol: symbol,
		Shares: shares,
	}
}

func (f *fakeStore) cash(userID uint) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.users[userID].Cash
}

func (f *fakeStore) shares(userID uint, symbol string) (int64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	position, ok := f.positions[f.positionKey(userID, symbol)]

	return position.Shares, ok
}

func (f *fakeStore) transactionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.transactions)
}

func (f *fakeStore) FindByID(_ context.Context, id uint) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}

	return user, nil
}

func (f *fakeStore) FindPosition(_ context.Context, userID uint, symbol string) (domain.Position, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	position, ok := f.positions[f.positionKey(userID, symbol)]
	if !ok {
		return domain.Position{}, repository.ErrPositionNotFound
	}

	return position, nil
}

func (f *fakeStore) FindPositionsByUserID(_ context.Context, userID uint) ([]domain.Position, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var positions []domain.Position
	for _, position := range f.positions {
		if position.UserID == userID {
			positions = append(positions, position)
		}
	}

	return positions, nil
}

func (f *fakeStore) FindTransactionsByUserID(_ context.Context, userID uint) ([]domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var transactions []domain.Transaction
	for _, transaction := range f.transactions {
		if transaction.UserID == userID {
			transactions = append(transactions, transaction)
		}
	}

	return transactions, nil
}

func (f *fakeStore) ApplyTrade(_ context.Context, transaction domain.Transaction, newCash decimal.Decimal, newShares int64) (domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.applyErr != nil {
		return domain.Transaction{}, f.applyErr
	}

	f.nextTransactionID++
	transaction.ID = f.nextTransactionID
	f.transactions = append(f.transactions, transaction)

	user := f.users[transaction.UserID]
	user.Cash = newCash
	f.users[transaction.UserID] = user

	key := f.positionKey(transaction.UserID, transaction.Symbol)
	if newShares == 0 {
		delete(f.positions, key)
	} else {
		f.positions[key] = domain.Position{
			UserID: transaction.UserID,
			Symbol: transaction.Symbol,
			Shares: newShares,
		}
	}

	return transaction, nil
}
