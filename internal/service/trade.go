package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/stocksim/api/internal/domain"
	"github.com/stocksim/api/internal/quote"
	"github.com/stocksim/api/internal/repository"
)

var (
	ErrInsufficientFunds  = errors.New("not enough cash")
	ErrInsufficientShares = errors.New("not enough shares")
	ErrPositionNotFound   = repository.ErrPositionNotFound
	ErrUnknownSymbol      = quote.ErrSymbolNotFound
	ErrQuoteUnavailable   = quote.ErrQuoteUnavailable
)

type QuoteSource interface {
	Lookup(ctx context.Context, symbol string) (domain.Quote, error)
}

type TradeLedgerRepository interface {
	FindPosition(ctx context.Context, userID uint, symbol string) (domain.Position, error)
	FindTransactionsByUserID(ctx context.Context, userID uint) ([]domain.Transaction, error)
	ApplyTrade(ctx context.Context, transaction domain.Transaction, newCash decimal.Decimal, newShares int64) (domain.Transaction, error)
}

// TradeService executes buys and sells against the ledger. Trades for the
// same user serialize on a per-user mutex held across the whole
// read-compute-write span, so two concurrent sells cannot both pass the
// share-sufficiency check against the same stale count.
type TradeService struct {
	ledger TradeLedgerRepository
	users  UserRepository
	quotes QuoteSource

	locks sync.Map // uint -> *sync.Mutex
}

func NewTradeService(ledger TradeLedgerRepository, users UserRepository, quotes QuoteSource) *TradeService {
	return &TradeService{
		ledger: ledger,
		users:  users,
		quotes: quotes,
	}
}

func (s *TradeService) userLock(userID uint) *sync.Mutex {
	lock, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})

	return lock.(*sync.Mutex)
}

// Buy executes a market buy of shares of symbol at the current quoted
// price. The price is always re-fetched here, never trusted from an
// earlier quote shown to the user. The funds check compares cash against
// the full cost of the order, and the transaction append, cash debit and
// position upsert commit atomically or not at all.
func (s *TradeService) Buy(ctx context.Context, userID uint, symbol string, shares int64) (domain.Transaction, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	q, err := s.quotes.Lookup(ctx, symbol)
	if err != nil {
		if errors.Is(err, quote.ErrSymbolNotFound) {
			return domain.Transaction{}, ErrUnknownSymbol
		}

		return domain.Transaction{}, fmt.Errorf("s.quotes.Lookup -> %w", err)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("s.users.FindByID -> %w", err)
	}

	cost := q.Price.Mul(decimal.NewFromInt(shares))
	if user.Cash.LessThan(cost) {
		return domain.Transaction{}, ErrInsufficientFunds
	}

	currentShares := int64(0)
	position, err := s.ledger.FindPosition(ctx, userID, q.Symbol)
	if err == nil {
		currentShares = position.Shares
	} else if !errors.Is(err, repository.ErrPositionNotFound) {
		return domain.Transaction{}, fmt.Errorf("s.ledger.FindPosition -> %w", err)
	}

	created, err := s.ledger.ApplyTrade(ctx, domain.Transaction{
		UserID: userID,
		Type:   domain.TransactionBuy,
		Symbol: q.Symbol,
		Shares: shares,
		Price:  q.Price,
	}, user.Cash.Sub(cost), currentShares+shares)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("s.ledger.ApplyTrade -> %w", err)
	}

	return created, nil
}

// Sell executes a market sell. The position lookup doubles as symbol
// validation: selling a symbol the user does not hold fails with
// ErrPositionNotFound before any quote is fetched. Selling the entire
// position removes its row.
func (s *TradeService) Sell(ctx context.Context, userID uint, symbol string, shares int64) (domain.Transaction, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	position, err := s.ledger.FindPosition(ctx, userID, symbol)
	if err != nil {
		if errors.Is(err, repository.ErrPositionNotFound) {
			return domain.Transaction{}, ErrPositionNotFound
		}

		return domain.Transaction{}, fmt.Errorf("s.ledger.FindPosition -> %w", err)
	}

	if shares > position.Shares {
		return domain.Transaction{}, ErrInsufficientShares
	}

	q, err := s.quotes.Lookup(ctx, position.Symbol)
	if err != nil {
		if errors.Is(err, quote.ErrSymbolNotFound) {
			return domain.Transaction{}, ErrUnknownSymbol
		}

		return domain.Transaction{}, fmt.Errorf("s.quotes.Lookup -> %w", err)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("s.users.FindByID -> %w", err)
	}

	proceeds := q.Price.Mul(decimal.NewFromInt(shares))

	created, err := s.ledger.ApplyTrade(ctx, domain.Transaction{
		UserID: userID,
		Type:   domain.TransactionSell,
		Symbol: position.Symbol,
		Shares: shares,
		Price:  q.Price,
	}, user.Cash.Add(proceeds), position.Shares-shares)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("s.ledger.ApplyTrade -> %w", err)
	}

	return created, nil
}

// GetTransactions returns the user's full trade history, oldest first.
func (s *TradeService) GetTransactions(ctx context.Context, userID uint) ([]domain.Transaction, error) {
	transactions, err := s.ledger.FindTransactionsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.ledger.FindTransactionsByUserID -> %w", err)
	}

	return transactions, nil
}
