package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/stocksim/api/internal/domain"
)

type PortfolioLedgerRepository interface {
	FindPositionsByUserID(ctx context.Context, userID uint) ([]domain.Position, error)
}

type PortfolioService struct {
	ledger PortfolioLedgerRepository
	users  UserRepository
	quotes QuoteSource
}

func NewPortfolioService(ledger PortfolioLedgerRepository, users UserRepository, quotes QuoteSource) *PortfolioService {
	return &PortfolioService{
		ledger: ledger,
		users:  users,
		quotes: quotes,
	}
}

// GetSnapshot values every open position at its live quote and totals them
// with cash. Quote lookups run concurrently, one per position. If any
// lookup fails the whole snapshot fails; a partially priced portfolio is
// never returned with zeros in place of real values.
func (s *PortfolioService) GetSnapshot(ctx context.Context, userID uint) (domain.Portfolio, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return domain.Portfolio{}, fmt.Errorf("s.users.FindByID -> %w", err)
	}

	positions, err := s.ledger.FindPositionsByUserID(ctx, userID)
	if err != nil {
		return domain.Portfolio{}, fmt.Errorf("s.ledger.FindPositionsByUserID -> %w", err)
	}

	holdings := make([]domain.Holding, len(positions))

	g, gctx := errgroup.WithContext(ctx)
	for i, position := range positions {
		i, position := i, position
		g.Go(func() error {
			q, err := s.quotes.Lookup(gctx, position.Symbol)
			if err != nil {
				return fmt.Errorf("s.quotes.Lookup(%q) -> %w", position.Symbol, err)
			}

			holdings[i] = domain.Holding{
				Symbol: position.Symbol,
				Name:   q.Name,
				Shares: position.Shares,
				Price:  q.Price,
				Value:  q.Price.Mul(decimal.NewFromInt(position.Shares)),
			}

			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return domain.Portfolio{}, err
	}

	total := user.Cash
	for _, holding := range holdings {
		total = total.Add(holding.Value)
	}

	return domain.Portfolio{
		Holdings: holdings,
		Cash:     user.Cash,
		Total:    total,
	}, nil
}
