package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/stocksim/api/internal/domain"
	"github.com/stocksim/api/internal/repository/dao"
)

var ErrPositionNotFound = dao.ErrPositionNotFound

type LedgerDAO interface {
	FindPosition(ctx context.Context, userID uint, symbol string) (dao.Position, error)
	FindPositionsByUserID(ctx context.Context, userID uint) ([]dao.Position, error)
	FindTransactionsByUserID(ctx context.Context, userID uint) ([]dao.Transaction, error)
	ApplyTrade(ctx context.Context, apply dao.TradeApply) (dao.Transaction, error)
}

type LedgerRepository struct {
	dao LedgerDAO
}

func NewLedgerRepository(dao LedgerDAO) *LedgerRepository {
	return &LedgerRepository{
		dao: dao,
	}
}

func (r *LedgerRepository) FindPosition(ctx context.Context, userID uint, symbol string) (domain.Position, error) {
	found, err := r.dao.FindPosition(ctx, userID, symbol)
	if err != nil {
		return domain.Position{}, fmt.Errorf("r.dao.FindPosition -> %w", err)
	}

	return r.positionDaoToDomain(found), nil
}

func (r *LedgerRepository) FindPositionsByUserID(ctx context.Context, userID uint) ([]domain.Position, error) {
	found, err := r.dao.FindPositionsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindPositionsByUserID -> %w", err)
	}

	positions := make([]domain.Position, len(found))
	for i, p := range found {
		positions[i] = r.positionDaoToDomain(p)
	}

	return positions, nil
}

func (r *LedgerRepository) FindTransactionsByUserID(ctx context.Context, userID uint) ([]domain.Transaction, error) {
	found, err := r.dao.FindTransactionsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindTransactionsByUserID -> %w", err)
	}

	transactions := make([]domain.Transaction, len(found))
	for i, t := range found {
		transactions[i] = r.transactionDaoToDomain(t)
	}

	return transactions, nil
}

// ApplyTrade applies one trade's transaction append, cash update and
// position change as a single atomic unit.
func (r *LedgerRepository) ApplyTrade(ctx context.Context, transaction domain.Transaction, newCash decimal.Decimal, newShares int64) (domain.Transaction, error) {
	created, err := r.dao.ApplyTrade(ctx, dao.TradeApply{
		Transaction: dao.Transaction{
			UserID: transaction.UserID,
			Type:   string(transaction.Type),
			Symbol: transaction.Symbol,
			Shares: transaction.Shares,
			Price:  transaction.Price,
		},
		NewCash:   newCash,
		NewShares: newShares,
	})
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("r.dao.ApplyTrade -> %w", err)
	}

	return r.transactionDaoToDomain(created), nil
}

func (r *LedgerRepository) positionDaoToDomain(p dao.Position) domain.Position {
	return domain.Position{
		ID:        p.ID,
		UserID:    p.UserID,
		Symbol:    p.Symbol,
		Shares:    p.Shares,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (r *LedgerRepository) transactionDaoToDomain(t dao.Transaction) domain.Transaction {
	return domain.Transaction{
		ID:        t.ID,
		UserID:    t.UserID,
		Type:      domain.TransactionType(t.Type),
		Symbol:    t.Symbol,
		Shares:    t.Shares,
		Price:     t.Price,
		CreatedAt: t.CreatedAt,
	}
}
