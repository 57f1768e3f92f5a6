package dao

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrPositionNotFound = errors.New("position not found")

type Position struct {
	ID uint `gorm:"primaryKey"`

	UserID uint   `gorm:"not null;uniqueIndex:idx_positions_user_symbol"`
	Symbol string `gorm:"not null;uniqueIndex:idx_positions_user_symbol"`
	Shares int64  `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type Transaction struct {
	ID uint `gorm:"primaryKey"`

	UserID uint            `gorm:"not null;index"`
	Type   string          `gorm:"not null"`
	Symbol string          `gorm:"not null"`
	Shares int64           `gorm:"not null"`
	Price  decimal.Decimal `gorm:"type:numeric(20,4);not null"`

	CreatedAt time.Time `gorm:"not null"`
}

// TradeApply is one trade's complete set of ledger writes, computed by the
// caller and applied in a single database transaction.
type TradeApply struct {
	Transaction Transaction
	NewCash     decimal.Decimal
	// NewShares is the position's share count after the trade; zero
	// removes the position row.
	NewShares int64
}

type LedgerDAO struct {
	db *gorm.DB
}

func NewLedgerDAO(db *gorm.DB) *LedgerDAO {
	return &LedgerDAO{
		db: db,
	}
}

func (d *LedgerDAO) FindPosition(ctx context.Context, userID uint, symbol string) (Position, error) {
	var position Position

	result := d.db.WithContext(ctx).
		First(&position, "user_id = ? AND symbol = ?", userID, symbol)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Position{}, ErrPositionNotFound
		}

		return Position{}, result.Error
	}

	return position, nil
}

func (d *LedgerDAO) FindPositionsByUserID(ctx context.Context, userID uint) ([]Position, error) {
	var positions []Position

	result := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("symbol ASC").
		Find(&positions)
	if result.Error != nil {
		return nil, result.Error
	}

	return positions, nil
}

func (d *LedgerDAO) FindTransactionsByUserID(ctx context.Context, userID uint) ([]Transaction, error) {
	var transactions []Transaction

	result := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&transactions)
	if result.Error != nil {
		return nil, result.Error
	}

	return transactions, nil
}

// ApplyTrade writes one trade to the ledger: it appends the transaction
// row, sets the user's cash, and upserts or deletes the position row, all
// inside one database transaction so a mid-sequence failure rolls back
// every statement.
func (d *LedgerDAO) ApplyTrade(ctx context.Context, apply TradeApply) (Transaction, error) {
	created := apply.Transaction

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		result := tx.Model(&User{}).
			Where("id = ?", apply.Transaction.UserID).
			Update("cash", apply.NewCash)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}

		userID := apply.Transaction.UserID
		symbol := apply.Transaction.Symbol

		if apply.NewShares == 0 {
			return tx.
				Where("user_id = ? AND symbol = ?", userID, symbol).
				Delete(&Position{}).Error
		}

		var position Position
		err := tx.First(&position, "user_id = ? AND symbol = ?", userID, symbol).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&Position{
				UserID: userID,
				Symbol: symbol,
				Shares: apply.NewShares,
			}).Error
		}
		if err != nil {
			return err
		}

		return tx.Model(&position).Update("shares", apply.NewShares).Error
	})
	if err != nil {
		return Transaction{}, err
	}

	return created, nil
}
