package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alfredoptarigan/resume-optimizer/internal/models"
)

// CreditLedger tracks the consumable balance that gates extraction.
type CreditLedger interface {
	Balance(ctx context.Context) (int, error)
	// Debit subtracts amount atomically and returns the new balance. It fails
	// with models.ErrInsufficientCredits, leaving the balance untouched, when
	// the balance is lower than amount.
	Debit(ctx context.Context, amount int) (int, error)
}

const ledgerAccountID = 1

type creditLedger struct {
	db *gorm.DB
}

// NewCreditLedger opens the single ledger row, creating it with the initial
// balance on first use.
func NewCreditLedger(ctx context.Context, db *gorm.DB, initialBalance int) (CreditLedger, error) {
	account := models.CreditAccount{
		ID:        ledgerAccountID,
		Balance:   initialBalance,
		UpdatedAt: time.Now().UTC(),
	}

	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&account).Error
	if err != nil {
		return nil, fmt.Errorf("failed to initialize credit ledger: %w", err)
	}

	return &creditLedger{db: db}, nil
}

// Balance implements CreditLedger.
func (l *creditLedger) Balance(ctx context.Context) (int, error) {
	var account models.CreditAccount
	if err := l.db.WithContext(ctx).Where("id = ?", ledgerAccountID).First(&account).Error; err != nil {
		return 0, fmt.Errorf("failed to read credit balance: %w", err)
	}
	return account.Balance, nil
}

// Debit implements CreditLedger.
func (l *creditLedger) Debit(ctx context.Context, amount int) (int, error) {
	if amount < 0 {
		return 0, fmt.Errorf("debit amount must not be negative: %d", amount)
	}

	var balance int
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.CreditAccount{}).
			Where("id = ? AND balance >= ?", ledgerAccountID, amount).
			Updates(map[string]interface{}{
				"balance":    gorm.Expr("balance - ?", amount),
				"updated_at": time.Now().UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return models.ErrInsufficientCredits
		}

		var account models.CreditAccount
		if err := tx.Where("id = ?", ledgerAccountID).First(&account).Error; err != nil {
			return err
		}
		balance = account.Balance
		return nil
	})
	if err != nil {
		if errors.Is(err, models.ErrInsufficientCredits) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to debit credits: %w", err)
	}

	return balance, nil
}
