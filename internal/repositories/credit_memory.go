package repositories

import (
	"context"
	"fmt"
	"sync"

	"alfredoptarigan/resume-optimizer/internal/models"
)

type memoryCreditLedger struct {
	mu      sync.Mutex
	balance int
}

func NewMemoryCreditLedger(initialBalance int) CreditLedger {
	if initialBalance < 0 {
		initialBalance = 0
	}
	return &memoryCreditLedger{balance: initialBalance}
}

func (l *memoryCreditLedger) Balance(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance, nil
}

func (l *memoryCreditLedger) Debit(ctx context.Context, amount int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if amount < 0 {
		return 0, fmt.Errorf("debit amount must not be negative: %d", amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balance < amount {
		return 0, models.ErrInsufficientCredits
	}
	l.balance -= amount
	return l.balance, nil
}
