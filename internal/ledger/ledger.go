// Package ledger implements point accounting per account. All balance
// mutations go through the AccountRepository's atomic primitives; the ledger
// itself never reads-then-writes a balance.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"story-visualizer/internal/models"
	"story-visualizer/internal/repository"
)

// Ledger exposes fund/deduct/ensure over the account record store.
type Ledger struct {
	accounts       repository.AccountRepository
	startingPoints int
	logger         *zap.Logger
}

func New(accounts repository.AccountRepository, startingPoints int, logger *zap.Logger) *Ledger {
	return &Ledger{
		accounts:       accounts,
		startingPoints: startingPoints,
		logger:         logger.Named("Ledger"),
	}
}

// EnsureAccount finds or creates the account, granting the starting balance on
// first touch. At most one account ever exists per access_id.
func (l *Ledger) EnsureAccount(ctx context.Context, accessID string) (*models.Account, error) {
	if accessID == "" {
		return nil, fmt.Errorf("access_id is required: %w", models.ErrValidation)
	}
	return l.accounts.EnsureAccount(ctx, accessID, l.startingPoints)
}

// Fund credits amount points and returns the balance around the mutation.
func (l *Ledger) Fund(ctx context.Context, accessID string, amount int) (models.BalanceSnapshot, error) {
	if err := validateAmount(accessID, amount); err != nil {
		return models.BalanceSnapshot{}, err
	}
	after, err := l.accounts.Fund(ctx, accessID, amount)
	if err != nil {
		return models.BalanceSnapshot{}, err
	}
	return models.BalanceSnapshot{BeforeAction: after - amount, AfterAction: after}, nil
}

// Deduct debits amount points. The balance check and the decrement are one
// atomic operation in the repository; a failed deduct mutates nothing and the
// returned snapshot carries the untouched balance on both sides.
func (l *Ledger) Deduct(ctx context.Context, accessID string, amount int) (models.BalanceSnapshot, error) {
	if err := validateAmount(accessID, amount); err != nil {
		return models.BalanceSnapshot{}, err
	}
	after, err := l.accounts.Deduct(ctx, accessID, amount)
	if errors.Is(err, models.ErrInsufficientBalance) {
		l.logger.Warn("Deduct rejected, balance too low",
			zap.String("accessID", accessID), zap.Int("amount", amount), zap.Int("points", after))
		return models.BalanceSnapshot{BeforeAction: after, AfterAction: after}, models.ErrInsufficientBalance
	}
	if err != nil {
		return models.BalanceSnapshot{}, err
	}
	return models.BalanceSnapshot{BeforeAction: after + amount, AfterAction: after}, nil
}

func validateAmount(accessID string, amount int) error {
	if accessID == "" {
		return fmt.Errorf("access_id is required: %w", models.ErrValidation)
	}
	if amount <= 0 {
		return fmt.Errorf("amount must be positive: %w", models.ErrValidation)
	}
	return nil
}
