package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"story-visualizer/internal/models"
	"story-visualizer/internal/repository/memory"
)

func newTestLedger(startingPoints int) *Ledger {
	return New(memory.NewAccountRepository(), startingPoints, zap.NewNop())
}

func TestEnsureAccountGrantsStartingPointsOnce(t *testing.T) {
	l := newTestLedger(25)
	ctx := context.Background()

	acc, err := l.EnsureAccount(ctx, "acct-1")
	require.NoError(t, err)
	assert.Equal(t, 25, acc.Points)

	_, err = l.Deduct(ctx, "acct-1", 5)
	require.NoError(t, err)

	// A second ensure must not re-grant.
	acc, err = l.EnsureAccount(ctx, "acct-1")
	require.NoError(t, err)
	assert.Equal(t, 20, acc.Points)
}

func TestDeductFundRoundTrip(t *testing.T) {
	l := newTestLedger(25)
	ctx := context.Background()

	_, err := l.EnsureAccount(ctx, "acct-1")
	require.NoError(t, err)

	snap, err := l.Deduct(ctx, "acct-1", 10)
	require.NoError(t, err)
	assert.Equal(t, 25, snap.BeforeAction)
	assert.Equal(t, 15, snap.AfterAction)

	snap, err = l.Fund(ctx, "acct-1", 10)
	require.NoError(t, err)
	assert.Equal(t, 15, snap.BeforeAction)
	assert.Equal(t, 25, snap.AfterAction)
}

func TestDeductInsufficientBalanceMutatesNothing(t *testing.T) {
	l := newTestLedger(15)
	ctx := context.Background()

	_, err := l.EnsureAccount(ctx, "acct-1")
	require.NoError(t, err)

	snap, err := l.Deduct(ctx, "acct-1", 20)
	assert.ErrorIs(t, err, models.ErrInsufficientBalance)
	assert.Equal(t, 15, snap.BeforeAction)
	assert.Equal(t, 15, snap.AfterAction)

	acc, err := l.EnsureAccount(ctx, "acct-1")
	require.NoError(t, err)
	assert.Equal(t, 15, acc.Points)
}

func TestDeductUnknownAccount(t *testing.T) {
	l := newTestLedger(25)

	_, err := l.Deduct(context.Background(), "ghost", 1)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestFundUnknownAccount(t *testing.T) {
	l := newTestLedger(25)

	_, err := l.Fund(context.Background(), "ghost", 1)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestValidation(t *testing.T) {
	l := newTestLedger(25)
	ctx := context.Background()

	_, err := l.EnsureAccount(ctx, "")
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = l.Fund(ctx, "acct-1", 0)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = l.Deduct(ctx, "acct-1", -3)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestConcurrentDeductsNoDoubleSpend(t *testing.T) {
	const k = 25
	l := newTestLedger(k)
	ctx := context.Background()

	_, err := l.EnsureAccount(ctx, "acct-1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, k)
	for i := 0; i < k; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = l.Deduct(ctx, "acct-1", 1)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "deduct %d failed", i)
	}

	acc, err := l.EnsureAccount(ctx, "acct-1")
	require.NoError(t, err)
	assert.Equal(t, 0, acc.Points)
}
