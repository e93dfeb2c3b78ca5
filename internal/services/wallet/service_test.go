package wallet

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"kredo/internal/models"
	"kredo/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLedger is an in-memory Ledger with the same atomicity semantics as
// the Postgres implementation: conditional single-step balance updates,
// serialized transactions, full rollback on error.
type fakeLedger struct {
	mu       sync.Mutex
	balances map[uint]decimal.Decimal
}

func newFakeLedger(balances map[uint]decimal.Decimal) *fakeLedger {
	return &fakeLedger{balances: balances}
}

func (f *fakeLedger) ExecuteInTransaction(_ context.Context, fn func(tx repositories.Ledger) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	snapshot := make(map[uint]decimal.Decimal, len(f.balances))
	for id, b := range f.balances {
		snapshot[id] = b
	}
	if err := fn(&fakeTx{state: f}); err != nil {
		f.balances = snapshot
		return err
	}
	return nil
}

func (f *fakeLedger) GetBalance(ctx context.Context, userID uint) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return (&fakeTx{state: f}).GetBalance(ctx, userID)
}

func (f *fakeLedger) DebitBalance(context.Context, uint, decimal.Decimal) (decimal.Decimal, error) {
	panic("must be called inside a transaction")
}
func (f *fakeLedger) CreditBalance(context.Context, uint, decimal.Decimal) (decimal.Decimal, error) {
	panic("must be called inside a transaction")
}
func (f *fakeLedger) CreateOrder(context.Context, *models.Order) error       { panic("not used") }
func (f *fakeLedger) CreateGift(context.Context, *models.Gift) error         { panic("not used") }
func (f *fakeLedger) CreatePayment(context.Context, *models.Payment) error   { panic("not used") }
func (f *fakeLedger) CreateCreditTransfer(context.Context, *models.CreditTransfer) error {
	panic("not used")
}
func (f *fakeLedger) ListOrdersByBuyer(context.Context, uint, int, int) ([]models.Order, error) {
	panic("not used")
}
func (f *fakeLedger) ListGiftsByUser(context.Context, uint, int, int) ([]models.Gift, error) {
	panic("not used")
}
func (f *fakeLedger) ListCreditTransfersByUser(context.Context, uint, int, int) ([]models.CreditTransfer, error) {
	panic("not used")
}
func (f *fakeLedger) ListPendingPayments(context.Context, uint) ([]models.Payment, error) {
	panic("not used")
}
func (f *fakeLedger) GetPaymentByReference(context.Context, string) (*models.Payment, error) {
	panic("not used")
}
func (f *fakeLedger) MarkPaymentSucceeded(context.Context, string) (bool, error) {
	panic("not used")
}

// fakeTx is the transaction-scoped view; the enclosing transaction already
// holds the lock.
type fakeTx struct {
	state *fakeLedger
}

func (t *fakeTx) ExecuteInTransaction(_ context.Context, fn func(tx repositories.Ledger) error) error {
	return fn(t)
}

func (t *fakeTx) DebitBalance(_ context.Context, userID uint, amount decimal.Decimal) (decimal.Decimal, error) {
	balance, ok := t.state.balances[userID]
	if !ok {
		return decimal.Zero, repositories.ErrUserNotFound
	}
	if balance.LessThan(amount) {
		return decimal.Zero, fmt.Errorf("%w: have %s, need %s", repositories.ErrInsufficientBalance, balance, amount)
	}
	newBalance := balance.Sub(amount)
	t.state.balances[userID] = newBalance
	return newBalance, nil
}

func (t *fakeTx) CreditBalance(_ context.Context, userID uint, amount decimal.Decimal) (decimal.Decimal, error) {
	balance, ok := t.state.balances[userID]
	if !ok {
		return decimal.Zero, repositories.ErrUserNotFound
	}
	newBalance := balance.Add(amount)
	t.state.balances[userID] = newBalance
	return newBalance, nil
}

func (t *fakeTx) GetBalance(_ context.Context, userID uint) (decimal.Decimal, error) {
	balance, ok := t.state.balances[userID]
	if !ok {
		return decimal.Zero, repositories.ErrUserNotFound
	}
	return balance, nil
}

func (t *fakeTx) CreateOrder(context.Context, *models.Order) error     { return nil }
func (t *fakeTx) CreateGift(context.Context, *models.Gift) error       { return nil }
func (t *fakeTx) CreatePayment(context.Context, *models.Payment) error { return nil }
func (t *fakeTx) CreateCreditTransfer(context.Context, *models.CreditTransfer) error {
	return nil
}
func (t *fakeTx) ListOrdersByBuyer(context.Context, uint, int, int) ([]models.Order, error) {
	return nil, nil
}
func (t *fakeTx) ListGiftsByUser(context.Context, uint, int, int) ([]models.Gift, error) {
	return nil, nil
}
func (t *fakeTx) ListCreditTransfersByUser(context.Context, uint, int, int) ([]models.CreditTransfer, error) {
	return nil, nil
}
func (t *fakeTx) ListPendingPayments(context.Context, uint) ([]models.Payment, error) {
	return nil, nil
}
func (t *fakeTx) GetPaymentByReference(context.Context, string) (*models.Payment, error) {
	return nil, repositories.ErrPaymentNotFound
}
func (t *fakeTx) MarkPaymentSucceeded(context.Context, string) (bool, error) {
	return false, nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestWalletService_Debit(t *testing.T) {
	tests := []struct {
		name        string
		userID      uint
		amount      decimal.Decimal
		wantErr     error
		wantBalance decimal.Decimal
	}{
		{
			name:        "successful debit",
			userID:      1,
			amount:      dec("300"),
			wantBalance: dec("700"),
		},
		{
			name:    "insufficient balance",
			userID:  1,
			amount:  dec("1000.01"),
			wantErr: ErrInsufficientBalance,
		},
		{
			name:    "zero amount",
			userID:  1,
			amount:  decimal.Zero,
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			userID:  1,
			amount:  dec("-5"),
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "unknown user",
			userID:  42,
			amount:  dec("10"),
			wantErr: ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := newFakeLedger(map[uint]decimal.Decimal{1: dec("1000")})
			svc := NewService(ledger)

			balance, err := svc.Debit(context.Background(), tt.userID, tt.amount, nil)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				got, _ := ledger.GetBalance(context.Background(), 1)
				assert.True(t, got.Equal(dec("1000")), "balance must be unchanged on failure")
				return
			}
			require.NoError(t, err)
			assert.True(t, balance.Equal(tt.wantBalance), "got %s", balance)
		})
	}
}

func TestWalletService_Debit_RecordFailureRollsBack(t *testing.T) {
	ledger := newFakeLedger(map[uint]decimal.Decimal{1: dec("1000")})
	svc := NewService(ledger)

	_, err := svc.Debit(context.Background(), 1, dec("300"), func(tx repositories.Ledger) error {
		return fmt.Errorf("audit insert failed")
	})
	require.Error(t, err)

	balance, err := ledger.GetBalance(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("1000")), "debit must roll back with its audit row")
}

func TestWalletService_Credit(t *testing.T) {
	ledger := newFakeLedger(map[uint]decimal.Decimal{1: dec("50")})
	svc := NewService(ledger)

	balance, err := svc.Credit(context.Background(), 1, dec("100"), nil)
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("150")))

	_, err = svc.Credit(context.Background(), 1, decimal.Zero, nil)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestWalletService_Transfer(t *testing.T) {
	t.Run("conservation on success", func(t *testing.T) {
		ledger := newFakeLedger(map[uint]decimal.Decimal{1: dec("500"), 2: dec("20")})
		svc := NewService(ledger)

		result, err := svc.Transfer(context.Background(), 1, 2, dec("120.50"), nil)
		require.NoError(t, err)
		assert.True(t, result.FromBalance.Equal(dec("379.50")))
		assert.True(t, result.ToBalance.Equal(dec("140.50")))
	})

	t.Run("insufficient funds leaves both untouched", func(t *testing.T) {
		ledger := newFakeLedger(map[uint]decimal.Decimal{1: dec("50"), 2: dec("20")})
		svc := NewService(ledger)

		_, err := svc.Transfer(context.Background(), 1, 2, dec("100"), nil)
		assert.ErrorIs(t, err, ErrInsufficientBalance)

		from, _ := ledger.GetBalance(context.Background(), 1)
		to, _ := ledger.GetBalance(context.Background(), 2)
		assert.True(t, from.Equal(dec("50")))
		assert.True(t, to.Equal(dec("20")))
	})

	t.Run("missing receiver rolls back the debit", func(t *testing.T) {
		ledger := newFakeLedger(map[uint]decimal.Decimal{1: dec("500")})
		svc := NewService(ledger)

		_, err := svc.Transfer(context.Background(), 1, 99, dec("100"), nil)
		assert.ErrorIs(t, err, ErrUserNotFound)

		from, _ := ledger.GetBalance(context.Background(), 1)
		assert.True(t, from.Equal(dec("500")), "no partial state may be visible")
	})

	t.Run("self transfer rejected", func(t *testing.T) {
		ledger := newFakeLedger(map[uint]decimal.Decimal{1: dec("500")})
		svc := NewService(ledger)

		_, err := svc.Transfer(context.Background(), 1, 1, dec("100"), nil)
		assert.ErrorIs(t, err, ErrSelfTransfer)
	})
}

// N concurrent debits of the full balance must produce exactly one success
// and N-1 insufficient-funds failures, and the balance must never go
// negative.
func TestWalletService_ConcurrentDebits(t *testing.T) {
	const workers = 16
	amount := dec("1000")
	ledger := newFakeLedger(map[uint]decimal.Decimal{1: amount})
	svc := NewService(ledger)

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Debit(context.Background(), 1, amount, nil)
		}(i)
	}
	wg.Wait()

	var successes, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case assert.ErrorIs(t, err, ErrInsufficientBalance):
			insufficient++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, insufficient)

	balance, err := ledger.GetBalance(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.Zero))
	assert.False(t, balance.IsNegative())
}
