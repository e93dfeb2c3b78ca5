package purchase

import (
	"context"
	"fmt"
	"testing"

	"kredo/internal/models"
	"kredo/internal/repositories"
	"kredo/internal/services/catalog"
	"kredo/internal/services/wallet"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeLedger implements the subset of repositories.Ledger purchases touch;
// the embedded interface nil-panics on anything else.
type fakeLedger struct {
	repositories.Ledger
	balances map[uint]decimal.Decimal
	orders   []models.Order
}

func (f *fakeLedger) ExecuteInTransaction(_ context.Context, fn func(tx repositories.Ledger) error) error {
	snapshot := make(map[uint]decimal.Decimal, len(f.balances))
	for id, b := range f.balances {
		snapshot[id] = b
	}
	ordersLen := len(f.orders)
	if err := fn(f); err != nil {
		f.balances = snapshot
		f.orders = f.orders[:ordersLen]
		return err
	}
	return nil
}

func (f *fakeLedger) DebitBalance(_ context.Context, userID uint, amount decimal.Decimal) (decimal.Decimal, error) {
	balance, ok := f.balances[userID]
	if !ok {
		return decimal.Zero, repositories.ErrUserNotFound
	}
	if balance.LessThan(amount) {
		return decimal.Zero, fmt.Errorf("%w: have %s, need %s", repositories.ErrInsufficientBalance, balance, amount)
	}
	f.balances[userID] = balance.Sub(amount)
	return f.balances[userID], nil
}

func (f *fakeLedger) GetBalance(_ context.Context, userID uint) (decimal.Decimal, error) {
	balance, ok := f.balances[userID]
	if !ok {
		return decimal.Zero, repositories.ErrUserNotFound
	}
	return balance, nil
}

func (f *fakeLedger) CreateOrder(_ context.Context, order *models.Order) error {
	order.ID = uint(len(f.orders) + 1)
	f.orders = append(f.orders, *order)
	return nil
}

func (f *fakeLedger) ListOrdersByBuyer(_ context.Context, buyerID uint, _, _ int) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.orders {
		if o.BuyerID == buyerID {
			out = append(out, o)
		}
	}
	return out, nil
}

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) GetProduct(ctx context.Context, productID uint) (*catalog.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestService(balances map[uint]decimal.Decimal, cat *mockCatalog) (Service, *fakeLedger) {
	ledger := &fakeLedger{balances: balances}
	return NewService(wallet.NewService(ledger), cat, ledger), ledger
}

func TestPurchase_Success(t *testing.T) {
	cat := new(mockCatalog)
	// 200 with 25% off = 150 per unit, times 2 = 300.
	cat.On("GetProduct", mock.Anything, uint(10)).Return(&catalog.Product{
		ID:              10,
		Price:           dec("200"),
		DiscountPercent: dec("25"),
		Stock:           5,
	}, nil)

	svc, ledger := newTestService(map[uint]decimal.Decimal{1: dec("1000")}, cat)

	result, err := svc.Purchase(context.Background(), 1, 10, 2)
	require.NoError(t, err)
	assert.True(t, result.Order.TotalAmount.Equal(dec("300")), "got %s", result.Order.TotalAmount)
	assert.True(t, result.NewBalance.Equal(dec("700")), "got %s", result.NewBalance)
	assert.Equal(t, uint(1), result.Order.BuyerID)
	assert.Equal(t, 2, result.Order.Quantity)
	assert.NotEmpty(t, result.Order.Reference)
	assert.Len(t, ledger.orders, 1)

	cat.AssertExpectations(t)
}

func TestPurchase_InsufficientFundsLeavesNoTrace(t *testing.T) {
	cat := new(mockCatalog)
	cat.On("GetProduct", mock.Anything, uint(10)).Return(&catalog.Product{
		ID:    10,
		Price: dec("500"),
		Stock: 5,
	}, nil)

	svc, ledger := newTestService(map[uint]decimal.Decimal{1: dec("100")}, cat)

	_, err := svc.Purchase(context.Background(), 1, 10, 1)
	assert.ErrorIs(t, err, wallet.ErrInsufficientBalance)
	assert.Contains(t, err.Error(), "have 100, need 500")

	assert.Empty(t, ledger.orders, "no order row may exist for a failed purchase")
	assert.True(t, ledger.balances[1].Equal(dec("100")), "balance must be unchanged")
}

func TestPurchase_ProductNotFound(t *testing.T) {
	cat := new(mockCatalog)
	cat.On("GetProduct", mock.Anything, uint(99)).Return(nil, catalog.ErrProductNotFound)

	svc, ledger := newTestService(map[uint]decimal.Decimal{1: dec("100")}, cat)

	_, err := svc.Purchase(context.Background(), 1, 99, 1)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
	assert.True(t, ledger.balances[1].Equal(dec("100")))
}

func TestPurchase_CatalogUnavailable(t *testing.T) {
	cat := new(mockCatalog)
	cat.On("GetProduct", mock.Anything, uint(10)).Return(nil, catalog.ErrCatalogUnavailable)

	svc, _ := newTestService(map[uint]decimal.Decimal{1: dec("100")}, cat)

	_, err := svc.Purchase(context.Background(), 1, 10, 1)
	assert.ErrorIs(t, err, catalog.ErrCatalogUnavailable)
}

func TestPurchase_Validation(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		stock    int
		wantErr  error
	}{
		{name: "zero quantity", quantity: 0, stock: 5, wantErr: ErrInvalidQuantity},
		{name: "negative quantity", quantity: -1, stock: 5, wantErr: ErrInvalidQuantity},
		{name: "over stock", quantity: 6, stock: 5, wantErr: ErrInsufficientStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := new(mockCatalog)
			cat.On("GetProduct", mock.Anything, uint(10)).Return(&catalog.Product{
				ID:    10,
				Price: dec("10"),
				Stock: tt.stock,
			}, nil).Maybe()

			svc, _ := newTestService(map[uint]decimal.Decimal{1: dec("1000")}, cat)

			_, err := svc.Purchase(context.Background(), 1, 10, tt.quantity)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPurchase_FreeProduct(t *testing.T) {
	cat := new(mockCatalog)
	// 100% off totals zero: the order is recorded without any debit.
	cat.On("GetProduct", mock.Anything, uint(10)).Return(&catalog.Product{
		ID:              10,
		Price:           dec("200"),
		DiscountPercent: dec("100"),
		Stock:           5,
	}, nil)

	svc, ledger := newTestService(map[uint]decimal.Decimal{1: dec("100")}, cat)

	result, err := svc.Purchase(context.Background(), 1, 10, 1)
	require.NoError(t, err)
	assert.True(t, result.Order.TotalAmount.IsZero())
	assert.True(t, result.NewBalance.Equal(dec("100")), "balance must be unchanged")
	assert.Len(t, ledger.orders, 1)
}

func TestPurchase_PriceFixedAtCreation(t *testing.T) {
	cat := new(mockCatalog)
	cat.On("GetProduct", mock.Anything, uint(10)).Return(&catalog.Product{
		ID:    10,
		Price: dec("19.99"),
		Stock: 10,
	}, nil)

	svc, _ := newTestService(map[uint]decimal.Decimal{1: dec("100")}, cat)

	result, err := svc.Purchase(context.Background(), 1, 10, 3)
	require.NoError(t, err)
	assert.True(t, result.Order.TotalAmount.Equal(dec("59.97")))

	orders, err := svc.ListOrders(context.Background(), 1, 20, 0)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.True(t, orders[0].TotalAmount.Equal(dec("59.97")))
}
