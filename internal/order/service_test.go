package order

import (
	"context"
	"testing"

	"github.com/asaskevich/EventBus"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Iam-Iftekhar/animerch/internal/cart"
	"github.com/Iam-Iftekhar/animerch/internal/domain"
	"github.com/Iam-Iftekhar/animerch/pkg/common"
)

type fixture struct {
	db     *gorm.DB
	orders *Service
	carts  *cart.Service
	bus    EventBus.Bus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))
	bus := EventBus.New()
	return &fixture{
		db:     db,
		orders: NewService(db, bus),
		carts:  cart.NewService(db),
		bus:    bus,
	}
}

func (f *fixture) seedProduct(t *testing.T, sellerID int64, price float64) *domain.Product {
	t.Helper()
	p := &domain.Product{
		ID:       common.UUIDint64(),
		SellerID: sellerID,
		Title:    "test product",
		Price:    price,
		Stock:    10,
	}
	require.NoError(t, f.db.Create(p).Error)
	return p
}

func TestPlaceOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.seedProduct(t, 1, 10.00)
	b := f.seedProduct(t, 1, 5.00)

	require.NoError(t, f.carts.AddItem(ctx, 42, a.ID))
	require.NoError(t, f.carts.AddItem(ctx, 42, a.ID))
	require.NoError(t, f.carts.AddItem(ctx, 42, b.ID))

	placed, err := f.orders.Place(ctx, 42)
	require.NoError(t, err)
	assert.InDelta(t, 25.00, placed.TotalPrice, 0.001)
	assert.Equal(t, domain.OrderStatusPending, placed.Status)
	require.Len(t, placed.Items, 2)

	// The cart is emptied in the same commit.
	view, err := f.carts.GetView(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestPlaceEmptyCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// No cart row at all.
	_, err := f.orders.Place(ctx, 42)
	assert.ErrorIs(t, err, ErrEmptyCart)

	// Cart exists but has no lines.
	_, err = f.carts.GetOrCreate(ctx, 42)
	require.NoError(t, err)
	_, err = f.orders.Place(ctx, 42)
	assert.ErrorIs(t, err, ErrEmptyCart)

	var count int64
	require.NoError(t, f.db.Model(&domain.Order{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestPriceCapturedAtPurchase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, 1, 10.00)

	require.NoError(t, f.carts.AddItem(ctx, 42, p.ID))
	placed, err := f.orders.Place(ctx, 42)
	require.NoError(t, err)

	// Later price edits must not leak into order history.
	require.NoError(t, f.db.Model(&domain.Product{}).Where("id = ?", p.ID).
		Update("price", 99.00).Error)

	got, err := f.orders.Get(ctx, 42, placed.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.InDelta(t, 10.00, got.Items[0].Price, 0.001)
	assert.InDelta(t, 10.00, got.TotalPrice, 0.001)
}

func TestPlacePublishesCreatedEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, 1, 7.00)

	var got CreatedEvent
	require.NoError(t, f.bus.Subscribe(TopicOrderCreated, func(evt CreatedEvent) {
		got = evt
	}))

	require.NoError(t, f.carts.AddItem(ctx, 42, p.ID))
	placed, err := f.orders.Place(ctx, 42)
	require.NoError(t, err)

	assert.Equal(t, placed.ID, got.OrderID)
	assert.EqualValues(t, 42, got.UserID)
	assert.InDelta(t, 7.00, got.TotalPrice, 0.001)
	assert.Equal(t, 1, got.ItemCount)
}

func TestGetIsOwnerScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, 1, 3.00)

	require.NoError(t, f.carts.AddItem(ctx, 42, p.ID))
	placed, err := f.orders.Place(ctx, 42)
	require.NoError(t, err)

	_, err = f.orders.Get(ctx, 99, placed.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := f.orders.Get(ctx, 42, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, placed.ID, got.ID)
}

func TestListByUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, 1, 3.00)

	require.NoError(t, f.carts.AddItem(ctx, 42, p.ID))
	_, err := f.orders.Place(ctx, 42)
	require.NoError(t, err)
	require.NoError(t, f.carts.AddItem(ctx, 42, p.ID))
	_, err = f.orders.Place(ctx, 42)
	require.NoError(t, err)

	rows, err := f.orders.ListByUser(ctx, 42, "", "")
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	// Bounds in the future exclude everything.
	none, err := f.orders.ListByUser(ctx, 42, "2099-01-01", "")
	require.NoError(t, err)
	assert.Empty(t, none)

	// Unparseable bounds are ignored rather than failing.
	all, err := f.orders.ListByUser(ctx, 42, "not-a-date", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	other, err := f.orders.ListByUser(ctx, 99, "", "")
	require.NoError(t, err)
	assert.Empty(t, other)
}
