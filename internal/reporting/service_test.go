package reporting

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Iam-Iftekhar/animerch/internal/domain"
	"github.com/Iam-Iftekhar/animerch/pkg/common"
)

func testService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))
	return NewService(db)
}

func seedProduct(t *testing.T, db *gorm.DB, sellerID int64, title string, price float64) *domain.Product {
	t.Helper()
	p := &domain.Product{
		ID:       common.UUIDint64(),
		SellerID: sellerID,
		Title:    title,
		Price:    price,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func seedSale(t *testing.T, db *gorm.DB, productID int64, qty int, price float64) {
	t.Helper()
	orderID := common.UUIDint64()
	require.NoError(t, db.Create(&domain.Order{
		ID:         orderID,
		UserID:     common.UUIDint64(),
		TotalPrice: price * float64(qty),
		Status:     domain.OrderStatusPending,
	}).Error)
	require.NoError(t, db.Create(&domain.OrderItem{
		ID:        common.UUIDint64(),
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  qty,
		Price:     price,
	}).Error)
}

func TestSellerStatsEmpty(t *testing.T) {
	svc := testService(t)

	out, err := svc.SellerStats(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, out.Products)
	assert.Zero(t, out.TotalUnits)
	assert.Zero(t, out.TotalRevenue)
	assert.Empty(t, out.TopProducts)
}

func TestSellerStatsUsesHistoricalPrices(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	p := seedProduct(t, svc.db, 1, "figure", 10.00)
	seedSale(t, svc.db, p.ID, 2, 10.00)

	// Price raised after the sale; revenue must stay at the captured price.
	require.NoError(t, svc.db.Model(&domain.Product{}).Where("id = ?", p.ID).
		Update("price", 50.00).Error)

	out, err := svc.SellerStats(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, out.TotalUnits)
	assert.InDelta(t, 20.00, out.TotalRevenue, 0.001)
}

func TestSellerStatsScopedToSeller(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	mine := seedProduct(t, svc.db, 1, "mine", 10.00)
	other := seedProduct(t, svc.db, 2, "other", 99.00)
	seedSale(t, svc.db, mine.ID, 1, 10.00)
	seedSale(t, svc.db, other.ID, 5, 99.00)

	out, err := svc.SellerStats(ctx, 1)
	require.NoError(t, err)
	require.Len(t, out.Products, 1)
	assert.EqualValues(t, 1, out.TotalUnits)
	assert.InDelta(t, 10.00, out.TotalRevenue, 0.001)
}

func TestTopProductsRanking(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	a := seedProduct(t, svc.db, 1, "a", 1)
	b := seedProduct(t, svc.db, 1, "b", 1)
	c := seedProduct(t, svc.db, 1, "c", 1)
	d := seedProduct(t, svc.db, 1, "d", 1)

	seedSale(t, svc.db, a.ID, 5, 1)
	seedSale(t, svc.db, b.ID, 3, 1)
	seedSale(t, svc.db, c.ID, 2, 1)
	seedSale(t, svc.db, d.ID, 1, 1)

	out, err := svc.SellerStats(ctx, 1)
	require.NoError(t, err)
	require.Len(t, out.TopProducts, 3)
	assert.Equal(t, "a", out.TopProducts[0].Title)
	assert.EqualValues(t, 5, out.TopProducts[0].UnitsSold)
	assert.Equal(t, "b", out.TopProducts[1].Title)
	assert.Equal(t, "c", out.TopProducts[2].Title)
}

func TestLineValueStats(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	p := seedProduct(t, svc.db, 1, "p", 1)
	seedSale(t, svc.db, p.ID, 1, 10.00) // line 10
	seedSale(t, svc.db, p.ID, 2, 10.00) // line 20
	seedSale(t, svc.db, p.ID, 3, 10.00) // line 30

	out, err := svc.SellerStats(ctx, 1)
	require.NoError(t, err)
	assert.InDelta(t, 20.00, out.AvgLineValue, 0.001)
	assert.InDelta(t, 20.00, out.MedianLineValue, 0.001)
}

func TestExportSalesCSV(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	p := seedProduct(t, svc.db, 1, "figure", 10.00)
	seedSale(t, svc.db, p.ID, 2, 10.00)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportSalesCSV(ctx, 1, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "order_id")
	assert.Contains(t, lines[0], "subtotal")
	assert.Contains(t, lines[1], "figure")
	assert.Contains(t, lines[1], "20")
}

func TestExportSalesCSVEmpty(t *testing.T) {
	svc := testService(t)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportSalesCSV(context.Background(), 1, &buf))
	assert.Contains(t, buf.String(), "order_id")
}
