// Package reporting aggregates seller sales from order history.
package reporting

import (
	"context"
	"io"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
	"gorm.io/gorm"

	"github.com/Iam-Iftekhar/animerch/internal/domain"
)

type Service struct {
	db      *gorm.DB
	printer *message.Printer
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, printer: message.NewPrinter(language.English)}
}

// TopProduct is one row of the top-sellers ranking.
type TopProduct struct {
	ProductID int64  `json:"product_id,string"`
	Title     string `json:"title"`
	UnitsSold int64  `json:"units_sold"`
}

// SellerStats is the seller dashboard payload. Revenue sums the prices
// captured on order items, not current product prices.
type SellerStats struct {
	Products        []domain.Product `json:"products"`
	TotalUnits      int64            `json:"total_units"`
	TotalRevenue    float64          `json:"total_revenue"`
	RevenueDisplay  string           `json:"revenue_display"`
	TopProducts     []TopProduct     `json:"top_products"`
	AvgLineValue    float64          `json:"avg_line_value"`
	MedianLineValue float64          `json:"median_line_value"`
}

// SellerStats aggregates units, historical revenue and the top-3 products
// by units sold for one seller. Ties rank by product id, a stable
// implementation-defined order.
func (s *Service) SellerStats(ctx context.Context, sellerID int64) (*SellerStats, error) {
	out := &SellerStats{}

	if err := s.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&out.Products).Error; err != nil {
		return nil, errors.Wrap(err, "query seller products")
	}

	row := struct {
		Units   int64
		Revenue float64
	}{}
	if err := s.db.WithContext(ctx).Model(&domain.OrderItem{}).
		Select("COALESCE(SUM(order_items.quantity), 0) AS units, COALESCE(SUM(order_items.price * order_items.quantity), 0) AS revenue").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("products.seller_id = ?", sellerID).
		Scan(&row).Error; err != nil {
		return nil, errors.Wrap(err, "aggregate sales")
	}
	out.TotalUnits = row.Units
	out.TotalRevenue = row.Revenue
	out.RevenueDisplay = s.printer.Sprintf("$%v", number.Decimal(row.Revenue, number.Scale(2)))

	if err := s.db.WithContext(ctx).Model(&domain.OrderItem{}).
		Select("products.id AS product_id, products.title AS title, SUM(order_items.quantity) AS units_sold").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("products.seller_id = ?", sellerID).
		Group("products.id, products.title").
		Order("units_sold DESC, products.id ASC").
		Limit(3).
		Scan(&out.TopProducts).Error; err != nil {
		return nil, errors.Wrap(err, "rank top products")
	}

	var lineValues []float64
	if err := s.db.WithContext(ctx).Model(&domain.OrderItem{}).
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("products.seller_id = ?", sellerID).
		Pluck("order_items.price * order_items.quantity", &lineValues).Error; err != nil {
		return nil, errors.Wrap(err, "query line values")
	}
	if len(lineValues) > 0 {
		out.AvgLineValue, _ = stats.Mean(lineValues)
		out.MedianLineValue, _ = stats.Median(lineValues)
	}

	return out, nil
}

// SalesRow is one exported CSV line of a seller's sales.
type SalesRow struct {
	OrderID   int64     `csv:"order_id"`
	Product   string    `csv:"product"`
	Quantity  int       `csv:"quantity"`
	UnitPrice float64   `csv:"unit_price"`
	Subtotal  float64   `csv:"subtotal"`
	PlacedAt  time.Time `csv:"placed_at"`
}

// ExportSalesCSV streams the seller's sale lines as CSV.
func (s *Service) ExportSalesCSV(ctx context.Context, sellerID int64, w io.Writer) error {
	type saleLine struct {
		OrderID   int64
		Title     string
		Quantity  int
		Price     float64
		CreatedAt time.Time
	}
	var lines []saleLine
	if err := s.db.WithContext(ctx).Model(&domain.OrderItem{}).
		Select("order_items.order_id AS order_id, products.title AS title, order_items.quantity AS quantity, order_items.price AS price, order_items.created_at AS created_at").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("products.seller_id = ?", sellerID).
		Order("order_items.created_at DESC").
		Scan(&lines).Error; err != nil {
		return errors.Wrap(err, "query sale lines")
	}

	rows := make([]SalesRow, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, SalesRow{
			OrderID:   l.OrderID,
			Product:   l.Title,
			Quantity:  l.Quantity,
			UnitPrice: l.Price,
			Subtotal:  l.Price * float64(l.Quantity),
			PlacedAt:  l.CreatedAt,
		})
	}
	return gocsv.Marshal(rows, w)
}
