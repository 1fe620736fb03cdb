// Package order converts carts into immutable order records.
package order

import (
	"context"
	"time"

	"github.com/araddon/dateparse"
	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Iam-Iftekhar/animerch/internal/domain"
	"github.com/Iam-Iftekhar/animerch/pkg/common"
	"github.com/Iam-Iftekhar/animerch/pkg/metrics"
)

// ErrEmptyCart marks checkout with nothing to buy; the web layer redirects
// back to the cart instead of failing hard.
var ErrEmptyCart = errors.New("cart is empty")

// TopicOrderCreated is published on the application bus after an order
// commits. Subscribers (mail, audit) run outside the transaction.
const TopicOrderCreated = "order.created"

// CreatedEvent is the payload for TopicOrderCreated.
type CreatedEvent struct {
	OrderID    int64
	UserID     int64
	TotalPrice float64
	ItemCount  int
	PlacedAt   time.Time
}

type Service struct {
	db  *gorm.DB
	bus EventBus.Bus
}

func NewService(db *gorm.DB, bus EventBus.Bus) *Service {
	return &Service{db: db, bus: bus}
}

// Place moves the user's cart into a new Pending order in one transaction:
// the order and its items are created from the cart contents at the instant
// of the locked read, and the cart lines are removed in the same commit.
// Either both happen or neither does.
func (s *Service) Place(ctx context.Context, userID int64) (*domain.Order, error) {
	var placed *domain.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the cart row so two concurrent submits serialize; the
		// second one then observes an empty cart. SQLite used in tests
		// has no FOR UPDATE and locks the whole database instead.
		cartQuery := tx.Where("user_id = ?", userID)
		if tx.Name() == "postgres" {
			cartQuery = cartQuery.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var cart domain.Cart
		err := cartQuery.First(&cart).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrEmptyCart
		case err != nil:
			return errors.Wrap(err, "query cart")
		}

		var items []domain.CartItem
		if err := tx.Preload("Product").
			Where("cart_id = ?", cart.ID).
			Order("created_at ASC").
			Find(&items).Error; err != nil {
			return errors.Wrap(err, "query cart items")
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		var total float64
		for _, item := range items {
			if item.Product == nil {
				return errors.Errorf("cart item %d references missing product %d", item.ID, item.ProductID)
			}
			total += item.Product.Price * float64(item.Quantity)
		}

		now := time.Now()
		ord := &domain.Order{
			ID:         common.UUIDint64(),
			UserID:     userID,
			TotalPrice: total,
			Status:     domain.OrderStatusPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := tx.Create(ord).Error; err != nil {
			return errors.Wrap(err, "create order")
		}

		orderItems := make([]domain.OrderItem, 0, len(items))
		for _, item := range items {
			orderItems = append(orderItems, domain.OrderItem{
				ID:        common.UUIDint64(),
				OrderID:   ord.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				// price captured permanently; later product edits must
				// not change order history
				Price:     item.Product.Price,
				CreatedAt: now,
			})
		}
		if err := tx.Create(&orderItems).Error; err != nil {
			return errors.Wrap(err, "create order items")
		}

		if err := tx.Where("cart_id = ?", cart.ID).Delete(&domain.CartItem{}).Error; err != nil {
			return errors.Wrap(err, "clear cart")
		}

		ord.Items = orderItems
		placed = ord
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("order placed",
		zap.Int64("order_id", placed.ID),
		zap.Int64("user_id", userID),
		zap.Float64("total", placed.TotalPrice),
		zap.Int("items", len(placed.Items)))
	metrics.Incr("orders_placed")

	if s.bus != nil {
		s.bus.Publish(TopicOrderCreated, CreatedEvent{
			OrderID:    placed.ID,
			UserID:     userID,
			TotalPrice: placed.TotalPrice,
			ItemCount:  len(placed.Items),
			PlacedAt:   placed.CreatedAt,
		})
	}
	return placed, nil
}

// ListByUser returns the user's orders newest first. The from/to bounds
// accept most date spellings and are ignored when empty or unparseable.
func (s *Service) ListByUser(ctx context.Context, userID int64, from, to string) ([]domain.Order, error) {
	q := s.db.WithContext(ctx).Preload("Items").Where("user_id = ?", userID)
	if from != "" {
		if t, err := dateparse.ParseAny(from); err == nil {
			q = q.Where("created_at >= ?", t)
		}
	}
	if to != "" {
		if t, err := dateparse.ParseAny(to); err == nil {
			q = q.Where("created_at <= ?", t)
		}
	}
	var rows []domain.Order
	err := q.Order("created_at DESC").Find(&rows).Error
	return rows, err
}

// Recent returns the user's latest limit orders for the profile page.
func (s *Service) Recent(ctx context.Context, userID int64, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 5
	}
	var rows []domain.Order
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// Get returns one order with items, restricted to its owner.
func (s *Service) Get(ctx context.Context, userID, orderID int64) (*domain.Order, error) {
	var ord domain.Order
	err := s.db.WithContext(ctx).Preload("Items.Product").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&ord).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, domain.ErrNotFound
	case err != nil:
		return nil, errors.Wrap(err, "query order")
	}
	return &ord, nil
}
