// Package cart owns the single active cart per user and its line items.
package cart

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Iam-Iftekhar/animerch/internal/domain"
	"github.com/Iam-Iftekhar/animerch/pkg/common"
)

// ErrSelfPurchase marks a seller adding their own listing. The web layer
// turns it into a silent redirect, not a user-visible error.
var ErrSelfPurchase = errors.New("sellers can not buy their own product")

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// GetOrCreate returns the user's cart, creating it lazily on first access.
func (s *Service) GetOrCreate(ctx context.Context, userID int64) (*domain.Cart, error) {
	var cart domain.Cart
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(err, "query cart")
	}

	cart = domain.Cart{ID: common.UUIDint64(), UserID: userID}
	if err := s.db.WithContext(ctx).Create(&cart).Error; err != nil {
		// unique user_id index: a concurrent first access won, re-fetch
		var existing domain.Cart
		if ferr := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&existing).Error; ferr == nil {
			return &existing, nil
		}
		return nil, errors.Wrap(err, "create cart")
	}
	return &cart, nil
}

// View is the cart page payload: items ordered by insertion with products
// preloaded, plus the total at current prices.
type View struct {
	Cart       *domain.Cart      `json:"cart"`
	Items      []domain.CartItem `json:"items"`
	TotalPrice float64           `json:"total_price"`
}

func (s *Service) GetView(ctx context.Context, userID int64) (*View, error) {
	cart, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	var items []domain.CartItem
	if err := s.db.WithContext(ctx).
		Preload("Product").
		Where("cart_id = ?", cart.ID).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, errors.Wrap(err, "query cart items")
	}

	var total float64
	for _, item := range items {
		if item.Product != nil {
			total += item.Product.Price * float64(item.Quantity)
		}
	}
	return &View{Cart: cart, Items: items, TotalPrice: total}, nil
}

// AddItem puts one unit of the product into the user's cart. Adding an
// already-present product increments its quantity; a seller adding their
// own listing is rejected with ErrSelfPurchase.
func (s *Service) AddItem(ctx context.Context, userID, productID int64) error {
	var product domain.Product
	err := s.db.WithContext(ctx).Where("id = ?", productID).First(&product).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case err != nil:
		return errors.Wrap(err, "query product")
	}

	if product.SellerID == userID {
		zap.L().Info("self purchase ignored",
			zap.Int64("user_id", userID),
			zap.Int64("product_id", productID))
		return ErrSelfPurchase
	}

	cart, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}

	var item domain.CartItem
	err = s.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cart.ID, productID).
		First(&item).Error
	switch {
	case err == nil:
		return s.db.WithContext(ctx).Model(&domain.CartItem{}).
			Where("id = ?", item.ID).
			Updates(map[string]interface{}{
				"quantity":   gorm.Expr("quantity + 1"),
				"updated_at": time.Now(),
			}).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = domain.CartItem{
			ID:        common.UUIDint64(),
			CartID:    cart.ID,
			ProductID: productID,
			Quantity:  1,
		}
		if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
			return errors.Wrap(err, "create cart item")
		}
		return nil
	default:
		return errors.Wrap(err, "query cart item")
	}
}

// RemoveItem deletes a line from the caller's own cart. The delete is
// scoped to the caller so an item id alone can not remove another user's
// line.
func (s *Service) RemoveItem(ctx context.Context, userID, itemID int64) error {
	cart, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).
		Where("id = ? AND cart_id = ?", itemID, cart.ID).
		Delete(&domain.CartItem{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete cart item")
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
