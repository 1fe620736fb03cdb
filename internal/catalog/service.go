// Package catalog owns product and category records.
package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Iam-Iftekhar/animerch/internal/domain"
	"github.com/Iam-Iftekhar/animerch/internal/identity"
	"github.com/Iam-Iftekhar/animerch/pkg/common"
)

var (
	ErrTitleRequired = errors.New("title is required")
	ErrBadPrice      = errors.New("price must not be negative")
	ErrBadStock      = errors.New("stock must not be negative")
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// FindOrCreateCategory resolves a category by name, creating it on first
// use. The unique index on name is the arbiter: a lost insert race is
// resolved by re-fetching instead of trusting a prior existence check.
func (s *Service) FindOrCreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("category name is required")
	}

	var cat domain.Category
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&cat).Error
	if err == nil {
		return &cat, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(err, "query category")
	}

	cat = domain.Category{ID: common.UUIDint64(), Name: name}
	if err := s.db.WithContext(ctx).Create(&cat).Error; err != nil {
		// unique violation: someone created it first, re-fetch
		var existing domain.Category
		if ferr := s.db.WithContext(ctx).Where("name = ?", name).First(&existing).Error; ferr == nil {
			return &existing, nil
		}
		return nil, errors.Wrap(err, "create category")
	}
	zap.L().Info("category created", zap.String("name", name))
	return &cat, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var cats []domain.Category
	err := s.db.WithContext(ctx).Order("name ASC").Find(&cats).Error
	return cats, err
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Product, error) {
	var rows []domain.Product
	err := s.db.WithContext(ctx).Preload("Category").Order("created_at DESC").Find(&rows).Error
	return rows, err
}

// ListByCategory returns the products belonging to the named category.
func (s *Service) ListByCategory(ctx context.Context, name string) ([]domain.Product, error) {
	var rows []domain.Product
	err := s.db.WithContext(ctx).
		Joins("JOIN categories ON categories.id = products.category_id").
		Where("categories.name = ?", name).
		Find(&rows).Error
	return rows, err
}

// ListBySeller returns exactly the products owned by sellerID.
func (s *Service) ListBySeller(ctx context.Context, sellerID int64) ([]domain.Product, error) {
	var rows []domain.Product
	err := s.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// ListRecent returns the newest limit products across all categories.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []domain.Product
	err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := s.db.WithContext(ctx).Preload("Category").Where("id = ?", id).First(&p).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, domain.ErrNotFound
	case err != nil:
		return nil, errors.Wrap(err, "query product")
	}
	return &p, nil
}

// CreateProductInput carries the listing form fields; Image is the stored
// upload reference, not raw bytes.
type CreateProductInput struct {
	Title        string
	Description  string
	Price        float64
	Stock        int
	CategoryName string
	Image        string
}

// Create adds a listing owned by the acting seller. Only sellers and
// admins may create.
func (s *Service) Create(ctx context.Context, in CreateProductInput, actor *identity.Identity) (*domain.Product, error) {
	if !actor.CanSell() {
		return nil, domain.ErrForbidden
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, ErrTitleRequired
	}
	if in.Price < 0 {
		return nil, ErrBadPrice
	}
	if in.Stock < 0 {
		return nil, ErrBadStock
	}

	cat, err := s.FindOrCreateCategory(ctx, in.CategoryName)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	p := &domain.Product{
		ID:          common.UUIDint64(),
		SellerID:    actor.UserID,
		CategoryID:  cat.ID,
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Image:       in.Image,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, errors.Wrap(err, "create product")
	}
	zap.L().Info("product created",
		zap.Int64("product_id", p.ID),
		zap.Int64("seller_id", actor.UserID),
		zap.String("title", p.Title))
	return p, nil
}

// Update edits a listing. Sellers may only edit their own; admins any.
func (s *Service) Update(ctx context.Context, id int64, in CreateProductInput, actor *identity.Identity) (*domain.Product, error) {
	if !actor.CanSell() {
		return nil, domain.ErrForbidden
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && p.SellerID != actor.UserID {
		return nil, domain.ErrForbidden
	}

	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, ErrTitleRequired
	}
	if in.Price < 0 {
		return nil, ErrBadPrice
	}
	if in.Stock < 0 {
		return nil, ErrBadStock
	}

	p.Title = in.Title
	p.Description = in.Description
	p.Price = in.Price
	p.Stock = in.Stock
	if in.CategoryName != "" {
		cat, err := s.FindOrCreateCategory(ctx, in.CategoryName)
		if err != nil {
			return nil, err
		}
		p.CategoryID = cat.ID
	}
	if in.Image != "" {
		p.Image = in.Image
	}
	p.UpdatedAt = time.Now()

	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, errors.Wrap(err, "update product")
	}
	return p, nil
}

// Delete removes a listing. A seller can not delete another seller's
// listing; an admin can delete any.
func (s *Service) Delete(ctx context.Context, id int64, actor *identity.Identity) error {
	if !actor.CanSell() {
		return domain.ErrForbidden
	}
	var p domain.Product
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case err != nil:
		return errors.Wrap(err, "query product")
	}
	if !actor.IsAdmin() && p.SellerID != actor.UserID {
		return domain.ErrForbidden
	}
	if err := s.db.WithContext(ctx).Delete(&domain.Product{}, p.ID).Error; err != nil {
		return errors.Wrap(err, "delete product")
	}
	zap.L().Info("product deleted",
		zap.Int64("product_id", p.ID),
		zap.Int64("actor_id", actor.UserID))
	return nil
}
