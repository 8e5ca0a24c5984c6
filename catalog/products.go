// Package catalog reads and administers products and their image galleries.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/junaidrashid-git/pawshop-api/models"
	"github.com/junaidrashid-git/pawshop-api/storage"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AllCategories is the pseudo category that disables filtering.
const AllCategories = "All"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrImageNotFound   = errors.New("image not found")
	ErrInvalidProduct  = errors.New("invalid product")
)

type Service struct {
	db     *gorm.DB
	images storage.ImageStore
	logger *zap.Logger
}

func NewService(db *gorm.DB, images storage.ImageStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, images: images, logger: logger}
}

// ListProducts returns the products of category ordered by id. An empty category or
// AllCategories returns everything.
func (s *Service) ListProducts(ctx context.Context, category string) ([]models.Product, error) {
	q := s.db.WithContext(ctx).Order("id ASC")
	if category = strings.TrimSpace(category); category != "" && category != AllCategories {
		q = q.Where("category = ?", category)
	}
	var out []models.Product
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}

func (s *Service) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("load product %d: %w", id, err)
	}
	return &p, nil
}

// Categories lists AllCategories followed by every category in use, alphabetically.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	var names []string
	if err := s.db.WithContext(ctx).
		Model(&models.Product{}).
		Distinct().
		Order("category ASC").
		Pluck("category", &names).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return append([]string{AllCategories}, names...), nil
}

// ProductInput is the editable part of a product.
type ProductInput struct {
	Name          string              `json:"name"`
	Description   string              `json:"description"`
	Price         decimal.Decimal     `json:"price"`
	OriginalPrice decimal.NullDecimal `json:"original_price"`
	Image         string              `json:"image"`
	Category      string              `json:"category"`
	Rating        float64             `json:"rating"`
	Reviews       int                 `json:"reviews"`
	Featured      bool                `json:"featured"`
	InStock       bool                `json:"in_stock"`
	StockQuantity int                 `json:"stock_quantity"`
}

func (in ProductInput) Validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	case strings.TrimSpace(in.Category) == "" || in.Category == AllCategories:
		return fmt.Errorf("%w: category is required", ErrInvalidProduct)
	case in.Price.IsNegative():
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	case in.OriginalPrice.Valid && in.OriginalPrice.Decimal.IsNegative():
		return fmt.Errorf("%w: original_price must not be negative", ErrInvalidProduct)
	case in.Rating < 0 || in.Rating > 5:
		return fmt.Errorf("%w: rating must be between 0 and 5", ErrInvalidProduct)
	case in.Reviews < 0 || in.StockQuantity < 0:
		return fmt.Errorf("%w: counts must not be negative", ErrInvalidProduct)
	}
	return nil
}

func (in ProductInput) apply(p *models.Product) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Price = in.Price
	p.OriginalPrice = in.OriginalPrice
	p.Image = in.Image
	p.Category = strings.TrimSpace(in.Category)
	p.Rating = in.Rating
	p.Reviews = in.Reviews
	p.Featured = in.Featured
	p.InStock = in.InStock
	p.StockQuantity = in.StockQuantity
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var p models.Product
	in.apply(&p)
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return &p, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(p)
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}
	return p, nil
}

// DeleteProduct soft-deletes the product and drops its gallery rows. Past orders keep
// their frozen copy of the product.
func (s *Service) DeleteProduct(ctx context.Context, id uint) error {
	var gallery []models.ProductImage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.First(&p, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		if err := tx.Where("product_id = ?", id).Find(&gallery).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&p).Error
	})
	if err != nil {
		return err
	}
	for _, img := range gallery {
		s.removeFile(ctx, img.ImageURL)
	}
	return nil
}

func (s *Service) removeFile(ctx context.Context, url string) {
	if s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, url); err != nil && !errors.Is(err, storage.ErrForeignURL) {
		s.logger.Warn("product image file not removed", zap.String("url", url), zap.Error(err))
	}
}
