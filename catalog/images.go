package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/junaidrashid-git/pawshop-api/models"
	"gorm.io/gorm"
)

// NormalizePrimary makes exactly one image primary when there are any: the first one
// already flagged, or else the first image.
func NormalizePrimary(images []models.ProductImage) []models.ProductImage {
	primary := -1
	for i := range images {
		if images[i].IsPrimary {
			primary = i
			break
		}
	}
	if primary < 0 && len(images) > 0 {
		primary = 0
	}
	for i := range images {
		images[i].IsPrimary = i == primary
	}
	return images
}

// ListImages returns a product's gallery ordered by display order.
func (s *Service) ListImages(ctx context.Context, productID uint) ([]models.ProductImage, error) {
	var out []models.ProductImage
	if err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("display_order ASC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list product images: %w", err)
	}
	return NormalizePrimary(out), nil
}

// AddImage uploads body and appends it to the gallery. The first image of a product
// becomes its primary image.
func (s *Service) AddImage(ctx context.Context, productID uint, filename, contentType string, body io.Reader) (*models.ProductImage, error) {
	if _, err := s.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	url, err := s.images.Put(ctx, filename, contentType, body)
	if err != nil {
		return nil, fmt.Errorf("upload product image: %w", err)
	}

	img := models.ProductImage{ID: uuid.NewString(), ProductID: productID, ImageURL: url}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.ProductImage{}).Where("product_id = ?", productID).Count(&count).Error; err != nil {
			return err
		}
		img.DisplayOrder = int(count)
		img.IsPrimary = count == 0
		return tx.Create(&img).Error
	})
	if err != nil {
		s.removeFile(ctx, url)
		return nil, fmt.Errorf("save product image: %w", err)
	}
	return &img, nil
}

// DeleteImage removes an image. When it was the primary one, the next image in display
// order takes over.
func (s *Service) DeleteImage(ctx context.Context, imageID string) error {
	var img models.ProductImage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&img, "id = ?", imageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrImageNotFound
			}
			return err
		}
		if err := tx.Delete(&img).Error; err != nil {
			return err
		}
		if !img.IsPrimary {
			return nil
		}
		var next models.ProductImage
		err := tx.Where("product_id = ?", img.ProductID).Order("display_order ASC, created_at ASC").First(&next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Model(&next).Update("is_primary", true).Error
	})
	if err != nil {
		return err
	}
	s.removeFile(ctx, img.ImageURL)
	return nil
}

// ReorderImage moves an image to displayOrder.
func (s *Service) ReorderImage(ctx context.Context, imageID string, displayOrder int) error {
	if displayOrder < 0 {
		return fmt.Errorf("%w: display_order must not be negative", ErrInvalidProduct)
	}
	res := s.db.WithContext(ctx).Model(&models.ProductImage{}).Where("id = ?", imageID).Update("display_order", displayOrder)
	if res.Error != nil {
		return fmt.Errorf("reorder product image: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrImageNotFound
	}
	return nil
}

// SetPrimary flags imageID as its product's only primary image.
func (s *Service) SetPrimary(ctx context.Context, imageID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var img models.ProductImage
		if err := tx.First(&img, "id = ?", imageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrImageNotFound
			}
			return err
		}
		if err := tx.Model(&models.ProductImage{}).Where("product_id = ?", img.ProductID).Update("is_primary", false).Error; err != nil {
			return err
		}
		return tx.Model(&img).Update("is_primary", true).Error
	})
}
