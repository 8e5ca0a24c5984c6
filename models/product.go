package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is the catalog entity. The storefront only reads it; admin CRUD mutates it.
type Product struct {
	ID            uint                `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string              `gorm:"not null" json:"name"`
	Description   string              `json:"description"`
	Price         decimal.Decimal     `gorm:"type:numeric(10,2);not null" json:"price"`
	OriginalPrice decimal.NullDecimal `gorm:"type:numeric(10,2)" json:"original_price"` // shown struck-through when set
	Image         string              `json:"image"`
	Category      string              `gorm:"index;not null" json:"category"` // Dogs, Cats, Birds, Fish...
	Rating        float64             `json:"rating"`
	Reviews       int                 `json:"reviews"`
	Featured      bool                `json:"featured"`
	InStock       bool                `json:"in_stock"`
	StockQuantity int                 `json:"stock_quantity"`
	Images        []ProductImage      `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	DeletedAt     gorm.DeletedAt      `gorm:"index" json:"-"`
}

// ProductImage is one entry of a product's gallery.
type ProductImage struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ProductID    uint      `gorm:"index;not null" json:"product_id"`
	ImageURL     string    `gorm:"not null" json:"image_url"`
	DisplayOrder int       `gorm:"not null;default:0" json:"display_order"`
	IsPrimary    bool      `json:"is_primary"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
