package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string
type PaymentMethod string

const (
	OrderStatusPending    OrderStatus = "pending"    // Order placed, awaiting processing
	OrderStatusProcessing OrderStatus = "processing" // Being prepared for shipment
	OrderStatusShipped    OrderStatus = "shipped"    // On its way
	OrderStatusDelivered  OrderStatus = "delivered"  // Customer received it
	OrderStatusCancelled  OrderStatus = "cancelled"  // Cancelled before shipping

	PaymentMethodCOD  PaymentMethod = "cod"  // Cash on delivery, flat shipping fee
	PaymentMethodCard PaymentMethod = "card" // Card, free shipping
)

type Order struct {
	ID                    string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OrderNumber           string          `gorm:"uniqueIndex;not null" json:"order_number"`
	UserID                *string         `gorm:"index" json:"user_id"`
	Email                 string          `gorm:"not null" json:"email"`
	FullName              string          `gorm:"not null" json:"full_name"`
	Phone                 string          `gorm:"not null" json:"phone"`
	Address               string          `gorm:"not null" json:"address"`
	City                  string          `gorm:"not null" json:"city"`
	PostalCode            string          `gorm:"not null" json:"postal_code"`
	PaymentMethod         PaymentMethod   `gorm:"type:varchar(20);not null" json:"payment_method"`
	Notes                 *string         `json:"notes"`
	Subtotal              decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"subtotal"`
	ShippingCost          decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"shipping_cost"`
	Total                 decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total"`
	Status                OrderStatus     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	TrackingNumber        *string         `json:"tracking_number"`
	EstimatedDeliveryDate *time.Time      `json:"estimated_delivery_date"`
	Items                 []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// BeforeCreate assigns the opaque order id.
func (o *Order) BeforeCreate(_ *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// OrderItem is a frozen copy of a cart line at submission time.
type OrderItem struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	OrderID      string          `gorm:"type:varchar(36);index;not null" json:"order_id"`
	ProductID    uint            `gorm:"not null" json:"product_id"`
	ProductName  string          `gorm:"not null" json:"product_name"`
	ProductImage string          `json:"product_image"`
	Price        decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	Total        decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total"`
}

// OrderStatusHistory records every status an order entered, with when and why.
type OrderStatusHistory struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	OrderID   string      `gorm:"type:varchar(36);index;not null" json:"order_id"`
	Status    OrderStatus `gorm:"type:varchar(20);not null" json:"status"`
	Notes     string      `json:"notes"`
	CreatedAt time.Time   `json:"created_at"`
}

func (OrderStatusHistory) TableName() string {
	return "order_status_history"
}

// OrderNumberCounter holds the last sequence handed out for one calendar day.
type OrderNumberCounter struct {
	Day       string `gorm:"primaryKey;type:varchar(8)"`
	LastValue int    `gorm:"not null"`
}
