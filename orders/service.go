// Package orders turns carts into orders and reconstructs their fulfillment progress.
package orders

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/junaidrashid-git/pawshop-api/cart"
	"github.com/junaidrashid-git/pawshop-api/events"
	"github.com/junaidrashid-git/pawshop-api/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultCODFee is the flat shipping charge for cash-on-delivery orders.
var DefaultCODFee = decimal.NewFromInt(5)

// CheckoutForm is the contact, shipping and payment data collected at checkout.
type CheckoutForm struct {
	Email         string               `json:"email"`
	FullName      string               `json:"full_name"`
	Phone         string               `json:"phone"`
	Address       string               `json:"address"`
	City          string               `json:"city"`
	PostalCode    string               `json:"postal_code"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	Notes         string               `json:"notes"`

	// UserID links the order to a signed-in customer; empty for guests.
	UserID string `json:"-"`
}

// Validate checks the required fields and the payment method.
func (f CheckoutForm) Validate() error {
	var verr ValidationError
	required := map[string]string{
		"email":       f.Email,
		"full_name":   f.FullName,
		"phone":       f.Phone,
		"address":     f.Address,
		"city":        f.City,
		"postal_code": f.PostalCode,
	}
	for field, v := range required {
		if strings.TrimSpace(v) == "" {
			verr.add(field, "is required")
		}
	}
	if _, ok := verr.Fields["email"]; !ok {
		if _, err := mail.ParseAddress(f.Email); err != nil {
			verr.add("email", "is not a valid address")
		}
	}
	switch f.PaymentMethod {
	case models.PaymentMethodCOD, models.PaymentMethodCard:
	default:
		verr.add("payment_method", "must be cod or card")
	}
	return verr.orNil()
}

// ShippingCost is fee for cash on delivery and zero otherwise.
func ShippingCost(method models.PaymentMethod, fee decimal.Decimal) decimal.Decimal {
	if method == models.PaymentMethodCOD {
		return fee
	}
	return decimal.Zero
}

// Service records orders and moves them through their status lifecycle.
type Service struct {
	db        *gorm.DB
	numbers   NumberAllocator
	publisher events.Publisher
	codFee    decimal.Decimal
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithCODFee overrides DefaultCODFee.
func WithCODFee(fee decimal.Decimal) Option {
	return func(s *Service) { s.codFee = fee }
}

// WithPublisher sends order events to p instead of dropping them.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService builds a Service that allocates order numbers from numbers.
func NewService(db *gorm.DB, numbers NumberAllocator, opts ...Option) *Service {
	s := &Service{
		db:        db,
		numbers:   numbers,
		publisher: events.Noop{},
		codFee:    DefaultCODFee,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrder records an order for items. subtotal must equal the sum of the line totals.
// The order, its items and the first history row are written in one transaction, so a
// failure leaves nothing behind. Taking the ordered lines out of the cart is left to the
// caller.
func (s *Service) CreateOrder(ctx context.Context, form CheckoutForm, items []cart.LineItem, subtotal decimal.Decimal) (*models.Order, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	computed := decimal.Zero
	for _, li := range items {
		computed = computed.Add(li.LineTotal())
	}
	if !computed.Equal(subtotal) {
		return nil, &ValidationError{Fields: map[string]string{"subtotal": "does not match cart lines"}}
	}

	number, err := s.numbers.Next(ctx)
	if err != nil {
		return nil, err
	}

	shipping := ShippingCost(form.PaymentMethod, s.codFee)
	order := models.Order{
		OrderNumber:   number,
		Email:         strings.TrimSpace(form.Email),
		FullName:      strings.TrimSpace(form.FullName),
		Phone:         strings.TrimSpace(form.Phone),
		Address:       strings.TrimSpace(form.Address),
		City:          strings.TrimSpace(form.City),
		PostalCode:    strings.TrimSpace(form.PostalCode),
		PaymentMethod: form.PaymentMethod,
		Subtotal:      subtotal,
		ShippingCost:  shipping,
		Total:         subtotal.Add(shipping),
		Status:        models.OrderStatusPending,
		CreatedAt:     s.now(),
	}
	if form.UserID != "" {
		uid := form.UserID
		order.UserID = &uid
	}
	if notes := strings.TrimSpace(form.Notes); notes != "" {
		order.Notes = &notes
	}
	for _, li := range items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:    li.ProductID,
			ProductName:  li.Name,
			ProductImage: li.ImageRef,
			Price:        li.UnitPrice,
			Quantity:     li.Quantity,
			Total:        li.LineTotal(),
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		history := models.OrderStatusHistory{
			OrderID:   order.ID,
			Status:    models.OrderStatusPending,
			Notes:     steps[models.OrderStatusPending].note,
			CreatedAt: order.CreatedAt,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("insert order history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create order %s: %w", number, err)
	}

	s.logger.Info("order created",
		zap.String("order_number", order.OrderNumber),
		zap.String("payment_method", string(order.PaymentMethod)),
		zap.String("total", order.Total.StringFixed(2)),
	)
	s.publish(ctx, events.New(events.OrderCreated, order.OrderNumber, order))
	return &order, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("order event not delivered", zap.String("type", event.Type), zap.String("key", event.Key), zap.Error(err))
	}
}
