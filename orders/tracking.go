package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/junaidrashid-git/pawshop-api/events"
	"github.com/junaidrashid-git/pawshop-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TrackByOrderNumber finds an order by its public number. No match is ErrOrderNotFound.
func (s *Service) TrackByOrderNumber(ctx context.Context, number string) (*models.Order, error) {
	number = strings.ToUpper(strings.TrimSpace(number))
	if number == "" {
		return nil, ErrOrderNotFound
	}
	return s.first(ctx, "order_number = ?", number)
}

// Get loads an order with its items.
func (s *Service) Get(ctx context.Context, id string) (*models.Order, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *Service) first(ctx context.Context, query string, arg any) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Preload("Items").Where(query, arg).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("load order: %w", err)
	}
	return &order, nil
}

// ListForUser returns a customer's orders, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]models.Order, error) {
	var out []models.Order
	if err := s.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list user orders: %w", err)
	}
	return out, nil
}

// ListAll returns every order, newest first, optionally restricted to one status.
func (s *Service) ListAll(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	q := s.db.WithContext(ctx).Preload("Items").Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []models.Order
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return out, nil
}

// History returns the recorded status changes of an order, oldest first.
func (s *Service) History(ctx context.Context, orderID string) ([]models.OrderStatusHistory, error) {
	var out []models.OrderStatusHistory
	if err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("load order history: %w", err)
	}
	return out, nil
}

// Timeline derives the milestones of order from its recorded history.
func (s *Service) Timeline(ctx context.Context, order models.Order) ([]Milestone, error) {
	history, err := s.History(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return StatusTimeline(order, history), nil
}

// UpdateStatus moves an order to status and records the change.
func (s *Service) UpdateStatus(ctx context.Context, id string, status models.OrderStatus, note string) (*models.Order, error) {
	if _, ok := steps[status]; !ok {
		return nil, ErrUnknownStatus
	}

	var order models.Order
	var from models.OrderStatus
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		from = order.Status
		if !CanTransition(from, status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, status)
		}

		now := s.now()
		if err := tx.Model(&order).Updates(map[string]any{"status": status, "updated_at": now}).Error; err != nil {
			return err
		}
		order.Status = status
		order.UpdatedAt = now
		if note == "" {
			note = steps[status].note
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:   order.ID,
			Status:    status,
			Notes:     note,
			CreatedAt: now,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.New(events.OrderStatusChanged, order.OrderNumber, map[string]any{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"from":         from,
		"to":           status,
	}))
	return &order, nil
}

// SetTracking stores the carrier tracking number and delivery estimate.
func (s *Service) SetTracking(ctx context.Context, id string, trackingNumber string, eta *time.Time) (*models.Order, error) {
	updates := map[string]any{"updated_at": s.now()}
	if tn := strings.TrimSpace(trackingNumber); tn != "" {
		updates["tracking_number"] = tn
	}
	if eta != nil {
		updates["estimated_delivery_date"] = *eta
	}
	res := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("update tracking: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrOrderNotFound
	}
	return s.Get(ctx, id)
}

// Delete removes an order with its items and history.
func (s *Service) Delete(ctx context.Context, id string) error {
	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderStatusHistory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&order).Error
	})
	if err != nil {
		return err
	}
	s.publish(ctx, events.New(events.OrderDeleted, order.OrderNumber, map[string]string{"order_id": id}))
	return nil
}
