package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/junaidrashid-git/pawshop-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NumberAllocator hands out public order numbers. Each call returns a number never
// returned before.
type NumberAllocator interface {
	Next(ctx context.Context) (string, error)
}

// CounterAllocator numbers orders ORD-<YYYYMMDD>-<NNNN>, restarting the sequence each UTC day.
// The per-day counter row is bumped with an atomic upsert so concurrent checkouts never share a number.
type CounterAllocator struct {
	db  *gorm.DB
	now func() time.Time
}

func NewCounterAllocator(db *gorm.DB) *CounterAllocator {
	return &CounterAllocator{db: db, now: time.Now}
}

func (a *CounterAllocator) Next(ctx context.Context) (string, error) {
	day := a.now().UTC().Format("20060102")

	var seq int
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		counter := models.OrderNumberCounter{Day: day, LastValue: 1}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "day"}},
			DoUpdates: clause.Assignments(map[string]any{
				"last_value": gorm.Expr("order_number_counters.last_value + 1"),
			}),
		}).Create(&counter).Error; err != nil {
			return err
		}

		var row models.OrderNumberCounter
		if err := tx.First(&row, "day = ?", day).Error; err != nil {
			return err
		}
		seq = row.LastValue
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("allocate order number: %w", err)
	}
	return FormatNumber(day, seq), nil
}

// FormatNumber renders the public order number for a day and sequence.
func FormatNumber(day string, seq int) string {
	return fmt.Sprintf("ORD-%s-%04d", day, seq)
}
