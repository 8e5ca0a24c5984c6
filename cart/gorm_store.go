package cart

import (
	"context"
	"errors"
	"time"

	"github.com/junaidrashid-git/pawshop-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSnapshotStore keeps snapshots in the cart_snapshots table.
type GormSnapshotStore struct {
	db *gorm.DB
}

func NewGormSnapshotStore(db *gorm.DB) *GormSnapshotStore {
	return &GormSnapshotStore{db: db}
}

func (s *GormSnapshotStore) Load(ctx context.Context, key string) ([]byte, error) {
	var row models.CartSnapshot
	if err := s.db.WithContext(ctx).First(&row, "session_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSnapshot
		}
		return nil, err
	}
	return []byte(row.Payload), nil
}

func (s *GormSnapshotStore) Save(ctx context.Context, key string, raw []byte) error {
	row := models.CartSnapshot{
		SessionKey: key,
		Payload:    string(raw),
		UpdatedAt:  time.Now(),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&row).Error
}

func (s *GormSnapshotStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("session_key = ?", key).Delete(&models.CartSnapshot{}).Error
}
