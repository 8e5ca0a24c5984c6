package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/junaidrashid-git/pawshop-api/models"
	"gorm.io/gorm"
)

// AdminChecker answers whether a user may use the admin panel.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// AdminEntry is an admin grant with the grantee's profile details.
type AdminEntry struct {
	models.AdminUser
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// Admins manages admin grants stored in admin_users.
type Admins struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAdmins(db *gorm.DB) *Admins {
	return &Admins{db: db, now: time.Now}
}

// IsAdmin is true only for an active grant.
func (a *Admins) IsAdmin(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	var count int64
	if err := a.db.WithContext(ctx).
		Model(&models.AdminUser{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	return count > 0, nil
}

// ListAdmins returns every grant, active or not, newest first.
func (a *Admins) ListAdmins(ctx context.Context) ([]AdminEntry, error) {
	var out []AdminEntry
	if err := a.db.WithContext(ctx).
		Model(&models.AdminUser{}).
		Select("admin_users.*, profiles.email AS email, profiles.full_name AS full_name").
		Joins("LEFT JOIN profiles ON profiles.id = admin_users.user_id").
		Order("admin_users.granted_at DESC").
		Scan(&out).Error; err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return out, nil
}

// Grant makes userID an active admin, reactivating an earlier grant if there is one.
func (a *Admins) Grant(ctx context.Context, userID, grantedBy string) (*models.AdminUser, error) {
	var grant models.AdminUser
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profiles int64
		if err := tx.Model(&models.Profile{}).Where("id = ?", userID).Count(&profiles).Error; err != nil {
			return err
		}
		if profiles == 0 {
			return ErrProfileNotFound
		}

		now := a.now()
		err := tx.Where("user_id = ?", userID).First(&grant).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			grant = models.AdminUser{UserID: userID, GrantedAt: now, IsActive: true}
		case err != nil:
			return err
		default:
			grant.IsActive = true
			grant.GrantedAt = now
		}
		if grantedBy != "" {
			by := grantedBy
			grant.GrantedBy = &by
		}
		return tx.Save(&grant).Error
	})
	if err != nil {
		return nil, err
	}
	return &grant, nil
}

// Revoke deactivates the grant of userID. The row is kept for the audit trail.
func (a *Admins) Revoke(ctx context.Context, userID string) error {
	res := a.db.WithContext(ctx).
		Model(&models.AdminUser{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{"is_active": false, "updated_at": a.now()})
	if res.Error != nil {
		return fmt.Errorf("revoke admin: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// ListProfiles returns every registered profile, newest first.
func (a *Admins) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	var out []models.Profile
	if err := a.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return out, nil
}
