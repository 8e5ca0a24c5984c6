// Package auth signs customers up and in with email and password, issues guest sessions
// and answers whether a user may use the admin panel.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/junaidrashid-git/pawshop-api/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Session is a signed-in (or guest) identity plus the token that proves it.
type Session struct {
	Profile   *models.Profile `json:"profile,omitempty"`
	GuestID   string          `json:"guest_id,omitempty"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
}

type Service struct {
	db      *gorm.DB
	tokens  *Tokens
	revoked Revocations
	logger  *zap.Logger
}

func NewService(db *gorm.DB, tokens *Tokens, revoked Revocations, logger *zap.Logger) *Service {
	if revoked == nil {
		revoked = NewMemoryRevocations()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, tokens: tokens, revoked: revoked, logger: logger}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func (s *Service) SignUp(ctx context.Context, email, password, fullName string) (*Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	profile := models.Profile{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     strings.TrimSpace(fullName),
		PasswordHash: hash,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Profile{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrEmailTaken
		}
		return tx.Create(&profile).Error
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create profile: %w", err)
	}

	s.logger.Info("profile created", zap.String("user_id", profile.ID))
	return s.session(&profile)
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	var profile models.Profile
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if err := CheckPassword(profile.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.session(&profile)
}

// SignOut revokes the token described by claims.
func (s *Service) SignOut(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return ErrInvalidToken
	}
	if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// Guest issues a session for a shopper who has not signed in.
func (s *Service) Guest() (*Session, error) {
	guestID := uuid.NewString()
	token, claims, err := s.tokens.Issue(guestID, RoleGuest, "")
	if err != nil {
		return nil, err
	}
	return &Session{GuestID: guestID, Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Authenticate verifies a bearer token and checks it has not been signed out.
func (s *Service) Authenticate(ctx context.Context, raw string) (*Claims, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, err
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

func (s *Service) Profile(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).First(&profile, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return &profile, nil
}

func (s *Service) session(profile *models.Profile) (*Session, error) {
	token, claims, err := s.tokens.Issue(profile.ID, RoleUser, profile.Email)
	if err != nil {
		return nil, err
	}
	return &Session{Profile: profile, Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}
