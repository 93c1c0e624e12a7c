package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eduflow/eduflow-server/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AppStore persists developer-portal accounts in the app database.
type AppStore struct {
	db *gorm.DB
}

func NewAppStore(db *gorm.DB) *AppStore {
	return &AppStore{db: db}
}

func (s *AppStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&models.Developer{}); err != nil {
		return fmt.Errorf("migrating app tables: %w", err)
	}
	return nil
}

func (s *AppStore) GetDeveloperByUsername(ctx context.Context, username string) (*models.Developer, error) {
	var dev models.Developer
	if err := s.db.WithContext(ctx).First(&dev, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeveloperNotFound
		}
		return nil, fmt.Errorf("getting developer by username: %w", err)
	}
	return &dev, nil
}

func (s *AppStore) GetDeveloperByID(ctx context.Context, id int64) (*models.Developer, error) {
	var dev models.Developer
	if err := s.db.WithContext(ctx).First(&dev, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeveloperNotFound
		}
		return nil, fmt.Errorf("getting developer by id: %w", err)
	}
	return &dev, nil
}

func (s *AppStore) RecordDeveloperLogin(ctx context.Context, id int64, at time.Time) error {
	result := s.db.WithContext(ctx).Model(&models.Developer{}).Where("id = ?", id).Update("last_login", at)
	if result.Error != nil {
		return fmt.Errorf("recording developer login: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrDeveloperNotFound
	}
	return nil
}

// UpsertDeveloper inserts the developer or, when the username exists, replaces its
// password hash and display name and reactivates it.
func (s *AppStore) UpsertDeveloper(ctx context.Context, dev *models.Developer) error {
	dev.IsActive = true
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"password_hash", "display_name", "is_active", "updated_at"}),
	}).Create(dev).Error
	if err != nil {
		return fmt.Errorf("upserting developer %s: %w", dev.Username, err)
	}
	return nil
}

// SetDeveloperActive toggles whether a developer may sign in.
func (s *AppStore) SetDeveloperActive(ctx context.Context, id int64, active bool) error {
	result := s.db.WithContext(ctx).Model(&models.Developer{}).Where("id = ?", id).Update("is_active", active)
	if result.Error != nil {
		return fmt.Errorf("updating developer %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrDeveloperNotFound
	}
	return nil
}

func (s *AppStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
