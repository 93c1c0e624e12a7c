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

// CRMStore persists superuser accounts and their edu centers in the CRM database.
type CRMStore struct {
	db *gorm.DB
}

func NewCRMStore(db *gorm.DB) *CRMStore {
	return &CRMStore{db: db}
}

// Migrate creates the account and center tables. The CRM schema is normally owned by the
// CRM itself, so this only runs when explicitly enabled.
func (s *CRMStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&models.Center{}, &models.Account{}); err != nil {
		return fmt.Errorf("migrating crm tables: %w", err)
	}
	return nil
}

func (s *CRMStore) GetAccountByLogin(ctx context.Context, login string) (*models.Account, error) {
	var account models.Account
	if err := s.db.WithContext(ctx).First(&account, "username = ?", login).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("getting account by login: %w", err)
	}
	return &account, nil
}

func (s *CRMStore) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	var account models.Account
	if err := s.db.WithContext(ctx).Preload("Center").First(&account, "superuser_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("getting account by id: %w", err)
	}
	return &account, nil
}

// ClearLock lifts an expired lock and resets the failure counter.
func (s *CRMStore) ClearLock(ctx context.Context, id int64) error {
	return s.updateAccountColumns(ctx, id, map[string]any{
		"is_locked":      false,
		"locked_until":   nil,
		"login_attempts": 0,
	})
}

// RecordFailedLogin increments the counter in the database so concurrent failures are not lost.
func (s *CRMStore) RecordFailedLogin(ctx context.Context, id int64) error {
	return s.updateAccountColumns(ctx, id, map[string]any{
		"login_attempts": gorm.Expr("login_attempts + 1"),
	})
}

func (s *CRMStore) RecordSuccessfulLogin(ctx context.Context, id int64, at time.Time) error {
	return s.updateAccountColumns(ctx, id, map[string]any{
		"login_attempts": 0,
		"last_login":     at,
	})
}

func (s *CRMStore) updateAccountColumns(ctx context.Context, id int64, values map[string]any) error {
	result := s.db.WithContext(ctx).Model(&models.Account{}).Where("superuser_id = ?", id).Updates(values)
	if result.Error != nil {
		return fmt.Errorf("updating account %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// CreateAccountWithCenter inserts a center and its first account in one transaction.
// A unique violation on either row rolls both back and returns ErrDuplicateAccount.
func (s *CRMStore) CreateAccountWithCenter(ctx context.Context, center *models.Center, account *models.Account) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(center).Error; err != nil {
			return fmt.Errorf("creating center: %w", err)
		}

		account.CenterID = center.ID
		account.Center = nil
		if err := tx.Create(account).Error; err != nil {
			return fmt.Errorf("creating account: %w", err)
		}

		account.Center = center
		return nil
	})
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateAccount
		}
		return err
	}
	return nil
}

// UpdateAccount loads the account, applies mutate and saves it inside one transaction.
// The row is read FOR UPDATE so concurrent updates merge one after the other.
// The returned account has its center preloaded.
func (s *CRMStore) UpdateAccount(ctx context.Context, id int64, mutate func(*models.Account) error) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
			First(&account, "superuser_id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAccountNotFound
			}
			return fmt.Errorf("loading account %d: %w", id, err)
		}

		if err := mutate(&account); err != nil {
			return err
		}

		if err := tx.Omit("Center").Save(&account).Error; err != nil {
			return fmt.Errorf("saving account %d: %w", id, err)
		}

		return tx.Preload("Center").First(&account, "superuser_id = ?", id).Error
	})
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicateAccount
		}
		return nil, err
	}
	return &account, nil
}

// DeleteAccount hard-deletes the account. The owning center is left in place.
func (s *CRMStore) DeleteAccount(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&models.Account{}, "superuser_id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("deleting account %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// ListAccounts returns every account with its center, newest first.
func (s *CRMStore) ListAccounts(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := s.db.WithContext(ctx).
		Preload("Center").
		Order("created_at DESC").
		Order("superuser_id DESC").
		Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	return accounts, nil
}

func (s *CRMStore) AccountStats(ctx context.Context) (*models.AccountStats, error) {
	var stats models.AccountStats
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.Account{}).Count(&stats.TotalAdmins).Error; err != nil {
		return nil, fmt.Errorf("counting accounts: %w", err)
	}
	if err := db.Model(&models.Account{}).
		Where("status = ? AND is_locked = ?", models.StatusActive, false).
		Count(&stats.ActiveAdmins).Error; err != nil {
		return nil, fmt.Errorf("counting active accounts: %w", err)
	}
	if err := db.Model(&models.Account{}).
		Where("is_locked = ?", true).
		Count(&stats.LockedAdmins).Error; err != nil {
		return nil, fmt.Errorf("counting locked accounts: %w", err)
	}
	if err := db.Model(&models.Center{}).Count(&stats.TotalCenters).Error; err != nil {
		return nil, fmt.Errorf("counting centers: %w", err)
	}

	return &stats, nil
}
