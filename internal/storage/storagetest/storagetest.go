// Package storagetest builds SQLite-backed stores for tests in other packages.
package storagetest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/eduflow/eduflow-server/internal/models"
	"github.com/eduflow/eduflow-server/internal/storage"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// NewCRMStore returns a migrated in-memory CRM store closed at test cleanup.
func NewCRMStore(t *testing.T) *storage.CRMStore {
	t.Helper()

	db, err := storage.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	s := storage.NewCRMStore(db)
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

// NewAppStore returns a migrated in-memory app store closed at test cleanup.
func NewAppStore(t *testing.T) *storage.AppStore {
	t.Helper()

	db, err := storage.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	s := storage.NewAppStore(db)
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

// AccountOption customises an account before it is inserted.
type AccountOption func(*models.Account)

func WithStatus(status models.AccountStatus) AccountOption {
	return func(a *models.Account) { a.Status = status }
}

func WithLock(until *time.Time) AccountOption {
	return func(a *models.Account) {
		a.IsLocked = true
		a.LockedUntil = until
	}
}

func WithRole(role string) AccountOption {
	return func(a *models.Account) { a.Role = role }
}

func WithAttempts(n int) AccountOption {
	return func(a *models.Account) { a.LoginAttempts = n }
}

func WithPermissions(doc map[string]any) AccountOption {
	return func(a *models.Account) { a.Permissions = doc }
}

// CreateAccount inserts an active account with a SHA-256 password hash, like the CRM writes,
// inside a new center of its own.
func CreateAccount(t *testing.T, s *storage.CRMStore, username, password string, opts ...AccountOption) *models.Account {
	t.Helper()

	sum := sha256.Sum256([]byte(password))
	account := &models.Account{
		Username:     username,
		PasswordHash: hex.EncodeToString(sum[:]),
		FirstName:    "Test",
		LastName:     "Admin",
		Role:         models.RoleSuperadmin,
		Status:       models.StatusActive,
		Permissions:  models.NewPermissionDocument(models.PlatformAccess{CRM: true}, "Basic"),
	}
	for _, opt := range opts {
		opt(account)
	}

	center := &models.Center{
		Name: username + " Center",
		Code: fmt.Sprintf("T-%s", username),
		City: "Tashkent",
	}
	require.NoError(t, s.CreateAccountWithCenter(context.Background(), center, account))
	return account
}

// CreateDeveloper inserts an active developer with a bcrypt hash.
func CreateDeveloper(t *testing.T, s *storage.AppStore, username, password string) *models.Developer {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	dev := &models.Developer{
		Username:     username,
		PasswordHash: string(hash),
		DisplayName:  "Dev " + username,
	}
	require.NoError(t, s.UpsertDeveloper(context.Background(), dev))
	return dev
}
