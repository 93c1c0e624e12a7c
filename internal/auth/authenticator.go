package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/eduflow/eduflow-server/internal/apperror"
	"github.com/eduflow/eduflow-server/internal/models"
	"github.com/eduflow/eduflow-server/internal/storage"
)

// AccountStore is the slice of the CRM store that login and session checks need.
type AccountStore interface {
	GetAccountByLogin(ctx context.Context, login string) (*models.Account, error)
	GetAccountByID(ctx context.Context, id int64) (*models.Account, error)
	ClearLock(ctx context.Context, id int64) error
	RecordFailedLogin(ctx context.Context, id int64) error
	RecordSuccessfulLogin(ctx context.Context, id int64, at time.Time) error
}

type DeveloperStore interface {
	GetDeveloperByUsername(ctx context.Context, username string) (*models.Developer, error)
	GetDeveloperByID(ctx context.Context, id int64) (*models.Developer, error)
	RecordDeveloperLogin(ctx context.Context, id int64, at time.Time) error
}

var errInvalidDeveloperCredentials = apperror.New(apperror.KindInvalidCredentials, "Invalid username or password.")

// Authenticator verifies credentials and maintains the lockout counters.
type Authenticator struct {
	accounts   AccountStore
	developers DeveloperStore
	now        func() time.Time
}

func NewAuthenticator(accounts AccountStore, developers DeveloperStore) *Authenticator {
	return &Authenticator{
		accounts:   accounts,
		developers: developers,
		now:        time.Now,
	}
}

// Authenticate runs the tenant-admin login policy. Unknown login, inactive account,
// an account holding the developer role and wrong password all yield the same
// ErrInvalidCredentials. Failed attempts are counted but never lock the account by themselves.
func (a *Authenticator) Authenticate(ctx context.Context, login, password string) (*models.Account, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, apperror.ErrInvalidCredentials
	}

	account, err := a.accounts.GetAccountByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, apperror.Internal(err, "Server error during login.")
	}

	now := a.now()
	if account.IsLocked {
		if account.LockActive(now) {
			return nil, apperror.ErrAccountLocked
		}
		if err := a.accounts.ClearLock(ctx, account.ID); err != nil {
			return nil, apperror.Internal(err, "Server error during login.")
		}
		account.IsLocked = false
		account.LockedUntil = nil
		account.LoginAttempts = 0
	}

	// The developer role is reserved for developer-portal tokens.
	if !account.IsActive() || account.Role == models.RoleDeveloper {
		return nil, apperror.ErrInvalidCredentials
	}

	if !VerifyPassword(account.PasswordHash, password) {
		if err := a.accounts.RecordFailedLogin(ctx, account.ID); err != nil {
			return nil, apperror.Internal(err, "Server error during login.")
		}
		return nil, apperror.ErrInvalidCredentials
	}

	if err := a.accounts.RecordSuccessfulLogin(ctx, account.ID, now); err != nil {
		return nil, apperror.Internal(err, "Server error during login.")
	}
	account.LoginAttempts = 0
	account.LastLogin = &now

	return account, nil
}

// AuthenticateDeveloper verifies a developer-portal login against its bcrypt hash.
func (a *Authenticator) AuthenticateDeveloper(ctx context.Context, username, password string) (*models.Developer, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errInvalidDeveloperCredentials
	}

	dev, err := a.developers.GetDeveloperByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrDeveloperNotFound) {
			return nil, errInvalidDeveloperCredentials
		}
		return nil, apperror.Internal(err, "Server error during login.")
	}

	if !dev.IsActive || SchemeOf(dev.PasswordHash) != SchemeBcrypt || !VerifyPassword(dev.PasswordHash, password) {
		return nil, errInvalidDeveloperCredentials
	}

	now := a.now()
	if err := a.developers.RecordDeveloperLogin(ctx, dev.ID, now); err != nil {
		return nil, apperror.Internal(err, "Server error during login.")
	}
	dev.LastLogin = &now

	return dev, nil
}
