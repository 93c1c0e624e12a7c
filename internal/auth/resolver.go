package auth

import (
	"context"
	"errors"

	"github.com/eduflow/eduflow-server/internal/apperror"
	"github.com/eduflow/eduflow-server/internal/models"
	"github.com/eduflow/eduflow-server/internal/storage"
)

// Principal is a resolved, live-checked caller: either *TenantAdmin or *Developer.
type Principal interface {
	Kind() models.PrincipalKind
	SubjectID() int64
}

// TenantAdmin is a resolved tenant administrator. CenterID comes from the database row,
// not from the token, and is the only tenant id reporting queries may use.
type TenantAdmin struct {
	ID             int64                 `json:"id"`
	Login          string                `json:"login"`
	Role           string                `json:"role"`
	DisplayName    string                `json:"displayName"`
	CenterID       int64                 `json:"centerId"`
	PlatformAccess models.PlatformAccess `json:"platformAccess"`
}

func (t *TenantAdmin) Kind() models.PrincipalKind { return models.PrincipalTenantAdmin }
func (t *TenantAdmin) SubjectID() int64           { return t.ID }

type Developer struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

func (d *Developer) Kind() models.PrincipalKind { return models.PrincipalDeveloper }
func (d *Developer) SubjectID() int64           { return d.ID }

// Resolver turns a bearer header into a Principal, re-reading the subject from its store on
// every call so that deactivation or locking takes effect before the token expires.
type Resolver struct {
	tokens     *TokenManager
	accounts   AccountStore
	developers DeveloperStore
}

func NewResolver(tokens *TokenManager, accounts AccountStore, developers DeveloperStore) *Resolver {
	return &Resolver{
		tokens:     tokens,
		accounts:   accounts,
		developers: developers,
	}
}

func (r *Resolver) Resolve(ctx context.Context, authHeader string, expected models.PrincipalKind) (Principal, error) {
	tokenString, err := BearerToken(authHeader)
	if err != nil {
		return nil, apperror.ErrMissingToken
	}

	claims, err := r.tokens.Parse(tokenString)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.KindInvalidToken, apperror.ErrInvalidToken.Message)
	}

	kind, ok := PrincipalOf(claims)
	if !ok {
		return nil, apperror.ErrInvalidToken
	}
	if kind != expected {
		return nil, apperror.ErrForbidden
	}

	id, err := SubjectID(claims)
	if err != nil {
		return nil, apperror.ErrInvalidToken
	}

	switch kind {
	case models.PrincipalDeveloper:
		return r.resolveDeveloper(ctx, id)
	default:
		return r.resolveTenantAdmin(ctx, id)
	}
}

func (r *Resolver) resolveTenantAdmin(ctx context.Context, id int64) (*TenantAdmin, error) {
	account, err := r.accounts.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			return nil, apperror.ErrInvalidSession
		}
		return nil, apperror.Internal(err, "")
	}

	// Any lock flag ends the session here; lapsed locks are only cleared by a fresh login.
	if !account.IsActive() || account.IsLocked || account.Role == models.RoleDeveloper {
		return nil, apperror.ErrInvalidSession
	}

	return &TenantAdmin{
		ID:             account.ID,
		Login:          account.Username,
		Role:           account.Role,
		DisplayName:    account.DisplayName(),
		CenterID:       account.CenterID,
		PlatformAccess: account.PlatformAccess(),
	}, nil
}

func (r *Resolver) resolveDeveloper(ctx context.Context, id int64) (*Developer, error) {
	dev, err := r.developers.GetDeveloperByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrDeveloperNotFound) {
			return nil, apperror.ErrInvalidSession
		}
		return nil, apperror.Internal(err, "")
	}

	if !dev.IsActive {
		return nil, apperror.ErrInvalidSession
	}

	return &Developer{
		ID:          dev.ID,
		Username:    dev.Username,
		DisplayName: dev.DisplayName,
	}, nil
}
