package auth

import (
	"context"
	"testing"
	"time"

	"github.com/eduflow/eduflow-server/internal/apperror"
	"github.com/eduflow/eduflow-server/internal/models"
	"github.com/eduflow/eduflow-server/internal/storage"
	"github.com/eduflow/eduflow-server/internal/storage/storagetest"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type resolverFixture struct {
	resolver *Resolver
	tokens   *TokenManager
	crm      *storage.CRMStore
	app      *storage.AppStore
}

func setupResolver(t *testing.T) *resolverFixture {
	t.Helper()

	crm := storagetest.NewCRMStore(t)
	app := storagetest.NewAppStore(t)
	tokens := NewTokenManager(testSecret, time.Hour, time.Hour)
	return &resolverFixture{
		resolver: NewResolver(tokens, crm, app),
		tokens:   tokens,
		crm:      crm,
		app:      app,
	}
}

func (f *resolverFixture) adminHeader(t *testing.T, account *models.Account) string {
	t.Helper()

	token, err := f.tokens.IssueTenantAdmin(account)
	require.NoError(t, err)
	return "Bearer " + token
}

func (f *resolverFixture) developerHeader(t *testing.T, dev *models.Developer) string {
	t.Helper()

	token, err := f.tokens.IssueDeveloper(dev)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestResolve_TenantAdmin(t *testing.T) {
	f := setupResolver(t)
	account := storagetest.CreateAccount(t, f.crm, "admin", "admin")

	principal, err := f.resolver.Resolve(context.Background(), f.adminHeader(t, account), models.PrincipalTenantAdmin)
	require.NoError(t, err)

	admin, ok := principal.(*TenantAdmin)
	require.True(t, ok)
	assert.Equal(t, account.ID, admin.ID)
	assert.Equal(t, account.CenterID, admin.CenterID)
	assert.Equal(t, "Test Admin", admin.DisplayName)
	assert.True(t, admin.PlatformAccess.CRM)
	assert.False(t, admin.PlatformAccess.CDI)
}

func TestResolve_Developer(t *testing.T) {
	f := setupResolver(t)
	dev := storagetest.CreateDeveloper(t, f.app, "root", "pw")

	principal, err := f.resolver.Resolve(context.Background(), f.developerHeader(t, dev), models.PrincipalDeveloper)
	require.NoError(t, err)

	resolved, ok := principal.(*Developer)
	require.True(t, ok)
	assert.Equal(t, dev.ID, resolved.ID)
	assert.Equal(t, "Dev root", resolved.DisplayName)
}

func TestResolve_CrossKindIsForbidden(t *testing.T) {
	f := setupResolver(t)
	account := storagetest.CreateAccount(t, f.crm, "admin", "admin")
	dev := storagetest.CreateDeveloper(t, f.app, "root", "pw")

	_, err := f.resolver.Resolve(context.Background(), f.adminHeader(t, account), models.PrincipalDeveloper)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.resolver.Resolve(context.Background(), f.developerHeader(t, dev), models.PrincipalTenantAdmin)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestResolve_HeaderErrors(t *testing.T) {
	f := setupResolver(t)

	_, err := f.resolver.Resolve(context.Background(), "", models.PrincipalTenantAdmin)
	assert.ErrorIs(t, err, apperror.ErrMissingToken)

	_, err = f.resolver.Resolve(context.Background(), "Token abc", models.PrincipalTenantAdmin)
	assert.ErrorIs(t, err, apperror.ErrMissingToken)

	_, err = f.resolver.Resolve(context.Background(), "Bearer not-a-token", models.PrincipalTenantAdmin)
	assert.ErrorIs(t, err, apperror.ErrInvalidToken)
}

func TestResolve_UnknownPrincipalShape(t *testing.T) {
	f := setupResolver(t)
	center := int64(1)
	claims := models.Claims{
		Login:    "root",
		Role:     models.RoleDeveloper,
		CenterID: &center,
		Kind:     models.PrincipalDeveloper,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = f.resolver.Resolve(context.Background(), "Bearer "+token, models.PrincipalDeveloper)
	assert.ErrorIs(t, err, apperror.ErrInvalidToken)
}

func TestResolve_RevokedTenantAdmin(t *testing.T) {
	tests := []struct {
		name   string
		revoke func(*models.Account)
	}{
		{name: "deactivated", revoke: func(a *models.Account) { a.Status = models.StatusInactive }},
		{name: "suspended", revoke: func(a *models.Account) { a.Status = models.StatusSuspended }},
		{name: "locked", revoke: func(a *models.Account) { a.IsLocked = true }},
		{name: "given developer role", revoke: func(a *models.Account) { a.Role = models.RoleDeveloper }},
		{name: "lock lapsed", revoke: func(a *models.Account) {
			past := time.Now().Add(-time.Hour)
			a.IsLocked = true
			a.LockedUntil = &past
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupResolver(t)
			account := storagetest.CreateAccount(t, f.crm, "admin", "admin")
			header := f.adminHeader(t, account)

			_, err := f.resolver.Resolve(context.Background(), header, models.PrincipalTenantAdmin)
			require.NoError(t, err)

			_, err = f.crm.UpdateAccount(context.Background(), account.ID, func(a *models.Account) error {
				tt.revoke(a)
				return nil
			})
			require.NoError(t, err)

			_, err = f.resolver.Resolve(context.Background(), header, models.PrincipalTenantAdmin)
			assert.ErrorIs(t, err, apperror.ErrInvalidSession)
		})
	}
}

func TestResolve_DeletedSubjects(t *testing.T) {
	f := setupResolver(t)
	account := storagetest.CreateAccount(t, f.crm, "admin", "admin")
	header := f.adminHeader(t, account)
	require.NoError(t, f.crm.DeleteAccount(context.Background(), account.ID))

	_, err := f.resolver.Resolve(context.Background(), header, models.PrincipalTenantAdmin)
	assert.ErrorIs(t, err, apperror.ErrInvalidSession)

	ghost := &models.Developer{ID: 404, Username: "ghost"}
	_, err = f.resolver.Resolve(context.Background(), f.developerHeader(t, ghost), models.PrincipalDeveloper)
	assert.ErrorIs(t, err, apperror.ErrInvalidSession)
}

func TestResolve_DeactivatedDeveloper(t *testing.T) {
	f := setupResolver(t)
	dev := storagetest.CreateDeveloper(t, f.app, "root", "pw")
	header := f.developerHeader(t, dev)
	require.NoError(t, f.app.SetDeveloperActive(context.Background(), dev.ID, false))

	_, err := f.resolver.Resolve(context.Background(), header, models.PrincipalDeveloper)
	assert.ErrorIs(t, err, apperror.ErrInvalidSession)
}
