package auth

import (
	"testing"
	"time"

	"github.com/eduflow/eduflow-server/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestTokenManager(now time.Time) *TokenManager {
	m := NewTokenManager(testSecret, 8*time.Hour, 12*time.Hour)
	m.now = func() time.Time { return now }
	return m
}

func TestIssueTenantAdmin(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m := newTestTokenManager(now)

	token, err := m.IssueTenantAdmin(&models.Account{ID: 12, CenterID: 7, Username: "admin", Role: models.RoleSuperadmin})
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "12", claims.Subject)
	assert.Equal(t, "admin", claims.Login)
	assert.Equal(t, models.RoleSuperadmin, claims.Role)
	require.NotNil(t, claims.CenterID)
	assert.Equal(t, int64(7), *claims.CenterID)
	assert.Equal(t, now.Add(8*time.Hour).Unix(), claims.ExpiresAt.Unix())

	kind, ok := PrincipalOf(claims)
	require.True(t, ok)
	assert.Equal(t, models.PrincipalTenantAdmin, kind)

	id, err := SubjectID(claims)
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)
}

func TestIssueDeveloper(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m := newTestTokenManager(now)

	token, err := m.IssueDeveloper(&models.Developer{ID: 3, Username: "root"})
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Nil(t, claims.CenterID)
	assert.Equal(t, models.RoleDeveloper, claims.Role)
	assert.Equal(t, now.Add(12*time.Hour).Unix(), claims.ExpiresAt.Unix())

	kind, ok := PrincipalOf(claims)
	require.True(t, ok)
	assert.Equal(t, models.PrincipalDeveloper, kind)
}

func TestParse_Rejects(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m := newTestTokenManager(now)
	account := &models.Account{ID: 1, CenterID: 1, Username: "admin", Role: models.RoleSuperadmin}

	valid, err := m.IssueTenantAdmin(account)
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := newTestTokenManager(now.Add(9 * time.Hour))
		_, err := later.Parse(valid)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("other secret", func(t *testing.T) {
		other := NewTokenManager("another-secret", time.Hour, time.Hour)
		other.now = m.now
		_, err := other.Parse(valid)
		assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
	})

	t.Run("alg none", func(t *testing.T) {
		claims := models.Claims{
			Login: "admin",
			Role:  models.RoleSuperadmin,
			Kind:  models.PrincipalTenantAdmin,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "1",
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		}
		forged, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = m.Parse(forged)
		assert.Error(t, err)
	})

	t.Run("other hmac algorithm", func(t *testing.T) {
		claims := models.Claims{
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
		}
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = m.Parse(forged)
		assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
	})

	t.Run("no expiry", func(t *testing.T) {
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, models.Claims{}).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = m.Parse(forged)
		assert.ErrorIs(t, err, jwt.ErrTokenRequiredClaimMissing)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Parse("not-a-token")
		assert.Error(t, err)
	})
}

func TestPrincipalOf(t *testing.T) {
	center := int64(5)
	tests := []struct {
		name   string
		claims models.Claims
		want   models.PrincipalKind
		ok     bool
	}{
		{
			name:   "tenant admin",
			claims: models.Claims{Kind: models.PrincipalTenantAdmin, Role: models.RoleSuperadmin, CenterID: &center},
			want:   models.PrincipalTenantAdmin,
			ok:     true,
		},
		{
			name:   "developer",
			claims: models.Claims{Kind: models.PrincipalDeveloper, Role: models.RoleDeveloper},
			want:   models.PrincipalDeveloper,
			ok:     true,
		},
		{
			name:   "developer claiming a tenant",
			claims: models.Claims{Kind: models.PrincipalDeveloper, Role: models.RoleDeveloper, CenterID: &center},
		},
		{
			name:   "tenant admin without tenant",
			claims: models.Claims{Kind: models.PrincipalTenantAdmin, Role: models.RoleSuperadmin},
		},
		{
			name:   "tenant admin with developer role",
			claims: models.Claims{Kind: models.PrincipalTenantAdmin, Role: models.RoleDeveloper, CenterID: &center},
		},
		{
			name:   "missing kind",
			claims: models.Claims{Role: models.RoleSuperadmin, CenterID: &center},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PrincipalOf(&tt.claims)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{header: "Bearer abc.def", want: "abc.def"},
		{header: "Bearer   abc ", want: "abc"},
		{header: "", wantErr: true},
		{header: "Bearer ", wantErr: true},
		{header: "bearer abc", wantErr: true},
		{header: "Token abc", wantErr: true},
		{header: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, err := BearerToken(tt.header)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
