package auth

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/eduflow/eduflow-server/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

var errMalformedHeader = errors.New("malformed authorization header")

// TokenManager signs and parses bearer tokens for both principal kinds with one secret.
type TokenManager struct {
	secret       []byte
	adminTTL     time.Duration
	developerTTL time.Duration
	now          func() time.Time
}

func NewTokenManager(secret string, adminTTL, developerTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:       []byte(secret),
		adminTTL:     adminTTL,
		developerTTL: developerTTL,
		now:          time.Now,
	}
}

// IssueTenantAdmin signs a token carrying the account id, login, role and tenant id.
func (m *TokenManager) IssueTenantAdmin(account *models.Account) (string, error) {
	centerID := account.CenterID
	return m.sign(models.Claims{
		Login:    account.Username,
		Role:     account.Role,
		CenterID: &centerID,
		Kind:     models.PrincipalTenantAdmin,
	}, account.ID, m.adminTTL)
}

// IssueDeveloper signs a developer token. It never carries a tenant id.
func (m *TokenManager) IssueDeveloper(dev *models.Developer) (string, error) {
	return m.sign(models.Claims{
		Login: dev.Username,
		Role:  models.RoleDeveloper,
		Kind:  models.PrincipalDeveloper,
	}, dev.ID, m.developerTTL)
}

func (m *TokenManager) sign(claims models.Claims, subject int64, ttl time.Duration) (string, error) {
	now := m.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(subject, 10),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse verifies signature, algorithm and expiry and returns the claims.
func (m *TokenManager) Parse(tokenString string) (*models.Claims, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// PrincipalOf is the discriminator for the principal union. A token is a developer token
// only when both kind and role say so and no tenant id is present; a tenant-admin token
// must carry a tenant id and must not claim the developer role. Anything else is unknown.
func PrincipalOf(claims *models.Claims) (models.PrincipalKind, bool) {
	switch {
	case claims.Kind == models.PrincipalDeveloper && claims.Role == models.RoleDeveloper && claims.CenterID == nil:
		return models.PrincipalDeveloper, true
	case claims.Kind == models.PrincipalTenantAdmin && claims.Role != models.RoleDeveloper && claims.CenterID != nil:
		return models.PrincipalTenantAdmin, true
	default:
		return "", false
	}
}

// SubjectID returns the numeric id in the sub claim.
func SubjectID(claims *models.Claims) (int64, error) {
	return strconv.ParseInt(claims.Subject, 10, 64)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", errMalformedHeader
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errMalformedHeader
	}
	return token, nil
}
