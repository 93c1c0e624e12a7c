package handlers

import (
	"context"
	"errors"

	"github.com/eduflow/eduflow-server/internal/apperror"
	"github.com/eduflow/eduflow-server/internal/metrics"
	"github.com/eduflow/eduflow-server/internal/middleware"
	"github.com/eduflow/eduflow-server/internal/models"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Authenticator is satisfied by *auth.Authenticator.
type Authenticator interface {
	Authenticate(ctx context.Context, login, password string) (*models.Account, error)
	AuthenticateDeveloper(ctx context.Context, username, password string) (*models.Developer, error)
}

// TokenIssuer is satisfied by *auth.TokenManager.
type TokenIssuer interface {
	IssueTenantAdmin(account *models.Account) (string, error)
	IssueDeveloper(dev *models.Developer) (string, error)
}

type LoginObserver interface {
	ObserveLogin(principal, outcome string)
}

type AuthHandler struct {
	authenticator Authenticator
	tokens        TokenIssuer
	observer      LoginObserver
	logger        *zap.Logger
}

func NewAuthHandler(authenticator Authenticator, tokens TokenIssuer, observer LoginObserver, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authenticator: authenticator,
		tokens:        tokens,
		observer:      observer,
		logger:        logger,
	}
}

var errLoginRequired = apperror.Validation("Login and password are required.")

// Login signs a tenant administrator in.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errLoginRequired
	}
	if trimmed(req.Login) == "" || req.Password == "" {
		return errLoginRequired
	}

	account, err := h.authenticator.Authenticate(c.UserContext(), req.Login, req.Password)
	h.observe(models.PrincipalTenantAdmin, err)
	if err != nil {
		if errors.Is(err, apperror.ErrAccountLocked) {
			h.logger.Info("Login rejected for locked account", zap.String("login", trimmed(req.Login)))
		}
		return err
	}

	token, err := h.tokens.IssueTenantAdmin(account)
	if err != nil {
		return apperror.Internal(err, "Server error during login.")
	}

	return c.JSON(models.LoginResponse{
		Token: token,
		User: models.UserResponse{
			ID:             account.ID,
			Login:          account.Username,
			Role:           account.Role,
			DisplayName:    account.DisplayName(),
			CenterID:       account.CenterID,
			PlatformAccess: account.PlatformAccess(),
		},
	})
}

// Me returns the live-resolved tenant administrator.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	admin, ok := middleware.TenantAdminFrom(c)
	if !ok {
		return apperror.ErrInvalidSession
	}
	return c.JSON(fiber.Map{"user": admin})
}

// Logout is stateless; the client discards its token.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) observe(kind models.PrincipalKind, err error) {
	outcome := metrics.OutcomeSuccess
	switch {
	case err == nil:
	case errors.Is(err, apperror.ErrInvalidCredentials):
		outcome = metrics.OutcomeFailure
	case errors.Is(err, apperror.ErrAccountLocked):
		outcome = metrics.OutcomeLocked
	default:
		outcome = metrics.OutcomeError
	}
	h.observer.ObserveLogin(string(kind), outcome)
}
