package handlers

import (
	"strings"

	"github.com/eduflow/eduflow-server/internal/apperror"
	"github.com/eduflow/eduflow-server/internal/middleware"
	"github.com/eduflow/eduflow-server/internal/models"
	"github.com/gofiber/fiber/v2"
)

var errDevLoginRequired = apperror.Validation("Username and password are required.")

// DevLogin signs a developer-portal account in.
func (h *AuthHandler) DevLogin(c *fiber.Ctx) error {
	var req models.DeveloperLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errDevLoginRequired
	}
	if trimmed(req.Username) == "" || req.Password == "" {
		return errDevLoginRequired
	}

	dev, err := h.authenticator.AuthenticateDeveloper(c.UserContext(), req.Username, req.Password)
	h.observe(models.PrincipalDeveloper, err)
	if err != nil {
		return err
	}

	token, err := h.tokens.IssueDeveloper(dev)
	if err != nil {
		return apperror.Internal(err, "Server error during login.")
	}

	return c.JSON(models.DeveloperLoginResponse{
		Token: token,
		DevUser: models.DeveloperResponse{
			ID:          dev.ID,
			Username:    dev.Username,
			DisplayName: dev.DisplayName,
		},
	})
}

func (h *AuthHandler) DevMe(c *fiber.Ctx) error {
	dev, ok := middleware.DeveloperFrom(c)
	if !ok {
		return apperror.ErrInvalidSession
	}
	return c.JSON(fiber.Map{"devUser": dev})
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
