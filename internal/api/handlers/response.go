package handlers

import (
	"errors"

	"github.com/eduflow/eduflow-server/internal/apperror"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler renders every error as {"message": ...}. Internal causes are logged and
// replaced by the generic message carried on the error.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			if appErr.Kind == apperror.KindInternal {
				logger.Error("Request failed",
					zap.String("method", c.Method()),
					zap.String("path", c.Path()),
					zap.Error(appErr.Cause),
				)
			}
			return c.Status(appErr.Status()).JSON(fiber.Map{"message": appErr.Message})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{"message": fiberErr.Message})
		}

		logger.Error("Unhandled request error",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error."})
	}
}
