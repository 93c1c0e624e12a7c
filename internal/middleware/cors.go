package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORS rejects cross-origin requests from origins outside the allow-list with 403 and
// adds the usual CORS headers for allowed ones. Requests without an Origin header, such as
// server-to-server calls and health checks, pass untouched.
func CORS(origins []string) []fiber.Handler {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}

	guard := func(c *fiber.Ctx) error {
		origin := c.Get(fiber.HeaderOrigin)
		if origin == "" {
			return c.Next()
		}
		if _, ok := allowed[strings.TrimRight(origin, "/")]; !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Origin not allowed."})
		}
		return c.Next()
	}

	headers := cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: len(origins) > 0,
		MaxAge:           600,
	})

	return []fiber.Handler{guard, headers}
}
