package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Shreyansh-Bordia/Leetcode-Progress-Tracker/internal/models"
	"github.com/Shreyansh-Bordia/Leetcode-Progress-Tracker/internal/service"
)

const sessionKey = "session"

// AuthRequired parses the bearer token and stores the session in
// Locals for the handlers downstream.
func AuthRequired(auth *service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		sess, err := auth.ParseToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		c.Locals(sessionKey, sess)
		return c.Next()
	}
}

// AdminRequired rejects non-admin sessions. Must run after AuthRequired.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := SessionFrom(c)
		if sess == nil || sess.Role != models.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden - Admin access required",
			})
		}
		return c.Next()
	}
}

// SessionFrom returns the authenticated session stored by AuthRequired,
// or nil.
func SessionFrom(c *fiber.Ctx) *models.Session {
	sess, _ := c.Locals(sessionKey).(*models.Session)
	return sess
}
