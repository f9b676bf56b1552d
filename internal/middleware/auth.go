// Package middleware provides HTTP middleware components for the application.
package middleware

import (
	"strings"

	"oruswallet/internal/logger"
	"oruswallet/internal/services/authz"
	"oruswallet/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware validates bearer session tokens.
type AuthMiddleware struct {
	gate      authz.Gate
	jwtSecret string
}

func NewAuthMiddleware(gate authz.Gate, jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		gate:      gate,
		jwtSecret: jwtSecret,
	}
}

// Handler validates the Authorization header and stores the claims and
// user id in the request locals. A token whose version no longer matches
// the user's is rejected.
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	token, ok := BearerToken(c)
	if !ok {
		return utils.Unauthorized(c, "missing or malformed authorization header")
	}

	claims, err := utils.ParseToken(m.jwtSecret, token)
	if err != nil {
		logger.WithField("path", c.Path()).Debugf("token rejected: %v", err)
		return utils.Unauthorized(c, "invalid token")
	}

	d, err := m.gate.Authorize(c.UserContext(), claims.UserID, authz.ActionSession, token)
	if err != nil {
		return utils.Error(c, err)
	}
	if !d.Approved {
		return utils.Unauthorized(c, d.Reason)
	}

	c.Locals(utils.LocalClaims, claims)
	c.Locals(utils.LocalUserID, claims.UserID)
	c.Locals(utils.LocalToken, token)
	return c.Next()
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(c *fiber.Ctx) (string, bool) {
	header := c.Get(fiber.HeaderAuthorization)
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
