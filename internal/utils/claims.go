package utils

import (
	"oruswallet/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by the bearer middleware.
const (
	LocalClaims = "claims"
	LocalUserID = "userID"
	LocalToken  = "token"
)

// SessionClaims returns the claims of the authenticated session, or false
// when the request did not pass through the bearer middleware.
func SessionClaims(c *fiber.Ctx) (*models.UserClaims, bool) {
	claims, ok := c.Locals(LocalClaims).(*models.UserClaims)
	if !ok || claims == nil || claims.UserID == 0 {
		return nil, false
	}
	return claims, true
}
