package handlers

import (
	"oruswallet/internal/services/account"
	"oruswallet/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type WalletHandler struct {
	accounts account.Service
}

func NewWalletHandler(accounts account.Service) *WalletHandler {
	return &WalletHandler{accounts: accounts}
}

// GetWallet handles GET /api/wallet.
func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}
	wallet, err := h.accounts.GetWallet(c.UserContext(), userID)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{
		"wallet":  wallet,
		"balance": wallet.Balance.StringFixed(2),
	})
}
