// Package routes defines the API routing configuration.
package routes

import (
	"time"

	"oruswallet/internal/handlers"
	"oruswallet/internal/middleware"
	"oruswallet/internal/services/account"
	"oruswallet/internal/services/auth"
	"oruswallet/internal/services/authz"
	"oruswallet/internal/services/ledger"
	"oruswallet/internal/services/transfer"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Dependencies are the services the HTTP surface is built from.
type Dependencies struct {
	DB        *gorm.DB
	Redis     redis.UniversalClient
	JWTSecret string

	Auth     auth.Service
	Gate     authz.Gate
	Accounts account.Service
	Ledger   ledger.Service
	Engine   transfer.Service

	// DisableLimiter turns off the per-IP rate limits, for tests.
	DisableLimiter bool
}

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, deps Dependencies) {
	health := handlers.NewHealthHandler(deps.DB, deps.Redis)
	authHandler := handlers.NewAuthHandler(deps.Auth, deps.Gate)
	transferHandler := handlers.NewTransferHandler(deps.Engine, deps.JWTSecret)
	walletHandler := handlers.NewWalletHandler(deps.Accounts)
	txHandler := handlers.NewTransactionHandler(deps.Ledger)
	accountHandler := handlers.NewAccountHandler(deps.Accounts)
	authMiddleware := middleware.NewAuthMiddleware(deps.Gate, deps.JWTSecret)

	app.Get("/health", health.Check)

	api := app.Group("/api")

	// Credential endpoints are limited harder than the rest.
	strict := limit(deps, 10, time.Minute)
	api.Post("/register", strict, authHandler.Register)
	api.Post("/register/verify", strict, authHandler.VerifyRegistration)
	api.Post("/login", strict, authHandler.Login)
	api.Post("/otp/request", strict, authHandler.RequestOTP)
	api.Post("/otp/verify", strict, authHandler.VerifyOTP)
	api.Post("/pin/reset/request", strict, authHandler.RequestPINReset)
	api.Post("/pin/reset", strict, authHandler.ResetPIN)

	// These carry their own credential in the body.
	payments := limit(deps, 60, time.Minute)
	api.Post("/money-transfer", payments, transferHandler.MoneyTransfer)
	api.Post("/wallet-add-money", payments, transferHandler.AddMoney)

	// Registered last: the group middleware runs for every later /api route.
	protected := api.Group("", authMiddleware.Handler, limit(deps, 120, time.Minute))
	protected.Post("/logout", authHandler.Logout)
	protected.Post("/change-password", authHandler.ChangePassword)
	protected.Post("/pin", authHandler.SetPIN)

	protected.Get("/wallet", walletHandler.GetWallet)
	protected.Post("/qr-payment", transferHandler.QRPayment)
	protected.Post("/recharge", transferHandler.Recharge)
	protected.Post("/wallet-withdraw", transferHandler.Withdraw)

	protected.Get("/transactions", txHandler.List)
	protected.Get("/transactions/:reference", txHandler.Get)
	protected.Post("/transactions/:reference/cancel", transferHandler.Cancel)

	protected.Get("/bank-accounts", accountHandler.ListBankAccounts)
	protected.Post("/bank-accounts", accountHandler.LinkBankAccount)
	protected.Get("/bank-accounts/:id", accountHandler.GetBankAccount)
	protected.Put("/bank-accounts/:id/default", accountHandler.SetDefaultBankAccount)
	protected.Delete("/bank-accounts/:id", accountHandler.UnlinkBankAccount)

	protected.Get("/billers", accountHandler.ListBillers)
	protected.Post("/billers", accountHandler.SaveBiller)
	protected.Put("/billers/:id/due", accountHandler.RecordDue)
	protected.Post("/billers/:id/pay", transferHandler.PayBill)
}

func limit(deps Dependencies, max int, window time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		Next: func(*fiber.Ctx) bool {
			return deps.DisableLimiter
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": "too many requests"})
		},
	})
}
