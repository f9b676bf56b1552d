// Package main is the entry point of the wallet API server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"oruswallet/internal/config"
	"oruswallet/internal/logger"
	"oruswallet/internal/repositories"
	"oruswallet/internal/routes"
	"oruswallet/internal/scheduler"
	"oruswallet/internal/services/account"
	"oruswallet/internal/services/auth"
	"oruswallet/internal/services/authz"
	"oruswallet/internal/services/ledger"
	"oruswallet/internal/services/notification"
	"oruswallet/internal/services/otp"
	"oruswallet/internal/services/settlement"
	"oruswallet/internal/services/transfer"
	"oruswallet/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Configure(cfg.IsProduction(), cfg.LogLevel)

	if err := repositories.InitDB(cfg); err != nil {
		logger.Fatalf("failed to initialize storage: %v", err)
	}
	defer repositories.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go logPoolStats(ctx)

	notifier, closeNotifier := notification.Connect(cfg.RabbitMQURL, cfg.NotificationExchange)
	defer closeNotifier()

	store := repositories.NewStore(repositories.DB)
	rdb := repositories.CacheService.Client()
	otpService := otp.NewService(rdb, notifier)
	gate := authz.NewGate(store, otpService, cfg.JWTSecret)
	ledgerService := ledger.NewService(store, repositories.CacheService, ledger.WithCurrency(cfg.Currency))

	gateway := settlement.NewGateway()
	var card settlement.Collector
	if cfg.StripeSecretKey != "" {
		card = settlement.NewStripeCollector(cfg.StripeSecretKey)
		logger.Info("card deposits are collected through Stripe")
	}
	engine := transfer.NewService(
		store,
		ledgerService,
		gate,
		wallet.NewService(store),
		settlement.NewRouter(card, gateway),
		gateway,
		notifier,
	)

	jobs := scheduler.New(engine, cfg.AutoPaySchedule)
	if err := jobs.Start(); err != nil {
		logger.Fatalf("failed to start scheduler: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      "orus-wallet",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"message": err.Error()})
		},
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CorsOrigin,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Idempotency-Key",
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowCredentials: true,
	}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	routes.SetupRoutes(app, routes.Dependencies{
		DB:        repositories.DB,
		Redis:     rdb,
		JWTSecret: cfg.JWTSecret,
		Auth: auth.NewService(store, gate, otpService, auth.TokenConfig{
			Secret: cfg.JWTSecret,
			TTL:    cfg.TokenTTL,
		}),
		Gate:     gate,
		Accounts: account.NewService(store),
		Ledger:   ledgerService,
		Engine:   engine,
	})

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			logger.Errorf("server shutdown: %v", err)
		}
	}()

	logger.Infof("listening on :%s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Errorf("server stopped: %v", err)
	}

	// Let a running auto-pay sweep finish before the connections close.
	<-jobs.Stop().Done()
}

func logPoolStats(ctx context.Context) {
	sqlDB, err := repositories.DB.DB()
	if err != nil {
		return
	}
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := sqlDB.Stats()
			logger.Debugf("db pool: open=%d idle=%d in_use=%d wait_count=%d wait=%s",
				stats.OpenConnections, stats.Idle, stats.InUse, stats.WaitCount, stats.WaitDuration)
			if rs := repositories.CacheService.GetStats(); rs != nil {
				logger.Debugf("redis pool: total=%d idle=%d hits=%d misses=%d timeouts=%d",
					rs.TotalConns, rs.IdleConns, rs.Hits, rs.Misses, rs.Timeouts)
			}
		}
	}
}
