// Command seed creates an active demo user with a funded wallet and a payment PIN.
package main

import (
	"context"
	"errors"
	"os"

	"oruswallet/internal/config"
	"oruswallet/internal/logger"
	"oruswallet/internal/models"
	"oruswallet/internal/repositories"
	"oruswallet/internal/validation"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	email := os.Getenv("SEED_EMAIL")
	password := os.Getenv("SEED_PASSWORD")
	phone := os.Getenv("SEED_PHONE")
	pin := config.GetEnv("SEED_PIN", "1234")
	balance, err := decimal.NewFromString(config.GetEnv("SEED_BALANCE", "1000.00"))
	if err != nil {
		logger.Fatalf("invalid SEED_BALANCE: %v", err)
	}
	if email == "" || password == "" || phone == "" {
		logger.Fatal("SEED_EMAIL, SEED_PASSWORD and SEED_PHONE must be set in environment")
	}
	if !validation.PIN(pin) {
		logger.Fatal("SEED_PIN must be 4 to 6 digits")
	}

	if err := repositories.InitDB(cfg); err != nil {
		logger.Fatalf("failed to initialize storage: %v", err)
	}
	defer repositories.Close()

	ctx := context.Background()
	store := repositories.NewStore(repositories.DB)
	if _, err := store.Users().GetByEmail(ctx, email); err == nil {
		logger.Info("seed user already exists")
		return
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		logger.Fatalf("failed to look up seed user: %v", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Fatalf("failed to hash password: %v", err)
	}
	hashedPIN, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		logger.Fatalf("failed to hash pin: %v", err)
	}

	user := &models.User{
		Name:     "Demo User",
		Email:    email,
		Phone:    phone,
		Password: string(hashedPassword),
		PinHash:  string(hashedPIN),
		Status:   models.UserStatusActive,
		KYC:      models.KYCVerification{Status: models.KYCApproved},
	}
	err = store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		return tx.Wallets().Create(ctx, &models.Wallet{
			UserID:   user.ID,
			Balance:  balance,
			Currency: cfg.Currency,
			Status:   models.WalletStatusActive,
		})
	})
	if err != nil {
		logger.Fatalf("failed to create seed user: %v", err)
	}

	logger.WithField("user_id", user.ID).Infof("seed user created with balance %s", balance.StringFixed(2))
}
