// Package testutil opens throwaway stores for package tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"oruswallet/internal/models"
	"oruswallet/internal/repositories"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory SQLite database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, repositories.Migrate(db))
	return db
}

// NewRedis returns a client backed by an in-process redis server.
func NewRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

// CreateUser inserts an active user with a wallet holding balance.
func CreateUser(t *testing.T, db *gorm.DB, phone string, balance string) *models.User {
	t.Helper()
	ctx := context.Background()

	user := &models.User{
		Name:     "User " + phone,
		Email:    phone + "@example.com",
		Phone:    phone,
		Password: "x",
		Status:   models.UserStatusActive,
		KYC:      models.KYCVerification{Status: models.KYCApproved},
	}
	require.NoError(t, repositories.NewUserRepository(db).Create(ctx, user))

	wallet := &models.Wallet{
		UserID:   user.ID,
		Balance:  decimal.RequireFromString(balance),
		Currency: "INR",
		Status:   models.WalletStatusActive,
	}
	require.NoError(t, repositories.NewWalletRepository(db).Create(ctx, wallet))
	return user
}

// Balance reads the current wallet balance of a user.
func Balance(t *testing.T, db *gorm.DB, userID uint) decimal.Decimal {
	t.Helper()
	w, err := repositories.NewWalletRepository(db).GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	return w.Balance
}

// Clock is a settable time source.
type Clock struct {
	T time.Time
}

func (c *Clock) Now() time.Time { return c.T }

func (c *Clock) Advance(d time.Duration) { c.T = c.T.Add(d) }
