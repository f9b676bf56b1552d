package otp

import (
	"context"
	"crypto/rand"
	_ "embed"
	"fmt"
	"math/big"
	"strings"
	"time"

	apperrors "oruswallet/internal/errors"
	"oruswallet/internal/logger"
	"oruswallet/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

//go:embed lua/verify.lua
var luaVerify string

type service struct {
	rdb       redis.UniversalClient
	scrVerify *redis.Script
	notifier  Notifier
	now       func() time.Time
	genCode   func() (string, error)
}

// Option customizes the service, mostly for tests.
type Option func(*service)

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func WithCodeGenerator(gen func() (string, error)) Option {
	return func(s *service) { s.genCode = gen }
}

// NewService creates a redis-backed OTP service. notifier may be nil.
func NewService(rdb redis.UniversalClient, notifier Notifier, opts ...Option) Service {
	if rdb == nil {
		panic("redis client is required")
	}
	s := &service{
		rdb:       rdb,
		scrVerify: redis.NewScript(luaVerify),
		notifier:  notifier,
		now:       time.Now,
		genCode:   GenerateCode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func key(purpose models.OTPPurpose, identifier string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, purpose, strings.ToLower(strings.TrimSpace(identifier)))
}

func validate(identifier string, purpose models.OTPPurpose) error {
	if strings.TrimSpace(identifier) == "" {
		return apperrors.Validation("identifier is required")
	}
	if !purpose.Valid() {
		return apperrors.Validation("unknown verification purpose")
	}
	return nil
}

func (s *service) Issue(ctx context.Context, identifier string, purpose models.OTPPurpose) (string, error) {
	if err := validate(identifier, purpose); err != nil {
		return "", err
	}
	code, err := s.genCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}

	k := key(purpose, identifier)
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, k)
		pipe.HSet(ctx, k,
			"code", code,
			"created_at", s.now().UnixMilli(),
			"attempts", 0,
		)
		pipe.PExpire(ctx, k, retention)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to store otp: %w", err)
	}

	logger.WithFields(logrus.Fields{"purpose": purpose}).Info("otp issued")
	if s.notifier != nil {
		if err := s.notifier.OTPIssued(ctx, identifier, purpose, code); err != nil {
			logger.WithField("purpose", purpose).Warnf("otp delivery trigger failed: %v", err)
		}
	}
	return code, nil
}

func (s *service) Verify(ctx context.Context, identifier string, purpose models.OTPPurpose, code string) error {
	if err := validate(identifier, purpose); err != nil {
		return err
	}

	res, err := s.scrVerify.Run(ctx, s.rdb,
		[]string{key(purpose, identifier)},
		code, s.now().UnixMilli(), Lifetime.Milliseconds(), MaxAttempts,
	).Int64()
	if err != nil {
		return fmt.Errorf("failed to verify otp: %w", err)
	}

	switch res {
	case resultConsumed:
		return nil
	case resultExpired:
		return apperrors.ErrOTPExpired
	case resultMismatch:
		return apperrors.ErrOTPMismatch
	case resultExhausted:
		logger.WithField("purpose", purpose).Warn("otp burned after too many wrong attempts")
		return apperrors.ErrOTPAttemptsExceeded
	default:
		return apperrors.ErrOTPNotFound
	}
}

// GenerateCode returns a uniformly random numeric code.
func GenerateCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < codeDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n.Int64()), nil
}
