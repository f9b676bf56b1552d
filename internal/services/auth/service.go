package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	apperrors "oruswallet/internal/errors"
	"oruswallet/internal/logger"
	"oruswallet/internal/models"
	"oruswallet/internal/repositories"
	"oruswallet/internal/services/authz"
	"oruswallet/internal/services/otp"
	"oruswallet/internal/utils"
	"oruswallet/internal/validation"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	VerifyRegistration(ctx context.Context, userID uint, code string) error
	Login(ctx context.Context, identifier, password string) (*models.User, string, error)
	Logout(ctx context.Context, userID uint) error
	ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error

	RequestOTP(ctx context.Context, userID uint, purpose models.OTPPurpose) error
	VerifyOTP(ctx context.Context, userID uint, purpose models.OTPPurpose, code string) error
	RequestPINReset(ctx context.Context, phone string) error
	ResetPIN(ctx context.Context, phone, code, pin string) error
}

type RegisterInput struct {
	Name        string     `json:"name" validate:"required,min=2,max=100"`
	Email       string     `json:"email" validate:"required,email"`
	Phone       string     `json:"phone" validate:"required,len=10,numeric"`
	Password    string     `json:"password" validate:"required"`
	DateOfBirth *time.Time `json:"date_of_birth"`
}

// TokenConfig controls the session tokens issued by Login.
type TokenConfig struct {
	Secret string
	TTL    time.Duration
}

type service struct {
	store    repositories.Store
	gate     authz.Gate
	otp      otp.Service
	tokens   TokenConfig
	currency string
}

func NewService(store repositories.Store, gate authz.Gate, otpService otp.Service, tokens TokenConfig) Service {
	return &service{
		store:    store,
		gate:     gate,
		otp:      otpService,
		tokens:   tokens,
		currency: "INR",
	}
}

var (
	errInvalidCredentials = apperrors.ErrUnauthorized.WithMessage("invalid credentials")

	dummyOnce sync.Once
	dummyHash []byte
)

func dummyPasswordHash() []byte {
	dummyOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("orus-dummy-password"), bcrypt.DefaultCost)
	})
	return dummyHash
}

func (s *service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if !validation.StrongPassword(in.Password) {
		return nil, apperrors.Validation("password must be 8 to 72 characters with a letter, a number and a special character")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:        in.Name,
		Email:       in.Email,
		Phone:       in.Phone,
		Password:    string(hashed),
		DateOfBirth: in.DateOfBirth,
		Status:      models.UserStatusPendingVerification,
		KYC:         models.KYCVerification{Status: models.KYCPending},
	}
	err = s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		return tx.Wallets().Create(ctx, &models.Wallet{
			UserID:   user.ID,
			Balance:  decimal.Zero,
			Currency: s.currency,
			Status:   models.WalletStatusActive,
		})
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, s.duplicateUser(ctx, in)
		}
		return nil, err
	}

	// The account exists either way; a failed send is retried through RequestOTP.
	if _, err := s.otp.Issue(ctx, user.Phone, models.OTPPurposeRegistration); err != nil {
		logger.WithField("user_id", user.ID).Warnf("registration OTP not issued: %v", err)
	}
	logger.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

func (s *service) duplicateUser(ctx context.Context, in RegisterInput) error {
	if _, err := s.store.Users().GetByEmail(ctx, in.Email); err == nil {
		return apperrors.ErrEmailTaken
	}
	return apperrors.ErrPhoneTaken
}

func (s *service) VerifyRegistration(ctx context.Context, userID uint, code string) error {
	user, err := s.user(ctx, userID)
	if err != nil {
		return err
	}
	if user.Status == models.UserStatusActive {
		return nil
	}
	if err := s.authorize(ctx, userID, authz.ActionRegistration, code); err != nil {
		return err
	}
	if err := s.store.Users().UpdateStatus(ctx, userID, models.UserStatusActive); err != nil {
		return err
	}
	logger.WithField("user_id", userID).Info("registration verified")
	return nil
}

// Login accepts an email address or a phone number as identifier.
func (s *service) Login(ctx context.Context, identifier, password string) (*models.User, string, error) {
	identifier = strings.TrimSpace(identifier)
	var (
		user *models.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.store.Users().GetByEmail(ctx, strings.ToLower(identifier))
	} else {
		user, err = s.store.Users().GetByPhone(ctx, identifier)
	}
	if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, "", err
	}

	hash := dummyPasswordHash()
	if user != nil {
		hash = []byte(user.Password)
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil || user == nil {
		logger.WithField("identifier", identifier).Warn("login failed")
		return nil, "", errInvalidCredentials
	}
	if user.Status != models.UserStatusActive {
		return nil, "", apperrors.ErrUnauthorized.WithMessage("account is not verified")
	}

	token, err := utils.GenerateToken(s.tokens.Secret, s.tokens.TTL, &models.UserClaims{
		UserID:       user.ID,
		Email:        user.Email,
		TokenVersion: user.TokenVersion,
	})
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Logout invalidates every session token issued so far.
func (s *service) Logout(ctx context.Context, userID uint) error {
	return s.store.Users().IncrementTokenVersion(ctx, userID)
}

func (s *service) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	user, err := s.user(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return apperrors.ErrUnauthorized.WithMessage("invalid old password")
	}
	if !validation.StrongPassword(newPassword) {
		return apperrors.Validation("password must be 8 to 72 characters with a letter, a number and a special character")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		if err := tx.Users().UpdatePassword(ctx, userID, string(hashed)); err != nil {
			return err
		}
		return tx.Users().IncrementTokenVersion(ctx, userID)
	})
}

func (s *service) RequestOTP(ctx context.Context, userID uint, purpose models.OTPPurpose) error {
	if !purpose.Valid() {
		return apperrors.Validation("unknown OTP purpose")
	}
	user, err := s.user(ctx, userID)
	if err != nil {
		return err
	}
	identifier := user.Phone
	if purpose == models.OTPPurposeEmailVerification {
		identifier = user.Email
	}
	_, err = s.otp.Issue(ctx, identifier, purpose)
	return err
}

func (s *service) VerifyOTP(ctx context.Context, userID uint, purpose models.OTPPurpose, code string) error {
	if !purpose.Valid() {
		return apperrors.Validation("unknown OTP purpose")
	}
	if purpose == models.OTPPurposeRegistration {
		return s.VerifyRegistration(ctx, userID, code)
	}
	return s.authorize(ctx, userID, authz.Action(purpose), code)
}

// RequestPINReset sends a reset code to the phone. Unknown numbers are
// accepted silently so the endpoint does not reveal who is registered.
func (s *service) RequestPINReset(ctx context.Context, phone string) error {
	if !validation.MobileNumber(phone) {
		return apperrors.Validation("mobile number must be 10 digits")
	}
	if _, err := s.store.Users().GetByPhone(ctx, phone); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil
		}
		return err
	}
	_, err := s.otp.Issue(ctx, phone, models.OTPPurposePINReset)
	return err
}

func (s *service) ResetPIN(ctx context.Context, phone, code, pin string) error {
	if !validation.PIN(pin) {
		return apperrors.Validation("PIN must be 4 to 6 digits")
	}
	user, err := s.store.Users().GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrUnauthorized.WithMessage("invalid or expired code")
		}
		return err
	}
	if err := s.authorize(ctx, user.ID, authz.ActionPINReset, code); err != nil {
		return err
	}
	return s.gate.SetPIN(ctx, user.ID, pin)
}

func (s *service) authorize(ctx context.Context, userID uint, action authz.Action, credential string) error {
	d, err := s.gate.Authorize(ctx, userID, action, credential)
	if err != nil {
		return err
	}
	return d.Err()
}

func (s *service) user(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil, apperrors.ErrUserNotFound
	}
	return user, err
}
