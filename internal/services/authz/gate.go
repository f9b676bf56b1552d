// Package authz decides whether a user may perform a sensitive action
// given a credential: an OTP, a payment PIN, a session token or a mandate.
package authz

import (
	"context"
	"errors"
	"strconv"
	"sync"

	apperrors "oruswallet/internal/errors"
	"oruswallet/internal/logger"
	"oruswallet/internal/models"
	"oruswallet/internal/repositories"
	"oruswallet/internal/services/otp"
	"oruswallet/internal/utils"
	"oruswallet/internal/validation"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type Action string

const (
	ActionRegistration      Action = "registration"
	ActionEmailVerification Action = "email_verification"
	ActionPhoneVerification Action = "phone_verification"
	ActionPINReset          Action = "pin_reset"
	ActionPayment           Action = "payment"
	ActionSession           Action = "session"
	ActionAutoPay           Action = "autopay"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Approved bool
	Reason   string
}

func Approve() Decision { return Decision{Approved: true} }

func Deny(reason string) Decision { return Decision{Reason: reason} }

// Err converts a denial into an authorization error, or nil when approved.
func (d Decision) Err() error {
	if d.Approved {
		return nil
	}
	return apperrors.ErrUnauthorized.WithMessage(d.Reason)
}

type Gate interface {
	// Authorize returns an error only for infrastructure faults; a rejected
	// credential is a Denied decision.
	Authorize(ctx context.Context, userID uint, action Action, credential string) (Decision, error)
	SetPIN(ctx context.Context, userID uint, pin string) error
}

type gate struct {
	store     repositories.Store
	otp       otp.Service
	jwtSecret string
}

func NewGate(store repositories.Store, otpService otp.Service, jwtSecret string) Gate {
	return &gate{
		store:     store,
		otp:       otpService,
		jwtSecret: jwtSecret,
	}
}

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// dummyPINHash is compared against when a user has no PIN so the
// missing-PIN path costs one bcrypt comparison like the normal one.
func dummyPINHash() []byte {
	dummyOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("000000"), bcrypt.DefaultCost)
		if err != nil {
			panic("failed to build dummy pin hash: " + err.Error())
		}
		dummyHash = h
	})
	return dummyHash
}

func (g *gate) Authorize(ctx context.Context, userID uint, action Action, credential string) (Decision, error) {
	var (
		d   Decision
		err error
	)
	switch action {
	case ActionRegistration, ActionEmailVerification, ActionPhoneVerification, ActionPINReset:
		d, err = g.checkOTP(ctx, userID, models.OTPPurpose(action), credential)
	case ActionPayment:
		d, err = g.checkPIN(ctx, userID, credential)
	case ActionSession:
		d, err = g.checkSession(ctx, userID, credential)
	case ActionAutoPay:
		d, err = g.checkMandate(ctx, userID, credential)
	default:
		d = Deny("unsupported action")
	}
	if err == nil && !d.Approved {
		logger.WithFields(logrus.Fields{
			"user_id": userID,
			"action":  action,
			"reason":  d.Reason,
		}).Warn("authorization denied")
	}
	return d, err
}

// identifierFor picks where the code for a purpose was delivered.
func identifierFor(user *models.User, purpose models.OTPPurpose) string {
	if purpose == models.OTPPurposeEmailVerification {
		return user.Email
	}
	return user.Phone
}

func (g *gate) checkOTP(ctx context.Context, userID uint, purpose models.OTPPurpose, code string) (Decision, error) {
	user, err := g.store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return Deny("unknown user"), nil
		}
		return Decision{}, err
	}

	err = g.otp.Verify(ctx, identifierFor(user, purpose), purpose, code)
	switch {
	case err == nil:
		return Approve(), nil
	case apperrors.KindOf(err) == apperrors.KindAuthorization,
		apperrors.KindOf(err) == apperrors.KindValidation:
		return Deny(apperrors.Message(err)), nil
	default:
		return Decision{}, err
	}
}

func (g *gate) checkPIN(ctx context.Context, userID uint, pin string) (Decision, error) {
	user, err := g.store.Users().GetByID(ctx, userID)
	if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
		return Decision{}, err
	}

	hash := dummyPINHash()
	if user != nil && user.HasPIN() {
		hash = []byte(user.PinHash)
	}
	matched := bcrypt.CompareHashAndPassword(hash, []byte(pin)) == nil

	switch {
	case user == nil:
		return Deny("unknown user"), nil
	case !user.HasPIN():
		return Deny("payment PIN not set"), nil
	case !matched:
		return Deny("incorrect PIN"), nil
	case user.Status != models.UserStatusActive:
		return Deny("account is not active"), nil
	}
	return Approve(), nil
}

func (g *gate) checkSession(ctx context.Context, userID uint, token string) (Decision, error) {
	claims, err := utils.ParseToken(g.jwtSecret, token)
	if err != nil {
		return Deny("invalid or expired session"), nil
	}
	if claims.UserID != userID {
		return Deny("session does not belong to this user"), nil
	}

	user, err := g.store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return Deny("unknown user"), nil
		}
		return Decision{}, err
	}
	if claims.TokenVersion != user.TokenVersion {
		return Deny("session expired"), nil
	}
	return Approve(), nil
}

// checkMandate approves debits backed by a standing auto-pay instruction.
// The credential is the biller id.
func (g *gate) checkMandate(ctx context.Context, userID uint, credential string) (Decision, error) {
	billerID, err := strconv.ParseUint(credential, 10, 64)
	if err != nil {
		return Deny("invalid mandate"), nil
	}
	biller, err := g.store.Billers().GetByID(ctx, userID, uint(billerID))
	if err != nil {
		if errors.Is(err, repositories.ErrBillerNotFound) {
			return Deny("no mandate for biller"), nil
		}
		return Decision{}, err
	}
	if !biller.AutoPayEnabled {
		return Deny("auto-pay is disabled for biller"), nil
	}
	return Approve(), nil
}

func (g *gate) SetPIN(ctx context.Context, userID uint, pin string) error {
	if !validation.PIN(pin) {
		return apperrors.Validation("PIN must be 4 to 6 digits")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := g.store.Users().UpdatePIN(ctx, userID, string(hash)); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrUserNotFound
		}
		return err
	}
	logger.WithField("user_id", userID).Info("payment PIN updated")
	return nil
}
