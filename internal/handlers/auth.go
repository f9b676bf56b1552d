package handlers

import (
	"oruswallet/internal/models"
	"oruswallet/internal/services/auth"
	"oruswallet/internal/services/authz"
	"oruswallet/internal/utils"
	"oruswallet/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	auth auth.Service
	gate authz.Gate
}

func NewAuthHandler(authService auth.Service, gate authz.Gate) *AuthHandler {
	return &AuthHandler{auth: authService, gate: gate}
}

func userResponse(u *models.User) fiber.Map {
	return fiber.Map{
		"id":      u.ID,
		"name":    u.Name,
		"email":   u.Email,
		"phone":   u.Phone,
		"status":  u.Status,
		"has_pin": u.HasPIN(),
	}
}

// Register handles POST /api/register. A registration code is sent to the phone.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in auth.RegisterInput
	if err := parseBody(c, &in); err != nil {
		return utils.Error(c, err)
	}
	user, err := h.auth.Register(c.UserContext(), in)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Created(c, fiber.Map{
		"user":    userResponse(user),
		"message": "verification code sent",
	})
}

type codeRequest struct {
	UserID uint   `json:"user_id" validate:"required"`
	Code   string `json:"code" validate:"required,len=6,numeric"`
}

// VerifyRegistration handles POST /api/register/verify.
func (h *AuthHandler) VerifyRegistration(c *fiber.Ctx) error {
	var req codeRequest
	if err := parseBody(c, &req); err != nil {
		return utils.Error(c, err)
	}
	if err := validation.Struct(req); err != nil {
		return utils.Error(c, err)
	}
	if err := h.auth.VerifyRegistration(c.UserContext(), req.UserID, req.Code); err != nil {
		return utils.Error(c, err)
	}
	return utils.Message(c, fiber.StatusOK, "account verified")
}

type loginRequest struct {
	// Identifier is an email address or a phone number.
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Password   string `json:"password" validate:"required"`
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return utils.Error(c, err)
	}
	identifier := req.Identifier
	if identifier == "" {
		identifier = req.Email
	}
	if identifier == "" {
		identifier = req.Phone
	}
	if identifier == "" || req.Password == "" {
		return utils.BadRequest(c, "email or phone and password are required")
	}

	user, token, err := h.auth.Login(c.UserContext(), identifier, req.Password)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{
		"access_token": token,
		"token_type":   "Bearer",
		"user":         userResponse(user),
	})
}

// Logout handles POST /api/logout and revokes every issued session.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}
	if err := h.auth.Logout(c.UserContext(), userID); err != nil {
		return utils.Error(c, err)
	}
	return utils.Message(c, fiber.StatusOK, "logged out")
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}
	var req changePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return utils.Error(c, err)
	}
	if err := validation.Struct(req); err != nil {
		return utils.Error(c, err)
	}
	if err := h.auth.ChangePassword(c.UserContext(), userID, req.OldPassword, req.NewPassword); err != nil {
		return utils.Error(c, err)
	}
	return utils.Message(c, fiber.StatusOK, "password changed")
}

type otpRequest struct {
	UserID  uint   `json:"user_id" validate:"required"`
	Purpose string `json:"purpose" validate:"required"`
	Code    string `json:"code"`
}

// RequestOTP handles POST /api/otp/request.
func (h *AuthHandler) RequestOTP(c *fiber.Ctx) error {
	var req otpRequest
	if err := parseBody(c, &req); err != nil {
		return utils.Error(c, err)
	}
	if err := validation.Struct(req); err != nil {
		return utils.Error(c, err)
	}
	if err := h.auth.RequestOTP(c.UserContext(), req.UserID, models.OTPPurpose(req.Purpose)); err != nil {
		return utils.Error(c, err)
	}
	return utils.Message(c, fiber.StatusAccepted, "verification code sent")
}

// VerifyOTP handles POST /api/otp/verify.
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req otpRequest
	if err := parseBody(c, &req); err != nil {
		return utils.Error(c, err)
	}
	if err := validation.Struct(req); err != nil {
		return utils.Error(c, err)
	}
	if req.Code == "" {
		return utils.BadRequest(c, "code is required")
	}
	if err := h.auth.VerifyOTP(c.UserContext(), req.UserID, models.OTPPurpose(req.Purpose), req.Code); err != nil {
		return utils.Error(c, err)
	}
	return utils.Message(c, fiber.StatusOK, "verified")
}

type setPINRequest struct {
	PIN string `json:"pin" validate:"required,pin"`
}

// SetPIN handles POST /api/pin for the authenticated user.
func (h *AuthHandler) SetPIN(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}
	var req setPINRequest
	if err := parseBody(c, &req); err != nil {
		return utils.Error(c, err)
	}
	if err := validation.Struct(req); err != nil {
		return utils.Error(c, err)
	}
	if err := h.gate.SetPIN(c.UserContext(), userID, req.PIN); err != nil {
		return utils.Error(c, err)
	}
	return utils.Message(c, fiber.StatusOK, "PIN updated")
}

type pinResetRequest struct {
	Phone string `json:"phone" validate:"required"`
	Code  string `json:"code"`
	PIN   string `json:"pin"`
}

// RequestPINReset handles POST /api/pin/reset/request.
func (h *AuthHandler) RequestPINReset(c *fiber.Ctx) error {
	var req pinResetRequest
	if err := parseBody(c, &req); err != nil {
		return utils.Error(c, err)
	}
	if err := validation.Struct(req); err != nil {
		return utils.Error(c, err)
	}
	if err := h.auth.RequestPINReset(c.UserContext(), req.Phone); err != nil {
		return utils.Error(c, err)
	}
	return utils.Message(c, fiber.StatusAccepted, "if the number is registered a code has been sent")
}

// ResetPIN handles POST /api/pin/reset.
func (h *AuthHandler) ResetPIN(c *fiber.Ctx) error {
	var req pinResetRequest
	if err := parseBody(c, &req); err != nil {
		return utils.Error(c, err)
	}
	if err := validation.Struct(req); err != nil {
		return utils.Error(c, err)
	}
	if err := h.auth.ResetPIN(c.UserContext(), req.Phone, req.Code, req.PIN); err != nil {
		return utils.Error(c, err)
	}
	return utils.Message(c, fiber.StatusOK, "PIN updated")
}
