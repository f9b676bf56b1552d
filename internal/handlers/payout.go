package handlers

import (
	"oruswallet/internal/services/authz"
	"oruswallet/internal/services/transfer"
	"oruswallet/internal/utils"
	"oruswallet/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type payBillRequest struct {
	// Amount is optional; the outstanding due is paid when omitted.
	Amount         decimal.Decimal `json:"amount"`
	PIN            string          `json:"pin" validate:"required"`
	IdempotencyKey string          `json:"idempotencyKey" validate:"max=128"`
}

// PayBill handles POST /api/billers/:id/pay.
func (h *TransferHandler) PayBill(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}
	billerID, err := paramID(c, "id")
	if err != nil {
		return utils.Error(c, err)
	}
	var req payBillRequest
	if err := parseBody(c, &req); err != nil {
		return utils.Error(c, err)
	}
	if err := validation.Struct(req); err != nil {
		return utils.Error(c, err)
	}

	tx, err := h.engine.PayBill(c.UserContext(), transfer.PayBillRequest{
		UserID:         userID,
		BillerID:       billerID,
		Amount:         req.Amount,
		Credential:     transfer.Credential{Action: authz.ActionPayment, Secret: req.PIN},
		IdempotencyKey: idempotencyKey(c, req.IdempotencyKey),
	})
	return respondTransaction(c, tx, err)
}

type rechargeRequest struct {
	Operator       string          `json:"operator" validate:"required"`
	MobileNumber   string          `json:"mobileNumber" validate:"required"`
	Plan           string          `json:"plan"`
	Amount         decimal.Decimal `json:"amount" validate:"required,money"`
	PIN            string          `json:"pin" validate:"required"`
	IdempotencyKey string          `json:"idempotencyKey" validate:"max=128"`
}

// Recharge handles POST /api/recharge.
func (h *TransferHandler) Recharge(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}
	var req rechargeRequest
	if err := parseBody(c, &req); err != nil {
		return utils.Error(c, err)
	}
	if err := validation.Struct(req); err != nil {
		return utils.Error(c, err)
	}

	tx, err := h.engine.Recharge(c.UserContext(), transfer.RechargeRequest{
		UserID:         userID,
		Operator:       req.Operator,
		MobileNumber:   req.MobileNumber,
		Plan:           req.Plan,
		Amount:         req.Amount,
		Credential:     transfer.Credential{Action: authz.ActionPayment, Secret: req.PIN},
		IdempotencyKey: idempotencyKey(c, req.IdempotencyKey),
	})
	return respondTransaction(c, tx, err)
}

type withdrawRequest struct {
	Amount         decimal.Decimal `json:"amount" validate:"required,money"`
	BankAccountID  uint            `json:"bankAccountId"`
	PIN            string          `json:"pin" validate:"required"`
	IdempotencyKey string          `json:"idempotencyKey" validate:"max=128"`
}

// Withdraw handles POST /api/wallet-withdraw.
func (h *TransferHandler) Withdraw(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}
	var req withdrawRequest
	if err := parseBody(c, &req); err != nil {
		return utils.Error(c, err)
	}
	if err := validation.Struct(req); err != nil {
		return utils.Error(c, err)
	}

	tx, err := h.engine.Withdraw(c.UserContext(), transfer.WithdrawRequest{
		UserID:         userID,
		BankAccountID:  req.BankAccountID,
		Amount:         req.Amount,
		Credential:     transfer.Credential{Action: authz.ActionPayment, Secret: req.PIN},
		IdempotencyKey: idempotencyKey(c, req.IdempotencyKey),
	})
	return respondTransaction(c, tx, err)
}
