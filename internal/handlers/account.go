package handlers

import (
	"time"

	"oruswallet/internal/models"
	"oruswallet/internal/services/account"
	"oruswallet/internal/utils"
	"oruswallet/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// AccountHandler manages linked bank accounts and saved billers.
type AccountHandler struct {
	accounts account.Service
}

func NewAccountHandler(accounts account.Service) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

func (h *AccountHandler) ListBankAccounts(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}
	accts, err := h.accounts.ListBankAccounts(c.UserContext(), userID)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{"bank_accounts": accts})
}

type linkBankAccountRequest struct {
	AccountNumber string `json:"account_number" validate:"required,numeric,min=9,max=18"`
	IFSC          string `json:"ifsc" validate:"required,ifsc"`
	BankName      string `json:"bank_name" validate:"required"`
	HolderName    string `json:"holder_name" validate:"required"`
	MakeDefault   bool   `json:"make_default"`
}

func (h *AccountHandler) LinkBankAccount(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}
	var req linkBankAccountRequest
	if err := parseBody(c, &req); err != nil {
		return utils.Error(c, err)
	}
	if err := validation.Struct(req); err != nil {
		return utils.Error(c, err)
	}
	acct, err := h.accounts.LinkBankAccount(c.UserContext(), userID, account.BankAccountInput{
		AccountNumber: req.AccountNumber,
		IFSC:          req.IFSC,
		BankName:      req.BankName,
		HolderName:    req.HolderName,
		MakeDefault:   req.MakeDefault,
	})
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Created(c, acct)
}

func (h *AccountHandler) GetBankAccount(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return utils.Error(c, err)
	}
	acct, err := h.accounts.GetBankAccount(c.UserContext(), userID, id)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, acct)
}

func (h *AccountHandler) SetDefaultBankAccount(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return utils.Error(c, err)
	}
	if err := h.accounts.SetDefaultBankAccount(c.UserContext(), userID, id); err != nil {
		return utils.Error(c, err)
	}
	return utils.Message(c, fiber.StatusOK, "default bank account updated")
}

func (h *AccountHandler) UnlinkBankAccount(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return utils.Error(c, err)
	}
	if err := h.accounts.UnlinkBankAccount(c.UserContext(), userID, id); err != nil {
		return utils.Error(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AccountHandler) ListBillers(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}
	billers, err := h.accounts.ListBillers(c.UserContext(), userID)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{"billers": billers})
}

type saveBillerRequest struct {
	BillType       string           `json:"bill_type" validate:"required"`
	Provider       string           `json:"provider" validate:"required"`
	ConsumerID     string           `json:"consumer_id" validate:"required"`
	RegisteredName *string          `json:"registered_name"`
	Nickname       *string          `json:"nickname"`
	AutoPayEnabled *bool            `json:"auto_pay_enabled"`
	AutoPayLimit   *decimal.Decimal `json:"auto_pay_limit"`
}

// SaveBiller handles POST /api/billers. An existing biller with the same
// key is updated in place.
func (h *AccountHandler) SaveBiller(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}
	var req saveBillerRequest
	if err := parseBody(c, &req); err != nil {
		return utils.Error(c, err)
	}
	if err := validation.Struct(req); err != nil {
		return utils.Error(c, err)
	}
	biller, err := h.accounts.UpsertBiller(c.UserContext(), userID, account.BillerKey{
		BillType:   req.BillType,
		Provider:   req.Provider,
		ConsumerID: req.ConsumerID,
	}, models.BillerAttrs{
		RegisteredName: req.RegisteredName,
		Nickname:       req.Nickname,
		AutoPayEnabled: req.AutoPayEnabled,
		AutoPayLimit:   req.AutoPayLimit,
	})
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, biller)
}

type billDueRequest struct {
	Amount     decimal.Decimal `json:"amount" validate:"required,money"`
	DueDate    time.Time       `json:"due_date" validate:"required"`
	BillNumber string          `json:"bill_number"`
}

// RecordDue handles PUT /api/billers/:id/due with a bill fetched from the provider.
func (h *AccountHandler) RecordDue(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return utils.Error(c, err)
	}
	var req billDueRequest
	if err := parseBody(c, &req); err != nil {
		return utils.Error(c, err)
	}
	if err := validation.Struct(req); err != nil {
		return utils.Error(c, err)
	}
	if err := h.accounts.RecordBillDue(c.UserContext(), userID, id, req.Amount, req.DueDate, req.BillNumber); err != nil {
		return utils.Error(c, err)
	}
	return utils.Message(c, fiber.StatusOK, "bill recorded")
}
