package handlers

import (
	"strings"

	apperrors "oruswallet/internal/errors"
	"oruswallet/internal/middleware"
	"oruswallet/internal/services/authz"
	"oruswallet/internal/services/settlement"
	"oruswallet/internal/services/transfer"
	"oruswallet/internal/utils"
	"oruswallet/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// TransferHandler exposes the money-moving endpoints.
type TransferHandler struct {
	engine    transfer.Service
	jwtSecret string
}

func NewTransferHandler(engine transfer.Service, jwtSecret string) *TransferHandler {
	return &TransferHandler{engine: engine, jwtSecret: jwtSecret}
}

type moneyTransferRequest struct {
	SenderID       uint            `json:"senderId" validate:"required"`
	RecipientID    uint            `json:"recipientId" validate:"required"`
	Amount         decimal.Decimal `json:"amount" validate:"required,money"`
	AuthToken      string          `json:"authToken" validate:"required"`
	IdempotencyKey string          `json:"idempotencyKey" validate:"max=128"`
}

// MoneyTransfer handles POST /api/money-transfer. The session token in the
// body must belong to the sender.
func (h *TransferHandler) MoneyTransfer(c *fiber.Ctx) error {
	var req moneyTransferRequest
	if err := parseBody(c, &req); err != nil {
		return utils.Error(c, err)
	}
	if strings.TrimSpace(req.AuthToken) == "" {
		return utils.Unauthorized(c, "authToken is required")
	}
	if err := validation.Struct(req); err != nil {
		return utils.Error(c, err)
	}

	tx, err := h.engine.Transfer(c.UserContext(), transfer.TransferRequest{
		SenderID:       req.SenderID,
		RecipientID:    req.RecipientID,
		Amount:         req.Amount,
		Credential:     transfer.Credential{Action: authz.ActionSession, Secret: req.AuthToken},
		IdempotencyKey: idempotencyKey(c, req.IdempotencyKey),
		Channel:        transfer.ChannelWallet,
	})
	return respondTransaction(c, tx, err)
}

type qrPaymentRequest struct {
	RecipientID    uint            `json:"recipientId" validate:"required"`
	Amount         decimal.Decimal `json:"amount" validate:"required,money"`
	PIN            string          `json:"pin" validate:"required"`
	IdempotencyKey string          `json:"idempotencyKey" validate:"max=128"`
}

// QRPayment handles POST /api/qr-payment for the bearer-authenticated payer.
func (h *TransferHandler) QRPayment(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}
	var req qrPaymentRequest
	if err := parseBody(c, &req); err != nil {
		return utils.Error(c, err)
	}
	if err := validation.Struct(req); err != nil {
		return utils.Error(c, err)
	}

	tx, err := h.engine.Transfer(c.UserContext(), transfer.TransferRequest{
		SenderID:       userID,
		RecipientID:    req.RecipientID,
		Amount:         req.Amount,
		Credential:     transfer.Credential{Action: authz.ActionPayment, Secret: req.PIN},
		IdempotencyKey: idempotencyKey(c, req.IdempotencyKey),
		Channel:        transfer.ChannelQR,
	})
	return respondTransaction(c, tx, err)
}

type addMoneyRequest struct {
	Amount         decimal.Decimal `json:"amount" validate:"required,money"`
	PaymentMethod  string          `json:"paymentMethod" validate:"required,oneof=wallet bank card upi"`
	AuthToken      string          `json:"authToken"`
	BankAccountID  uint            `json:"bankAccountId"`
	SourceToken    string          `json:"sourceToken"`
	IdempotencyKey string          `json:"idempotencyKey" validate:"max=128"`
}

// AddMoney handles POST /api/wallet-add-money. The user is the subject of
// authToken, or of the bearer header when the body carries none.
func (h *TransferHandler) AddMoney(c *fiber.Ctx) error {
	var req addMoneyRequest
	if err := parseBody(c, &req); err != nil {
		return utils.Error(c, err)
	}
	token := strings.TrimSpace(req.AuthToken)
	if token == "" {
		token, _ = middleware.BearerToken(c)
	}
	if token == "" {
		return utils.Unauthorized(c, "authToken is required")
	}
	claims, err := utils.ParseToken(h.jwtSecret, token)
	if err != nil {
		return utils.Unauthorized(c, "invalid or expired session")
	}
	if err := validation.Struct(req); err != nil {
		return utils.Error(c, err)
	}

	tx, err := h.engine.AddMoney(c.UserContext(), transfer.AddMoneyRequest{
		UserID:         claims.UserID,
		Amount:         req.Amount,
		Method:         settlement.Method(req.PaymentMethod),
		BankAccountID:  req.BankAccountID,
		SourceToken:    req.SourceToken,
		Credential:     transfer.Credential{Action: authz.ActionSession, Secret: token},
		IdempotencyKey: idempotencyKey(c, req.IdempotencyKey),
	})
	return respondTransaction(c, tx, err)
}

// Cancel handles POST /api/transactions/:reference/cancel.
func (h *TransferHandler) Cancel(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}
	reference := strings.TrimSpace(c.Params("reference"))
	if reference == "" {
		return utils.Error(c, apperrors.Validation("reference is required"))
	}
	tx, err := h.engine.Cancel(c.UserContext(), userID, reference)
	return respondTransaction(c, tx, err)
}
