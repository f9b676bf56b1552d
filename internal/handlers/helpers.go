// Package handlers adapts HTTP requests to the wallet services.
package handlers

import (
	"strconv"
	"strings"

	apperrors "oruswallet/internal/errors"
	"oruswallet/internal/models"
	"oruswallet/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// IdempotencyHeader carries the client's retry key; a body field of the
// same meaning is used when the header is absent.
const IdempotencyHeader = "Idempotency-Key"

// currentUserID returns the user authenticated by the bearer middleware.
func currentUserID(c *fiber.Ctx) (uint, bool) {
	claims, ok := utils.SessionClaims(c)
	if !ok {
		return 0, false
	}
	return claims.UserID, true
}

func idempotencyKey(c *fiber.Ctx, fromBody string) string {
	if key := strings.TrimSpace(c.Get(IdempotencyHeader)); key != "" {
		return key
	}
	return strings.TrimSpace(fromBody)
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.Validation(name + " must be a positive integer")
	}
	return uint(id), nil
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.Validation("invalid request body")
	}
	return nil
}

// transactionResult is the response shape of every money-moving endpoint.
type transactionResult struct {
	TransactionID string                   `json:"transactionId"`
	Reference     string                   `json:"reference"`
	Status        models.TransactionStatus `json:"status"`
	Amount        string                   `json:"amount"`
	Type          models.TransactionType   `json:"type"`
	Message       string                   `json:"message,omitempty"`
}

func newTransactionResult(tx *models.Transaction) transactionResult {
	return transactionResult{
		TransactionID: tx.TransactionID,
		Reference:     tx.Reference,
		Status:        tx.Status,
		Amount:        tx.Amount.StringFixed(2),
		Type:          tx.Type,
	}
}

// respondTransaction writes the entry an operation produced. A reversed
// partial failure is not an HTTP error: the entry is reported as failed.
func respondTransaction(c *fiber.Ctx, tx *models.Transaction, err error) error {
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindPartialFailureReversed && tx != nil {
			res := newTransactionResult(tx)
			res.Message = apperrors.Message(err)
			return utils.Success(c, res)
		}
		return utils.Error(c, err)
	}
	return utils.Success(c, newTransactionResult(tx))
}
