package handlers

import (
	"time"

	apperrors "oruswallet/internal/errors"
	"oruswallet/internal/models"
	"oruswallet/internal/repositories"
	"oruswallet/internal/services/ledger"
	"oruswallet/internal/utils"

	"github.com/gofiber/fiber/v2"
)

const maxPageSize = 100

type TransactionHandler struct {
	ledger ledger.Service
}

func NewTransactionHandler(ledgerSvc ledger.Service) *TransactionHandler {
	return &TransactionHandler{ledger: ledgerSvc}
}

// List handles GET /api/transactions. Supported filters: type, status,
// from and to (RFC 3339), and direction=received for incoming transfers.
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	page := utils.PageFromQuery(c, 20, maxPageSize)

	var (
		list  []models.Transaction
		total int64
		err   error
	)
	if c.Query("direction") == "received" {
		list, total, err = h.ledger.ListReceived(c.UserContext(), userID, page.Limit, page.Offset())
	} else {
		var filter repositories.TransactionFilter
		filter, err = parseFilter(c)
		if err != nil {
			return utils.Error(c, err)
		}
		list, total, err = h.ledger.ListByUser(c.UserContext(), userID, filter, page.Limit, page.Offset())
	}
	if err != nil {
		return utils.Error(c, err)
	}

	return utils.Success(c, utils.PagedList{Data: list, Pagination: page.WithTotal(total)})
}

func parseFilter(c *fiber.Ctx) (repositories.TransactionFilter, error) {
	filter := repositories.TransactionFilter{
		Type:   models.TransactionType(c.Query("type")),
		Status: models.TransactionStatus(c.Query("status")),
	}
	for name, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, apperrors.Validation(name + " must be an RFC 3339 timestamp")
		}
		*dst = &t
	}
	return filter, nil
}

// Get handles GET /api/transactions/:reference for the sender or recipient.
func (h *TransactionHandler) Get(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}
	tx, err := h.ledger.GetForUser(c.UserContext(), userID, c.Params("reference"))
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, tx)
}
