package settlement

import (
	"context"
	"strings"

	apperrors "oruswallet/internal/errors"
	"oruswallet/internal/logger"
	"oruswallet/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Gateway accepts settlements that an external system confirms out of band.
// Only the local leg is performed by the wallet.
type Gateway struct{}

func NewGateway() *Gateway { return &Gateway{} }

func (g *Gateway) Collect(_ context.Context, req FundingRequest) (Receipt, error) {
	switch req.Method {
	case MethodBank:
		if req.Bank == nil {
			return Receipt{}, apperrors.ErrNoDefaultBankAccount
		}
	case MethodUPI:
		if strings.TrimSpace(req.SourceToken) == "" {
			return Receipt{}, apperrors.Validation("UPI handle is required")
		}
	case MethodWallet, MethodCard:
	default:
		return Receipt{}, apperrors.ErrUnsupportedPaymentMethod
	}

	receipt := Receipt{ExternalRef: "GW-" + uuid.NewString()}
	logger.WithFields(logrus.Fields{
		"reference":    req.Reference,
		"method":       req.Method,
		"external_ref": receipt.ExternalRef,
	}).Info("funding confirmed by gateway")
	return receipt, nil
}

func (g *Gateway) Pay(_ context.Context, req PayoutRequest) (Receipt, error) {
	switch req.Metadata.Type {
	case models.TransactionTypeBillPayment, models.TransactionTypeRecharge, models.TransactionTypeWithdrawal:
	default:
		return Receipt{}, apperrors.Validation("unsupported payout type")
	}
	if err := req.Metadata.Validate(); err != nil {
		return Receipt{}, apperrors.Validation(err.Error())
	}

	receipt := Receipt{ExternalRef: "GW-" + uuid.NewString()}
	logger.WithFields(logrus.Fields{
		"reference":    req.Reference,
		"type":         req.Metadata.Type,
		"external_ref": receipt.ExternalRef,
	}).Info("payout confirmed by gateway")
	return receipt, nil
}
