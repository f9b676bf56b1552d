package settlement

import (
	"context"
	"errors"
	"strings"

	apperrors "oruswallet/internal/errors"
	"oruswallet/internal/logger"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
)

// StripeCollector charges a card through a confirmed PaymentIntent.
type StripeCollector struct {
	api *client.API
}

func NewStripeCollector(secretKey string) *StripeCollector {
	return &StripeCollector{api: client.New(secretKey, nil)}
}

// NewStripeCollectorWithBackends is used to point the client at a test server.
func NewStripeCollectorWithBackends(secretKey string, backends *stripe.Backends) *StripeCollector {
	return &StripeCollector{api: client.New(secretKey, backends)}
}

func (s *StripeCollector) Collect(ctx context.Context, req FundingRequest) (Receipt, error) {
	if req.Method != MethodCard {
		return Receipt{}, apperrors.ErrUnsupportedPaymentMethod
	}
	if strings.TrimSpace(req.SourceToken) == "" {
		return Receipt{}, apperrors.Validation("card payment method is required")
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.Amount.Shift(2).IntPart()),
		Currency:           stripe.String(strings.ToLower(req.Currency)),
		PaymentMethod:      stripe.String(req.SourceToken),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Confirm:            stripe.Bool(true),
		Description:        stripe.String("Wallet top-up " + req.Reference),
	}
	params.Context = ctx
	params.AddMetadata("reference", req.Reference)
	// Retrying the same ledger entry never charges twice.
	params.SetIdempotencyKey(req.Reference)

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			return Receipt{}, apperrors.ErrPaymentDeclined.WithMessage(stripeErr.Msg)
		}
		return Receipt{}, err
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		logger.WithFields(logrus.Fields{"reference": req.Reference, "payment_intent": pi.ID, "status": pi.Status}).
			Warn("payment intent not settled")
		return Receipt{}, apperrors.ErrPaymentDeclined.WithMessage("card payment requires further action")
	}
	return Receipt{ExternalRef: pi.ID}, nil
}
