package settlement

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "oruswallet/internal/errors"
	"oruswallet/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v72"
)

func newTestStripe(t *testing.T, handler http.HandlerFunc) *StripeCollector {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	return NewStripeCollectorWithBackends("sk_test_123", &stripe.Backends{API: backend, Connect: backend, Uploads: backend})
}

func cardRequest() FundingRequest {
	return FundingRequest{
		UserID:      1,
		Reference:   "TX-1-ABCDEF",
		Amount:      decimal.RequireFromString("150.25"),
		Currency:    "INR",
		Method:      MethodCard,
		SourceToken: "pm_card_visa",
	}
}

func TestStripeCollector_Succeeded(t *testing.T) {
	c := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		assert.Equal(t, "15025", r.PostForm.Get("amount"))
		assert.Equal(t, "inr", r.PostForm.Get("currency"))
		assert.Equal(t, "TX-1-ABCDEF", r.Header.Get("Idempotency-Key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_123","object":"payment_intent","status":"succeeded"}`))
	})

	receipt, err := c.Collect(context.Background(), cardRequest())
	require.NoError(t, err)
	assert.Equal(t, "pi_123", receipt.ExternalRef)
}

func TestStripeCollector_CardDeclined(t *testing.T) {
	c := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`))
	})

	_, err := c.Collect(context.Background(), cardRequest())
	assert.ErrorIs(t, err, apperrors.ErrPaymentDeclined)
	assert.Equal(t, "Your card was declined.", apperrors.Message(err))
}

func TestStripeCollector_RequiresAction(t *testing.T) {
	c := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_456","object":"payment_intent","status":"requires_action"}`))
	})

	_, err := c.Collect(context.Background(), cardRequest())
	assert.ErrorIs(t, err, apperrors.ErrPaymentDeclined)
}

func TestStripeCollector_RequiresToken(t *testing.T) {
	c := NewStripeCollector("sk_test_123")
	req := cardRequest()
	req.SourceToken = ""

	_, err := c.Collect(context.Background(), req)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestGateway_Collect(t *testing.T) {
	g := NewGateway()
	ctx := context.Background()

	_, err := g.Collect(ctx, FundingRequest{Method: MethodBank})
	assert.ErrorIs(t, err, apperrors.ErrNoDefaultBankAccount)

	_, err = g.Collect(ctx, FundingRequest{Method: MethodUPI})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	receipt, err := g.Collect(ctx, FundingRequest{Method: MethodBank, Bank: &models.BankAccount{}})
	require.NoError(t, err)
	assert.Contains(t, receipt.ExternalRef, "GW-")
}

func TestGateway_Pay(t *testing.T) {
	g := NewGateway()
	ctx := context.Background()

	_, err := g.Pay(ctx, PayoutRequest{Metadata: models.NewTransferMetadata(models.TransferMetadata{RecipientID: 2})})
	assert.Error(t, err)

	receipt, err := g.Pay(ctx, PayoutRequest{
		Reference: "TX-1-ABCDEF",
		Metadata:  models.NewRechargeMetadata(models.RechargeMetadata{Operator: "jio", MobileNumber: "9000000000"}),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, receipt.ExternalRef)
}

type stubCollector struct{ calls int }

func (s *stubCollector) Collect(context.Context, FundingRequest) (Receipt, error) {
	s.calls++
	return Receipt{ExternalRef: "stub"}, nil
}

func TestRouter(t *testing.T) {
	card, gateway := &stubCollector{}, &stubCollector{}
	r := NewRouter(card, gateway)
	ctx := context.Background()

	_, err := r.Collect(ctx, FundingRequest{Method: MethodCard})
	require.NoError(t, err)
	_, err = r.Collect(ctx, FundingRequest{Method: MethodWallet})
	require.NoError(t, err)
	_, err = r.Collect(ctx, FundingRequest{Method: "cheque"})
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedPaymentMethod)

	assert.Equal(t, 1, card.calls)
	assert.Equal(t, 1, gateway.calls)

	noCard := NewRouter(nil, gateway)
	_, err = noCard.Collect(ctx, FundingRequest{Method: MethodCard})
	require.NoError(t, err)
	assert.Equal(t, 2, gateway.calls)
}
