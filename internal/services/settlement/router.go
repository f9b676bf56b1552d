package settlement

import (
	"context"

	apperrors "oruswallet/internal/errors"
)

// Router sends card funding to the card collector and everything else to the gateway.
type Router struct {
	card    Collector
	gateway Collector
}

// NewRouter builds a Router. card may be nil, in which case cards settle
// through the gateway.
func NewRouter(card, gateway Collector) *Router {
	return &Router{card: card, gateway: gateway}
}

func (r *Router) Collect(ctx context.Context, req FundingRequest) (Receipt, error) {
	if !req.Method.Valid() {
		return Receipt{}, apperrors.ErrUnsupportedPaymentMethod
	}
	if req.Method == MethodCard && r.card != nil {
		return r.card.Collect(ctx, req)
	}
	return r.gateway.Collect(ctx, req)
}
