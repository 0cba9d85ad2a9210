package payment

import (
	"context"
	"fmt"

	"github.com/loganlanou/storefront/internal/types"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/paymentintent"
)

// OrderCodeMetadataKey is the PaymentIntent metadata entry carrying the
// order the intent pays for.
const OrderCodeMetadataKey = "order_code"

type intentFetcher func(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)

// StripeVerifier treats the reference as a PaymentIntent id and checks its
// status directly with Stripe.
type StripeVerifier struct {
	fetch intentFetcher
}

func NewStripeVerifier(secretKey string) *StripeVerifier {
	client := &paymentintent.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey}
	return &StripeVerifier{fetch: client.Get}
}

func (v *StripeVerifier) Verify(ctx context.Context, reference string) (*types.PaymentVerification, error) {
	if reference == "" {
		return nil, fmt.Errorf("missing payment reference")
	}

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := v.fetch(reference, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve payment intent %s: %w", reference, err)
	}

	res := &types.PaymentVerification{
		Reference: pi.ID,
		OrderCode: pi.Metadata[OrderCodeMetadataKey],
		Status:    string(pi.Status),
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return res, fmt.Errorf("%w: intent status %s", ErrNotVerified, pi.Status)
	}
	res.Status = StatusSuccess
	return res, nil
}
