// Package payment confirms that a shopper's payment went through before the
// storefront treats the order as placed.
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/loganlanou/storefront/internal/types"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// ErrNotVerified is returned when the provider answered but the payment has
// not settled.
var ErrNotVerified = errors.New("payment not verified")

// Verifier checks a payment by the reference the provider handed the
// shopper on redirect.
type Verifier interface {
	Verify(ctx context.Context, reference string) (*types.PaymentVerification, error)
}

// BackendAPI is the part of the backend client the backend provider needs.
type BackendAPI interface {
	VerifyPayment(ctx context.Context, reference string) (*types.PaymentVerification, error)
}

// BackendVerifier delegates to the storefront backend, which owns the payment
// gateway integration. Any 2xx answer counts as a settled payment.
type BackendVerifier struct {
	api BackendAPI
}

func NewBackendVerifier(api BackendAPI) *BackendVerifier {
	return &BackendVerifier{api: api}
}

func (v *BackendVerifier) Verify(ctx context.Context, reference string) (*types.PaymentVerification, error) {
	if reference == "" {
		return nil, fmt.Errorf("missing payment reference")
	}
	res, err := v.api.VerifyPayment(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("verify payment %s: %w", reference, err)
	}
	if res.Status == "" {
		res.Status = StatusSuccess
	}
	return res, nil
}

// NewVerifier picks the provider named by PAYMENT_PROVIDER.
func NewVerifier(provider, stripeKey string, api BackendAPI) (Verifier, error) {
	switch provider {
	case "", "backend":
		return NewBackendVerifier(api), nil
	case "stripe":
		if stripeKey == "" {
			return nil, fmt.Errorf("stripe payment provider requires STRIPE_SECRET_KEY")
		}
		return NewStripeVerifier(stripeKey), nil
	default:
		return nil, fmt.Errorf("unknown payment provider: %s", provider)
	}
}
