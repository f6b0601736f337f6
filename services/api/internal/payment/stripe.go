// Package payment creates card payment intents with Stripe. Capture and
// webhook reconciliation happen elsewhere.
package payment

import (
	"context"
	"errors"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/JoseGlez23/runX-API3/services/api/internal/apperr"
)

// Error carries the gateway's own message; it matches apperr.ErrUpstream.
type Error struct {
	Msg string
	Err error
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == apperr.ErrUpstream }

type Stripe struct {
	api *client.API
}

func NewStripe(secretKey string) *Stripe {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Stripe{api: api}
}

// NewStripeWithURL points every Stripe backend at baseURL.
func NewStripeWithURL(secretKey, baseURL string) *Stripe {
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(baseURL),
		MaxNetworkRetries: stripe.Int64(0),
	})
	api := &client.API{}
	api.Init(secretKey, &stripe.Backends{API: backend, Connect: backend, Uploads: backend})
	return &Stripe{api: api}
}

// CreateIntent returns the client secret of a new card payment intent.
// amount is in the currency's minor unit.
func (s *Stripe) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		msg := err.Error()
		var se *stripe.Error
		if errors.As(err, &se) && se.Msg != "" {
			msg = se.Msg
		}
		return "", &Error{Msg: msg, Err: err}
	}
	return pi.ClientSecret, nil
}
