package stripe

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/language-camp/internal/domain"
	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Gateway creates card payment intents whose client secret the browser uses
// to confirm the charge.
type Gateway struct {
	api      *client.API
	currency string
}

// NewGateway builds a gateway for secretKey. backends may be nil to talk to
// the live Stripe API.
func NewGateway(secretKey, currency string, backends *stripe.Backends) *Gateway {
	return &Gateway{api: client.New(secretKey, backends), currency: currency}
}

func (g *Gateway) CreatePaymentIntent(ctx context.Context, amountMinor int64) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amountMinor),
		Currency:           stripe.String(g.currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		var serr *stripe.Error
		if errors.As(err, &serr) && serr.HTTPStatusCode == http.StatusBadRequest {
			return "", errors.Wrapf(domain.ErrInvalidInput, "payment intent rejected: %s", serr.Msg)
		}
		return "", errors.Wrapf(domain.ErrUpstream, "create payment intent: %v", err)
	}
	return pi.ClientSecret, nil
}
