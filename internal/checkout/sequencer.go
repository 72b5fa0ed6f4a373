package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/language-camp/internal/domain"
	"github.com/robertarktes/language-camp/internal/idempotency"
	"github.com/robertarktes/language-camp/internal/observability"
)

// Store runs the transactional part of a checkout.
type Store interface {
	Checkout(ctx context.Context, p domain.PaymentRecord) (domain.CheckoutResult, error)
}

type Invalidator interface {
	Delete(ctx context.Context, keys ...string) error
}

// Sequencer records payments at most once per cart item.
type Sequencer struct {
	store  Store
	idemp  *idempotency.Idempotency
	cache  Invalidator
	logger observability.Logger
	now    func() time.Time
}

func NewSequencer(store Store, idemp *idempotency.Idempotency, cache Invalidator, logger observability.Logger) *Sequencer {
	return &Sequencer{store: store, idemp: idemp, cache: cache, logger: logger, now: time.Now}
}

// RecordPayment runs the checkout for p. A repeated call for a cart item that
// was already checked out returns the first result with replayed set.
func (s *Sequencer) RecordPayment(ctx context.Context, p domain.PaymentRecord) (res domain.CheckoutResult, replayed bool, err error) {
	p = domain.NewPaymentRecord(p, s.now())
	key := domain.IdempotencyKey(p.Email, p.CartID)
	log := s.logger.WithFields(map[string]interface{}{"cart_id": p.CartID, "class_id": p.ClassID})

	defer func() {
		observability.CheckoutsTotal.WithLabelValues(outcomeLabel(replayed, err)).Inc()
	}()

	release, err := s.idemp.Begin(ctx, key)
	switch {
	case errors.Is(err, idempotency.ErrInFlight):
		return res, false, errors.Wrap(domain.ErrConflict, "checkout for this cart item is in progress")
	case err != nil:
		log.WithError(err).Warn("idempotency lock unavailable, relying on the payments index")
		release = func() {}
	}
	defer release()

	stored, err := s.idemp.Get(ctx, key)
	if err != nil {
		log.WithError(err).Warn("idempotency lookup failed")
	}
	if stored != nil {
		if err := json.Unmarshal(stored.Result, &res); err != nil {
			return domain.CheckoutResult{}, false, errors.Wrap(err, "decode stored checkout")
		}
		log.Info("checkout replayed from idempotency store")
		return res, true, nil
	}

	res, err = s.store.Checkout(ctx, p)
	if err != nil {
		return domain.CheckoutResult{}, false, err
	}

	if data, err := json.Marshal(res); err == nil {
		if err := s.idemp.Set(ctx, key, idempotency.Response{Status: http.StatusOK, Result: data}); err != nil {
			log.WithError(err).Warn("failed to store checkout result")
		}
	}
	if res.SeatsUpdated {
		if err := s.cache.Delete(ctx, domain.CacheKeyPopularClasses, domain.CacheKeyPopularInstructors); err != nil {
			log.WithError(err).Warn("failed to invalidate popular listings")
		}
	}
	log.WithField("payment_id", res.InsertResult.InsertedID).Info("payment recorded")
	return res, false, nil
}

func outcomeLabel(replayed bool, err error) string {
	switch {
	case err == nil && replayed:
		return "replayed"
	case err == nil:
		return "recorded"
	case errors.Is(err, domain.ErrSoldOut):
		return "sold_out"
	case errors.Is(err, domain.ErrAlreadyPurchased), errors.Is(err, domain.ErrConflict):
		return "duplicate"
	default:
		return "failed"
	}
}
