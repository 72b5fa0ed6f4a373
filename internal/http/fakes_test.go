package http

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/language-camp/internal/auth"
	"github.com/robertarktes/language-camp/internal/config"
	"github.com/robertarktes/language-camp/internal/domain"
	"github.com/robertarktes/language-camp/internal/observability"
	"github.com/robertarktes/language-camp/internal/rateLimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

type fakeClasses struct {
	classes      []domain.ClassOffering
	popularCalls int
	lastFilter   domain.ClassFilter
	created      []domain.ClassOffering
}

func (f *fakeClasses) ListClasses(_ context.Context, flt domain.ClassFilter) ([]domain.ClassOffering, error) {
	f.lastFilter = flt
	var out []domain.ClassOffering
	for _, c := range f.classes {
		if flt.Status != "" && c.Status != flt.Status {
			continue
		}
		if flt.InstructorEmail != "" && c.InstructorEmail != flt.InstructorEmail {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeClasses) PopularClasses(_ context.Context, limit int64) ([]domain.ClassOffering, error) {
	f.popularCalls++
	out := f.classes
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeClasses) CreateClass(_ context.Context, c domain.ClassOffering) (domain.InsertResult, error) {
	f.created = append(f.created, c)
	return domain.InsertResult{Acknowledged: true, InsertedID: primitive.NewObjectID().Hex()}, nil
}

// parseID rejects malformed ids the way the mongo store does.
func parseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, errors.Wrapf(domain.ErrInvalidInput, "invalid id %q", hex)
	}
	return id, nil
}

func (f *fakeClasses) UpdateClassStatus(_ context.Context, id string, _ domain.ClassStatus, _ *string) (domain.UpdateResult, error) {
	if _, err := parseID(id); err != nil {
		return domain.UpdateResult{}, err
	}
	return domain.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

type fakeInstructors struct{}

func (fakeInstructors) ListInstructors(context.Context) ([]domain.Instructor, error) {
	return []domain.Instructor{{Name: "Lea", Email: "lea@example.com"}}, nil
}

func (fakeInstructors) PopularInstructors(_ context.Context, _ int64) ([]domain.Instructor, error) {
	return []domain.Instructor{{Name: "Lea", Email: "lea@example.com", StudentsEnrolled: 3}}, nil
}

type fakeUsers struct {
	mu      sync.Mutex
	users   map[string]domain.User
	patches []domain.UserPatch
}

func (f *fakeUsers) GetUser(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (f *fakeUsers) CreateUserIfAbsent(_ context.Context, u domain.User) (domain.InsertResult, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.Email]; ok {
		return domain.InsertResult{}, false, nil
	}
	f.users[u.Email] = u
	return domain.InsertResult{Acknowledged: true, InsertedID: primitive.NewObjectID().Hex()}, true, nil
}

func (f *fakeUsers) UpdateUser(_ context.Context, email string, patch domain.UserPatch) (domain.UpdateResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches = append(f.patches, patch)
	u, ok := f.users[email]
	if !ok {
		return domain.UpdateResult{Acknowledged: true}, nil
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	f.users[email] = u
	return domain.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

func (f *fakeUsers) ListUsers(context.Context) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.User
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

type fakeCarts struct {
	items map[primitive.ObjectID]domain.CartSelection
}

func (f *fakeCarts) ListCart(_ context.Context, email string) ([]domain.CartSelection, error) {
	var out []domain.CartSelection
	for _, it := range f.items {
		if it.Email == email {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeCarts) GetCartPrice(_ context.Context, hex string, email string) (*domain.CartSelection, error) {
	id, err := parseID(hex)
	if err != nil {
		return nil, err
	}
	it, ok := f.items[id]
	if !ok || it.Email != email {
		return nil, nil
	}
	return &domain.CartSelection{ID: it.ID, Price: it.Price}, nil
}

func (f *fakeCarts) AddToCart(_ context.Context, item domain.CartSelection) (domain.InsertResult, error) {
	for _, it := range f.items {
		if it.Email == item.Email && it.ClassID == item.ClassID {
			return domain.InsertResult{}, domain.ErrConflict
		}
	}
	item.ID = primitive.NewObjectID()
	f.items[item.ID] = item
	return domain.InsertResult{Acknowledged: true, InsertedID: item.ID.Hex()}, nil
}

func (f *fakeCarts) RemoveFromCart(_ context.Context, hex string, email string) (domain.DeleteResult, error) {
	id, err := parseID(hex)
	if err != nil {
		return domain.DeleteResult{}, err
	}
	it, ok := f.items[id]
	if !ok || it.Email != email {
		return domain.DeleteResult{Acknowledged: true}, nil
	}
	delete(f.items, id)
	return domain.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
}

type fakePayments struct {
	records []domain.PaymentRecord
	calls   int
}

func (f *fakePayments) ListPayments(_ context.Context, email string) ([]domain.PaymentRecord, error) {
	f.calls++
	var out []domain.PaymentRecord
	for _, p := range f.records {
		if p.Email == email {
			out = append(out, p)
		}
	}
	return out, nil
}

// fakeCheckout replays by cart id the way the sequencer does.
type fakeCheckout struct {
	seen map[string]domain.CheckoutResult
}

func (f *fakeCheckout) RecordPayment(_ context.Context, p domain.PaymentRecord) (domain.CheckoutResult, bool, error) {
	if res, ok := f.seen[p.CartID]; ok {
		return res, true, nil
	}
	res := domain.CheckoutResult{
		InsertResult: domain.InsertResult{Acknowledged: true, InsertedID: "pay-" + p.CartID},
		DeleteResult: domain.DeleteResult{Acknowledged: true, DeletedCount: 1},
		SeatsUpdated: true,
	}
	f.seen[p.CartID] = res
	return res, false, nil
}

type fakeGateway struct {
	amounts []int64
}

func (f *fakeGateway) CreatePaymentIntent(_ context.Context, amount int64) (string, error) {
	f.amounts = append(f.amounts, amount)
	return "pi_secret", nil
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (c *memCache) GetJSON(_ context.Context, key string, dst interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *memCache) SetJSON(_ context.Context, key string, v interface{}, _ time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

type allowAll struct {
	deny bool
}

func (a allowAll) Allow(_ context.Context, _ string, rate int, period time.Duration) rateLimit.Decision {
	if a.deny {
		return rateLimit.Decision{RetryAfter: period}
	}
	return rateLimit.Decision{Allowed: true, Remaining: rate - 1}
}

type fixture struct {
	classes  *fakeClasses
	users    *fakeUsers
	carts    *fakeCarts
	payments *fakePayments
	checkout *fakeCheckout
	gateway  *fakeGateway
	cache    *memCache
	tokens   *auth.TokenService
	cfg      *config.Config
}

func newFixture() *fixture {
	return &fixture{
		classes: &fakeClasses{classes: []domain.ClassOffering{
			{ID: primitive.NewObjectID(), Name: "Spanish A1", InstructorEmail: "lea@example.com", Status: domain.ClassApproved, Seats: 5},
			{ID: primitive.NewObjectID(), Name: "French A1", InstructorEmail: "lea@example.com", Status: domain.ClassPending, Seats: 8},
		}},
		users: &fakeUsers{users: map[string]domain.User{
			"ana@example.com":   {Email: "ana@example.com", Role: domain.RoleStudent},
			"lea@example.com":   {Email: "lea@example.com", Role: domain.RoleInstructor},
			"admin@example.com": {Email: "admin@example.com", Role: domain.RoleAdmin},
		}},
		carts:    &fakeCarts{items: map[primitive.ObjectID]domain.CartSelection{}},
		payments: &fakePayments{},
		checkout: &fakeCheckout{seen: map[string]domain.CheckoutResult{}},
		gateway:  &fakeGateway{},
		cache:    &memCache{data: map[string][]byte{}},
		tokens:   auth.NewTokenService(testSecret, time.Hour),
		cfg: &config.Config{
			TokenSecret:     testSecret,
			TokenTTL:        time.Hour,
			PopularCacheTTL: time.Minute,
			RateLimitPerMin: 1000,
		},
	}
}

func (f *fixture) handlers() *Handlers {
	return NewHandlers(f.cfg, Dependencies{
		Classes:     f.classes,
		Instructors: fakeInstructors{},
		Users:       f.users,
		Carts:       f.carts,
		Payments:    f.payments,
		Checkout:    f.checkout,
		Gateway:     f.gateway,
		Cache:       f.cache,
		Tokens:      f.tokens,
		Database:    okPinger{},
		Logger:      observability.NewDiscardLogger(),
	})
}
