package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/robertarktes/language-camp/internal/auth"
	"github.com/robertarktes/language-camp/internal/config"
	"github.com/robertarktes/language-camp/internal/domain"
	"github.com/robertarktes/language-camp/internal/observability"
)

type ClassStore interface {
	ListClasses(ctx context.Context, f domain.ClassFilter) ([]domain.ClassOffering, error)
	PopularClasses(ctx context.Context, limit int64) ([]domain.ClassOffering, error)
	CreateClass(ctx context.Context, c domain.ClassOffering) (domain.InsertResult, error)
	UpdateClassStatus(ctx context.Context, id string, status domain.ClassStatus, feedback *string) (domain.UpdateResult, error)
}

type InstructorStore interface {
	ListInstructors(ctx context.Context) ([]domain.Instructor, error)
	PopularInstructors(ctx context.Context, limit int64) ([]domain.Instructor, error)
}

type UserStore interface {
	GetUser(ctx context.Context, email string) (*domain.User, error)
	CreateUserIfAbsent(ctx context.Context, u domain.User) (domain.InsertResult, bool, error)
	UpdateUser(ctx context.Context, email string, patch domain.UserPatch) (domain.UpdateResult, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
}

type CartStore interface {
	ListCart(ctx context.Context, email string) ([]domain.CartSelection, error)
	GetCartPrice(ctx context.Context, id string, email string) (*domain.CartSelection, error)
	AddToCart(ctx context.Context, item domain.CartSelection) (domain.InsertResult, error)
	RemoveFromCart(ctx context.Context, id string, email string) (domain.DeleteResult, error)
}

type PaymentStore interface {
	ListPayments(ctx context.Context, email string) ([]domain.PaymentRecord, error)
}

type Checkout interface {
	RecordPayment(ctx context.Context, p domain.PaymentRecord) (domain.CheckoutResult, bool, error)
}

type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, amountMinor int64) (string, error)
}

type Cache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies groups everything the handlers are built from.
type Dependencies struct {
	Classes     ClassStore
	Instructors InstructorStore
	Users       UserStore
	Carts       CartStore
	Payments    PaymentStore
	Checkout    Checkout
	Gateway     PaymentGateway
	Cache       Cache
	Tokens      *auth.TokenService
	Database    Pinger
	Logger      observability.Logger
}

type Handlers struct {
	cfg         *config.Config
	classes     ClassStore
	instructors InstructorStore
	users       UserStore
	carts       CartStore
	payments    PaymentStore
	checkout    Checkout
	gateway     PaymentGateway
	cache       Cache
	tokens      *auth.TokenService
	db          Pinger
	logger      observability.Logger
	validate    *validator.Validate
}

func NewHandlers(cfg *config.Config, deps Dependencies) *Handlers {
	return &Handlers{
		cfg:         cfg,
		classes:     deps.Classes,
		instructors: deps.Instructors,
		users:       deps.Users,
		carts:       deps.Carts,
		payments:    deps.Payments,
		checkout:    deps.Checkout,
		gateway:     deps.Gateway,
		cache:       deps.Cache,
		tokens:      deps.Tokens,
		db:          deps.Database,
		logger:      deps.Logger,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("foreign language camp server is running..."))
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		h.log(r).WithError(err).Warn("readiness check failed")
		http.Error(w, "Not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}

const maxBodyBytes = 1 << 20

// decode reads a JSON body into dst.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.Wrapf(domain.ErrInvalidInput, "invalid JSON: %v", err)
	}
	return nil
}

func (h *Handlers) check(v interface{}) error {
	if err := h.validate.Struct(v); err != nil {
		return errors.Wrap(domain.ErrInvalidInput, err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
