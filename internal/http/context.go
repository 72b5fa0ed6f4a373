package http

import (
	"context"
	"net/http"

	"github.com/robertarktes/language-camp/internal/domain"
	"github.com/robertarktes/language-camp/internal/observability"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	principalKey
)

func withPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func principalFrom(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey).(domain.Principal)
	return p, ok
}

func (h *Handlers) log(r *http.Request) observability.Logger {
	if l, ok := r.Context().Value(loggerKey).(observability.Logger); ok {
		return l
	}
	return h.logger
}

// authorize evaluates action for the caller. The stored role is only read
// when the decision depends on it.
func (h *Handlers) authorize(r *http.Request, action domain.Action, owner string) error {
	p, ok := principalFrom(r.Context())
	if !ok {
		return domain.ErrUnauthenticated
	}
	err := domain.Authorize(p, action, owner)
	if err == nil || p.Role != "" {
		return err
	}
	role, lerr := h.lookupRole(r.Context(), p.Email)
	if lerr != nil {
		return lerr
	}
	p.Role = role
	return domain.Authorize(p, action, owner)
}

func (h *Handlers) lookupRole(ctx context.Context, email string) (domain.Role, error) {
	u, err := h.users.GetUser(ctx, email)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", nil
	}
	return u.Role, nil
}
