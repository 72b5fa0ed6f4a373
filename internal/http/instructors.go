package http

import (
	"net/http"

	"github.com/robertarktes/language-camp/internal/domain"
	"github.com/robertarktes/language-camp/internal/observability"
)

func (h *Handlers) ListInstructors(w http.ResponseWriter, r *http.Request) {
	instructors, err := h.instructors.ListInstructors(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, instructors)
}

func (h *Handlers) PopularInstructors(w http.ResponseWriter, r *http.Request) {
	instructors, err := cachedList(r, h, domain.CacheKeyPopularInstructors, func() ([]domain.Instructor, error) {
		return h.instructors.PopularInstructors(r.Context(), domain.PopularLimit)
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, instructors)
}

// cachedList serves a popular listing from the cache, loading and storing it
// on a miss. Cache failures degrade to a direct load.
func cachedList[T any](r *http.Request, h *Handlers, key string, load func() ([]T, error)) ([]T, error) {
	var out []T
	hit, err := h.cache.GetJSON(r.Context(), key, &out)
	switch {
	case err != nil:
		h.log(r).WithError(err).Warn("cache read failed")
	case hit:
		observability.CacheLookups.WithLabelValues(key, "hit").Inc()
		return out, nil
	}
	observability.CacheLookups.WithLabelValues(key, "miss").Inc()

	out, err = load()
	if err != nil {
		return nil, err
	}
	if err := h.cache.SetJSON(r.Context(), key, out, h.cfg.PopularCacheTTL); err != nil {
		h.log(r).WithError(err).Warn("cache write failed")
	}
	return out, nil
}
