package http

import (
	"net/http"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/robertarktes/language-camp/internal/domain"
)

const maxListLimit = 100

// classFilter reads the optional sort, order, limit and status parameters.
func classFilter(r *http.Request) (domain.ClassFilter, error) {
	q := r.URL.Query()
	f := domain.ClassFilter{
		Status: domain.ClassStatus(q.Get("status")),
		SortBy: q.Get("sort"),
	}
	if f.Status != "" && !f.Status.Valid() {
		return f, errors.Wrapf(domain.ErrInvalidInput, "unknown status %q", f.Status)
	}
	if !domain.ValidClassSort(f.SortBy) {
		return f, errors.Wrapf(domain.ErrInvalidInput, "unknown sort key %q", f.SortBy)
	}
	switch q.Get("order") {
	case "", "asc":
	case "desc":
		f.Descending = true
	default:
		return f, errors.Wrapf(domain.ErrInvalidInput, "order must be asc or desc")
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 || n > maxListLimit {
			return f, errors.Wrapf(domain.ErrInvalidInput, "limit must be between 1 and %d", maxListLimit)
		}
		f.Limit = n
	}
	return f, nil
}

// ListApprovedClasses serves the public catalogue. It only ever lists
// approved classes, so a status filter is refused.
func (h *Handlers) ListApprovedClasses(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Has("status") {
		h.fail(w, r, errors.Wrap(domain.ErrInvalidInput, "status filter is only supported on /all-classes"))
		return
	}
	f, err := classFilter(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	f.Status = domain.ClassApproved
	classes, err := h.classes.ListClasses(r.Context(), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, classes)
}

func (h *Handlers) ListAllClasses(w http.ResponseWriter, r *http.Request) {
	f, err := classFilter(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	classes, err := h.classes.ListClasses(r.Context(), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, classes)
}

func (h *Handlers) ListOwnClasses(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if err := h.authorize(r, domain.ActionListOwnClasses, email); err != nil {
		h.fail(w, r, err)
		return
	}
	classes, err := h.classes.ListClasses(r.Context(), domain.ClassFilter{InstructorEmail: email})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, classes)
}

func (h *Handlers) ListAdminClasses(w http.ResponseWriter, r *http.Request) {
	classes, err := h.classes.ListClasses(r.Context(), domain.ClassFilter{})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, classes)
}

func (h *Handlers) PopularClasses(w http.ResponseWriter, r *http.Request) {
	classes, err := cachedList(r, h, domain.CacheKeyPopularClasses, func() ([]domain.ClassOffering, error) {
		return h.classes.PopularClasses(r.Context(), domain.PopularLimit)
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, classes)
}

type createClassRequest struct {
	Name            string  `json:"name" validate:"required"`
	Image           string  `json:"image"`
	InstructorName  string  `json:"instructorName" validate:"required"`
	InstructorEmail string  `json:"instructorEmail" validate:"omitempty,email"`
	Seats           int     `json:"seats" validate:"gte=0"`
	Price           float64 `json:"price" validate:"gte=0"`
}

func (h *Handlers) CreateClass(w http.ResponseWriter, r *http.Request) {
	var req createClassRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	p, _ := principalFrom(r.Context())
	class := domain.NewClassOffering(domain.ClassOffering{
		Name:            req.Name,
		Image:           req.Image,
		InstructorName:  req.InstructorName,
		InstructorEmail: req.InstructorEmail,
		Seats:           req.Seats,
		Price:           req.Price,
	}, p.Email)
	if err := h.authorize(r, domain.ActionCreateClass, class.InstructorEmail); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.check(req); err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.classes.CreateClass(r.Context(), class)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

type moderateClassRequest struct {
	Status   domain.ClassStatus `json:"status" validate:"required,oneof=pending approved denied"`
	Feedback *string            `json:"feedback"`
}

func (h *Handlers) ModerateClass(w http.ResponseWriter, r *http.Request) {
	var req moderateClassRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.check(req); err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.classes.UpdateClassStatus(r.Context(), chi.URLParam(r, "id"), req.Status, req.Feedback)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.cache.Delete(r.Context(), domain.CacheKeyPopularClasses); err != nil {
		h.log(r).WithError(err).Warn("failed to invalidate popular classes")
	}
	writeJSON(w, http.StatusOK, res)
}
