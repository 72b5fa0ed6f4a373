package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/robertarktes/language-camp/internal/domain"
)

func (h *Handlers) ListCart(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if err := h.authorize(r, domain.ActionSelfService, email); err != nil {
		h.fail(w, r, err)
		return
	}
	items, err := h.carts.ListCart(r.Context(), email)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// GetCartItem returns the price of one of the caller's selections, or null.
func (h *Handlers) GetCartItem(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	item, err := h.carts.GetCartPrice(r.Context(), chi.URLParam(r, "id"), p.Email)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

type cartRequest struct {
	Email          string  `json:"email" validate:"required,email"`
	ClassID        string  `json:"classId" validate:"required"`
	ClassName      string  `json:"className"`
	Image          string  `json:"image"`
	InstructorName string  `json:"instructorName"`
	Price          float64 `json:"price" validate:"gte=0"`
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req cartRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.authorize(r, domain.ActionSelfService, req.Email); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.check(req); err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.carts.AddToCart(r.Context(), domain.CartSelection{
		Email:          req.Email,
		ClassID:        req.ClassID,
		ClassName:      req.ClassName,
		Image:          req.Image,
		InstructorName: req.InstructorName,
		Price:          req.Price,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	res, err := h.carts.RemoveFromCart(r.Context(), chi.URLParam(r, "id"), p.Email)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
