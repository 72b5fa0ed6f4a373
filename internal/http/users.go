package http

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/language-camp/internal/domain"
)

func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if err := h.authorize(r, domain.ActionReadProfile, email); err != nil {
		h.fail(w, r, err)
		return
	}
	u, err := h.users.GetUser(r.Context(), email)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

type userRequest struct {
	Name  string      `json:"name"`
	Image string      `json:"image"`
	Role  domain.Role `json:"role" validate:"omitempty,oneof=student instructor admin"`
}

// PutUser stores the user on first login and leaves existing users alone.
func (h *Handlers) PutUser(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if err := h.authorize(r, domain.ActionEditProfile, email); err != nil {
		h.fail(w, r, err)
		return
	}
	var req userRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.check(req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Role != "" && req.Role != domain.RoleStudent {
		if err := h.authorize(r, domain.ActionChangeRole, email); err != nil {
			h.fail(w, r, err)
			return
		}
	}

	u := domain.NewUser(domain.User{Name: req.Name, Image: req.Image, Role: req.Role}, email)
	res, created, err := h.users.CreateUserIfAbsent(r.Context(), u)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !created {
		writeJSON(w, http.StatusOK, map[string]string{"message": "user already exists"})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type userPatchRequest struct {
	Name  *string      `json:"name"`
	Image *string      `json:"image"`
	Role  *domain.Role `json:"role"`
}

func (h *Handlers) PatchUser(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if err := h.authorize(r, domain.ActionEditProfile, email); err != nil {
		h.fail(w, r, err)
		return
	}
	var req userPatchRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Role != nil {
		if err := h.authorize(r, domain.ActionChangeRole, email); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	patch := domain.UserPatch{Name: req.Name, Image: req.Image, Role: req.Role}
	if patch.Empty() {
		h.fail(w, r, errors.Wrap(domain.ErrInvalidInput, "nothing to update"))
		return
	}
	if patch.Role != nil && !patch.Role.Valid() {
		h.fail(w, r, errors.Wrapf(domain.ErrInvalidInput, "unknown role %q", *patch.Role))
		return
	}

	res, err := h.users.UpdateUser(r.Context(), email, patch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}
