package http

import (
	"net/http"
	"time"

	"github.com/robertarktes/language-camp/internal/domain"
)

const replayedHeader = "Idempotent-Replayed"

type paymentIntentRequest struct {
	Price float64 `json:"price"`
}

func (h *Handlers) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req paymentIntentRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	amount, err := domain.ToMinorUnits(req.Price)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	secret, err := h.gateway.CreatePaymentIntent(r.Context(), amount)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"clientSecret": secret})
}

type paymentRequest struct {
	Email         string    `json:"email" validate:"required,email"`
	TransactionID string    `json:"transactionId" validate:"required"`
	Price         float64   `json:"price" validate:"gte=0"`
	Date          time.Time `json:"date"`
	CartID        string    `json:"cartId" validate:"required"`
	ClassID       string    `json:"classId"`
	ClassName     string    `json:"className"`
}

// RecordPayment runs the checkout for one cart selection. A repeated request
// for the same selection gets the first result back.
func (h *Handlers) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
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

	p := domain.NewPaymentRecord(domain.PaymentRecord{
		Email:         req.Email,
		TransactionID: req.TransactionID,
		Price:         req.Price,
		Date:          req.Date,
		CartID:        req.CartID,
		ClassID:       req.ClassID,
		ClassName:     req.ClassName,
	}, time.Now())

	res, replayed, err := h.checkout.RecordPayment(r.Context(), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if replayed {
		w.Header().Set(replayedHeader, "true")
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) ListPayments(w http.ResponseWriter, r *http.Request) {
	h.paymentHistory(w, r)
}

// EnrolledClasses lists the same records as the payment history.
func (h *Handlers) EnrolledClasses(w http.ResponseWriter, r *http.Request) {
	h.paymentHistory(w, r)
}

func (h *Handlers) paymentHistory(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if err := h.authorize(r, domain.ActionSelfService, email); err != nil {
		h.fail(w, r, err)
		return
	}
	payments, err := h.payments.ListPayments(r.Context(), email)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}
