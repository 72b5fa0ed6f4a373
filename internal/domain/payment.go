package domain

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
)

// PopularLimit caps the popular classes and instructors listings.
const PopularLimit = 6

var hundred = decimal.NewFromInt(100)

// ToMinorUnits converts a price in major currency units to the integer amount
// the payment gateway expects (cents), rounding half away from zero.
func ToMinorUnits(price float64) (int64, error) {
	if price <= 0 {
		return 0, errors.Wrapf(ErrInvalidInput, "price must be positive, got %v", price)
	}
	return decimal.NewFromFloat(price).Mul(hundred).Round(0).IntPart(), nil
}

// IdempotencyKey derives the checkout key for a buyer's cart selection. A
// cart id replayed by another buyer maps to a different key.
func IdempotencyKey(email, cartID string) string {
	return "checkout:" + strings.TrimSpace(email) + ":" + strings.TrimSpace(cartID)
}

func NewPaymentRecord(p PaymentRecord, now time.Time) PaymentRecord {
	if p.Date.IsZero() {
		p.Date = now.UTC()
	}
	p.CartID = strings.TrimSpace(p.CartID)
	p.ClassID = strings.TrimSpace(p.ClassID)
	return p
}

// NewClassOffering applies the defaults every instructor submission gets.
func NewClassOffering(c ClassOffering, instructorEmail string) ClassOffering {
	if c.InstructorEmail == "" {
		c.InstructorEmail = instructorEmail
	}
	c.Status = ClassPending
	c.EnrolledStudents = 0
	c.Feedback = ""
	return c
}

// NewUser fills the default role for a first login.
func NewUser(u User, email string) User {
	u.Email = email
	if u.Role == "" {
		u.Role = RoleStudent
	}
	return u
}
