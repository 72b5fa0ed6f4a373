package domain

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
)

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		price float64
		want  int64
	}{
		{10, 1000},
		{19.99, 1999},
		{0.1 + 0.2, 30},
		{4.005, 401},
		{120.5, 12050},
	}
	for _, tt := range tests {
		got, err := ToMinorUnits(tt.price)
		if err != nil {
			t.Fatalf("ToMinorUnits(%v): %v", tt.price, err)
		}
		if got != tt.want {
			t.Errorf("ToMinorUnits(%v) = %d, want %d", tt.price, got, tt.want)
		}
	}

	for _, bad := range []float64{0, -3} {
		if _, err := ToMinorUnits(bad); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("ToMinorUnits(%v): expected ErrInvalidInput, got %v", bad, err)
		}
	}
}

func TestNewPaymentRecordDefaultsDate(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.FixedZone("x", 3600))
	p := NewPaymentRecord(PaymentRecord{CartID: " abc "}, now)
	if !p.Date.Equal(now) || p.Date.Location() != time.UTC {
		t.Errorf("expected date %v in UTC, got %v", now, p.Date)
	}
	if p.CartID != "abc" {
		t.Errorf("expected trimmed cart id, got %q", p.CartID)
	}

	given := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	p = NewPaymentRecord(PaymentRecord{Date: given}, now)
	if !p.Date.Equal(given) {
		t.Errorf("expected supplied date to be kept, got %v", p.Date)
	}
}

func TestNewClassOfferingResetsModerationFields(t *testing.T) {
	c := NewClassOffering(ClassOffering{Name: "Spanish A1", Status: ClassApproved, EnrolledStudents: 40, Feedback: "ok"}, "t@example.com")
	if c.Status != ClassPending || c.EnrolledStudents != 0 || c.Feedback != "" {
		t.Errorf("unexpected class defaults: %+v", c)
	}
	if c.InstructorEmail != "t@example.com" {
		t.Errorf("expected instructor email to default to caller, got %q", c.InstructorEmail)
	}
}

func TestNewUserDefaultsRole(t *testing.T) {
	u := NewUser(User{Name: "Ana"}, "ana@example.com")
	if u.Role != RoleStudent || u.Email != "ana@example.com" {
		t.Errorf("unexpected user: %+v", u)
	}
	u = NewUser(User{Role: RoleInstructor}, "ana@example.com")
	if u.Role != RoleInstructor {
		t.Errorf("explicit role should be kept, got %q", u.Role)
	}
}

func TestIdempotencyKeyIsScopedToBuyer(t *testing.T) {
	if got := IdempotencyKey(" ana@example.com", "cart1 "); got != "checkout:ana@example.com:cart1" {
		t.Errorf("IdempotencyKey = %q", got)
	}
	if IdempotencyKey("ana@example.com", "cart1") == IdempotencyKey("bob@example.com", "cart1") {
		t.Error("keys of different buyers must differ")
	}
}
