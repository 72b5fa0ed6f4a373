package domain

import (
	"testing"

	"github.com/cockroachdb/errors"
)

func TestAuthorize(t *testing.T) {
	const alice = "alice@example.com"
	const bob = "bob@example.com"

	tests := []struct {
		name    string
		p       Principal
		action  Action
		owner   string
		allowed bool
	}{
		{"self service own email", Principal{Email: alice}, ActionSelfService, alice, true},
		{"self service other email", Principal{Email: alice}, ActionSelfService, bob, false},
		{"self service empty owner", Principal{Email: alice}, ActionSelfService, "", false},
		{"self service admin other email", Principal{Email: alice, Role: RoleAdmin}, ActionSelfService, bob, false},
		{"no caller email", Principal{}, ActionSelfService, "", false},
		{"read own profile", Principal{Email: alice, Role: RoleStudent}, ActionReadProfile, alice, true},
		{"read other profile as student", Principal{Email: alice, Role: RoleStudent}, ActionReadProfile, bob, false},
		{"read other profile as admin", Principal{Email: alice, Role: RoleAdmin}, ActionReadProfile, bob, true},
		{"edit other profile as instructor", Principal{Email: alice, Role: RoleInstructor}, ActionEditProfile, bob, false},
		{"change role as admin", Principal{Email: alice, Role: RoleAdmin}, ActionChangeRole, bob, true},
		{"change own role as student", Principal{Email: alice, Role: RoleStudent}, ActionChangeRole, alice, false},
		{"list users as admin", Principal{Email: alice, Role: RoleAdmin}, ActionListUsers, "", true},
		{"list users as instructor", Principal{Email: alice, Role: RoleInstructor}, ActionListUsers, "", false},
		{"list users role unresolved", Principal{Email: alice}, ActionListUsers, "", false},
		{"create class as instructor", Principal{Email: alice, Role: RoleInstructor}, ActionCreateClass, alice, true},
		{"create class for another instructor", Principal{Email: alice, Role: RoleInstructor}, ActionCreateClass, bob, false},
		{"create class as student", Principal{Email: alice, Role: RoleStudent}, ActionCreateClass, alice, false},
		{"create class as admin", Principal{Email: alice, Role: RoleAdmin}, ActionCreateClass, alice, false},
		{"own classes as instructor", Principal{Email: alice, Role: RoleInstructor}, ActionListOwnClasses, alice, true},
		{"moderate as admin", Principal{Email: alice, Role: RoleAdmin}, ActionModerateClasses, "", true},
		{"moderate as instructor", Principal{Email: alice, Role: RoleInstructor}, ActionModerateClasses, "", false},
		{"unknown action", Principal{Email: alice, Role: RoleAdmin}, Action("class:delete"), alice, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.p, tt.action, tt.owner)
			if tt.allowed && err != nil {
				t.Fatalf("expected allow, got %v", err)
			}
			if !tt.allowed && !errors.Is(err, ErrForbidden) {
				t.Fatalf("expected ErrForbidden, got %v", err)
			}
		})
	}
}

func TestPermitsIgnoresOwnership(t *testing.T) {
	if !Permits(RoleInstructor, ActionCreateClass) {
		t.Error("instructor should pass the role check for class creation")
	}
	if Permits(RoleStudent, ActionModerateClasses) {
		t.Error("student must not pass the admin role check")
	}
	if !Permits("", ActionSelfService) {
		t.Error("self service has no role requirement")
	}
}
