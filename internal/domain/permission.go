package domain

import "github.com/cockroachdb/errors"

type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// Principal is the verified caller. Role is empty until it has been read
// from the users collection.
type Principal struct {
	Email string
	Role  Role
}

type Action string

const (
	ActionSelfService     Action = "self-service"
	ActionReadProfile     Action = "profile:read"
	ActionEditProfile     Action = "profile:edit"
	ActionChangeRole      Action = "profile:role"
	ActionListUsers       Action = "users:list"
	ActionCreateClass     Action = "class:create"
	ActionListOwnClasses  Action = "class:list-own"
	ActionModerateClasses Action = "class:moderate"
)

type ownership int

const (
	ownerAny ownership = iota
	ownerSelf
	ownerSelfOrAdmin
)

type rule struct {
	roles []Role
	owner ownership
}

var rules = map[Action]rule{
	ActionSelfService:     {owner: ownerSelf},
	ActionReadProfile:     {owner: ownerSelfOrAdmin},
	ActionEditProfile:     {owner: ownerSelfOrAdmin},
	ActionChangeRole:      {roles: []Role{RoleAdmin}},
	ActionListUsers:       {roles: []Role{RoleAdmin}},
	ActionCreateClass:     {roles: []Role{RoleInstructor}, owner: ownerSelf},
	ActionListOwnClasses:  {roles: []Role{RoleInstructor}, owner: ownerSelf},
	ActionModerateClasses: {roles: []Role{RoleAdmin}},
}

// Permits reports whether role may perform action at all, ignoring ownership.
func Permits(role Role, action Action) bool {
	r, ok := rules[action]
	if !ok {
		return false
	}
	if len(r.roles) == 0 {
		return true
	}
	for _, allowed := range r.roles {
		if role == allowed {
			return true
		}
	}
	return false
}

// Authorize decides whether p may perform action on a resource owned by owner
// (an email). It returns nil or an error wrapping ErrForbidden.
func Authorize(p Principal, action Action, owner string) error {
	if p.Email == "" {
		return errors.Wrap(ErrForbidden, "no caller email")
	}
	if !Permits(p.Role, action) {
		return errors.Wrapf(ErrForbidden, "role %q may not %s", p.Role, action)
	}
	self := owner != "" && owner == p.Email
	switch rules[action].owner {
	case ownerSelf:
		if !self {
			return errors.Wrapf(ErrForbidden, "%s requires the caller's own email", action)
		}
	case ownerSelfOrAdmin:
		if !self && p.Role != RoleAdmin {
			return errors.Wrapf(ErrForbidden, "%s requires the caller's own email or admin", action)
		}
	}
	return nil
}
