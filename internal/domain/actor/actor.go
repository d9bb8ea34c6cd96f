package actor

import (
	"fmt"
	"strings"

	"coopfin-loan-engine/internal/domain/errs"
)

// Role is resolved once at the system boundary and passed into the engine.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// ParseRole accepts the role names issued by the identity service.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleMember:
		return RoleMember, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", errs.Validation("unknown role %q", s)
}

// Actor is the caller identity of an engine operation.
type Actor struct {
	ID   string
	Role Role
}

func New(id string, role Role) Actor { return Actor{ID: id, Role: role} }

func Admin(id string) Actor  { return Actor{ID: id, Role: RoleAdmin} }
func Member(id string) Actor { return Actor{ID: id, Role: RoleMember} }

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// Is reports whether the actor is the given identity.
func (a Actor) Is(id string) bool { return id != "" && a.ID == id }

func (a Actor) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return errs.Validation("missing actor identity")
	}
	if a.Role != RoleMember && a.Role != RoleAdmin {
		return errs.Validation("missing actor role")
	}
	return nil
}

func (a Actor) String() string { return fmt.Sprintf("%s:%s", a.Role, a.ID) }
