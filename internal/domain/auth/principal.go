package auth

import (
	"slices"

	"github.com/desidobreva/CinemaReservations/internal/domain/user"

	"github.com/google/uuid"
)

// Principal is the authenticated caller as seen by the use cases.
type Principal struct {
	ID   uuid.UUID
	Role user.Role
}

func NewPrincipal(id uuid.UUID, role user.Role) Principal {
	return Principal{ID: id, Role: role}
}

// Allows reports whether the principal holds one of roles.
func Allows(p Principal, roles ...user.Role) bool {
	return slices.Contains(roles, p.Role)
}

// CanAccess grants the owner of a resource, or any of roles.
func CanAccess(p Principal, ownerID uuid.UUID, roles ...user.Role) bool {
	if p.ID != uuid.Nil && p.ID == ownerID {
		return true
	}
	return Allows(p, roles...)
}

// Staff is the role set allowed to act on reservations they do not own.
var Staff = []user.Role{user.RoleProvider, user.RoleAdmin}
