package domain

import "github.com/google/uuid"

// Role is the authenticated role an actor holds.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// Actor is the identity context under which an engine operation runs.
// Every operation states its precondition as a predicate over the actor
// instead of re-deriving role checks from raw claims.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Owns reports whether the actor is the user identified by userID.
func (a Actor) Owns(userID uuid.UUID) bool {
	return a.UserID == userID
}

// CanAccess reports whether the actor owns the resource or is an admin.
func (a Actor) CanAccess(ownerID uuid.UUID) bool {
	return a.IsAdmin() || a.Owns(ownerID)
}
