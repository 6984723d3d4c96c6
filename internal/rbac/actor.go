// File: internal/rbac/actor.go
package rbac

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   string
	Role Role
}

// Can reports whether the actor's role holds perm.
func (a Actor) Can(perm Permission) bool {
	return HasPermission(a.Role, perm)
}

// CanAccess applies CanAccessResource to a resource owned by ownerID.
func (a Actor) CanAccess(ownerID string, ownPerm, anyPerm Permission) bool {
	return CanAccessResource(a.Role, a.ID, ownerID, ownPerm, anyPerm)
}
