// File: internal/rbac/permissions.go
package rbac

import "sort"

// Permission names an action on a resource, formatted resource:action[:scope].
type Permission string

const (
	UsersReadSelf    Permission = "users:read:self"
	UsersUpdateSelf  Permission = "users:update:self"
	UsersReadAny     Permission = "users:read:any"
	UsersUpdateAny   Permission = "users:update:any"
	UsersDeleteAny   Permission = "users:delete:any"
	UsersManageRoles Permission = "users:manage_roles"

	ItinerariesCreate    Permission = "itineraries:create"
	ItinerariesReadOwn   Permission = "itineraries:read:own"
	ItinerariesUpdateOwn Permission = "itineraries:update:own"
	ItinerariesDeleteOwn Permission = "itineraries:delete:own"
	ItinerariesReadAny   Permission = "itineraries:read:any"
	ItinerariesUpdateAny Permission = "itineraries:update:any"
	ItinerariesDeleteAny Permission = "itineraries:delete:any"

	ChatCreate    Permission = "chat:create"
	ChatReadOwn   Permission = "chat:read:own"
	ChatDeleteOwn Permission = "chat:delete:own"
	ChatReadAny   Permission = "chat:read:any"

	TravelWeather Permission = "travel:weather"
	TravelFlights Permission = "travel:flights"

	SystemMigrate       Permission = "system:migrate"
	SystemBackup        Permission = "system:backup"
	SystemRestore       Permission = "system:restore"
	SystemHealthDetails Permission = "system:health_details"
)

var guestPermissions = []Permission{
	UsersReadSelf,
	TravelWeather,
	TravelFlights,
}

var userPermissions = []Permission{
	UsersUpdateSelf,
	ItinerariesCreate,
	ItinerariesReadOwn,
	ItinerariesUpdateOwn,
	ItinerariesDeleteOwn,
	ChatCreate,
	ChatReadOwn,
	ChatDeleteOwn,
}

var agentPermissions = []Permission{
	UsersReadAny,
	ItinerariesReadAny,
	ItinerariesUpdateAny,
	ChatReadAny,
}

var adminPermissions = []Permission{
	UsersUpdateAny,
	UsersDeleteAny,
	UsersManageRoles,
	ItinerariesDeleteAny,
	SystemMigrate,
	SystemBackup,
	SystemRestore,
	SystemHealthDetails,
}

// rolePermissions is built once at init and never mutated afterwards.
var rolePermissions = buildRolePermissions()

func buildRolePermissions() map[Role]map[Permission]struct{} {
	layers := []struct {
		role  Role
		perms []Permission
	}{
		{RoleGuest, guestPermissions},
		{RoleUser, userPermissions},
		{RoleAgent, agentPermissions},
		{RoleAdmin, adminPermissions},
	}

	out := make(map[Role]map[Permission]struct{}, len(layers))
	acc := make(map[Permission]struct{})
	for _, layer := range layers {
		for _, p := range layer.perms {
			acc[p] = struct{}{}
		}
		set := make(map[Permission]struct{}, len(acc))
		for p := range acc {
			set[p] = struct{}{}
		}
		out[layer.role] = set
	}
	return out
}

// AllPermissions returns every defined permission, sorted.
func AllPermissions() []Permission {
	return PermissionsForRole(RoleAdmin)
}

// HasPermission reports whether role holds perm. Unknown roles hold nothing.
func HasPermission(role Role, perm Permission) bool {
	set, ok := rolePermissions[role]
	if !ok {
		return false
	}
	_, ok = set[perm]
	return ok
}

// HasAnyPermission reports whether role holds at least one of perms.
func HasAnyPermission(role Role, perms ...Permission) bool {
	for _, p := range perms {
		if HasPermission(role, p) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether role holds every one of perms.
func HasAllPermissions(role Role, perms ...Permission) bool {
	for _, p := range perms {
		if !HasPermission(role, p) {
			return false
		}
	}
	return true
}

// PermissionsForRole returns a sorted copy of the role's permissions.
func PermissionsForRole(role Role) []Permission {
	set := rolePermissions[role]
	out := make([]Permission, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CanAccessResource grants access when the actor owns the resource and holds ownPerm,
// or holds anyPerm regardless of ownership.
func CanAccessResource(role Role, actorID, ownerID string, ownPerm, anyPerm Permission) bool {
	if HasPermission(role, anyPerm) {
		return true
	}
	return actorID != "" && actorID == ownerID && HasPermission(role, ownPerm)
}

// CanAssignRole reports whether actor may give target to another account.
// Only role managers can assign, and never above their own rank.
func CanAssignRole(actor, target Role) bool {
	if !target.Valid() || !HasPermission(actor, UsersManageRoles) {
		return false
	}
	return actor.AtLeast(target)
}
