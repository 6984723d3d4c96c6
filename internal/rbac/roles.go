// File: internal/rbac/roles.go
package rbac

import (
	"fmt"
	"strings"
)

// Role is a user's access level. Higher roles include every permission of the lower ones.
type Role string

const (
	RoleGuest Role = "guest"
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
	RoleAdmin Role = "admin"
)

// DefaultRole is assigned to newly provisioned accounts.
const DefaultRole = RoleUser

var roleRank = map[Role]int{
	RoleGuest: 0,
	RoleUser:  1,
	RoleAgent: 2,
	RoleAdmin: 3,
}

// AllRoles lists the roles from least to most privileged.
func AllRoles() []Role {
	return []Role{RoleGuest, RoleUser, RoleAgent, RoleAdmin}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

func (r Role) String() string { return string(r) }

// ParseRole normalizes s and returns the matching role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// AtLeast reports whether r ranks at or above min. Unknown roles rank below everything.
func (r Role) AtLeast(min Role) bool {
	rr, ok := roleRank[r]
	if !ok {
		return false
	}
	mr, ok := roleRank[min]
	if !ok {
		return false
	}
	return rr >= mr
}
