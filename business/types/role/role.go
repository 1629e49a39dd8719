// Package role represents the role type in the system.
package role

import (
	"fmt"
	"strings"
)

// The set of roles that can be used.
var (
	Admin    = newRole("admin")
	Owner    = newRole("owner")
	Staff    = newRole("staff")
	Mechanic = newRole("mechanic")
	Callboy  = newRole("callboy")
	Backend  = newRole("backend")
	User     = newRole("user")
)

// legacy spellings still present in stored data and client payloads.
var aliases = map[string]Role{
	"executive": Staff,
	"call-boy":  Callboy,
	"call_boy":  Callboy,
}

// =============================================================================

// Set of known roles.
var roles = make(map[string]Role)

// Role represents a role in the system.
type Role struct {
	value string
}

func newRole(role string) Role {
	r := Role{role}
	roles[role] = r
	return r
}

// String returns the name of the role.
func (r Role) String() string {
	return r.value
}

// Equal provides support for the go-cmp package and testing.
func (r Role) Equal(r2 Role) bool {
	return r.value == r2.value
}

// MarshalText provides support for logging and any marshal needs.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.value), nil
}

// IsBranchScoped reports whether principals with this role are bound to a
// single branch.
func (r Role) IsBranchScoped() bool {
	switch r {
	case Staff, Mechanic, Callboy:
		return true
	}

	return false
}

// =============================================================================

// Parse parses the string value and returns a role if one exists.
func Parse(value string) (Role, error) {
	role, exists := roles[value]
	if !exists {
		return Role{}, fmt.Errorf("invalid role %q", value)
	}

	return role, nil
}

// MustParse parses the string value and returns a role if one exists. If
// an error occurs the function panics.
func MustParse(value string) Role {
	role, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return role
}

// Normalize maps any role string onto the canonical set. Known aliases are
// translated and everything unrecognized becomes User.
func Normalize(value string) Role {
	v := strings.ToLower(strings.TrimSpace(value))

	if r, exists := roles[v]; exists {
		return r
	}

	if r, exists := aliases[v]; exists {
		return r
	}

	return User
}

// All returns every known role.
func All() []Role {
	return []Role{Admin, Owner, Staff, Mechanic, Callboy, Backend, User}
}
