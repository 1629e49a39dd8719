// Package userstatus represents the user status in the system.
package userstatus

import (
	"fmt"
	"strings"
)

// The set of user statuses that can be used.
var (
	Active    = newUserStatus("active")
	Inactive  = newUserStatus("inactive")
	Suspended = newUserStatus("suspended")
)

// =============================================================================

// Set of known user statuses.
var values = make(map[string]UserStatus)

// UserStatus represents a user status in the system.
type UserStatus struct {
	value string
}

func newUserStatus(v string) UserStatus {
	t := UserStatus{v}
	values[v] = t
	return t
}

// String returns the name of the user status.
func (t UserStatus) String() string {
	return t.value
}

// Equal provides support for the go-cmp package and testing.
func (t UserStatus) Equal(t2 UserStatus) bool {
	return t.value == t2.value
}

// MarshalText provides support for logging and any marshal needs.
func (t UserStatus) MarshalText() ([]byte, error) {
	return []byte(t.value), nil
}

// =============================================================================

// Parse parses the string value and returns a user status if one exists.
func Parse(value string) (UserStatus, error) {
	t, exists := values[value]
	if !exists {
		return UserStatus{}, fmt.Errorf("invalid user status %q", value)
	}

	return t, nil
}

// MustParse parses the string value and returns a user status if one exists. If
// an error occurs the function panics.
func MustParse(value string) UserStatus {
	t, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return t
}

// Normalize trims and lowercases the value and falls back to Active when
// it is not a known user status.
func Normalize(value string) UserStatus {
	if t, exists := values[strings.ToLower(strings.TrimSpace(value))]; exists {
		return t
	}

	return Active
}
