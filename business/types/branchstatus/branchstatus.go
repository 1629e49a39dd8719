// Package branchstatus represents the branch status in the system.
package branchstatus

import (
	"fmt"
	"strings"
)

// The set of branch statuses that can be used.
var (
	Active           = newBranchStatus("active")
	Inactive         = newBranchStatus("inactive")
	UnderMaintenance = newBranchStatus("under_maintenance")
)

// =============================================================================

// Set of known branch statuses.
var values = make(map[string]BranchStatus)

// BranchStatus represents a branch status in the system.
type BranchStatus struct {
	value string
}

func newBranchStatus(v string) BranchStatus {
	t := BranchStatus{v}
	values[v] = t
	return t
}

// String returns the name of the branch status.
func (t BranchStatus) String() string {
	return t.value
}

// Equal provides support for the go-cmp package and testing.
func (t BranchStatus) Equal(t2 BranchStatus) bool {
	return t.value == t2.value
}

// MarshalText provides support for logging and any marshal needs.
func (t BranchStatus) MarshalText() ([]byte, error) {
	return []byte(t.value), nil
}

// =============================================================================

// Parse parses the string value and returns a branch status if one exists.
func Parse(value string) (BranchStatus, error) {
	t, exists := values[value]
	if !exists {
		return BranchStatus{}, fmt.Errorf("invalid branch status %q", value)
	}

	return t, nil
}

// MustParse parses the string value and returns a branch status if one exists. If
// an error occurs the function panics.
func MustParse(value string) BranchStatus {
	t, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return t
}

// Normalize trims and lowercases the value and falls back to Active when
// it is not a known branch status.
func Normalize(value string) BranchStatus {
	if t, exists := values[strings.ToLower(strings.TrimSpace(value))]; exists {
		return t
	}

	return Active
}
