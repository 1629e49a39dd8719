// Package branchtype represents the branch type in the system.
package branchtype

import (
	"fmt"
	"strings"
)

// The set of branch types that can be used.
var (
	Sales            = newBranchType("sales")
	Service          = newBranchType("service")
	SalesAndServices = newBranchType("sales & services")
)

// =============================================================================

// Set of known branch types.
var values = make(map[string]BranchType)

// BranchType represents a branch type in the system.
type BranchType struct {
	value string
}

func newBranchType(v string) BranchType {
	t := BranchType{v}
	values[v] = t
	return t
}

// String returns the name of the branch type.
func (t BranchType) String() string {
	return t.value
}

// Equal provides support for the go-cmp package and testing.
func (t BranchType) Equal(t2 BranchType) bool {
	return t.value == t2.value
}

// MarshalText provides support for logging and any marshal needs.
func (t BranchType) MarshalText() ([]byte, error) {
	return []byte(t.value), nil
}

// =============================================================================

// Parse parses the string value and returns a branch type if one exists.
func Parse(value string) (BranchType, error) {
	t, exists := values[value]
	if !exists {
		return BranchType{}, fmt.Errorf("invalid branch type %q", value)
	}

	return t, nil
}

// MustParse parses the string value and returns a branch type if one exists. If
// an error occurs the function panics.
func MustParse(value string) BranchType {
	t, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return t
}

// Normalize trims and lowercases the value and falls back to SalesAndServices when
// it is not a known branch type.
func Normalize(value string) BranchType {
	if t, exists := values[strings.ToLower(strings.TrimSpace(value))]; exists {
		return t
	}

	return SalesAndServices
}
