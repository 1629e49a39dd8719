// Package branchcode represents the short code a tenant assigns to a branch.
package branchcode

import (
	"fmt"
	"strings"
)

// Code is unique within a tenant and always stored uppercased.
type Code struct {
	value string
}

// Parse trims and uppercases the value.
func Parse(value string) (Code, error) {
	value = strings.ToUpper(strings.TrimSpace(value))
	if value == "" {
		return Code{}, fmt.Errorf("branch code is required")
	}

	return Code{value}, nil
}

// MustParse parses the value and panics on error.
func MustParse(value string) Code {
	c, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return c
}

// String returns the code.
func (c Code) String() string {
	return c.value
}

// Equal provides support for the go-cmp package and testing.
func (c Code) Equal(c2 Code) bool {
	return c.value == c2.value
}

// MarshalText provides support for logging and any marshal needs.
func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.value), nil
}
