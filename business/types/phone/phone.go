// Package phone represents a contact number in the system.
package phone

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"
)

// phoneRegEx allows an optional leading +, then digits, spaces, dots,
// parentheses or hyphens.
var phoneRegEx = regexp.MustCompile(`^\+?[0-9\s().-]{3,24}$`)

// Null represents a phone number that may be absent. Principals without a
// phone share no uniqueness slot, so absence is kept distinct from "".
type Null struct {
	value string
	valid bool
}

// ParseNull trims the value and validates it. An empty value yields an
// absent phone.
func ParseNull(value string) (Null, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Null{}, nil
	}

	if !phoneRegEx.MatchString(value) {
		return Null{}, fmt.Errorf("invalid phone %q", value)
	}

	return Null{value, true}, nil
}

// MustParseNull parses the value and panics if it is not a phone number.
func MustParseNull(value string) Null {
	ph, err := ParseNull(value)
	if err != nil {
		panic(err)
	}

	return ph
}

// FromSQL wraps a stored value. Stored phones predate validation so they
// are accepted as they are.
func FromSQL(ns sql.NullString) Null {
	v := strings.TrimSpace(ns.String)
	if !ns.Valid || v == "" {
		return Null{}
	}

	return Null{v, true}
}

// ToSQLNullString converts a Null value to a sql NullString.
func ToSQLNullString(n Null) sql.NullString {
	return sql.NullString{
		String: n.value,
		Valid:  n.valid,
	}
}

// String returns the phone number or the empty string when absent.
func (n Null) String() string {
	return n.value
}

// Valid reports whether a phone number is present.
func (n Null) Valid() bool {
	return n.valid
}

// Equal provides support for the go-cmp package and testing.
func (n Null) Equal(n2 Null) bool {
	return n.value == n2.value && n.valid == n2.valid
}

// MarshalText provides support for logging and any marshal needs.
func (n Null) MarshalText() ([]byte, error) {
	return []byte(n.value), nil
}

// =============================================================================

// Digits strips everything that is not an ASCII digit.
func Digits(value string) string {
	var b strings.Builder
	b.Grow(len(value))

	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	return b.String()
}
