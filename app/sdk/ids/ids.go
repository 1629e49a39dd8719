// Package ids parses record identifiers supplied by clients.
package ids

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Parse returns the positive id held by the value.
func Parse(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", value)
	}

	return id, nil
}

// ParseOptional returns zero for an empty value.
func ParseOptional(value string) (int64, error) {
	if strings.TrimSpace(value) == "" {
		return 0, nil
	}

	return Parse(value)
}

// ID is a record id in a request body. Clients send it as a number or a
// numeric string; null, "" and 0 all mean absent.
type ID int64

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}

	var raw string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	} else {
		raw = string(data)
	}

	v, err := ParseOptional(raw)
	if err != nil {
		if raw == "0" {
			*id = 0
			return nil
		}
		return err
	}

	*id = ID(v)
	return nil
}

// Int64 returns the id as stored.
func (id ID) Int64() int64 {
	return int64(id)
}

// First returns the first non-zero id.
func First(vals ...ID) int64 {
	for _, v := range vals {
		if v != 0 {
			return int64(v)
		}
	}

	return 0
}
