// Package team represents the staff roster attached to a branch.
//
// Client payloads arrive in several shapes. Each category accepts a list of
// strings or objects, or one string holding entries separated by newlines,
// commas or semicolons. A string entry is "name|phone" or "name:phone". An
// object entry reads name (or value) and phone (or contact, or mobile).
// Members are deduplicated case-insensitively by name and the first
// occurrence wins.
package team

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jcpaschoal/dealerdesk/business/types/phone"
)

// Member is one person on a branch roster.
type Member struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// Team maps every category to its ordered member list.
type Team struct {
	Executives []Member `json:"executives,omitempty"`
	Mechanics  []Member `json:"mechanics,omitempty"`
	Callboys   []Member `json:"callboys,omitempty"`
	Staff      []Member `json:"staff,omitempty"`
}

// IsEmpty reports whether no category has members.
func (t Team) IsEmpty() bool {
	return len(t.Executives) == 0 && len(t.Mechanics) == 0 && len(t.Callboys) == 0 && len(t.Staff) == 0
}

// Marshal returns the JSON document stored for the team.
func (t Team) Marshal() ([]byte, error) {
	return json.Marshal(t)
}

// Unmarshal decodes a stored document. Stored rosters are run through the
// same normalization as client input.
func Unmarshal(data []byte) (Team, error) {
	if len(data) == 0 {
		return Team{}, nil
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Team{}, fmt.Errorf("unmarshal team: %w", err)
	}

	return Parse(raw, nil), nil
}

// =============================================================================

// Category is one of the closed set of roster keys.
type Category struct {
	key   string
	alias string
	list  func(t *Team) *[]Member
}

// The set of categories.
var (
	Executives = Category{"executives", "executive", func(t *Team) *[]Member { return &t.Executives }}
	Mechanics  = Category{"mechanics", "mechanic", func(t *Team) *[]Member { return &t.Mechanics }}
	Callboys   = Category{"callboys", "callboy", func(t *Team) *[]Member { return &t.Callboys }}
	Staff      = Category{"staff", "", func(t *Team) *[]Member { return &t.Staff }}
)

var categories = []Category{Executives, Mechanics, Callboys, Staff}

// String returns the category key.
func (c Category) String() string {
	return c.key
}

// Keys returns the category keys in their canonical order.
func Keys() []string {
	keys := make([]string, len(categories))
	for i, c := range categories {
		keys[i] = c.key
	}

	return keys
}

// Parse builds a team from a roster object and optional top level overrides.
// A non-nil override for a category key replaces whatever the roster object
// carries for that category.
func Parse(roster map[string]any, overrides map[string]any) Team {
	var t Team

	for _, c := range categories {
		v, ok := overrides[c.key]
		if !ok || v == nil {
			v = firstPresent(roster[c.key], roster[c.alias])
		}

		*c.list(&t) = ParseList(v)
	}

	return t
}

// ParseList normalizes the value of a single category.
func ParseList(v any) []Member {
	var entries []any

	switch val := v.(type) {
	case nil:
		return nil

	case []any:
		entries = val

	case []string:
		for _, s := range val {
			entries = append(entries, s)
		}

	case string:
		for _, s := range listSplit.Split(val, -1) {
			entries = append(entries, s)
		}

	default:
		return nil
	}

	seen := make(map[string]struct{}, len(entries))
	var members []Member

	for _, e := range entries {
		m, ok := parseEntry(e)
		if !ok {
			continue
		}

		key := strings.ToLower(m.Name)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}

		members = append(members, m)
	}

	return members
}

var (
	listSplit  = regexp.MustCompile(`[\n,;]+`)
	entrySplit = regexp.MustCompile(`[|:]`)
)

func parseEntry(e any) (Member, bool) {
	if obj, ok := e.(map[string]any); ok {
		name := strings.TrimSpace(scalar(firstPresent(obj["name"], obj["value"])))
		if name == "" {
			return Member{}, false
		}

		ph := phone.Digits(scalar(firstPresent(obj["phone"], obj["contact"], obj["mobile"])))

		return Member{Name: name, Phone: ph}, true
	}

	raw := strings.TrimSpace(scalar(e))
	if raw == "" {
		return Member{}, false
	}

	var parts []string
	for _, p := range entrySplit.Split(raw, -1) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	if len(parts) == 0 {
		return Member{}, false
	}

	return Member{
		Name:  parts[0],
		Phone: phone.Digits(strings.Join(parts[1:], "")),
	}, true
}

// firstPresent returns the first value that is not empty.
func firstPresent(vals ...any) any {
	for _, v := range vals {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			if val == "" {
				continue
			}
		case bool:
			if !val {
				continue
			}
		case float64:
			if val == 0 {
				continue
			}
		}

		return v
	}

	return nil
}

func scalar(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	}

	return ""
}
