// Package page provides support for query paging.
package page

import (
	"fmt"
	"math"
	"strconv"
)

// Paging bounds applied to every listing.
const (
	DefaultRows = 100
	MaxRows     = 500
	MaxOffset   = math.MaxInt32
)

// Page represents the requested page and rows per page.
type Page struct {
	number int
	rows   int
}

// Parse parses the strings and validates the values are in reason. Values
// outside the allowed range are clamped rather than rejected: rows to
// [1, MaxRows] and the page number to at least 1.
func Parse(page string, rowsPerPage string) (Page, error) {
	number := 1
	if page != "" {
		var err error
		number, err = strconv.Atoi(page)
		if err != nil {
			return Page{}, fmt.Errorf("page conversion: %w", err)
		}
	}

	rows := DefaultRows
	if rowsPerPage != "" {
		var err error
		rows, err = strconv.Atoi(rowsPerPage)
		if err != nil {
			return Page{}, fmt.Errorf("rows conversion: %w", err)
		}
	}

	return New(number, rows), nil
}

// New constructs a clamped page value.
func New(number int, rows int) Page {
	number = max(number, 1)
	rows = min(max(rows, 1), MaxRows)

	return Page{
		number: number,
		rows:   rows,
	}
}

// MustParse creates a paging value for testing.
func MustParse(page string, rowsPerPage string) Page {
	pg, err := Parse(page, rowsPerPage)
	if err != nil {
		panic(err)
	}

	return pg
}

// String implements the stringer interface.
func (p Page) String() string {
	return fmt.Sprintf("page: %d rows: %d", p.number, p.rows)
}

// Number returns the page number.
func (p Page) Number() int {
	return p.number
}

// RowsPerPage returns the rows per page.
func (p Page) RowsPerPage() int {
	return p.rows
}

// Offset returns the number of rows skipped before this page, capped at
// MaxOffset so a huge page number reads past the end.
func (p Page) Offset() int {
	if p.rows > 0 && p.number-1 > MaxOffset/p.rows {
		return MaxOffset
	}

	return (p.number - 1) * p.rows
}
