// Package query provides support for query paging.
package query

import (
	"encoding/json"
)

// Page is the items and total of a listing.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// Result is the data model used when returning a query result.
type Result[T any] struct {
	Success bool    `json:"success"`
	Data    Page[T] `json:"data"`
	Public  bool    `json:"public,omitempty"`
}

// NewResult constructs a result value to return query results.
func NewResult[T any](items []T, total int) Result[T] {
	if items == nil {
		items = []T{}
	}

	return Result[T]{
		Success: true,
		Data: Page[T]{
			Items: items,
			Total: total,
		},
	}
}

// Empty returns the result of a listing that reaches no records.
func Empty[T any]() Result[T] {
	return NewResult[T](nil, 0)
}

// AsPublic marks the result as served by a public listing.
func (r Result[T]) AsPublic() Result[T] {
	r.Public = true
	return r
}

// Encode implements the encoder interface.
func (r Result[T]) Encode() ([]byte, string, error) {
	data, err := json.Marshal(r)
	return data, "application/json", err
}
