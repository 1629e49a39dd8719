package query

import (
	"encoding/json"
	"net/http"
)

// Envelope is the response document of a single record or a bare message.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    *T     `json:"data,omitempty"`
	status  int
}

// NewData wraps a record.
func NewData[T any](data T) Envelope[T] {
	return Envelope[T]{Success: true, Data: &data, status: http.StatusOK}
}

// NewMessage returns a successful response carrying only a message.
func NewMessage(msg string) Envelope[struct{}] {
	return Envelope[struct{}]{Success: true, Message: msg, status: http.StatusOK}
}

// WithMessage sets the message of the envelope.
func (e Envelope[T]) WithMessage(msg string) Envelope[T] {
	e.Message = msg
	return e
}

// Created marks the envelope as answering a creation.
func (e Envelope[T]) Created() Envelope[T] {
	e.status = http.StatusCreated
	return e
}

// HTTPStatus implements the web package httpStatus interface.
func (e Envelope[T]) HTTPStatus() int {
	return e.status
}

// Encode implements the encoder interface.
func (e Envelope[T]) Encode() ([]byte, string, error) {
	data, err := json.Marshal(e)
	return data, "application/json", err
}
