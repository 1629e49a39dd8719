package web

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Param returns the web call parameters from the request.
func Param(r *http.Request, key string) string {
	return r.PathValue(key)
}

// BearerToken returns the credential carried by the request. The
// Authorization header wins over the token query parameter.
func BearerToken(r *http.Request) string {
	authStr := strings.TrimSpace(r.Header.Get("Authorization"))

	if len(authStr) > 7 && strings.EqualFold(authStr[:7], "bearer ") {
		return strings.TrimSpace(authStr[7:])
	}

	return strings.TrimSpace(r.URL.Query().Get("token"))
}

type validator interface {
	Validate() error
}

// Decoder represents data that can be decoded.
type Decoder interface {
	Decode(data []byte) error
}

// Decode reads the body of an HTTP request and decodes the body into the
// specified data model. If the data model implements the validator interface,
// the method will be called.
func Decode(r *http.Request, v Decoder) error {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("request: unable to read payload: %w", err)
	}

	if len(data) == 0 {
		data = []byte("{}")
	}

	if err := v.Decode(data); err != nil {
		return fmt.Errorf("request: decode: %w", err)
	}

	if v, ok := v.(validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}

	return nil
}
