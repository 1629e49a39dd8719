package errs_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jcpaschoal/dealerdesk/app/sdk/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Envelope(t *testing.T) {
	e := errs.Errorf(errs.NotFound, "Branch not found")

	data, contentType, err := e.Encode()
	require.NoError(t, err)

	assert.Equal(t, "application/json", contentType)
	assert.JSONEq(t, `{"success":false,"message":"Branch not found"}`, string(data))
	assert.Equal(t, http.StatusNotFound, e.HTTPStatus())
}

func Test_GetError(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", errs.New(errs.AlreadyExists, errors.New("dup")))

	assert.True(t, errs.IsError(wrapped))
	assert.Equal(t, http.StatusConflict, errs.GetError(wrapped).HTTPStatus())
	assert.Nil(t, errs.GetError(errors.New("plain")))
}

func Test_Check(t *testing.T) {
	type payload struct {
		Email string `json:"email" validate:"required,email"`
		Name  string `json:"name" validate:"required"`
	}

	err := errs.Check(payload{Email: "nope"})
	require.Error(t, err)
	require.True(t, errs.IsFieldErrors(err))

	fields := errs.GetFieldErrors(err).Fields()
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "name")

	assert.NoError(t, errs.Check(payload{Email: "a@b.co", Name: "Asha"}))
}
