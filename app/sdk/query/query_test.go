package query_test

import (
	"testing"

	"github.com/jcpaschoal/dealerdesk/app/sdk/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Encode(t *testing.T) {
	data, _, err := query.Empty[string]().AsPublic().Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":{"items":[],"total":0},"public":true}`, string(data))

	data, _, err = query.NewResult([]int{1, 2}, 7).Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":{"items":[1,2],"total":7}}`, string(data))
}

func Test_Envelope(t *testing.T) {
	env := query.NewData(map[string]int{"id": 3}).WithMessage("Branch created").Created()

	data, _, err := env.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"message":"Branch created","data":{"id":3}}`, string(data))
	assert.Equal(t, 201, env.HTTPStatus())

	data, _, err = query.NewMessage("Branch deleted").Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"message":"Branch deleted"}`, string(data))
}
