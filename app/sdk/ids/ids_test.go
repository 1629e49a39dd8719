package ids_test

import (
	"encoding/json"
	"testing"

	"github.com/jcpaschoal/dealerdesk/app/sdk/ids"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Parse(t *testing.T) {
	id, err := ids.Parse("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, v := range []string{"", "0", "-3", "abc", "4.5"} {
		_, err := ids.Parse(v)
		assert.Error(t, err, "value %q", v)
	}
}

func Test_UnmarshalJSON(t *testing.T) {
	var body struct {
		A ids.ID `json:"a"`
		B ids.ID `json:"b"`
		C ids.ID `json:"c"`
		D ids.ID `json:"d"`
		E ids.ID `json:"e"`
	}

	err := json.Unmarshal([]byte(`{"a": 7, "b": "8", "c": null, "d": "", "e": 0}`), &body)
	require.NoError(t, err)

	assert.Equal(t, ids.ID(7), body.A)
	assert.Equal(t, ids.ID(8), body.B)
	assert.Zero(t, body.C)
	assert.Zero(t, body.D)
	assert.Zero(t, body.E)

	assert.Equal(t, int64(8), ids.First(body.C, body.B, body.A))

	assert.Error(t, json.Unmarshal([]byte(`{"a": "x"}`), &body))
}
