package team_test

import (
	"encoding/json"
	"testing"

	"github.com/jcpaschoal/dealerdesk/business/types/team"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseListString(t *testing.T) {
	got := team.ParseList("Ravi | 9731366921\nRavi|9731366921\nSuresh")

	want := []team.Member{
		{Name: "Ravi", Phone: "9731366921"},
		{Name: "Suresh"},
	}
	assert.Equal(t, want, got)
}

func Test_ParseListDedupFirstSeenWins(t *testing.T) {
	got := team.ParseList("anil:111; ANIL:222, Anil")

	require.Len(t, got, 1)
	assert.Equal(t, team.Member{Name: "anil", Phone: "111"}, got[0])
}

func Test_ParseListObjects(t *testing.T) {
	var in []any
	err := json.Unmarshal([]byte(`[
		{"name": " Kiran ", "contact": "+91 98450-00000"},
		{"value": "Meena", "mobile": 9845011111},
		{"name": ""},
		"Joseph:044-2345",
		{"name": "kiran", "phone": "1"}
	]`), &in)
	require.NoError(t, err)

	want := []team.Member{
		{Name: "Kiran", Phone: "919845000000"},
		{Name: "Meena", Phone: "9845011111"},
		{Name: "Joseph", Phone: "0442345"},
	}
	assert.Equal(t, want, team.ParseList(in))
}

func Test_ParseListRejectsOtherShapes(t *testing.T) {
	assert.Empty(t, team.ParseList(nil))
	assert.Empty(t, team.ParseList(""))
	assert.Empty(t, team.ParseList(map[string]any{"name": "x"}))
	assert.Empty(t, team.ParseList(42.0))
}

func Test_ParseOverridesAndAliases(t *testing.T) {
	roster := map[string]any{
		"executive": "Asha",
		"mechanic":  []any{"Babu|123"},
		"callboys":  "Chetan",
		"staff":     "Dev",
	}
	overrides := map[string]any{
		"staff":    "Esha",
		"callboys": nil,
	}

	got := team.Parse(roster, overrides)

	assert.Equal(t, []team.Member{{Name: "Asha"}}, got.Executives)
	assert.Equal(t, []team.Member{{Name: "Babu", Phone: "123"}}, got.Mechanics)
	assert.Equal(t, []team.Member{{Name: "Chetan"}}, got.Callboys)
	assert.Equal(t, []team.Member{{Name: "Esha"}}, got.Staff)
}

func Test_MarshalRoundTrip(t *testing.T) {
	in := team.Team{Mechanics: []team.Member{{Name: "Babu", Phone: "123"}, {Name: "Ravi"}}}

	data, err := in.Marshal()
	require.NoError(t, err)
	assert.JSONEq(t, `{"mechanics":[{"name":"Babu","phone":"123"},{"name":"Ravi"}]}`, string(data))

	out, err := team.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	empty, err := team.Unmarshal([]byte(`{}`))
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())
}
