package role_test

import (
	"testing"

	"github.com/jcpaschoal/dealerdesk/business/types/role"
	"github.com/stretchr/testify/assert"
)

func Test_Normalize(t *testing.T) {
	tests := map[string]role.Role{
		"admin":      role.Admin,
		" Owner ":    role.Owner,
		"STAFF":      role.Staff,
		"executive":  role.Staff,
		"Executive":  role.Staff,
		"call-boy":   role.Callboy,
		"call_boy":   role.Callboy,
		"callboy":    role.Callboy,
		"mechanic":   role.Mechanic,
		"backend":    role.Backend,
		"":           role.User,
		"superadmin": role.User,
		"root":       role.User,
	}

	for in, want := range tests {
		assert.Equal(t, want, role.Normalize(in), "input %q", in)
	}
}

func Test_ParseIsStrict(t *testing.T) {
	_, err := role.Parse("executive")
	assert.Error(t, err)

	r, err := role.Parse("owner")
	assert.NoError(t, err)
	assert.Equal(t, role.Owner, r)
}

func Test_IsBranchScoped(t *testing.T) {
	for _, r := range role.All() {
		want := r == role.Staff || r == role.Mechanic || r == role.Callboy
		assert.Equal(t, want, r.IsBranchScoped(), r.String())
	}
}
