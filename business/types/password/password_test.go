package password_test

import (
	"strings"
	"testing"

	"github.com/jcpaschoal/dealerdesk/business/types/password"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_HashVerify(t *testing.T) {
	pw := password.MustParse("gophers!")

	stored, err := pw.Hash()
	require.NoError(t, err)

	salt, key, ok := strings.Cut(stored, ":")
	require.True(t, ok)
	assert.Len(t, salt, 32)
	assert.Len(t, key, 128)

	assert.True(t, password.Verify("gophers!", stored))
	assert.False(t, password.Verify("gophers?", stored))

	again, err := pw.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, stored, again, "salt must differ per hash")
}

func Test_VerifyMalformed(t *testing.T) {
	for _, stored := range []string{
		"",
		"deadbeef",
		":deadbeef",
		"deadbeef:",
		"zz:deadbeef",
		"deadbeef:zz",
	} {
		assert.False(t, password.Verify("secret", stored), "stored %q", stored)
	}
}

func Test_ParsePolicy(t *testing.T) {
	_, err := password.Parse("12345")
	assert.Error(t, err)

	_, err = password.Parse("123456")
	assert.NoError(t, err)
}
