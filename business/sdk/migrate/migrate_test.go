package migrate

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var idempotent = []*regexp.Regexp{
	regexp.MustCompile(`^CREATE TABLE IF NOT EXISTS `),
	regexp.MustCompile(`^CREATE (UNIQUE )?INDEX IF NOT EXISTS `),
	regexp.MustCompile(`^ALTER TABLE \w+ ADD COLUMN IF NOT EXISTS `),
}

func upStatements(t *testing.T) []string {
	t.Helper()

	data, err := migrations.ReadFile("sql/00001_schema.sql")
	require.NoError(t, err)

	src := string(data)
	start := strings.Index(src, "-- +goose Up")
	end := strings.Index(src, "-- +goose Down")
	require.True(t, start >= 0 && end > start, "missing goose annotations")

	var stmts []string
	for _, s := range strings.Split(src[start+len("-- +goose Up"):end], ";") {
		s = strings.Join(strings.Fields(s), " ")
		if s != "" {
			stmts = append(stmts, s)
		}
	}

	return stmts
}

func Test_UpStatementsAreIdempotent(t *testing.T) {
	stmts := upStatements(t)
	require.NotEmpty(t, stmts)

	for _, stmt := range stmts {
		matched := false
		for _, re := range idempotent {
			if re.MatchString(stmt) {
				matched = true
				break
			}
		}
		assert.True(t, matched, "statement is not safe to re-run: %s", stmt)
	}
}

func Test_SchemaCarriesConstraints(t *testing.T) {
	all := strings.Join(upStatements(t), "\n")

	for _, want := range []string{
		"email TEXT NOT NULL UNIQUE",
		"user_id BIGINT UNIQUE",
		"UNIQUE (owner_id, code)",
		"branches_owner_id_code_key ON branches (owner_id, code)",
		"users_phone_unique",
		"users_branch_role_unique",
		"team JSONB",
	} {
		assert.Contains(t, all, want)
	}
}
