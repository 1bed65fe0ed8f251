package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, db []string) {
	t.Helper()
	for _, g := range [][]string{
		{"alice.near", bob, "A1"},
		{"alice.near", bob, "A2"},
		{"alice.near", charlie, "A2"},
		{"mallory.near", bob, "A2"},
	} {
		_, _, err := execute(t, args(db, "insert", "--caller", g[0], "--grantee", g[1], "--data-id", g[2])...)
		require.NoError(t, err)
	}
}

func TestFind_Intersection(t *testing.T) {
	db := tempDB(t)
	seed(t, db)

	tests := []struct {
		name  string
		flags []string
		want  []string
	}{
		{"owner", []string{"--owner", "alice.near"}, []string{"A1", "A2", "A2"}},
		{"grantee", []string{"--grantee", bob}, []string{"A1", "A2", "A2"}},
		{"owner and data id", []string{"--owner", "alice.near", "--data-id", "A2"}, []string{"A2", "A2"}},
		{"all three", []string{"--owner", "mallory.near", "--grantee", bob, "--data-id", "A2"}, []string{"A2"}},
		{"no match", []string{"--owner", "alice.near", "--data-id", "A9"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, args(db, append([]string{"--format", "json", "find"}, tt.flags...)...)...)
			require.NoError(t, err)

			var views []GrantView
			require.NoError(t, json.Unmarshal(decodeResponse(t, stdout).Data, &views))
			var got []string
			for _, v := range views {
				got = append(got, v.DataID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFind_RequiresOwnerOrGrantee(t *testing.T) {
	stdout, _, err := execute(t, args(tempDB(t), "find", "--data-id", "A2")...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "Error [INVALID_QUERY]: Required argument: `owner` and/or `grantee`\n", stdout)
}

func TestFind_TextOutput(t *testing.T) {
	db := tempDB(t)
	seed(t, db)

	stdout, _, err := execute(t, args(db, "find", "--owner", "mallory.near")...)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 1)
	assert.True(t, strings.HasSuffix(lines[0], `mallory.near -> `+bob+` on "A2" (locked_until=0)`))
}

func TestGrantsFor(t *testing.T) {
	db := tempDB(t)
	seed(t, db)

	stdout, _, err := execute(t, args(db, "--format", "json", "grants-for", "--grantee", bob, "--data-id", "A2")...)
	require.NoError(t, err)

	var views []GrantView
	require.NoError(t, json.Unmarshal(decodeResponse(t, stdout).Data, &views))
	require.Len(t, views, 2)
	assert.Equal(t, "alice.near", views[0].Owner.String())
	assert.Equal(t, "mallory.near", views[1].Owner.String())
}

func TestGrantsFor_RequiresFlags(t *testing.T) {
	_, _, err := execute(t, args(tempDB(t), "grants-for", "--grantee", bob)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data-id")
}
