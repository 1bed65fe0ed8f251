package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "fractalreg", cmd.Use)
	assert.Contains(t, cmd.Long, "FRACTALREG_")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"insert", "delete", "find", "grants-for", "derive-id", "verify", "test"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	for name, def := range map[string]string{
		"format":     "text",
		"db":         "fractalreg.db",
		"events":     "stderr",
		"log-level":  "info",
		"log-format": "console",
		"caller":     "",
		"now":        "0",
		"config":     "",
	} {
		f := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, f, name)
		assert.Equal(t, def, f.DefValue, name)
	}
}

func TestRoot_InvalidFormatIsCommandError(t *testing.T) {
	_, _, err := execute(t, args(tempDB(t), "find", "--owner", "alice.near", "--format", "xml")...)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRoot_MissingConfigFileIsCommandError(t *testing.T) {
	_, _, err := execute(t, args(tempDB(t), "verify", "--config", filepath.Join(t.TempDir(), "nope.yaml"))...)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRoot_ConfigFileSuppliesCaller(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "fractalreg.yaml")
	db := filepath.Join(dir, "registry.db")
	require.NoError(t, os.WriteFile(cfgPath, []byte("caller: alice.near\nevents: none\ndb: "+db+"\n"), 0o600))

	_, _, err := execute(t, "insert", "--config", cfgPath, "--grantee", bob, "--data-id", "A1")
	require.NoError(t, err)

	stdout, _, err := execute(t, "find", "--config", cfgPath, "--owner", "alice.near")
	require.NoError(t, err)
	assert.Contains(t, stdout, `alice.near -> `+bob+` on "A1"`)
}

func TestRoot_EnvSuppliesCaller(t *testing.T) {
	t.Setenv("FRACTALREG_CALLER", "mallory.near")
	db := tempDB(t)

	_, _, err := execute(t, args(db, "insert", "--grantee", bob, "--data-id", "A1")...)
	require.NoError(t, err)

	stdout, _, err := execute(t, args(db, "find", "--owner", "mallory.near")...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "mallory.near -> ")
}
