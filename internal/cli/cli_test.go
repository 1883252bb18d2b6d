package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfigFlagOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graphscout.yaml")
	require.NoError(t, os.WriteFile(path, []byte("provider: anthropic\nchunk_size: 15\nlog_level: debug\n"), 0644))

	root := NewRootCommand("test")
	require.NoError(t, root.ParseFlags([]string{
		"--config", path,
		"--provider", "ollama",
		"--chunk-size", "10",
		"--allow", "*.py",
	}))

	cfg, err := ResolveConfig(root)
	require.NoError(t, err)
	assert.Equal(t, "ollama", cfg.Provider)
	assert.Equal(t, 10, cfg.ChunkSize)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"*.py"}, cfg.Allow)
}

func TestResolveConfigRejectsBadOverride(t *testing.T) {
	root := NewRootCommand("test")
	require.NoError(t, root.ParseFlags([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml"), "--provider", "bogus"}))

	_, err := ResolveConfig(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported provider")
}

func TestTargetSet(t *testing.T) {
	root := NewRootCommand("test")
	scanCmd, _, err := root.Find([]string{"scan"})
	require.NoError(t, err)

	targets, err := targetSet(scanCmd)
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, "function", targets[0].ID)

	require.NoError(t, scanCmd.Flags().Set("targets", "classes"))
	targets, err = targetSet(scanCmd)
	require.NoError(t, err)
	assert.Len(t, targets, 2)

	require.NoError(t, scanCmd.Flags().Set("targets", "modules"))
	_, err = targetSet(scanCmd)
	require.Error(t, err)
}

func TestNewOracleRequiresCredentials(t *testing.T) {
	root := NewRootCommand("test")
	require.NoError(t, root.ParseFlags([]string{
		"--config", filepath.Join(t.TempDir(), "absent.yaml"),
		"--api-key-env", "GRAPHSCOUT_TEST_UNSET_KEY",
	}))

	cfg, err := ResolveConfig(root)
	require.NoError(t, err)

	_, err = NewOracle(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing API key")
}
