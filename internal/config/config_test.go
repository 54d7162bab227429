package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runWith(t *testing.T, args []string) (*Config, error) {
	t.Helper()
	var captured *Config
	cmd := NewCommand(func(c *Config) error {
		captured = c
		return nil
	})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return captured, err
}

func TestDefaultsApplyWithNoFlagsOrEnv(t *testing.T) {
	cfg, err := runWith(t, []string{"--session-secret", "x"})
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.BindHost)
	assert.Equal(t, 8080, cfg.BindPort)
	assert.Equal(t, "hearts_session", cfg.SessionCookieName)
	assert.False(t, cfg.Development)
}

func TestFlagOverridesEnv(t *testing.T) {
	t.Setenv("HEARTS_BIND_PORT", "9000")

	cfg, err := runWith(t, []string{"--bind-port", "7000", "--session-secret", "x"})
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.BindPort)
}

func TestEnvAppliesWhenFlagNotSet(t *testing.T) {
	t.Setenv("HEARTS_BIND_HOST", "10.0.0.5")

	cfg, err := runWith(t, []string{"--session-secret", "x"})
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", cfg.BindHost)
}

func TestValidateRejectsEmptySecret(t *testing.T) {
	_, err := runWith(t, []string{})
	assert.Error(t, err)
}

func TestValidateRejectsInvalidPort(t *testing.T) {
	_, err := runWith(t, []string{"--bind-port", "0", "--session-secret", "x"})
	assert.Error(t, err)
}

func TestAddrCombinesHostAndPort(t *testing.T) {
	cfg := &Config{BindHost: "127.0.0.1", BindPort: 9999}
	assert.Equal(t, "127.0.0.1:9999", cfg.Addr())
}
