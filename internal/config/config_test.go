package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("LUMO_JWT_SECRET", "test-secret")
	t.Setenv("LUMO_DATABASE_URL", "postgres://localhost:5432/lumoclass")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "LumoClass API", cfg.AppName)
	require.Equal(t, "8080", cfg.AppPort)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, time.Minute, cfg.SweepInterval)
	require.Equal(t, 30*time.Second, cfg.LeaderboardCacheTTL)
	require.Equal(t, 50, cfg.LeaderboardLimit)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("LUMO_JWT_SECRET", "")
	t.Setenv("LUMO_DATABASE_URL", "postgres://localhost:5432/lumoclass")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("LUMO_JWT_SECRET", "test-secret")
	t.Setenv("LUMO_DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
}
