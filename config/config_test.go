package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, "*", cfg.Server.CORSAllowedOrigins)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr)
	require.Equal(t, 24, cfg.JWT.ExpireHours)
	require.Equal(t, 30, cfg.Events.CacheTTLSeconds)
	require.Equal(t, 100, cfg.Events.DefaultListLimit)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("EVENTS_DEFAULT_LIST_LIMIT", "25")
	t.Setenv("EVENTS_CACHE_TTL_SEC", "0")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Server.Port)
	require.Equal(t, 25, cfg.Events.DefaultListLimit)
	require.Equal(t, 0, cfg.Events.CacheTTLSeconds)
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{
		Host: "db", Port: "5432", User: "app", Password: "pw",
		DBName: "tsunagu", SSLMode: "disable",
	}
	require.Equal(t, "postgres://app:pw@db:5432/tsunagu?sslmode=disable", c.DSN())

	c.URL = "postgres://elsewhere/tsunagu"
	require.Equal(t, "postgres://elsewhere/tsunagu", c.DSN())
}
