package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EnvOnly(t *testing.T) {
	// Given: only the required secret in the environment
	t.Setenv("TTT_JWT_SECRET", "s3cret")

	// When: loading without a file
	cfg, err := Load("")

	// Then: defaults fill the rest
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, StoreMemory, cfg.Session.Store)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "keep", cfg.Session.NextRoundStarter)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.Telemetry.OTLPEndpoint)
	assert.Empty(t, cfg.Archive.SQLitePath)
}

func TestLoad_FileWithEnvOverride(t *testing.T) {
	// Given: a config file and an env override for the store
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `
http-addr: ":9090"
log-level: debug
session:
  store: memory
  ttl: 30m
  jwt-secret: from-file
  next-round-starter: player-one
redis:
  addr: redis:6379
archive:
  sqlite-path: /tmp/rounds.db
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("TTT_SESSION_STORE", "redis")

	// When: loading the file
	cfg, err := Load(path)

	// Then: file values apply and env wins where set
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, StoreRedis, cfg.Session.Store)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "from-file", cfg.Session.JWTSecret)
	assert.Equal(t, "player-one", cfg.Session.NextRoundStarter)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "/tmp/rounds.db", cfg.Archive.SQLitePath)
}

func TestLoad_MissingFileFallsBackToEnv(t *testing.T) {
	t.Setenv("TTT_JWT_SECRET", "s3cret")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))

	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Session.JWTSecret)
}

func TestConfig_Validate(t *testing.T) {
	base := func() *Config {
		return &Config{Session: Session{Store: StoreMemory, TTL: time.Hour, JWTSecret: "x"}}
	}

	require.NoError(t, base().Validate())

	c := base()
	c.Session.Store = "etcd"
	assert.ErrorIs(t, c.Validate(), ErrUnknownStore)

	c = base()
	c.Session.JWTSecret = ""
	assert.ErrorIs(t, c.Validate(), ErrMissingSecret)

	c = base()
	c.Session.TTL = 0
	assert.ErrorIs(t, c.Validate(), ErrNonPositiveTTL)
}
