package buildCFG

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortener/internal/repo"
)

func TestDefaults(t *testing.T) {
	cfg := New(filepath.Join(t.TempDir(), "absent.yaml"))
	log := zerolog.Nop()

	server, err := BuildServerConfig(cfg, &log)
	require.NoError(t, err)
	assert.Equal(t, "8080", server.Port)
	assert.Equal(t, 10*time.Second, server.WriteTimeout)

	db, err := BuildDBConfig(cfg, &log)
	require.NoError(t, err)
	assert.Equal(t, repo.DriverSQLite, db.Driver)
	assert.Equal(t, "file:links.db?_busy_timeout=5000&_foreign_keys=off", db.DSN)
	assert.Equal(t, 30*time.Minute, db.Options.ConnMaxLifetime)

	links, err := BuildLinksConfig(cfg, &log)
	require.NoError(t, err)
	assert.Equal(t, "random", links.Generator)
	assert.Equal(t, time.Second, links.Service.OperationTimeout)
	assert.Equal(t, time.Second, links.Service.StatisticsTimeout)
	assert.Equal(t, 3, links.Service.MaxCreateAttempts)

	cacheCfg, err := BuildCacheConfig(cfg, &log)
	require.NoError(t, err)
	assert.Equal(t, "none", cacheCfg.Driver)

	logging := BuildLoggingConfig(cfg)
	assert.Equal(t, "info", logging.Level)
	assert.False(t, logging.Pretty)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9090"
database:
  driver: postgres
  host: db
  port: 6432
  name: links
  user: app
  password: secret
  ssl_mode: require
cache:
  driver: redis
  ttl: 1m
redis:
  addr: cache:6379
  db: 2
links:
  generator: snowflake
  operation_timeout: 250ms
`), 0o600))

	cfg := New(path)
	require.NoError(t, cfg.ReadInConfig())
	log := zerolog.Nop()

	server, err := BuildServerConfig(cfg, &log)
	require.NoError(t, err)
	assert.Equal(t, "9090", server.Port)

	db, err := BuildDBConfig(cfg, &log)
	require.NoError(t, err)
	assert.Equal(t, repo.DriverPostgres, db.Driver)
	assert.Equal(t, "host=db port=6432 user=app password=secret dbname=links sslmode=require", db.DSN)

	cacheCfg, err := BuildCacheConfig(cfg, &log)
	require.NoError(t, err)
	assert.Equal(t, "redis", cacheCfg.Driver)
	assert.Equal(t, time.Minute, cacheCfg.TTL)
	assert.Equal(t, RedisConfig{Addr: "cache:6379", DB: 2}, cacheCfg.Redis)

	links, err := BuildLinksConfig(cfg, &log)
	require.NoError(t, err)
	assert.Equal(t, "snowflake", links.Generator)
	assert.Equal(t, 250*time.Millisecond, links.Service.OperationTimeout)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("SHORTENER_SERVER_PORT", "7070")
	t.Setenv("SHORTENER_LINKS_STATISTICS_TIMEOUT", "2s")

	cfg := New(filepath.Join(t.TempDir(), "absent.yaml"))
	log := zerolog.Nop()

	server, err := BuildServerConfig(cfg, &log)
	require.NoError(t, err)
	assert.Equal(t, "7070", server.Port)

	links, err := BuildLinksConfig(cfg, &log)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, links.Service.StatisticsTimeout)
}

func TestInvalidValues(t *testing.T) {
	log := zerolog.Nop()

	cfg := New("")
	cfg.Set("database.driver", "mysql")
	_, err := BuildDBConfig(cfg, &log)
	assert.EqualError(t, err, `unsupported database.driver "mysql"`)

	cfg = New("")
	cfg.Set("links.operation_timeout", "soon")
	_, err = BuildLinksConfig(cfg, &log)
	assert.Error(t, err)

	cfg = New("")
	cfg.Set("cache.driver", "memcached")
	_, err = BuildCacheConfig(cfg, &log)
	assert.Error(t, err)

	cfg = New("")
	cfg.Set("server.write_timeout", "-1s")
	_, err = BuildServerConfig(cfg, &log)
	assert.Error(t, err)
}
