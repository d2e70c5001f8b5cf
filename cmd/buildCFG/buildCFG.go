package buildCFG

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"shortener/internal/cache"
	"shortener/internal/idgen"
	"shortener/internal/repo"
	"shortener/internal/service"
)

const EnvPrefix = "SHORTENER"

type ServerConfig struct {
	Port            string
	Name            string
	GinMode         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DBConfig struct {
	Driver  string
	DSN     string
	Options *repo.Options
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type CacheConfig struct {
	Driver string
	TTL    time.Duration
	Redis  RedisConfig
}

type LinksConfig struct {
	Generator     string
	SnowflakeNode int64
	Service       service.Options
}

type LoggingConfig struct {
	Level  string
	Pretty bool
}

// New returns a viper instance with defaults and SHORTENER_* env overrides.
// The config file at path is optional.
func New(path string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.name", "link-shortener")
	v.SetDefault("server.gin_mode", "release")
	v.SetDefault("server.read_timeout", "5s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.driver", repo.DriverSQLite)
	v.SetDefault("database.path", "links.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "shortener")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_conn_lifetime", "30m")

	v.SetDefault("links.generator", idgen.KindRandom)
	v.SetDefault("links.snowflake_node", 1)
	v.SetDefault("links.max_create_attempts", service.DefaultMaxCreateAttempts)
	v.SetDefault("links.operation_timeout", "1000ms")
	v.SetDefault("links.statistics_timeout", "1000ms")

	v.SetDefault("cache.driver", cache.DriverNone)
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.pretty", false)
}

func BuildServerConfig(cfg *viper.Viper, log *zerolog.Logger) (ServerConfig, error) {
	readTimeout, err := parseDuration(cfg, "server.read_timeout")
	if err != nil {
		return ServerConfig{}, err
	}
	writeTimeout, err := parseDuration(cfg, "server.write_timeout")
	if err != nil {
		return ServerConfig{}, err
	}
	shutdownTimeout, err := parseDuration(cfg, "server.shutdown_timeout")
	if err != nil {
		return ServerConfig{}, err
	}

	serverCfg := ServerConfig{
		Port:            cfg.GetString("server.port"),
		Name:            cfg.GetString("server.name"),
		GinMode:         cfg.GetString("server.gin_mode"),
		ReadTimeout:     readTimeout,
		WriteTimeout:    writeTimeout,
		ShutdownTimeout: shutdownTimeout,
	}

	log.Info().Msgf("Server %s configured on port %s (write timeout %s)", serverCfg.Name, serverCfg.Port, writeTimeout)
	return serverCfg, nil
}

func BuildDBConfig(cfg *viper.Viper, log *zerolog.Logger) (DBConfig, error) {
	connMaxLifetime, err := parseDuration(cfg, "database.max_conn_lifetime")
	if err != nil {
		return DBConfig{}, err
	}

	opts := &repo.Options{
		MaxOpenConns:    cfg.GetInt("database.max_conns"),
		MaxIdleConns:    cfg.GetInt("database.max_idle_conns"),
		ConnMaxLifetime: connMaxLifetime,
	}

	driver := cfg.GetString("database.driver")
	switch driver {
	case repo.DriverSQLite:
		path := cfg.GetString("database.path")
		log.Info().Msgf("Database config: driver=%s path=%s", driver, path)
		return DBConfig{
			Driver:  driver,
			DSN:     fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=off", path),
			Options: opts,
		}, nil

	case repo.DriverPostgres:
		dbHost := cfg.GetString("database.host")
		dbPort := cfg.GetInt("database.port")
		if dbPort <= 0 {
			return DBConfig{}, fmt.Errorf("invalid database.port: %q", cfg.GetString("database.port"))
		}
		dbName := cfg.GetString("database.name")
		dbUser := cfg.GetString("database.user")
		dbPass := cfg.GetString("database.password")
		sslMode := cfg.GetString("database.ssl_mode")

		log.Info().Msgf("Database config: driver=%s host=%s port=%d dbname=%s user=%s sslmode=%s",
			driver, dbHost, dbPort, dbName, dbUser, sslMode)

		dsn := fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			dbHost, dbPort, dbUser, dbPass, dbName, sslMode,
		)
		return DBConfig{Driver: driver, DSN: dsn, Options: opts}, nil

	default:
		return DBConfig{}, fmt.Errorf("unsupported database.driver %q", driver)
	}
}

func BuildCacheConfig(cfg *viper.Viper, log *zerolog.Logger) (CacheConfig, error) {
	ttl, err := parseDuration(cfg, "cache.ttl")
	if err != nil {
		return CacheConfig{}, err
	}

	driver := cfg.GetString("cache.driver")
	switch driver {
	case cache.DriverNone, cache.DriverMemory, cache.DriverRedis:
	default:
		return CacheConfig{}, fmt.Errorf("unsupported cache.driver %q", driver)
	}

	cacheCfg := CacheConfig{
		Driver: driver,
		TTL:    ttl,
		Redis: RedisConfig{
			Addr:     cfg.GetString("redis.addr"),
			Password: cfg.GetString("redis.password"),
			DB:       cfg.GetInt("redis.db"),
		},
	}

	log.Info().Msgf("Cache config loaded: driver=%s ttl=%s", driver, ttl)
	return cacheCfg, nil
}

func BuildLinksConfig(cfg *viper.Viper, log *zerolog.Logger) (LinksConfig, error) {
	opTimeout, err := parseDuration(cfg, "links.operation_timeout")
	if err != nil {
		return LinksConfig{}, err
	}
	statsTimeout, err := parseDuration(cfg, "links.statistics_timeout")
	if err != nil {
		return LinksConfig{}, err
	}

	attempts := cfg.GetInt("links.max_create_attempts")
	if attempts <= 0 {
		return LinksConfig{}, fmt.Errorf("invalid links.max_create_attempts: %d", attempts)
	}

	linksCfg := LinksConfig{
		Generator:     cfg.GetString("links.generator"),
		SnowflakeNode: cfg.GetInt64("links.snowflake_node"),
		Service: service.Options{
			OperationTimeout:  opTimeout,
			StatisticsTimeout: statsTimeout,
			MaxCreateAttempts: attempts,
		},
	}

	log.Info().Msgf("Links config: generator=%s timeout=%s", linksCfg.Generator, opTimeout)
	return linksCfg, nil
}

func BuildLoggingConfig(cfg *viper.Viper) LoggingConfig {
	return LoggingConfig{
		Level:  cfg.GetString("logging.level"),
		Pretty: cfg.GetBool("logging.pretty"),
	}
}

func parseDuration(cfg *viper.Viper, key string) (time.Duration, error) {
	raw := cfg.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s value %q: must be positive", key, raw)
	}
	return d, nil
}
