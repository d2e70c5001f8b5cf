package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"shortener/cmd/buildCFG"
	"shortener/internal/api"
	"shortener/internal/cache"
	"shortener/internal/idgen"
	"shortener/internal/repo"
	"shortener/internal/service"
	"shortener/pkg/zlog"
)

var opts struct {
	Config      string `short:"c" long:"config" description:"path to config file" default:"config.yaml"`
	MigrateDown bool   `long:"migrate-down" description:"roll back the schema and exit"`
}

func main() {
	zlog.Init()
	log := zlog.Logger

	if _, err := flags.Parse(&opts); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		log.Fatal().Err(err).Msg("failed to parse flags")
	}

	cfg := buildCFG.New(opts.Config)
	if err := cfg.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Fatal().Msgf("failed to load configuration: %v", err)
		}
		log.Warn().Msgf("Config file %s not found, using defaults and environment", opts.Config)
	}

	logCfg := buildCFG.BuildLoggingConfig(cfg)
	if err := zlog.Configure(logCfg.Level, logCfg.Pretty); err != nil {
		log.Fatal().Err(err).Msg("failed to configure logger")
	}
	log = zlog.Logger

	if err := run(&log, cfg); err != nil {
		log.Fatal().Err(err).Msg("shortener stopped")
	}
	log.Info().Msg("Shutdown complete")
}

func run(log *zerolog.Logger, cfg *viper.Viper) error {
	serverCfg, err := buildCFG.BuildServerConfig(cfg, log)
	if err != nil {
		return err
	}
	dbCfg, err := buildCFG.BuildDBConfig(cfg, log)
	if err != nil {
		return err
	}
	cacheCfg, err := buildCFG.BuildCacheConfig(cfg, log)
	if err != nil {
		return err
	}
	linksCfg, err := buildCFG.BuildLinksConfig(cfg, log)
	if err != nil {
		return err
	}

	db, err := repo.OpenDB(dbCfg.Driver, dbCfg.DSN, dbCfg.Options)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info().Msg("Database connected successfully")

	repository, err := repo.NewRepository(db, log)
	if err != nil {
		return fmt.Errorf("failed to initialize repository: %w", err)
	}

	ctx := context.Background()
	if opts.MigrateDown {
		return repository.MigrateDown(ctx)
	}
	if err := repository.MigrateUp(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	linkCache, closeCache, err := buildCache(ctx, cacheCfg, log)
	if err != nil {
		return err
	}
	defer closeCache()

	ids, err := idgen.New(linksCfg.Generator, linksCfg.SnowflakeNode)
	if err != nil {
		return err
	}

	gin.SetMode(serverCfg.GinMode)
	svc := service.NewService(repository, ids, linkCache, log, linksCfg.Service)
	app := api.NewRouters(&api.Routers{Service: svc, Log: log})

	srv := &http.Server{
		Addr:         ":" + serverCfg.Port,
		Handler:      app,
		ReadTimeout:  serverCfg.ReadTimeout,
		WriteTimeout: serverCfg.WriteTimeout,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info().Msgf("Starting %s on %s", serverCfg.Name, srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("failed to start server: %w", err)
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signalChan)

	select {
	case sig := <-signalChan:
		log.Info().Msgf("Received signal %s. Initiating shutdown...", sig)
	case err := <-serverErrChan:
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	return nil
}

func buildCache(ctx context.Context, cfg buildCFG.CacheConfig, log *zerolog.Logger) (cache.LinkCache, func(), error) {
	switch cfg.Driver {
	case cache.DriverMemory:
		log.Info().Msg("Using in-memory link cache")
		return cache.NewMemory(cfg.TTL), func() {}, nil

	case cache.DriverRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("failed to ping Redis: %w", err)
		}
		log.Info().Msg("Redis connected successfully")
		return cache.NewRedis(rdb, cfg.TTL), func() { _ = rdb.Close() }, nil

	default:
		return nil, func() {}, nil
	}
}
