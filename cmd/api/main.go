package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	server "hotel_catalog/internal/adapters/http_server"
	"hotel_catalog/internal/adapters/observability"
	redisad "hotel_catalog/internal/adapters/redis"
	"hotel_catalog/internal/adapters/seedsource"
	"hotel_catalog/internal/app"
	"hotel_catalog/internal/domain"
	"hotel_catalog/internal/shared"
	"hotel_catalog/internal/storage/memory"
	mysqlrepo "hotel_catalog/internal/storage/mysql"
)

type store interface {
	domain.SessionOpener
	domain.SeedStore
}

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(ctx, cfg.MetricsAddr, reg)

	st, closeStore := openStore(ctx, cfg)
	defer closeStore()

	if cfg.SeedOnStart {
		if err := seed(ctx, cfg, st); err != nil {
			log.Fatal().Err(err).Str("source", cfg.SeedSource).Msg("seeding failed")
		}
	}

	// http
	srv := server.New(cfg.RequestTimeout)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Sessions: st})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.StoreDriver).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("shutting down")
		return httpSrv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}
}

func openStore(ctx context.Context, cfg shared.Config) (store, func()) {
	if cfg.StoreDriver == shared.DriverMemory {
		log.Warn().Msg("using in-memory store; data is lost on exit")
		return memory.New(), func() {}
	}

	db, err := mysqlrepo.Open(ctx, mysqlrepo.Config{
		DSN:             cfg.MySQLDSN,
		MaxOpenConns:    cfg.DBPoolSize,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	log.Info().Msg("database connection ok")

	s := mysqlrepo.NewStore(db, cfg.DBQueryTimeout)
	return s, func() {
		if err := s.Close(); err != nil {
			log.Warn().Err(err).Msg("close database")
		}
	}
}

func seed(ctx context.Context, cfg shared.Config, st domain.SeedStore) error {
	hotels, err := seedsource.New().Load(ctx, cfg.SeedSource)
	if err != nil {
		return err
	}

	var locker domain.Locker
	if cfg.RedisAddr != "" {
		l := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer l.Close()
		locker = l
	}

	_, err = app.NewBootstrapper(st, locker, cfg.SeedLockTTL).Run(ctx, hotels)
	if errors.Is(err, app.ErrBootstrapLocked) {
		log.Info().Msg("another instance is seeding, continuing")
		return nil
	}
	return err
}
