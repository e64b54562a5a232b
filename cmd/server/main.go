package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	applicationservice "schemeportal/internal/application/service"
	applicationstore "schemeportal/internal/application/store"
	"schemeportal/internal/identity/lockout"
	identityservice "schemeportal/internal/identity/service"
	accountstore "schemeportal/internal/identity/store/account"
	profilestore "schemeportal/internal/identity/store/profile"
	"schemeportal/internal/identity/token"
	"schemeportal/internal/platform/config"
	"schemeportal/internal/platform/httpserver"
	"schemeportal/internal/platform/logger"
	"schemeportal/internal/platform/metrics"
	"schemeportal/internal/platform/postgres"
	platformredis "schemeportal/internal/platform/redis"
	schemeservice "schemeportal/internal/scheme/service"
	schemestore "schemeportal/internal/scheme/store"
	httptransport "schemeportal/internal/transport/http"
	"schemeportal/pkg/tx"
)

func main() {
	log := logger.New()
	if err := run(log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg := config.FromEnv()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		accounts     identityservice.AccountStore
		profiles     identityservice.ProfileStore
		txRunner     identityservice.TxRunner
		schemes      schemeservice.SchemeStore
		applications applicationservice.ApplicationStore
		appSchemes   applicationservice.SchemeDirectory
		appProfiles  applicationservice.ProfileDirectory
	)

	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		accounts = accountstore.NewPostgres(db)
		profilePG := profilestore.NewPostgres(db)
		profiles = profilePG
		appProfiles = profilePG
		txRunner = tx.NewRunner(db)
		schemePG := schemestore.NewPostgres(db)
		schemes = schemePG
		appSchemes = schemePG
		applications = applicationstore.NewPostgres(db)
		log.Info("storage ready", "backend", "postgres")
	} else {
		accounts = accountstore.NewMemoryStore()
		profileMem := profilestore.NewMemoryStore()
		profiles = profileMem
		appProfiles = profileMem
		txRunner = tx.NopRunner{}
		schemeMem := schemestore.NewMemoryStore()
		schemes = schemeMem
		appSchemes = schemeMem
		applications = applicationstore.NewMemoryStore()
		log.Warn("DATABASE_URL not set, using in-memory storage")
	}

	var throttle *lockout.Service
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		throttle, err = lockout.New(lockout.NewRedisStore(redisClient.Client), lockout.WithLogger(log))
		if err != nil {
			return err
		}
		log.Info("login throttle ready", "backend", "redis")
	}

	tokens := token.NewService(cfg.JWTSigningKey, cfg.TokenTTL)

	identitySvc := identityservice.New(accounts, profiles, txRunner, tokens, cfg.AdminSignupKey,
		identityservice.WithLogger(log),
		identityservice.WithMetrics(m),
		identityservice.WithLoginThrottle(throttle),
	)
	schemeSvc := schemeservice.New(schemes,
		schemeservice.WithLogger(log),
		schemeservice.WithMetrics(m),
	)
	applicationSvc := applicationservice.New(applications, appSchemes, appProfiles,
		applicationservice.WithLogger(log),
		applicationservice.WithMetrics(m),
	)

	handler := httptransport.NewHandler(identitySvc, schemeSvc, applicationSvc, tokens, log)
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(handler))

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
