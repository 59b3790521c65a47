package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/application/auth"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/application/kyc"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/domain/repository"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/infrastructure/blob"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/infrastructure/memstore"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/infrastructure/postgres"
	httpRouter "github.com/kobamelo-johnson/Letshego-Analytics/internal/interfaces/http"
	"github.com/kobamelo-johnson/Letshego-Analytics/pkg/config"
	"github.com/kobamelo-johnson/Letshego-Analytics/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("starting application")

	loc := time.UTC
	if cfg.App.Timezone != "" {
		l, err := time.LoadLocation(cfg.App.Timezone)
		if err != nil {
			log.Fatal().Err(err).Str("zone", cfg.App.Timezone).Msg("load timezone")
		}
		loc = l
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Customer collection: postgres in production, in-process store otherwise.
	var coll repository.CustomerCollection
	var closeStore func()
	switch cfg.Store.Driver {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("connect to PostgreSQL")
		}
		pgColl, err := postgres.NewCollection(ctx, pool, log)
		if err != nil {
			log.Fatal().Err(err).Msg("prepare customer collection")
		}
		coll = pgColl
		closeStore = pool.Close
	case "memory":
		var persister *memstore.Persistence
		if cfg.Store.DataDir != "" {
			persister, err = memstore.NewPersistence(cfg.Store.DataDir)
			if err != nil {
				log.Fatal().Err(err).Msg("prepare collection persistence")
			}
		}
		mem, err := memstore.New(persister)
		if err != nil {
			log.Fatal().Err(err).Msg("load customer collection")
		}
		coll = mem
		closeStore = mem.Close
	default:
		log.Fatal().Str("driver", cfg.Store.Driver).Msg("unknown store driver")
	}
	defer closeStore()

	blobs, err := blob.NewFSStore(cfg.Blob.Dir, cfg.Blob.BaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("prepare blob store")
	}

	authUC, err := auth.New(
		auth.OperatorConfig{
			Username:     cfg.Auth.Username,
			Password:     cfg.Auth.Password,
			PasswordHash: cfg.Auth.PasswordHash,
		},
		auth.JWTConfig{
			Secret:     cfg.JWT.Secret,
			ExpMinutes: cfg.JWT.Expiration,
			Issuer:     cfg.JWT.Issuer,
		},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("configure operator auth")
	}

	customerUC := kyc.NewCustomerUseCase(coll, blobs)
	syncCtrl := kyc.NewSyncController(coll, log, loc)
	go syncCtrl.Run(ctx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    32 * 1024 * 1024, // document scans
		ReadTimeout:  time.Second * 30,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		status := fiber.Map{
			"status":  "ok",
			"service": cfg.App.Name,
			"synced":  syncCtrl.Ready(),
		}
		if err := syncCtrl.LastError(); err != nil {
			status["status"] = "degraded"
			status["sync_error"] = err.Error()
		}
		return c.JSON(status)
	})

	// Attachment URLs point back at this route when the blob base URL is a
	// local path.
	if strings.HasPrefix(cfg.Blob.BaseURL, "/") {
		app.Static(cfg.Blob.BaseURL, blobs.Dir())
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		Sync:       syncCtrl,
		CustomerUC: customerUC,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received, closing server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	cancel()

	log.Info().Msg("application stopped")
}
