package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"menu-service/api"
	"menu-service/bot"
	"menu-service/config"
	"menu-service/db"
	"menu-service/logger"
	"menu-service/models"
	"menu-service/mq"
	"menu-service/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New("menu-service", cfg.Log.Level, cfg.Log.Pretty)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Check for migrate subcommand
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(ctx, cfg, log); err != nil {
			log.Fatal().Err(err).Msg("migrate")
		}
		return
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("menu-service stopped")
	}
}

func runMigrate(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	pool, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()
	return applyMigrations(ctx, pool, log)
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	opts := []services.StoreOption{
		services.WithLatency(cfg.Store.Latency),
		services.WithLogger(log.With().Str("component", "store").Logger()),
	}
	seed := models.SeedCatalog()

	if cfg.DB.Enabled {
		pool, err := setupDB(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer pool.Close()

		repo := services.NewPostgresCatalogRepository(pool)
		if seed, err = services.InitialCatalog(ctx, repo, seed); err != nil {
			return fmt.Errorf("initial catalog: %w", err)
		}
		opts = append(opts, services.WithObserver(services.NewCatalogPersister(repo, log)))
		log.Info().Int("items", len(seed)).Msg("catalog loaded from postgres")
	}

	if cfg.Rabbit.Enabled() {
		client, err := mq.Dial(cfg.Rabbit)
		if err != nil {
			return err
		}
		defer client.Close()
		if err := client.DeclareFanout(cfg.Rabbit.Exchange); err != nil {
			return fmt.Errorf("declare exchange: %w", err)
		}
		opts = append(opts, services.WithObserver(services.NewCatalogPublisher(client, cfg.Rabbit.Exchange, log)))
		log.Info().Str("host", cfg.Rabbit.Host).Str("exchange", cfg.Rabbit.Exchange).Msg("rabbitmq connected")
	}

	store := services.NewMenuStore(seed, opts...)

	if cfg.Telegram.Token != "" {
		b, err := bot.New(cfg, store, log.With().Str("component", "bot").Logger())
		if err != nil {
			return fmt.Errorf("bot: %w", err)
		}
		go b.Start(ctx)
		log.Info().Msg("telegram bot started")
	}

	handler := api.NewHandler(store, log)
	srv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: api.NewRouter(handler, log, cfg.HTTP.CORSOrigins),
	}
	log.Info().Str("addr", cfg.HTTP.Addr).Dur("latency", cfg.Store.Latency).Msg("http server listening")
	return api.Serve(ctx, srv)
}

func setupDB(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*pgxpool.Pool, error) {
	pool, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	log.Info().Str("host", cfg.DB.Host).Int("port", cfg.DB.Port).Str("database", cfg.DB.Database).Msg("postgres connected")

	// Optional auto-migration, useful for fresh databases.
	if cfg.DB.AutoMigrate {
		if err := applyMigrations(ctx, pool, log); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return pool, nil
}
