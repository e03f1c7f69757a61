package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"mmaker/internal/application/usecase/trader"
	"mmaker/internal/infrastructure/config"
	"mmaker/internal/infrastructure/logger"
	"mmaker/internal/infrastructure/metrics"
	"mmaker/internal/infrastructure/svc"
)

func main() {
	// secrets come from the environment, .env is optional
	_ = godotenv.Load()
	logger.Setup()

	configPath := flag.String("config", "configs/config.toml", "path to config.toml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("load config failed")
	}
	applyEnvOverrides(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc, err := svc.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("service context initialization failed")
	}
	defer sc.Close()

	metrics.Serve(cfg.App.MetricsAddr)

	service := trader.NewService(sc.BuildTraderDeps())

	log.Info().
		Str("config", *configPath).
		Int("symbols", len(cfg.Symbols.List)).
		Int("cycle_every_min", cfg.App.CycleEveryMin).
		Float64("budget_total", cfg.App.BudgetTotal).
		Msg("mmaker started")

	if err := service.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("trader service exited")
	}
}

func applyEnvOverrides(cfg *config.Config) {
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Storage.Redis.Password = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Storage.Postgres.DSN = v
	}
}
