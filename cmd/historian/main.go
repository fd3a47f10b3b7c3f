// cmd/historian/main.go drains the game server's action queue into Postgres.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/ninetynine/internal/cache"
	"github.com/jason-s-yu/ninetynine/internal/config"
	"github.com/jason-s-yu/ninetynine/internal/database"
	"github.com/jason-s-yu/ninetynine/internal/historian"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	logger := logrus.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("loading config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Server.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	if cfg.Redis.Addr == "" || cfg.Historian.DatabaseURL == "" {
		logger.Fatal("REDIS_ADDR and DATABASE_URL are required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.DB)
	if err != nil {
		logger.Fatal(err)
	}
	defer rdb.Close()

	pool, err := database.Connect(ctx, cfg.Historian.DatabaseURL)
	if err != nil {
		logger.Fatal(err)
	}
	defer pool.Close()

	store := database.NewActionStore(pool)
	if err := store.Migrate(ctx); err != nil {
		logger.Fatal(err)
	}

	svc := historian.New(rdb, cfg.Redis.Queue, store, cfg.Historian.BatchSize,
		time.Duration(cfg.Historian.FlushMs)*time.Millisecond, logger.WithField("component", "historian"))
	svc.Run(ctx)
}
