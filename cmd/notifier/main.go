package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shoply/marketplace/internal/config"
	kafkax "github.com/shoply/marketplace/internal/kafka"
	"github.com/shoply/marketplace/internal/market"
	"github.com/shoply/marketplace/internal/notify"
	"github.com/shoply/marketplace/internal/redisx"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log, err := newLogger(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &notify.Service{
		Redis:       rdb,
		Mailer:      &notify.LogMailer{Log: log},
		Log:         log,
		ServiceName: cfg.ServiceName + "-notifier",
	}

	group := getenv("NOTIFIER_GROUP", "notifier-svc")
	workers := mustAtoi(os.Getenv("NOTIFIER_WORKERS"), "4")

	placed := kafkax.NewConsumer(cfg.KafkaBrokers, group, market.TopicOrderPlaced, workers, log)
	fulfilled := kafkax.NewConsumer(cfg.KafkaBrokers, group, market.TopicOrderFulfilled, workers, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("notifier consumer started",
			zap.String("group", group), zap.String("topic", market.TopicOrderPlaced), zap.Int("workers", workers))
		return placed.Start(gctx, svc.HandleOrderPlaced)
	})
	g.Go(func() error {
		log.Info("notifier consumer started",
			zap.String("group", group), zap.String("topic", market.TopicOrderFulfilled), zap.Int("workers", workers))
		return fulfilled.Start(gctx, svc.HandleOrderFulfilled)
	})
	g.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sig:
			log.Info("shutting down notifier")
			cancel()
		case <-gctx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("notifier exit", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" || env == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}
