package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shoply/marketplace/internal/auth"
	"github.com/shoply/marketplace/internal/config"
	"github.com/shoply/marketplace/internal/httpx"
	kafkax "github.com/shoply/marketplace/internal/kafka"
	"github.com/shoply/marketplace/internal/market"
	"github.com/shoply/marketplace/internal/notify"
	"github.com/shoply/marketplace/internal/postgres"
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

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, int32(cfg.PGMaxConns))
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()
	if err := postgres.Bootstrap(ctx, db); err != nil {
		log.Fatal("db bootstrap", zap.Error(err))
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, one per lifecycle topic
	pPlaced := kafkax.NewProducer(cfg.KafkaBrokers, market.TopicOrderPlaced, 1024, log)
	pPlaced.Start(ctx)
	pReady := kafkax.NewProducer(cfg.KafkaBrokers, market.TopicOrderReady, 1024, log)
	pReady.Start(ctx)
	pFulfilled := kafkax.NewProducer(cfg.KafkaBrokers, market.TopicOrderFulfilled, 1024, log)
	pFulfilled.Start(ctx)

	// Repos & services
	accounts := &market.AccountRepo{DB: db}
	products := &market.ProductRepo{DB: db}
	orders := &market.OrderRepo{DB: db}

	checkout := &market.Checkout{
		Users:             accounts,
		Products:          products,
		Orders:            orders,
		PlacedProducer:    pPlaced,
		ReadyProducer:     pReady,
		FulfilledProducer: pFulfilled,
		Redis:             rdb,
		Log:               log,
		Service:           cfg.ServiceName,
	}

	tokens := &auth.Tokens{Secret: []byte(cfg.JWTSecret), TTL: cfg.TokenTTL}
	hasher := &auth.Hasher{Cost: cfg.BcryptCost}
	mailer := &notify.LogMailer{Log: log}

	api := &httpx.API{
		Tokens:   tokens,
		Auth:     &httpx.AuthHandler{Accounts: accounts, Tokens: tokens, Hasher: hasher, Mailer: mailer, Log: log},
		Admin:    &httpx.AdminHandler{Accounts: accounts, Products: products, Orders: orders, Checkout: checkout, Hasher: hasher, Mailer: mailer, Log: log},
		Seller:   &httpx.SellerHandler{Accounts: accounts, Products: products, Orders: orders, Checkout: checkout, Hasher: hasher, Log: log},
		Customer: &httpx.CustomerHandler{Accounts: accounts, Products: products, Orders: orders, Checkout: checkout, Hasher: hasher, Log: log},
		Product:  &httpx.ProductHandler{Products: products, Sellers: accounts, Redis: rdb, Log: log},
		Order:    &httpx.OrderHandler{Orders: orders, Log: log},
	}

	router := httpx.NewRouter(log)
	api.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sig:
		case <-gctx.Done():
		}
		log.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("exit", zap.Error(err))
	}

	pPlaced.Close()
	pReady.Close()
	pFulfilled.Close()
	cancel()
	pPlaced.WaitClosed()
	pReady.WaitClosed()
	pFulfilled.WaitClosed()
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" || env == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
