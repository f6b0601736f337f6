package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpx "github.com/JoseGlez23/runX-API3/services/outbox-worker/internal/http"
	"github.com/JoseGlez23/runX-API3/services/outbox-worker/internal/outbox"
	"github.com/JoseGlez23/runX-API3/shared/pkg/config"
	"github.com/JoseGlez23/runX-API3/shared/pkg/logger"
	"github.com/JoseGlez23/runX-API3/shared/pkg/pg"
	"github.com/JoseGlez23/runX-API3/shared/pkg/rabbit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New("outbox-worker", cfg.Common.LogLevel)

	ctxDB, cancelDB := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelDB()
	db, err := pg.NewPool(ctxDB, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		log.Fatal().Err(err).Msg("pg connect failed")
	}
	defer db.Close()

	rc, err := rabbit.Connect(cfg.Rabbit.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("rabbit connect failed")
	}
	defer func() { _ = rc.Close() }()

	if err := rabbit.DeclareBase(rc.Ch); err != nil {
		log.Fatal().Err(err).Msg("declare exchange failed")
	}

	runner := &outbox.Runner{
		Log:          log,
		DB:           db,
		Publisher:    rabbit.NewPublisher(rc.Ch, rabbit.ExchangeEvents),
		PollInterval: cfg.Outbox.PollInterval,
		BatchSize:    cfg.Outbox.BatchSize,
		MaxAttempts:  cfg.Outbox.MaxAttempts,
		BackoffMax:   cfg.Outbox.BackoffMax,
	}

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go runner.Run(appCtx)

	srv := &httpx.Server{
		Pending: func(ctx context.Context) (int, error) { return outbox.Pending(ctx, db) },
		Log:     log,
	}
	httpSrv := &http.Server{
		Addr:              cfg.Outbox.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", httpSrv.Addr).Msg("http started")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http failed")
		}
	}()

	log.Info().Str("exchange", rabbit.ExchangeEvents).Msg("outbox-worker started")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("shutdown...")
	cancel()
	shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shCancel()
	_ = httpSrv.Shutdown(shCtx)
}
