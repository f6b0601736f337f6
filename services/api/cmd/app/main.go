package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	httpx "github.com/JoseGlez23/runX-API3/services/api/internal/http"
	"github.com/JoseGlez23/runX-API3/services/api/internal/http/handlers"
	"github.com/JoseGlez23/runX-API3/services/api/internal/migrations"
	"github.com/JoseGlez23/runX-API3/services/api/internal/payment"
	"github.com/JoseGlez23/runX-API3/services/api/internal/repo"
	"github.com/JoseGlez23/runX-API3/services/api/internal/service"
	"github.com/JoseGlez23/runX-API3/services/api/internal/totp"
	"github.com/JoseGlez23/runX-API3/shared/pkg/cache"
	"github.com/JoseGlez23/runX-API3/shared/pkg/config"
	"github.com/JoseGlez23/runX-API3/shared/pkg/logger"
	"github.com/JoseGlez23/runX-API3/shared/pkg/pg"
)

const serviceName = "runx-api"

func main() {
	root := &cobra.Command{
		Use:          serviceName,
		Short:        "RunX store backend",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), migrateCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(serviceName, cfg.Common.LogLevel)

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			db, err := pg.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := migrations.Up(ctx, db); err != nil {
				return err
			}
			log.Info().Msg("migrations applied")
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return serve(cfg, logger.New(serviceName, cfg.Common.LogLevel))
		},
	}
}

func serve(cfg config.Config, log zerolog.Logger) error {
	ctxDB, cancelDB := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelDB()

	db, err := pg.NewPool(ctxDB, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		log.Error().Err(err).Msg("pg connect failed")
		return err
	}
	defer db.Close()

	if cfg.Postgres.AutoMigrate {
		if err := migrations.Up(context.Background(), db); err != nil {
			log.Error().Err(err).Msg("migrations failed")
			return err
		}
		log.Info().Msg("migrations applied")
	}

	engine := totp.NewEngine(cfg.TwoFA.Issuer, cfg.TwoFA.Period, cfg.TwoFA.Skew)
	productsPG := &repo.ProductsPG{DB: db}
	var products handlers.Products = productsPG
	var replay service.CodeClaimer

	if cfg.Redis.Addr != "" {
		rdb := cache.New(cfg.Redis.Addr)
		defer rdb.Close()
		if err := rdb.Ping(ctxDB); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis ping failed, cache stays enabled")
		}
		products = &repo.ProductsCached{PG: productsPG, Redis: rdb, TTL: cfg.Redis.CacheTTL, Log: log}
		if cfg.TwoFA.ReplayGuard {
			replay = &totp.ReplayGuard{Redis: rdb, TTL: engine.Window()}
		}
	} else if cfg.TwoFA.ReplayGuard {
		log.Warn().Msg("TWOFA_REPLAY_GUARD needs REDIS_ADDR, codes stay reusable inside their window")
	}

	accounts := &repo.AccountsPG{DB: db}

	ordersH := &handlers.OrdersHandler{
		Orders: &service.OrdersService{
			DB:      db,
			Repo:    repo.OrdersPG{},
			Outbox:  &repo.OutboxPG{},
			Timeout: cfg.Orders.Timeout,
			Log:     log,
		},
		Log: log,
	}
	twofaH := &handlers.TwoFAHandler{
		TwoFA: &service.TwoFactorService{
			Accounts: accounts,
			Engine:   engine,
			Encoder:  totp.NewQREncoder(),
			Replay:   replay,
			Log:      log,
		},
		Log: log,
	}
	accountsH := &handlers.AccountsHandler{Accounts: &service.AccountsService{Repo: accounts}, Log: log}
	productsH := &handlers.ProductsHandler{Products: products, Log: log}
	cartH := &handlers.CartHandler{Cart: &repo.CartPG{DB: db}, Log: log}
	paymentsH := &handlers.PaymentsHandler{Gateway: payment.NewStripe(cfg.Stripe.Secret), Log: log}

	router := httpx.NewRouter(&httpx.Handlers{
		Health: handlers.Health,

		Register: accountsH.Register,
		Login:    accountsH.Login,

		ListProducts:  productsH.List,
		GetProduct:    productsH.Get,
		CreateProduct: productsH.Create,
		UpdateProduct: productsH.Update,
		DeleteProduct: productsH.Delete,

		ListCart:       cartH.List,
		AddToCart:      cartH.Add,
		UpdateCartLine: cartH.UpdateQuantity,
		RemoveCartLine: cartH.Remove,

		TwoFAStatus: twofaH.Status,
		TwoFASetup:  twofaH.Setup,
		TwoFAVerify: twofaH.Verify,

		CreatePaymentIntent: paymentsH.CreateIntent,
		PlaceOrder:          ordersH.Place,
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("shutdown...")
	shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shCancel()
	return srv.Shutdown(shCtx)
}
