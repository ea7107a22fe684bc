package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/address"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/auth"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/chain"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/config"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/events"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/factory"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/funding"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/ledger"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/logging"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/middleware"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/registry"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/wallet"
)

// eventStreamMaxLen bounds the Redis event stream.
const eventStreamMaxLen = 100_000

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though config also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}
	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	// Plain text access log in desired format: [HH:MM:SS] 200 -  145ms METHOD /path
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	// Health
	RegisterHealthRoutes(app, d)

	// Ledger backing every asset movement
	var ledgerBackend ledger.Ledger
	if d.DB != nil {
		ledgerBackend = ledger.NewPostgresLedger(d.DB)
	} else {
		ledgerBackend = ledger.NewInMemory()
	}

	// Audit journal
	sinks := []events.Sink{events.NewLoggerSink(d.Logger)}
	if d.Cache != nil {
		sinks = append(sinks, events.NewRedisStream(d.Cache, d.Cfg.EventStream, eventStreamMaxLen))
	}
	journal := events.NewJournal(logging.Component(d.Logger, "events"), sinks...)
	app.Hooks().OnShutdown(func() error {
		journal.Close()
		return nil
	})

	// Wallets, the default factory and the registry share one clock.
	clock := chain.NewCounter(0)
	bank := ledger.NewBank(ledgerBackend)
	walletDeps := wallet.Deps{Bank: bank, Clock: clock, Events: journal}
	walletRepo := wallet.NewMemoryRepository()
	walletSvc := wallet.NewService(walletRepo, walletDeps, logging.Component(d.Logger, "wallet"))

	blueprint := wallet.New(address.FromSeed([]byte(d.Cfg.AppName+":blueprint")), walletDeps)
	catalog := factory.NewCatalog()
	// Each boot gets a fresh salt, and derived addresses with ledger history
	// are skipped, so a restart never hands out a funded address again.
	catalog.Register(factory.New(
		address.FromSeed([]byte(d.Cfg.AppName+":factory")), blueprint, walletRepo, clock,
		logging.Component(d.Logger, "factory"),
		factory.WithActivity(bank),
	))
	reg := registry.New(clock, journal, logging.Component(d.Logger, "registry"))

	tokens := auth.NewService(d.Cfg.JWTSecret, d.Cfg.TokenTTL)

	walletHandler := wallet.NewHandler(walletSvc)
	registryHandler := registry.NewHandler(reg, func(addr address.Address) (registry.Factory, error) {
		f, err := catalog.Resolve(addr)
		if err != nil {
			return nil, err
		}
		return f, nil
	})
	factoryHandler := factory.NewHandler(catalog)
	eventsHandler := events.NewHandler(journal)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID := middleware.RequestIDFrom(c)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Protected routes
	protected := api.Group("", middleware.CallerAuth(tokens), middleware.Audit(d.Logger))
	if d.Cache != nil {
		protected.Use(middleware.CallerRateLimit(d.Cache, d.Cfg.RateLimitPerMinute))
		protected.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	RegisterMeRoute(protected, reg, ledgerBackend)
	RegisterRegistryRoutes(protected, registryHandler)
	RegisterWalletRoutes(protected, walletHandler)
	RegisterFactoryRoutes(protected, factoryHandler)
	RegisterEventRoutes(protected, eventsHandler)

	if d.Cfg.IsDev() {
		faucet, err := funding.NewService(ledgerBackend, decimal.Zero, d.Logger)
		if err != nil {
			return err
		}
		RegisterFundingRoutes(protected, funding.NewHandler(faucet))
	}

	return nil
}
