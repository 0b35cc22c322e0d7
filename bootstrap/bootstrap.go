// Package bootstrap wires adapters, services, and the HTTP server into a
// runnable application.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/rs/zerolog"

	"github.com/artpar/launchpad/adapters/auth"
	"github.com/artpar/launchpad/adapters/clock"
	"github.com/artpar/launchpad/adapters/dynamo"
	"github.com/artpar/launchpad/adapters/idgen"
	"github.com/artpar/launchpad/adapters/metrics"
	"github.com/artpar/launchpad/adapters/sqlite"
	"github.com/artpar/launchpad/app"
	"github.com/artpar/launchpad/config"
	"github.com/artpar/launchpad/domain/paging"
	"github.com/artpar/launchpad/ports"
	"github.com/artpar/launchpad/web"
)

// App represents the running application.
type App struct {
	Logger     zerolog.Logger
	Handler    *web.Handler
	HTTPServer *http.Server
	Metrics    *metrics.Collector

	holder *config.Holder
	db     *sqlite.DB
}

// New creates and initializes the application from a fixed configuration.
func New(cfg *config.Config) (*App, error) {
	return build(cfg, nil)
}

// NewWithHotReload creates the application and watches the config file.
// Server address and database backend are fixed at startup; a reload
// applies the log level and counts in the metrics.
func NewWithHotReload(path string, logger zerolog.Logger) (*App, error) {
	holder, err := config.NewHolder(path, logger)
	if err != nil {
		return nil, err
	}
	return build(holder.Get(), holder)
}

func build(cfg *config.Config, holder *config.Holder) (*App, error) {
	logger := setupLogger(cfg.Logging)
	logger.Info().Str("driver", cfg.Database.Driver).Msg("initializing launchpad")

	a := &App{
		Logger: logger,
		holder: holder,
	}

	if cfg.Metrics.Enabled {
		a.Metrics = metrics.New()
		logger.Info().Msg("prometheus metrics enabled")
	}

	stores, decode, err := a.buildStores(cfg)
	if err != nil {
		return nil, err
	}

	clk := clock.Real{}
	accounts := app.NewAccountService(stores.accounts, idgen.UUID{}, clk, logger)
	keys := app.NewKeyService(stores.keys, clk, cfg.Auth.KeyPrefix, logger)
	sessions := app.NewSessionService(stores.sessions, clk, cfg.Auth.SessionTTL, logger)

	var tokens ports.TokenVerifier
	if cfg.Auth.JWTSecret != "" {
		tokens = auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	}

	a.Handler = web.NewHandler(web.Deps{
		Accounts:     accounts,
		Keys:         keys,
		Sessions:     sessions,
		Tokens:       tokens,
		Metrics:      a.Metrics,
		DecodePaging: decode,
		Logger:       logger,
		Version:      Version,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	a.HTTPServer = &http.Server{
		Addr:         addr,
		Handler:      a.Handler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	if holder != nil {
		a.wireHotReload()
	}

	logger.Info().Str("addr", addr).Msg("http server configured")
	return a, nil
}

// Version is set via ldflags at build time.
var Version = "dev"

type stores struct {
	accounts ports.AccountStore
	keys     ports.KeyStore
	sessions ports.SessionStore
}

func (a *App) buildStores(cfg *config.Config) (stores, func(string) (paging.Instruction, error), error) {
	switch cfg.Database.Driver {
	case "sqlite":
		db, err := sqlite.Open(cfg.Database.DSN)
		if err != nil {
			return stores{}, nil, fmt.Errorf("open database: %w", err)
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return stores{}, nil, fmt.Errorf("migrate: %w", err)
		}
		a.db = db
		a.Logger.Info().Str("dsn", cfg.Database.DSN).Msg("sqlite database initialized")

		decode := func(s string) (paging.Instruction, error) {
			c, err := paging.DecodeCursor(s)
			if err != nil {
				return nil, err
			}
			return c, nil
		}
		return stores{
			accounts: sqlite.NewAccountStore(db),
			keys:     sqlite.NewKeyStore(db),
			sessions: sqlite.NewSessionStore(db),
		}, decode, nil

	case "dynamodb":
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(cfg.Database.Region))
		if err != nil {
			return stores{}, nil, fmt.Errorf("load aws config: %w", err)
		}
		store := dynamo.New(dynamodb.NewFromConfig(awsCfg), cfg.Database.Table)
		a.Logger.Info().
			Str("table", cfg.Database.Table).
			Str("region", cfg.Database.Region).
			Msg("dynamodb store initialized")

		decode := func(s string) (paging.Instruction, error) {
			k, err := paging.DecodeKey(s)
			if err != nil {
				return nil, err
			}
			return k, nil
		}
		return stores{
			accounts: dynamo.NewAccountStore(store),
			keys:     dynamo.NewKeyStore(store),
			sessions: dynamo.NewSessionStore(store),
		}, decode, nil

	default:
		return stores{}, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

func (a *App) wireHotReload() {
	a.holder.OnChange(func(cfg *config.Config) {
		if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
			zerolog.SetGlobalLevel(level)
		}
		if a.Metrics != nil {
			a.Metrics.ConfigReloads.Inc()
		}
	})
	a.holder.OnError(func(error) {
		if a.Metrics != nil {
			a.Metrics.ConfigReloadErrors.Inc()
		}
	})
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run() error {
	if a.holder != nil {
		if err := a.holder.WatchFile(); err != nil {
			a.Logger.Warn().Err(err).Msg("config file watch unavailable")
		}
		a.holder.WatchSignals()
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().Str("addr", a.HTTPServer.Addr).Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.holder != nil {
		a.holder.Stop()
	}
	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("database close error")
		}
	}

	a.Logger.Info().Msg("shutdown complete")
	return nil
}

func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
