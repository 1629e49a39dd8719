package main

import (
	"context"
	"encoding/json"
	"errors"
	"expvar"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/jcpaschoal/dealerdesk/api/cmd/build/all"
	"github.com/jcpaschoal/dealerdesk/app/sdk/auth"
	"github.com/jcpaschoal/dealerdesk/app/sdk/debug"
	"github.com/jcpaschoal/dealerdesk/app/sdk/mux"
	"github.com/jcpaschoal/dealerdesk/business/domain/aclbus"
	"github.com/jcpaschoal/dealerdesk/business/domain/branchbus"
	"github.com/jcpaschoal/dealerdesk/business/domain/branchbus/stores/branchdb"
	"github.com/jcpaschoal/dealerdesk/business/domain/tenantbus"
	"github.com/jcpaschoal/dealerdesk/business/domain/tenantbus/stores/tenantdb"
	"github.com/jcpaschoal/dealerdesk/business/domain/userbus"
	"github.com/jcpaschoal/dealerdesk/business/domain/userbus/stores/usercache"
	"github.com/jcpaschoal/dealerdesk/business/domain/userbus/stores/userdb"
	"github.com/jcpaschoal/dealerdesk/business/sdk/migrate"
	"github.com/jcpaschoal/dealerdesk/business/sdk/sqldb"
	"github.com/jcpaschoal/dealerdesk/foundation/logger"
	"github.com/jcpaschoal/dealerdesk/foundation/otel"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var build = "develop"

type Config struct {
	Version struct {
		Build string `json:"build"`
		Desc  string `json:"desc"`
	} `json:"version"`

	Web struct {
		ReadTimeout        time.Duration `envconfig:"WEB_READ_TIMEOUT" default:"5s"`
		WriteTimeout       time.Duration `envconfig:"WEB_WRITE_TIMEOUT" default:"10s"`
		IdleTimeout        time.Duration `envconfig:"WEB_IDLE_TIMEOUT" default:"120s"`
		ShutdownTimeout    time.Duration `envconfig:"WEB_SHUTDOWN_TIMEOUT" default:"20s"`
		APIHost            string        `envconfig:"WEB_API_HOST" default:"0.0.0.0:3000"`
		DebugHost          string        `envconfig:"WEB_DEBUG_HOST" default:"0.0.0.0:3010"`
		CORSAllowedOrigins []string      `envconfig:"WEB_CORS_ALLOWED_ORIGINS" default:"*"`
	}
	Auth struct {
		TokenSecret string        `envconfig:"AUTH_TOKEN_SECRET" default:"dev-only-secret"`
		TokenTTL    time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"168h"`
	}
	DB struct {
		User         string        `envconfig:"DB_USER" default:"postgres"`
		Password     string        `envconfig:"DB_PASSWORD" default:"postgres"`
		Host         string        `envconfig:"DB_HOST" default:"localhost"`
		Name         string        `envconfig:"DB_NAME" default:"dealerdesk"`
		MaxIdleConns int           `envconfig:"DB_MAX_IDLE_CONNS" default:"0"`
		MaxOpenConns int           `envconfig:"DB_MAX_OPEN_CONNS" default:"0"`
		DisableTLS   bool          `envconfig:"DB_DISABLE_TLS" default:"true"`
		Migrate      bool          `envconfig:"DB_MIGRATE" default:"true"`
		CacheTTL     time.Duration `envconfig:"DB_USER_CACHE_TTL" default:"5m"`
	}
	Tempo struct {
		Host        string  `envconfig:"TEMPO_HOST" default:""`
		ServiceName string  `envconfig:"TEMPO_SERVICE_NAME" default:"DEALERDESK"`
		Probability float64 `envconfig:"TEMPO_PROBABILITY" default:"0.05"`
	}
}

func main() {
	var log *logger.Logger

	events := logger.Events{
		Error: func(ctx context.Context, r logger.Record) {
			log.Info(ctx, "******* SEND ALERT *******")
		},
	}

	log = logger.NewWithEvents(os.Stdout, logger.LevelInfo, "DEALERDESK", otel.GetTraceID, events)

	// -------------------------------------------------------------------------

	ctx := context.Background()

	if err := run(ctx, log); err != nil {
		log.Error(ctx, "startup", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger) error {

	// -------------------------------------------------------------------------
	// GOMAXPROCS

	log.Info(ctx, "startup", "GOMAXPROCS", runtime.GOMAXPROCS(0))

	// -------------------------------------------------------------------------
	// Configuration

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config

	cfg.Version.Build = build
	cfg.Version.Desc = "DEALERDESK"

	if err := envconfig.Process("", &cfg); err != nil {
		return fmt.Errorf("processing config: %w", err)
	}

	// -------------------------------------------------------------------------
	// App Info & Config Logging

	log.Info(ctx, "startup", "version", cfg.Version)
	log.Info(ctx, "startup", "config", sanitizeConfig(cfg))

	log.Info(ctx, "starting service", "version", cfg.Version.Build)
	defer log.Info(ctx, "shutdown complete")

	log.BuildInfo(ctx)

	expvar.NewString("build").Set(cfg.Version.Build)

	// -------------------------------------------------------------------------
	// Database Support

	log.Info(ctx, "startup", "status", "initializing database support", "hostport", cfg.DB.Host)

	db, err := sqldb.Open(sqldb.Config{
		User:         cfg.DB.User,
		Password:     cfg.DB.Password,
		Host:         cfg.DB.Host,
		Name:         cfg.DB.Name,
		MaxIdleConns: cfg.DB.MaxIdleConns,
		MaxOpenConns: cfg.DB.MaxOpenConns,
		DisableTLS:   cfg.DB.DisableTLS,
	})
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}

	defer db.Close()

	if cfg.DB.Migrate {
		if err := migrate.Migrate(ctx, log, db.DB); err != nil {
			return fmt.Errorf("migrating db: %w", err)
		}
	}

	// -------------------------------------------------------------------------
	// Business Support

	log.Info(ctx, "startup", "status", "initializing business support")

	beginner := sqldb.NewBeginner(db)

	userBus := userbus.NewCore(log, usercache.NewStore(log, userdb.NewStore(log, db), cfg.DB.CacheTTL))
	tenantBus := tenantbus.NewCore(log, tenantdb.NewStore(log, db))
	branchBus := branchbus.NewCore(log, beginner, branchdb.NewStore(log, db))

	aclBus, err := aclbus.NewCore(log, tenantBus)
	if err != nil {
		return fmt.Errorf("initializing authorization: %w", err)
	}

	// -------------------------------------------------------------------------
	// Auth Support

	log.Info(ctx, "startup", "status", "initializing authentication support")

	authClient := auth.New(auth.Config{
		Log:     log,
		Codec:   auth.NewTokenCodec(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL),
		UserBus: userBus,
		ACLBus:  aclBus,
	})

	// -------------------------------------------------------------------------
	// Start Tracing Support

	log.Info(ctx, "startup", "status", "initializing tracing support")

	traceProvider, teardown, err := otel.InitTracing(log, otel.Config{
		ServiceName: cfg.Tempo.ServiceName,
		Host:        cfg.Tempo.Host,
		ExcludedRoutes: map[string]struct{}{
			"/liveness":  {},
			"/readiness": {},
		},
		Probability: cfg.Tempo.Probability,
	})
	if err != nil {
		return fmt.Errorf("starting tracing: %w", err)
	}

	defer teardown(context.Background())

	tracer := traceProvider.Tracer(cfg.Tempo.ServiceName)

	// -------------------------------------------------------------------------
	// Start Debug Service

	go func() {
		log.Info(ctx, "startup", "status", "debug router started", "host", cfg.Web.DebugHost)

		if err := http.ListenAndServe(cfg.Web.DebugHost, debug.Mux()); err != nil {
			log.Error(ctx, "shutdown", "status", "debug router closed", "host", cfg.Web.DebugHost, "msg", err)
		}
	}()

	// -------------------------------------------------------------------------
	// Start API Service

	log.Info(ctx, "startup", "status", "initializing API support")

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	cfgMux := mux.Config{
		Build:    cfg.Version.Build,
		Log:      log,
		DB:       db,
		Beginner: beginner,
		Tracer:   tracer,
		Auth:     authClient,
		Bus: mux.BusConfig{
			UserBus:   userBus,
			TenantBus: tenantBus,
			BranchBus: branchBus,
			ACLBus:    aclBus,
		},
	}

	webAPI := mux.WebAPI(cfgMux,
		all.Routes(),
		mux.WithCORS(cfg.Web.CORSAllowedOrigins),
	)

	api := http.Server{
		Addr:         cfg.Web.APIHost,
		Handler:      webAPI,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     logger.NewStdLogger(log, logger.LevelError),
	}

	serverErrors := make(chan error, 1)

	go func() {
		log.Info(ctx, "startup", "status", "api router started", "host", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	// -------------------------------------------------------------------------
	// Shutdown

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Info(ctx, "shutdown", "status", "shutdown started", "signal", sig)
		defer log.Info(ctx, "shutdown", "status", "shutdown complete", "signal", sig)

		ctx, cancel := context.WithTimeout(ctx, cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}

func sanitizeConfig(cfg Config) string {
	cfg.DB.Password = "[MASKED]"
	cfg.Auth.TokenSecret = "[MASKED]"

	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Sprintf("%+v", cfg)
	}
	return string(data)
}
