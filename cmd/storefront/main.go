// cmd/storefront/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"pizza-storefront/internal/common/config"
	"pizza-storefront/internal/common/database"
	commonhttp "pizza-storefront/internal/common/http"
	"pizza-storefront/internal/common/logger"
	"pizza-storefront/internal/common/observability"
	"pizza-storefront/internal/common/pizza"
	"pizza-storefront/internal/fakeservice"
	"pizza-storefront/internal/journal"
	"pizza-storefront/internal/session"
	"pizza-storefront/internal/storefront"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	demo := flag.Bool("demo", false, "serve an in-process pizza service and order from it")
	configPath := flag.String("config", "", "config file (default configs/config.yaml)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *demo {
		addr, shutdown, err := startDemoService()
		if err != nil {
			fmt.Fprintf(os.Stderr, "demo service: %v\n", err)
			os.Exit(1)
		}
		defer shutdown()
		os.Setenv("SERVICE_BASE_URL", "http://"+addr)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting storefront",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
		zap.String("service", cfg.Service.BaseURL),
	)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("metrics exporter unavailable", zap.Error(err))
	}
	defer obs.Shutdown()

	// --- Session store ---
	var store session.Store = session.NewMemoryStore()
	if cfg.Session.Store == "redis" {
		var rc *database.RedisClient
		err = retryWithBackoff(ctx, func() error {
			var err error
			rc, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rc.Ping(ctx)
		}, 5, time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rc.Close()
		store = session.NewRedisStore(rc.GetClient(), cfg.Session.KeyPrefix, cfg.App.Environment, time.Duration(cfg.Session.TTL)*time.Second)
		zapLog.Info("Redis session store connected")
	}

	// --- Receipt journal ---
	var receipts storefront.Journal
	if cfg.Journal.Enabled {
		var pg *database.PostgresClient
		err = retryWithBackoff(ctx, func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 5, time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()

		pj := journal.NewPostgres(pg.GetDB(), cfg.Journal.Table, log)
		if err := pj.EnsureSchema(ctx); err != nil {
			zapLog.Fatal("receipt journal schema failed", zap.Error(err))
		}
		receipts = pj
		zapLog.Info("Receipt journal ready", zap.String("table", cfg.Journal.Table))
	}

	// --- Pizza service client ---
	sessions := session.NewManager(store, log)
	client := pizza.NewClient(
		pizza.Config{BaseURL: cfg.Service.BaseURL, FactoryURL: cfg.Service.GetFactoryURL()},
		commonhttp.NewClient(config.GetDuration(cfg.Service.Timeout), obs),
		sessions,
		log,
	)

	// --- Health & Metrics Server ---
	if cfg.Metrics.Address != "" {
		srv := metricsServer(cfg.Metrics.Address)
		go func() {
			zapLog.Info("Metrics server listening", zap.String("address", cfg.Metrics.Address))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				zapLog.Error("Metrics server failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	sfCfg := storefront.NewConfig(cfg)
	if err := sfCfg.Validate(); err != nil {
		zapLog.Fatal("storefront config invalid", zap.Error(err))
	}
	app := storefront.New(storefront.Dependencies{
		Service:  client,
		Sessions: sessions,
		Journal:  receipts,
		Logger:   log,
	}, sfCfg)

	console := storefront.NewConsole(app, os.Stdin, os.Stdout, log)
	if err := console.Run(ctx); err != nil {
		zapLog.Error("Console stopped", zap.Error(err))
	}

	zapLog.Info("Storefront stopped")
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func metricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}

// startDemoService serves the seeded fake pizza service on a loopback port.
func startDemoService() (string, func(), error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}

	fake := fakeservice.New(logger.NewStructured("warn", "console"))
	srv := &http.Server{Handler: fake.Router(), ReadHeaderTimeout: 5 * time.Second}
	go srv.Serve(ln)

	return ln.Addr().String(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
