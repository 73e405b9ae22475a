package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/bryanwahyu/nutriguard/internal/application"
	appanalysis "github.com/bryanwahyu/nutriguard/internal/application/analysis"
	apphistory "github.com/bryanwahyu/nutriguard/internal/application/history"
	appocr "github.com/bryanwahyu/nutriguard/internal/application/ocr"
	appprofiles "github.com/bryanwahyu/nutriguard/internal/application/profiles"
	"github.com/bryanwahyu/nutriguard/internal/config"
	"github.com/bryanwahyu/nutriguard/internal/domain/history"
	"github.com/bryanwahyu/nutriguard/internal/domain/images"
	"github.com/bryanwahyu/nutriguard/internal/domain/kv"
	"github.com/bryanwahyu/nutriguard/internal/infra/ai/openai"
	"github.com/bryanwahyu/nutriguard/internal/infra/ai/prompt"
	mysqlp "github.com/bryanwahyu/nutriguard/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/nutriguard/internal/infra/db/postgres"
	"github.com/bryanwahyu/nutriguard/internal/infra/httpserver"
	kvinfra "github.com/bryanwahyu/nutriguard/internal/infra/kv"
	"github.com/bryanwahyu/nutriguard/internal/infra/kv/memory"
	redisstore "github.com/bryanwahyu/nutriguard/internal/infra/kv/redis"
	"github.com/bryanwahyu/nutriguard/internal/infra/ocr/tesseract"
	minioStore "github.com/bryanwahyu/nutriguard/internal/infra/storage"
	"github.com/bryanwahyu/nutriguard/internal/logger"
	"github.com/bryanwahyu/nutriguard/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	lg, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer lg.Sync()

	if err := run(cfg, lg); err != nil {
		lg.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, lg *zap.Logger) error {
	ctx := context.Background()
	checkers := map[string]middleware.HealthChecker{}
	clock := application.SystemClock{}

	// KV store: redis kalau dikonfigurasi, selain itu in-memory
	var store kv.Store
	if cfg.Redis.Addr != "" {
		client, err := redisstore.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer client.Close()
		rs := redisstore.New(client, cfg.Redis.Prefix)
		store = rs
		checkers["redis"] = rs
	} else {
		lg.Warn("redis not configured, profiles and meal plans are kept in memory")
		store = memory.New()
	}

	repo, db, err := historyRepository(ctx, cfg, store)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
	}

	// init minio (opsional)
	var archive images.Store
	if cfg.Minio.Endpoint != "" {
		ms, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			return fmt.Errorf("minio init: %w", err)
		}
		archive = ms
		checkers["storage"] = ms
	}

	if cfg.AI.APIKey == "" {
		lg.Warn("ai.apiKey not set, every analysis will use the fallback result")
	}
	model := openai.NewClient(cfg.AI.APIKey, cfg.AI.BaseURL, cfg.AI.Model, nil)
	runner := tesseract.NewRunner(cfg.OCR.Binary, cfg.OCR.Language, cfg.OCR.UseDocker, cfg.OCR.DockerImage, cfg.OCR.Timeout)

	handler := httpserver.NewRouter(httpserver.Deps{
		Analysis:       appanalysis.NewService(model, prompt.Builder{}, cfg.AI.Timeout, lg.Named("analysis")),
		History:        apphistory.NewService(repo, clock, lg.Named("history")),
		OCR:            appocr.NewService(runner, archive, clock, lg.Named("ocr")),
		Profiles:       appprofiles.NewService(store, clock),
		Checkers:       checkers,
		Limiter:        middleware.NewRateLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSecond),
		CORSOrigins:    cfg.Server.CORSOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		Log:            lg.Named("http"),
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.AI.Timeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	errCh := make(chan error, 1)
	go func() {
		lg.Info("server listening", zap.String("addr", addr), zap.String("history", historyBackend(cfg)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-stop:
	}
	lg.Info("shutting down server")

	ctx2, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx2)
}

// historyRepository picks the SQL backend from database.driver, or the KV store when empty.
func historyRepository(ctx context.Context, cfg *config.Config, store kv.Store) (history.Repository, *sql.DB, error) {
	switch cfg.Database.Driver {
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("mysql connect: %w", err)
		}
		repo := mysqlp.NewHistoryRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("mysql schema: %w", err)
		}
		return repo, db, nil
	case "postgres":
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("postgres connect: %w", err)
		}
		repo := postgresp.NewHistoryRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("postgres schema: %w", err)
		}
		return repo, db, nil
	default:
		return kvinfra.NewHistoryRepository(store), nil, nil
	}
}

func historyBackend(cfg *config.Config) string {
	if cfg.Database.Driver == "" {
		return "kv"
	}
	return cfg.Database.Driver
}
