package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/cache"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/config"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/db"
	dbmemory "github.com/Srujan0798/Rest-iN-U-sub002/internal/db/memory"
	dbredis "github.com/Srujan0798/Rest-iN-U-sub002/internal/db/redis"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/request"
	logpkg "github.com/Srujan0798/Rest-iN-U-sub002/internal/logger"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/metrics"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/queue"
	indexrepo "github.com/Srujan0798/Rest-iN-U-sub002/internal/repository/index"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/repository/keys"
	searchrepo "github.com/Srujan0798/Rest-iN-U-sub002/internal/repository/search"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/source"
	sourcehttp "github.com/Srujan0798/Rest-iN-U-sub002/internal/source/http"
	sourcemem "github.com/Srujan0798/Rest-iN-U-sub002/internal/source/memory"
	chiTransport "github.com/Srujan0798/Rest-iN-U-sub002/internal/transport/chi"
	clusteruc "github.com/Srujan0798/Rest-iN-U-sub002/internal/usecase/cluster"
	healthuc "github.com/Srujan0798/Rest-iN-U-sub002/internal/usecase/health"
	searchuc "github.com/Srujan0798/Rest-iN-U-sub002/internal/usecase/search"
	similaruc "github.com/Srujan0798/Rest-iN-U-sub002/internal/usecase/similar"
	syncuc "github.com/Srujan0798/Rest-iN-U-sub002/internal/usecase/sync"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/version"
)

const deadLetterCapacity = 256

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting propsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("source_driver", cfg.Source.Driver),
	)

	// Create index store based on driver
	var store db.Store
	switch cfg.Database.Driver {
	case "redis":
		store, err = dbredis.NewStore(dbredis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
	case "memory":
		store = dbmemory.NewStore()
	default:
		logger.Fatal("Unknown database driver", zap.String("driver", cfg.Database.Driver))
	}
	if err != nil {
		logger.Fatal("Failed to create index store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Index store not ready", zap.Error(err))
	}
	logger.Info("Connected to index store")

	// Register indexing metrics explicitly (no init())
	metrics.RegisterIndexingMetrics()

	// Create repositories and ensure the search index exists
	scheme := keys.NewScheme(cfg.Storage.KeyPrefix)
	indexRepo := indexrepo.New(store, scheme, cfg.Search.PartialUpdateRetries)
	if err := indexRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure search index", zap.Error(err))
	}
	searchRepo := searchrepo.New(store, scheme)

	// Create the property source based on driver. The http driver also serves
	// user preference profiles; the memory driver starts empty and is meant
	// for local runs fed through the sync trigger endpoints.
	var (
		src        source.Source
		profiles   searchuc.ProfileSource
		srcChecker healthuc.SourcePinger
	)
	switch cfg.Source.Driver {
	case "http":
		client, err := sourcehttp.NewClient(sourcehttp.Config{
			BaseURL: cfg.Source.BaseURL,
			APIKey:  cfg.Source.APIKey,
			Timeout: time.Duration(cfg.Source.TimeoutSec) * time.Second,
		})
		if err != nil {
			logger.Fatal("Failed to create property source", zap.Error(err))
		}
		src, profiles, srcChecker = client, client, client
	case "memory":
		mem := sourcemem.New()
		src, profiles, srcChecker = mem, mem, mem
	default:
		logger.Fatal("Unknown source driver", zap.String("driver", cfg.Source.Driver))
	}

	// Result cache, shared by the search path (reads) and sync (invalidation)
	results := cache.NewResultCache(cfg.Search.CacheSize,
		time.Duration(cfg.Search.CacheTTLSec)*time.Second)

	// Indexing work queue and worker pool
	taskQueue := queue.NewMemory()
	deadLetters := queue.NewMemoryDeadLetters(deadLetterCapacity)
	pool := queue.NewPool(queue.PoolConfig{
		Workers:     cfg.Queue.Workers,
		MaxAttempts: cfg.Queue.MaxAttempts,
		BaseBackoff: time.Duration(cfg.Queue.BaseBackoffMs) * time.Millisecond,
	}, taskQueue, syncuc.NewTaskHandler(src, indexRepo, results),
		deadLetters, metrics.WorkerMetrics{}, logger)

	// Sync passes and their scheduler
	detector := syncuc.NewDetector(src, store, scheme,
		time.Duration(cfg.Sync.SafetyBufferSec)*time.Second)
	syncSvc := syncuc.New(syncuc.Config{
		FullInterval:        time.Duration(cfg.Sync.FullIntervalSec) * time.Second,
		IncrementalInterval: time.Duration(cfg.Sync.IncrementalIntervalSec) * time.Second,
		VastuInterval:       time.Duration(cfg.Sync.VastuIntervalSec) * time.Second,
		ReportsInterval:     time.Duration(cfg.Sync.ReportsIntervalSec) * time.Second,
		EngagementInterval:  time.Duration(cfg.Sync.EngagementIntervalSec) * time.Second,
		BatchSize:           cfg.Sync.BatchSize,
		InterBatchDelay:     time.Duration(cfg.Sync.InterBatchDelayMs) * time.Millisecond,
		ReportLookahead:     time.Duration(cfg.Sync.ReportLookaheadHours) * time.Hour,
	}, src, indexRepo, searchRepo, taskQueue, detector, results, metrics.SyncMetrics{}, logger)
	scheduler := syncuc.NewScheduler(syncSvc.Schedules(), metrics.SyncMetrics{}, logger)

	// Create use case services
	searchSvc := searchuc.New(searchRepo, profiles, results, metrics.SearchMetrics{}, searchuc.Config{
		PriceBuckets: cfg.Search.PriceBuckets,
		VastuBuckets: cfg.Search.VastuBuckets,
	})
	similarSvc := similaruc.New(indexRepo, searchRepo)
	clusterSvc := clusteruc.New(searchRepo)
	healthSvc := healthuc.New(store, srcChecker)

	// Create chi server
	server := chiTransport.NewServer(searchSvc, similarSvc, clusterSvc, healthSvc,
		scheduler, deadLetters, request.Limits{
			DefaultLimit:        cfg.Search.DefaultLimit,
			MaxLimit:            cfg.Search.MaxLimit,
			DefaultRadiusMeters: cfg.Search.DefaultRadiusMeters,
		}, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	// Background workers stop when bgCtx is cancelled during shutdown
	bgCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()

	go func() {
		if err := pool.Run(bgCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Worker pool stopped", zap.Error(err))
		}
	}()
	go func() {
		if err := scheduler.Run(bgCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Sync scheduler stopped", zap.Error(err))
		}
	}()
	if cfg.Sync.FullOnStart {
		// Each schedule otherwise waits out its first interval, so a fresh
		// deployment would serve an empty index until the full pass fires.
		go func() {
			if err := scheduler.Trigger(bgCtx, syncuc.PassFull); err != nil &&
				!errors.Is(err, context.Canceled) {
				logger.Error("Initial full reindex failed", zap.Error(err))
			}
		}()
	}

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	stopBackground()
	taskQueue.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
