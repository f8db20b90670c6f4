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
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pagemark/internal/config"
	dbRedis "github.com/kailas-cloud/pagemark/internal/db/redis"
	domdoc "github.com/kailas-cloud/pagemark/internal/domain/document"
	logpkg "github.com/kailas-cloud/pagemark/internal/logger"
	"github.com/kailas-cloud/pagemark/internal/metrics"
	documentrepo "github.com/kailas-cloud/pagemark/internal/repository/document"
	pointrepo "github.com/kailas-cloud/pagemark/internal/repository/point"
	"github.com/kailas-cloud/pagemark/internal/repository/tokencache"
	"github.com/kailas-cloud/pagemark/internal/storage/files"
	chiTransport "github.com/kailas-cloud/pagemark/internal/transport/chi"
	"github.com/kailas-cloud/pagemark/internal/transport/pdf"
	documentuc "github.com/kailas-cloud/pagemark/internal/usecase/document"
	healthuc "github.com/kailas-cloud/pagemark/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/pagemark/internal/usecase/ingest"
	lookupuc "github.com/kailas-cloud/pagemark/internal/usecase/lookup"
	pointuc "github.com/kailas-cloud/pagemark/internal/usecase/point"
	renderuc "github.com/kailas-cloud/pagemark/internal/usecase/render"
	"github.com/kailas-cloud/pagemark/internal/version"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	logger, err := logpkg.NewLogger(opts.env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting pagemark API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", opts.env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_path", cfg.Database.Path),
		zap.String("cache_driver", cfg.Cache.Driver),
	)

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Database unavailable", zap.Error(err))
		return err
	}
	defer func() { _ = store.Close() }()
	logger.Info("Connected to database")

	blobs, err := files.NewStore(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("open asset storage: %w", err)
	}

	// Register domain metrics explicitly (no init())
	metrics.RegisterDomainMetrics()

	// Repositories and registry
	docSvc := documentuc.New(documentrepo.New(store))
	pointSvc := pointuc.New(pointrepo.New(store), docSvc)

	// PDF adapters
	extractor := pdf.NewExtractor(func(documentID string) string {
		path, _ := blobs.Path(domdoc.SourceKey(documentID))
		return path
	}, logger)
	rasterizer := pdf.NewRasterizer(logger)

	// Optional token cache. Pass a nil interface, not a typed nil pointer, to health.
	var (
		textExtractor lookupuc.TextExtractor = extractor
		cachePinger   healthuc.Pinger
	)
	if cfg.Cache.Driver == "redis" {
		cache, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.Cache.Addrs,
			Password:   cfg.Cache.Password,
			DB:         cfg.Cache.DB,
			Standalone: cfg.Cache.Standalone,
		})
		if err != nil {
			return fmt.Errorf("create cache store: %w", err)
		}
		defer cache.Close()

		if err := cache.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Warn("Token cache not ready, lookups fall back to extraction", zap.Error(err))
		}
		textExtractor = tokencache.New(extractor, cache,
			time.Duration(cfg.Cache.TTLSec)*time.Second, metrics.TokenCacheTotal, logger)
		cachePinger = cache
		logger.Info("Token cache enabled", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	ingestSvc := ingestuc.New(rasterizer, blobs, docSvc, logger).
		WithRender(cfg.Render.Scale, cfg.Render.ThumbnailMaxPx)
	renderSvc := renderuc.New(docSvc, blobs, cfg.Render.Scale)
	lookupSvc := lookupuc.New(docSvc, textExtractor).
		WithDefaults(cfg.Render.Scale, cfg.Lookup.Tolerance())
	healthSvc := healthuc.New(store, cachePinger)

	server := chiTransport.NewServer(docSvc, pointSvc, ingestSvc, renderSvc, lookupSvc, healthSvc, logger).
		WithMaxUploadBytes(int64(cfg.HTTP.MaxUploadMB) << 20)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(corsMiddleware(cfg.HTTP))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware("/metrics"))
	chiTransport.Handler(server, chiTransport.RouterOptions{
		BaseRouter: r,
		ErrorHandlerFunc: func(w http.ResponseWriter, _ *http.Request, err error) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
				Code:    chiTransport.ErrorCodeBadRequest,
				Message: err.Error(),
			})
		},
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			logger.Error("HTTP server error", zap.Error(err))
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

func corsMiddleware(cfg config.HTTPConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID", "Location"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorCodeInternalError,
						Message: "internal error",
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

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			ctx, reqLogger := logpkg.ContextWithRequest(r.Context(), logger, requestID)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// One line per request
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
