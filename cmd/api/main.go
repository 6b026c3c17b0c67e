package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	server "hotel_api/internal/adapters/http_server"
	"hotel_api/internal/adapters/observability"
	redisad "hotel_api/internal/adapters/redis"
	"hotel_api/internal/adapters/uploads"
	"hotel_api/internal/app"
	"hotel_api/internal/domain"
	"hotel_api/internal/shared"
	"hotel_api/internal/storage"
)

func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open store failed")
	}
	defer closeStore()

	cache := openCache(ctx, cfg)
	files, err := openUploads(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open upload store failed")
	}

	var opts []app.Option
	if cfg.SerializeWrites {
		opts = append(opts, app.WithSerializedWrites())
	}
	opts = append(opts, app.WithCacheTTL(cfg.CacheTTL))
	cmd := app.NewHotelService(store, cache, opts...)
	q := app.NewQueryService(store, cache, cfg.CacheTTL)

	reg := observability.InitRegistry()
	metrics := observability.MetricsHandler(reg)
	observability.Serve(cfg.MetricsAddr, metrics)

	var rl *server.IPRateLimiter
	if cfg.RateLimitRPM > 0 {
		rl = server.NewIPRateLimiter(cfg.RateLimitRPM, cfg.RateLimitBurst, 10*time.Minute)
	}

	srv := server.New(server.Options{
		RequestTimeout: cfg.RequestTimeout,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		TrustProxy:     cfg.TrustProxyHeaders,
	})
	srv.Mount("/metrics", metrics)
	srv.MountHandlers(&server.Handlers{
		Cmd:            cmd,
		Q:              q,
		Files:          files,
		MaxFiles:       cfg.MaxUploadFiles,
		MaxUploadBytes: cfg.MaxUploadBytes(),
	}, rl)

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}

// openCache returns nil (caching off) when redis is not configured or
// cannot be reached at startup.
func openCache(ctx context.Context, cfg shared.Config) domain.Cache {
	if cfg.RedisAddr == "" {
		return nil
	}
	c := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := c.Ping(ctx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, caching disabled")
		_ = c.Close()
		return nil
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("redis cache enabled")
	return c
}

func openUploads(ctx context.Context, cfg shared.Config) (server.FileStore, error) {
	if cfg.UploadBackend == "s3" {
		return uploads.NewS3(ctx, uploads.S3Options{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			PublicURL:       cfg.S3PublicURL,
		})
	}
	return uploads.NewDisk(cfg.UploadDir), nil
}
