package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/livaro/home/backend/api/handlers"
	"github.com/livaro/home/backend/api/internal/config"
	"github.com/livaro/home/backend/api/internal/database"
	"github.com/livaro/home/backend/api/internal/record"
	"github.com/livaro/home/backend/api/internal/record/handler"
	"github.com/livaro/home/backend/api/internal/record/repository"
	"github.com/livaro/home/backend/api/internal/record/service"
	"github.com/livaro/home/backend/api/pkg/logger"
	"github.com/livaro/home/backend/api/pkg/metrics"
	"github.com/livaro/home/backend/api/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

var startTime = time.Now()

func main() {
	// LOG_LEVEL is applied again from config below; this covers config errors
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)
	logger.Infof("config loaded: env=%s store=%s database=%v redis=%v log=%s", cfg.Server.Environment, cfg.Database.Driver, cfg.Database.URL != "", cfg.Redis.Host != "", logger.LevelString())

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.RequestLogger(), gin.Recovery())
	r.Use(middleware.CORSMiddleware(cfg.Server.AllowOrigins))

	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			_ = rdb.Close()
			rdb = nil
		} else {
			defer rdb.Close()
			logger.Infof("connected to Redis %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && rdb != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
			logger.Infof("rate limiter: redis, %.1f rps burst %d", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
			logger.Infof("rate limiter: memory, %.1f rps burst %d", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		}
	}

	store, closeStore := openStore(ctx, cfg)
	svc := service.New(store)

	handlers.RegisterStatusRoutes(r, svc, handlers.StatusInfo{
		DatabaseURLSet:  cfg.Database.URL != "",
		DatabaseNameSet: cfg.Database.Name != "",
		StartedAt:       startTime,
		PingTimeout:     cfg.Database.Timeout,
	})
	handlers.RegisterSwagger(r, record.Kinds())
	handler.RegisterRecordRoutes(r, svc, handler.Options{
		DefaultLimit: cfg.Query.DefaultLimit,
		MaxLimit:     cfg.Query.MaxLimit,
		DetailMax:    cfg.Query.ErrorDetailMax,
	})

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("LIVARO Home API listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
	closeStore()
}

// openStore returns the configured document store and a function releasing
// it. The store is nil when the database cannot be reached; the gateway then
// reports storage unavailable.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, func()) {
	noop := func() {}
	if cfg.Database.Driver == "memory" {
		logger.Warnf("using in-memory store; records are lost on restart")
		return repository.NewMemoryStore(), noop
	}
	if cfg.Database.URL == "" || cfg.Database.Name == "" {
		logger.Warnf("DATABASE_URL or DATABASE_NAME not set; storage unavailable")
		return nil, noop
	}
	client, err := database.ConnectWithRetry(ctx, cfg.Database.URL, cfg.Database.Timeout, cfg.Database.ConnectAttempts, time.Second)
	if err != nil {
		logger.Errorf("could not connect to MongoDB: %v", err)
		return nil, noop
	}
	closeFn := func() {
		dctx, cancel := context.WithTimeout(context.Background(), cfg.Database.Timeout)
		defer cancel()
		if err := client.Disconnect(dctx); err != nil {
			logger.Warnf("disconnect MongoDB: %v", err)
		}
	}
	store := repository.NewMongoStore(client.Database(cfg.Database.Name))
	idxCtx, cancel := context.WithTimeout(ctx, cfg.Database.Timeout)
	defer cancel()
	if err := store.EnsureIndexes(idxCtx, record.Kinds()); err != nil {
		logger.Warnf("index setup: %v", err)
	}
	logger.Infof("connected to MongoDB database %q", cfg.Database.Name)
	return store, closeFn
}
