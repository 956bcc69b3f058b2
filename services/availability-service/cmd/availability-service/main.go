package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/md-rashed-zaman/availability/libs/config"
	"github.com/md-rashed-zaman/availability/libs/grpcx"
	"github.com/md-rashed-zaman/availability/libs/httpx"
	"github.com/md-rashed-zaman/availability/libs/kafkax"
	otelx "github.com/md-rashed-zaman/availability/libs/otel"
	"github.com/md-rashed-zaman/availability/libs/runtime"
	"github.com/md-rashed-zaman/availability/services/availability-service/internal/cache"
	"github.com/md-rashed-zaman/availability/services/availability-service/internal/calc"
	"github.com/md-rashed-zaman/availability/services/availability-service/internal/grpcserver"
	"github.com/md-rashed-zaman/availability/services/availability-service/internal/handlers"
	"github.com/md-rashed-zaman/availability/services/availability-service/internal/worker"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type settings struct {
	service       string
	port          string
	grpcPort      string
	maxBodyBytes  int
	timeout       time.Duration
	cacheTTL      time.Duration
	ratePerMinute int
	maxSessions   int
}

func loadSettings() (settings, error) {
	var s settings
	var err error
	s.service = config.String("SERVICE_NAME", "availability-service")
	if s.port, err = config.Port("PORT", "8090"); err != nil {
		return s, err
	}
	if s.grpcPort, err = config.Port("GRPC_PORT", "9090"); err != nil {
		return s, err
	}
	if s.maxBodyBytes, err = config.Int("MAX_BODY_BYTES", 1<<20); err != nil {
		return s, err
	}
	if s.timeout, err = config.Duration("REQUEST_TIMEOUT", 10*time.Second); err != nil {
		return s, err
	}
	if s.cacheTTL, err = config.Duration("CACHE_TTL", 5*time.Minute); err != nil {
		return s, err
	}
	if s.ratePerMinute, err = config.Int("RATE_LIMIT_PER_MINUTE", 120); err != nil {
		return s, err
	}
	if s.maxSessions, err = config.Int("MAX_SESSIONS", calc.DefaultMaxSessions); err != nil {
		return s, err
	}
	return s, nil
}

func main() {
	cfg, err := loadSettings()
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(cfg.service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(cfg.service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	var checks []runtime.ReadyCheck
	var resultCache cache.Cache = cache.Nop{}
	var limiter httpx.Limiter = httpx.NewMemoryRateLimiter(cfg.ratePerMinute, time.Minute)

	rdb := openRedis(ctx, logger)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
		resultCache = cache.NewRedis(rdb, cfg.service)
		limiter = httpx.NewRedisRateLimiter(rdb, cfg.ratePerMinute, time.Minute, cfg.service+":rl")
		checks = append(checks, runtime.ReadyCheck{Name: "redis", Check: cache.ReadyCheck(rdb)})
	}

	calculator := calc.New(logger, resultCache, calc.Options{
		DefaultTimezone: config.String("DEFAULT_TIMEZONE", "UTC"),
		CacheTTL:        cfg.cacheTTL,
		MaxSessions:     cfg.maxSessions,
	})

	if brokers := config.String("KAFKA_BROKERS", ""); brokers != "" {
		w := worker.New(logger, calculator, worker.Config{
			Brokers:      brokers,
			GroupID:      config.String("KAFKA_GROUP_ID", cfg.service),
			RequestTopic: config.String("KAFKA_REQUEST_TOPIC", "availability.requested.v1"),
			ResultTopic:  config.String("KAFKA_RESULT_TOPIC", "availability.computed.v1"),
		})
		go w.Run(ctx)
		checks = append(checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)})
	}

	grpcServer := grpcx.NewServer(logger)
	grpcserver.Register(grpcServer, calculator)
	go func() {
		lis, err := net.Listen("tcp", ":"+cfg.grpcPort)
		if err != nil {
			logger.Error("grpc listen failed", "err", err)
			return
		}
		logger.Info("grpc server starting", "addr", lis.Addr().String())
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("grpc server error", "err", err)
		}
	}()

	mux := runtime.NewBaseMuxWithReady(checks...)
	handlers.NewAvailabilityHandler(calculator, logger).Register(mux)
	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithCORS(httpx.DefaultCORSPolicy(config.List("CORS_ALLOWED_ORIGINS"))),
		httpx.RateLimit(limiter, logger, config.Bool("RATE_LIMIT_FAIL_OPEN", true)),
		httpx.WithBodyLimit(int64(cfg.maxBodyBytes)),
		httpx.WithTimeout(cfg.timeout),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "availability")
	srv := &http.Server{
		Addr:              ":" + cfg.port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	grpcServer.GracefulStop()
	logger.Info("servers stopped")
}

// openRedis returns nil when REDIS_ADDR is unset or unreachable; the service then runs
// without a shared cache and limits per instance.
func openRedis(ctx context.Context, logger *slog.Logger) *redis.Client {
	addr := config.String("REDIS_ADDR", "")
	if addr == "" {
		return nil
	}
	db, err := config.Int("REDIS_DB", 0)
	if err != nil {
		logger.Error("invalid redis db", "err", err)
		return nil
	}
	openCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rdb, err := cache.Open(openCtx, cache.Config{
		Addr:     addr,
		Password: config.String("REDIS_PASSWORD", ""),
		DB:       db,
	})
	if err != nil {
		logger.Error("redis connection failed; continuing without cache", "err", err, "addr", addr)
		return nil
	}
	return rdb
}
