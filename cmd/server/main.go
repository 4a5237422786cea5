package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	config "github.com/oxidizr/askgate/configs"
	"github.com/oxidizr/askgate/internal/application/services"
	"github.com/oxidizr/askgate/internal/core/ports"
	"github.com/oxidizr/askgate/internal/infrastructure/cache"
	"github.com/oxidizr/askgate/internal/infrastructure/health"
	"github.com/oxidizr/askgate/internal/infrastructure/httpserver"
	"github.com/oxidizr/askgate/internal/infrastructure/redis"
	"github.com/oxidizr/askgate/internal/infrastructure/repositories"
	"github.com/oxidizr/askgate/internal/infrastructure/upstream"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Setup logger
	logger := logrus.New()
	if cfg.Log.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}

	logger.Info("Starting askgate...")

	// Redis is only dialed when a redis backend is actually selected.
	needsRedis := cfg.Cache.Backend == "redis" || cfg.RateLimit.Backend == "redis"
	var redisClient *goredis.Client
	if needsRedis {
		client, err := redis.NewRedisClient(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis:", err)
		}
		defer client.Close()
		redisClient = client
		logger.Info("Connected to Redis successfully")
	}

	// Response cache (shared by the proxy path and the question pipeline)
	var responseCache ports.Cache
	if cfg.Cache.Backend == "redis" {
		responseCache = redis.NewRedisCache(redisClient, "appcache")
	} else {
		responseCache = cache.NewMemoryCache(cfg.Cache.MaxEntries)
	}

	// Rate-limit store: in-memory fixed window by default, redis counters
	// when limits must be shared across instances.
	var rateLimitStore ports.RateLimitStore
	if cfg.RateLimit.Backend == "redis" {
		rateLimitStore = repositories.NewRedisRateLimitStore(redisClient, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window, cfg.RateLimit.KeyPrefix)
	} else {
		memStore := repositories.NewMemoryRateLimitStore(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
		memStore.StartSweeper(cfg.RateLimit.SweepInterval)
		defer memStore.Close()
		rateLimitStore = memStore
	}

	rateLimiterService := services.NewRateLimiterService(rateLimitStore, &services.RateLimiterConfig{
		MaxRequests: cfg.RateLimit.MaxRequests,
		Window:      cfg.RateLimit.Window,
	}, logger)

	// Upstream language-model client
	llmClient := upstream.NewClient(upstream.Config{
		APIKey:          cfg.Upstream.APIKey,
		BaseURL:         cfg.Upstream.BaseURL,
		Model:           cfg.Upstream.Model,
		ModerationModel: cfg.Upstream.ModerationModel,
		MaxTokens:       cfg.Upstream.MaxTokens,
		Timeout:         cfg.Upstream.Timeout,
		RetryAttempts:   cfg.Upstream.RetryAttempts,
		RetryBaseDelay:  cfg.Upstream.RetryBaseDelay,
	}, logger)

	validator := services.NewValidatorService()
	questionService := services.NewQuestionService(llmClient, responseCache, validator, services.QuestionConfig{
		MaxQuestionLength: cfg.Upstream.MaxQuestionLength,
		CacheEnabled:      cfg.Cache.Enabled,
		CacheTTL:          cfg.Cache.TTL,
	}, logger)

	proxyService := services.NewProxyService(services.ProxyConfig{
		Targets:      cfg.Proxy.Targets,
		Timeout:      cfg.Proxy.Timeout,
		CacheEnabled: cfg.Cache.Enabled,
		CacheTTL:     cfg.Proxy.CacheTTL,
	}, responseCache, logger)

	healthCheckers := []ports.HealthChecker{health.NewUpstreamHealthChecker(llmClient)}
	if redisClient != nil {
		healthCheckers = append(healthCheckers, health.NewRedisHealthChecker(redisClient))
	}

	serverConfig := &httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		TLSCertFile:  cfg.Server.TLSCertFile,
		TLSKeyFile:   cfg.Server.TLSKeyFile,
	}

	deps := httpserver.ServerDeps{
		QuestionService:    questionService,
		ProxyService:       proxyService,
		RateLimiterService: rateLimiterService,
		HealthCheckers:     healthCheckers,
	}

	server := httpserver.NewServer(serverConfig, logger, deps)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	logger.Infof("Server started on %s:%s", cfg.Server.Host, cfg.Server.Port)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
