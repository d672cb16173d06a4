package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/saasway/adminapi/internal/products"
	"github.com/saasway/adminapi/pkg/cache"
	"github.com/saasway/adminapi/pkg/config"
	"github.com/saasway/adminapi/pkg/httpserver"
	"github.com/saasway/adminapi/pkg/logger"
	"github.com/saasway/adminapi/pkg/mongodb"
	"github.com/saasway/adminapi/pkg/redis"
	"github.com/saasway/adminapi/pkg/storage"
	"github.com/saasway/adminapi/pkg/tenant"
)

type appConfig struct {
	Addr               string        `env:"SERVER_ADDR" envDefault:":8080"`
	Environment        string        `env:"APP_ENV" envDefault:"development"`
	DescriptorCacheTTL time.Duration `env:"PRODUCT_DESCRIPTOR_TTL" envDefault:"1m"`
}

func main() {
	ctx := context.Background()

	var (
		appCfg   appConfig
		mongoCfg mongodb.Config
		redisCfg redis.Config
		s3Cfg    storage.Config
	)
	config.MustLoad(&appCfg)
	config.MustLoad(&mongoCfg)
	config.MustLoad(&redisCfg)
	config.MustLoad(&s3Cfg)

	requestID := func(ctx context.Context) (slog.Attr, bool) {
		if id := middleware.GetReqID(ctx); id != "" {
			return slog.String("request_id", id), true
		}
		return slog.Attr{}, false
	}

	log := logger.New(
		logger.WithEnvironment(appCfg.Environment, "adminapi"),
		logger.WithContextExtractors(requestID, tenant.LoggerExtractor()),
	)

	// The cache backend is optional: without Redis every caching middleware
	// degrades to pass-through and the API still serves from MongoDB.
	var store cache.Store
	redisClient, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		log.Warn("redis unavailable, response caching disabled", logger.Error(err))
		store = cache.NewNoopStore()
	} else {
		store = cache.NewRedisStore(redisClient, log)
	}

	controlClient, controlDB, err := mongodb.Open(ctx, mongoCfg, mongoCfg.ControlDatabase)
	if err != nil {
		log.Error("failed to connect to control-plane database", logger.Error(err))
		os.Exit(1)
	}
	directory := tenant.NewMongoDirectory(controlDB)

	registry := tenant.NewRegistry(
		tenant.NewMongoOpener(mongoCfg),
		tenant.WithRegistryLogger(log),
	)

	var fileStorage *storage.S3Storage
	if s3Cfg.Enabled() {
		fileStorage, err = storage.New(ctx, s3Cfg)
		if err != nil {
			log.Warn("S3 storage unavailable, uploads disabled", logger.Error(err))
		}
	}

	healthchecks := []func(context.Context) error{mongodb.Healthcheck(controlClient)}
	if redisClient != nil {
		healthchecks = append(healthchecks, redis.Healthcheck(redisClient))
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/health", httpserver.HealthCheckHandler(log, healthchecks...))

	r.Route("/api/v1/{product}", func(r chi.Router) {
		r.Use(tenant.Middleware(directory, registry,
			tenant.WithDescriptorCacheTTL(appCfg.DescriptorCacheTTL),
		))
		r.Mount("/uploads", products.UploadHandler(fileStorage))
		r.Mount("/", products.Default(store))
	})

	srv := httpserver.New(
		httpserver.WithAddr(appCfg.Addr),
		httpserver.WithLogger(log),
		httpserver.WithReadTimeout(15*time.Second),
		httpserver.WithWriteTimeout(30*time.Second),
		httpserver.WithStopHook(func(log *slog.Logger) {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := registry.CloseAll(shutdownCtx); err != nil {
				log.Error("failed to close product connections", logger.Error(err))
			}
			if err := controlClient.Disconnect(shutdownCtx); err != nil {
				log.Error("failed to close control-plane connection", logger.Error(err))
			}
			if err := store.Close(); err != nil {
				log.Error("failed to close cache store", logger.Error(err))
			}
		}),
	)

	if err := srv.Run(ctx, r); err != nil {
		log.Error("server exited with error", logger.Error(err))
		os.Exit(1)
	}
}
