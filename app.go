package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/junaidrashid-git/pawshop-api/auth"
	"github.com/junaidrashid-git/pawshop-api/cart"
	"github.com/junaidrashid-git/pawshop-api/catalog"
	"github.com/junaidrashid-git/pawshop-api/config"
	"github.com/junaidrashid-git/pawshop-api/events"
	"github.com/junaidrashid-git/pawshop-api/middleware"
	"github.com/junaidrashid-git/pawshop-api/models"
	"github.com/junaidrashid-git/pawshop-api/orders"
	"github.com/junaidrashid-git/pawshop-api/routes"
	"github.com/junaidrashid-git/pawshop-api/storage"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// app holds the wired services and whatever must be released on exit.
type app struct {
	deps         routes.Deps
	localUploads string
	closers      []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("shutdown step failed", zap.Error(err))
		}
	}
}

// initDatabase opens Postgres and migrates the schema.
func initDatabase(cfg config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("db connection failed: %w", err)
	}
	if err := models.Migrate(db); err != nil {
		return nil, fmt.Errorf("auto-migrate failed: %w", err)
	}
	return db, nil
}

func closeDatabase(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func connectRedis(ctx context.Context, url string) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(url, "redis://") || strings.HasPrefix(url, "rediss://") {
		opt, err := redis.ParseURL(url)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: url})
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func buildImageStore(ctx context.Context, cfg config.Config) (storage.ImageStore, string, error) {
	switch cfg.ImageStore {
	case "s3":
		store, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
			Prefix:   "products/",
			BaseURL:  cfg.PublicBaseURL,
		})
		if err != nil {
			return nil, "", err
		}
		return store, "", nil
	default:
		return storage.NewLocalStore(cfg.UploadsDir, "/uploads"), cfg.UploadsDir, nil
	}
}

func buildApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	a := &app{}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	db, err := initDatabase(cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() error { return closeDatabase(db) })

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = connectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rdb.Close)
	}

	// Cart snapshots
	var snapshots cart.SnapshotStore
	switch cfg.CartStore {
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("CART_STORE=redis needs REDIS_URL")
		}
		snapshots = cart.NewRedisSnapshotStore(rdb, cfg.CartSnapshotTTL)
	case "memory":
		snapshots = cart.NewMemorySnapshotStore()
	default:
		snapshots = cart.NewGormSnapshotStore(db)
	}

	// Order events: live admin feed plus Kafka when brokers are configured
	hub := events.NewHub(logger)
	a.closers = append(a.closers, func() error { hub.Close(); return nil })
	publishers := events.Fanout{hub}
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, kp.Close)
		publishers = append(publishers, kp)
	}

	images, localDir, err := buildImageStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.localUploads = localDir

	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}
	var revoked auth.Revocations = auth.NewMemoryRevocations()
	if rdb != nil {
		revoked = auth.NewRedisRevocations(rdb)
	}

	limiter := middleware.NewIPRateLimiter(cfg.TrackRPS, cfg.TrackBurst)
	a.closers = append(a.closers, func() error { limiter.Close(); return nil })

	a.deps = routes.Deps{
		Auth:    auth.NewService(db, tokens, revoked, logger.Named("auth")),
		Admins:  auth.NewAdmins(db),
		Catalog: catalog.NewService(db, images, logger.Named("catalog")),
		Orders: orders.NewService(db, orders.NewCounterAllocator(db),
			orders.WithCODFee(cfg.CODShippingFee),
			orders.WithPublisher(publishers),
			orders.WithLogger(logger.Named("orders")),
		),
		Carts:        cart.NewSessions(snapshots, logger.Named("cart"), cart.WithIdleTTL(cfg.CartIdleTTL)),
		Hub:          hub,
		TrackLimiter: limiter,
		AdminAPIKey:  cfg.AdminAPIKey,
		PageSize:     cfg.PageSize,
		Logger:       logger,
	}
	logger.Info("services wired",
		zap.String("cart_store", cfg.CartStore),
		zap.String("image_store", cfg.ImageStore),
		zap.Bool("redis", rdb != nil),
		zap.Int("kafka_brokers", len(cfg.KafkaBrokers)),
	)
	ok = true
	return a, nil
}
