package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/food_cart/internal/cache"
	"github.com/fjod/food_cart/internal/catalog"
	"github.com/fjod/food_cart/internal/config"
	"github.com/fjod/food_cart/internal/domain"
	h "github.com/fjod/food_cart/internal/http"
	"github.com/fjod/food_cart/internal/identity"
	"github.com/fjod/food_cart/internal/logger"
	"github.com/fjod/food_cart/internal/orders"
	"github.com/fjod/food_cart/internal/publisher"
	"github.com/fjod/food_cart/internal/repository"
	"github.com/fjod/food_cart/internal/service"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Catalog
	menu, err := catalog.NewSQLiteCatalog(cfg.CatalogDBPath)
	if err != nil {
		log.Fatal("failed to open catalog", zap.String("path", cfg.CatalogDBPath), zap.Error(err))
	}
	defer menu.Close()
	if err := menu.RunMigrations(cfg.CatalogMigrationsPath); err != nil {
		log.Fatal("failed to migrate catalog", zap.Error(err))
	}
	resolver := catalog.NewBreakerResolver(menu, catalog.DefaultBreakerSettings(), log)

	// Carts
	repo, closeRepo, err := openCartRepository(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open cart store", zap.String("store", cfg.CartStore), zap.Error(err))
	}
	defer closeRepo()

	// Users
	dir, closeDir, err := openDirectory(cfg, log)
	if err != nil {
		log.Fatal("failed to open user directory", zap.String("store", cfg.UserStore), zap.Error(err))
	}
	defer closeDir()

	// Orders
	store := orders.NewMemoryStore()
	if len(cfg.KafkaBrokers) > 0 {
		writer := publisher.NewKafkaWriter(cfg.OrdersTopic, cfg.KafkaBrokers...)
		defer writer.Close()
		poller := publisher.NewOutboxPoller(store, writer, log)
		go poller.Run(ctx)
		log.Info("publishing order events", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.OrdersTopic))
	} else {
		log.Info("KAFKA_BROKERS not set, order events stay in the outbox")
	}

	svc := service.NewCartService(repo, resolver, store,
		service.WithRules(cfg.PricingRules()),
		service.WithLogger(log),
	)

	router := h.NewRouter(h.RouterConfig{
		Store:          svc,
		Menu:           menu,
		Directory:      dir,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("storefront HTTP server starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// gRPC only serves health checks for the orchestrator.
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		log.Fatal("failed to listen", zap.String("port", cfg.GRPCPort), zap.Error(err))
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	go func() {
		log.Info("health server listening", zap.String("port", cfg.GRPCPort))
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal("failed to serve", zap.Error(err))
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	log.Info("shutting down storefront")
	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()

	log.Info("storefront stopped")
}

func openCartRepository(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.CartRepository, func(), error) {
	if cfg.CartStore == config.StoreMemory {
		repo := repository.NewMemoryRepository(cfg.CartIdleTTL)
		log.Info("using in-memory cart store", zap.Duration("idle_ttl", cfg.CartIdleTTL))
		return repo, func() { repo.Close() }, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	db, err := repository.ConnectMongoDB(connectCtx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		return nil, nil, err
	}
	mongoRepo := repository.NewMongoRepository(db)
	if err := mongoRepo.CreateIndexes(connectCtx, cfg.CartIdleTTL); err != nil {
		return nil, nil, err
	}
	log.Info("connected to MongoDB", zap.String("database", cfg.MongoDBName))

	disconnect := func() {
		if err := db.Client().Disconnect(context.Background()); err != nil {
			log.Warn("failed to disconnect from MongoDB", zap.Error(err))
		}
	}

	if cfg.RedisAddr == "" {
		return mongoRepo, disconnect, nil
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if err := redisClient.Ping(connectCtx).Err(); err != nil {
		redisClient.Close()
		disconnect()
		return nil, nil, fmt.Errorf("redis connection failed: %w", err)
	}
	log.Info("redis ping succeeded", zap.String("addr", cfg.RedisAddr))

	repo := repository.NewCachedRepository(mongoRepo, cache.NewRedisCache(redisClient), log)
	return repo, func() {
		redisClient.Close()
		disconnect()
	}, nil
}

func openDirectory(cfg *config.Config, log *zap.Logger) (identity.Directory, func(), error) {
	if cfg.UserStore == config.StoreMemory {
		log.Info("using in-memory user directory with demo users")
		return identity.NewMemoryDirectory(demoUsers()...), func() {}, nil
	}

	dir, err := identity.NewPostgresDirectory(&cfg.Postgres)
	if err != nil {
		return nil, nil, err
	}
	if err := dir.RunMigrations(&cfg.Postgres); err != nil {
		dir.Close()
		return nil, nil, err
	}
	log.Info("connected to Postgres", zap.String("host", cfg.Postgres.Host), zap.String("database", cfg.Postgres.DBName))
	return dir, func() { dir.Close() }, nil
}

func demoUsers() []domain.User {
	return []domain.User{
		{ID: "demo", Email: "demo@example.com", PhoneVerified: true, AddressLine1: "221B Baker Street", AddressCity: "London"},
		{ID: "unverified", Email: "unverified@example.com"},
	}
}
