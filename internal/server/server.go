package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/database"
	custommiddleware "storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config      *config.Config
	logger      *zap.Logger
	mongoClient *mongo.Client
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, mongoClient *mongo.Client, redisClient *redis.Client) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.CORSOrigins, cfg.Server.Env == "development"))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
		Window:            time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
		KeyPrefix:         "ratelimit",
	}, logger))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithJSON(w, http.StatusOK, database.Health(r.Context(), mongoClient))
	})

	db := mongoClient.Database(cfg.Mongo.Database)

	// Initialize repositories
	categoryRepo := repository.NewCategoryRepository(db.Collection(database.CollectionCategories))
	productRepo := repository.NewProductRepository(db.Collection(database.CollectionProducts))
	userRepo := repository.NewUserRepository(db.Collection(database.CollectionUsers))
	orderRepo := repository.NewOrderRepository(db.Collection(database.CollectionOrders))
	settingsRepo := repository.NewSettingsRepository(
		db.Collection(database.CollectionSettings),
		db.Collection(database.CollectionProfiles),
	)
	policyRepo := repository.NewPolicyRepository(db.Collection(database.CollectionPolicies))
	shippingRepo := repository.NewShippingRepository(db.Collection(database.CollectionShipping))

	// Initialize services
	tokenTTL := time.Duration(cfg.JWT.AccessExpiry) * time.Minute
	cacheStore := cache.New(redisClient, logger)
	catalogService := service.NewCatalogService(categoryRepo, productRepo, cacheStore, logger)
	userService := service.NewUserService(userRepo, cfg.JWT.Secret, tokenTTL)

	// Initialize handlers
	secureCookie := cfg.Server.Env == "production"
	catalogHandler := transport.NewCatalogHandler(catalogService, categoryRepo, productRepo, logger)
	userHandler := transport.NewUserHandler(userService, userRepo, logger, secureCookie, tokenTTL)
	orderHandler := transport.NewOrderHandler(orderRepo, logger)
	storeHandler := transport.NewStoreHandler(settingsRepo, policyRepo, shippingRepo, logger)

	// Create auth middleware
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	adminMiddleware := custommiddleware.RequireAdmin(logger)

	// Register routes
	catalogHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	userHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	orderHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	storeHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:      cfg,
		logger:      logger,
		mongoClient: mongoClient,
		redisClient: redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	if s.mongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.mongoClient.Disconnect(ctx); err != nil {
			s.logger.Error("Failed to disconnect from mongodb", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
