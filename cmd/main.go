package main

import (
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	rdb "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"catalog_service/config"
	"catalog_service/internal/delivery"
	"catalog_service/internal/middleware"
	"catalog_service/internal/rate"
	"catalog_service/internal/repository"
	"catalog_service/internal/usecase"
	"catalog_service/pkg/db"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.LoadConfig(logger)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("Unknown log level %q, falling back to info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	logger.Info("Starting Catalog Service...")

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connection established.")

	// Repository layer
	users := repository.NewUsers(database, logger)
	categories := repository.NewCategories(database, logger)
	products := repository.NewProducts(database, logger)

	// Usecase layer
	userUseCase := usecase.NewUserUseCase(users, logger, []byte(cfg.JWTSecret), cfg.TokenTTL)
	categoryUseCase := usecase.NewCategoryUseCase(categories, logger)
	productUseCase := usecase.NewProductUseCase(products, categories, logger)

	// Delivery layer
	authHandler := delivery.NewAuthHandler(userUseCase, logger)
	categoryHandler := delivery.NewCategoryHandler(categoryUseCase, logger)
	productHandler := delivery.NewProductHandler(productUseCase, logger)

	var limiter rate.Limiter
	if cfg.RedisAddr != "" {
		limiter = rate.NewRedisLimiter(
			rdb.NewClient(&rdb.Options{Addr: cfg.RedisAddr}),
			"rl:", cfg.RateLimitMax, cfg.RateLimitWindow)
		logger.Infof("Rate limiting via Redis at %s", cfg.RedisAddr)
	} else {
		limiter = rate.NewMemoryLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
		logger.Info("Rate limiting in-memory")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Metrics())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public routes throttle per client IP; protected routes sit
	// behind Auth so the limiter keys by caller identity instead.
	public := router.Group("", middleware.RateLimit(limiter, logger))
	authHandler.RegisterPublicRoutes(public)

	protected := router.Group("",
		middleware.Auth([]byte(cfg.JWTSecret), logger),
		middleware.RateLimit(limiter, logger))
	authHandler.RegisterProtectedRoutes(protected)
	categoryHandler.RegisterRoutes(protected)
	productHandler.RegisterRoutes(protected)
	logger.Info("API routes registered.")

	logger.Infof("Starting server on %s", cfg.HTTPPort)
	if err := router.Run(cfg.HTTPPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
