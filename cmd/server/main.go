package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/bhakthiseva/darshan-backend/internal/chant"
	"github.com/bhakthiseva/darshan-backend/internal/config"
	"github.com/bhakthiseva/darshan-backend/internal/database"
	"github.com/bhakthiseva/darshan-backend/internal/handlers"
	"github.com/bhakthiseva/darshan-backend/internal/middleware"
	"github.com/bhakthiseva/darshan-backend/internal/models"
	"github.com/bhakthiseva/darshan-backend/internal/services"
	"github.com/bhakthiseva/darshan-backend/pkg/email"
	"github.com/bhakthiseva/darshan-backend/pkg/jwt"
	"github.com/bhakthiseva/darshan-backend/pkg/validator"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting BhakthiSeva Darshan Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize Redis (booking event channel + promo redemption guard)
	logger.Info("Connecting to Redis...")
	redisClient, err := database.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	logger.Info("Redis connection established")

	// Initialize repositories
	userRepository := database.NewUserRepository(db)
	templeRepository := database.NewTempleRepository(db)
	visitRepository := database.NewTempleVisitRepository(db)
	bookingRepository := database.NewDarshanBookingRepository(db)
	productRepository := database.NewProductRepository(db)
	orderRepository := database.NewOrderRepository(db)
	promoRepository := database.NewPromoCodeRepository(db)
	contributionRepository := database.NewContributionRepository(db)
	mantraRepository := database.NewMantraRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	contactValidator := validator.NewContactValidator()
	authService := services.NewAuthService(userRepository, jwtService, cfg.Security.BcryptCost, logger)
	loyaltyService := services.NewLoyaltyService(visitRepository, cfg.Loyalty)
	redemptionGuard := database.NewRedemptionGuard(redisClient)
	promotionService := services.NewPromotionService(promoRepository, redemptionGuard, logger)
	eventBus := database.NewBookingEventBus(redisClient)

	// Chant completions are appended to the durable achievement log
	chantRegistry := chant.NewRegistry(func(userID, mantraID string, target int, completedAt time.Time) {
		achievement := &models.ChantAchievement{
			UserID:      userID,
			MantraID:    mantraID,
			Target:      target,
			CompletedAt: completedAt,
		}
		if err := mantraRepository.AppendAchievement(achievement); err != nil {
			logger.WithFields(logrus.Fields{
				"user_id":   userID,
				"mantra_id": mantraID,
			}).Errorf("Failed to record chant achievement: %v", err)
		}
	})

	// Initialize email gateway
	var emailGateway email.Gateway
	if cfg.Email.Mode == "production" {
		logger.Info("Initializing email gateway in production mode...")
		emailGateway = email.NewHTTPGateway(email.Config{
			EndpointURL: cfg.Email.EndpointURL,
			APIKey:      cfg.Email.APIKey,
		})
	} else {
		logger.Info("Email gateway in development mode (notifications are logged, not sent)")
		emailGateway = email.NewDevGateway(logger)
	}

	logger.Info("Services initialized")

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, userRepository, contactValidator)
	templeHandler := handlers.NewTempleHandler(templeRepository)
	visitHandler := handlers.NewTempleVisitHandler(visitRepository, templeRepository, loyaltyService)
	bookingHandler := handlers.NewDarshanBookingHandler(bookingRepository, templeRepository, eventBus)
	productHandler := handlers.NewProductHandler(productRepository)
	orderHandler := handlers.NewOrderHandler(orderRepository, productRepository, loyaltyService, promotionService, emailGateway)
	promoHandler := handlers.NewPromoHandler(promoRepository, loyaltyService, promotionService)
	contributionHandler := handlers.NewContributionHandler(contributionRepository, templeRepository, contactValidator, cfg.Loyalty.DefaultTemplePoints)
	chantHandler := handlers.NewChantHandler(mantraRepository, chantRegistry)
	adminHandler := handlers.NewAdminHandler(bookingRepository, visitRepository)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	if cfg.Security.EnableRequestLog {
		router.Use(requestLogger(logger))
	}

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db, redisClient))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Authentication routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)

			authProtected := auth.Group("")
			authProtected.Use(middleware.AuthMiddleware(jwtService))
			{
				authProtected.POST("/logout", authHandler.Logout)
				authProtected.GET("/me", authHandler.Me)
			}
		}

		// Temple discovery (public)
		temples := v1.Group("/temples")
		{
			temples.GET("", templeHandler.ListTemples)
			temples.GET("/:id", templeHandler.GetTemple)
		}

		// Storefront (public browsing)
		products := v1.Group("/products")
		{
			products.GET("", productHandler.ListProducts)
			products.GET("/:id", productHandler.GetProduct)
		}

		// Mantra catalog (public)
		v1.GET("/mantras", chantHandler.ListMantras)

		// Temple visits and the Bhakthi points ledger (protected)
		visits := v1.Group("/visits")
		visits.Use(middleware.AuthMiddleware(jwtService))
		{
			visits.POST("", visitHandler.LogVisit)
			visits.GET("", visitHandler.MyVisits)
			visits.GET("/ledger", visitHandler.MyLedger)
		}

		// Darshan bookings (protected)
		bookings := v1.Group("/bookings")
		bookings.Use(middleware.AuthMiddleware(jwtService))
		{
			bookings.POST("", bookingHandler.CreateBooking)
			bookings.GET("", bookingHandler.MyBookings)
			bookings.GET("/:id", bookingHandler.GetBooking)
			bookings.GET("/:id/events", bookingHandler.StreamBookingEvents)
		}

		// Orders (protected)
		orders := v1.Group("/orders")
		orders.Use(middleware.AuthMiddleware(jwtService))
		{
			orders.POST("", orderHandler.Checkout)
			orders.GET("", orderHandler.MyOrders)
		}

		// Promo preview (protected)
		promos := v1.Group("/promos")
		promos.Use(middleware.AuthMiddleware(jwtService))
		{
			promos.POST("/apply", promoHandler.ApplyPromo)
		}

		// Temple contributions (protected)
		contributions := v1.Group("/contributions")
		contributions.Use(middleware.AuthMiddleware(jwtService))
		{
			contributions.POST("", contributionHandler.SubmitContribution)
			contributions.GET("", contributionHandler.MyContributions)
		}

		// Chant counter sessions (protected)
		chants := v1.Group("/chants")
		chants.Use(middleware.AuthMiddleware(jwtService))
		{
			chants.POST("", chantHandler.StartChant)
			chants.GET("/achievements", chantHandler.MyAchievements)
			chants.GET("/:id", chantHandler.GetChant)
			chants.POST("/:id/events", chantHandler.ChantEvent)
			chants.POST("/:id/reset", chantHandler.ResetChant)
			chants.DELETE("/:id", chantHandler.EndChant)
		}

		// Admin back office (protected, admin role required)
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(jwtService))
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			// Temple catalog
			admin.POST("/temples", templeHandler.CreateTemple)
			admin.PATCH("/temples/:id", templeHandler.UpdateTemple)

			// Visit verification queue
			admin.GET("/visits/pending", visitHandler.PendingVisits)
			admin.POST("/visits/:id/verify", visitHandler.VerifyVisit)

			// Booking verification queue
			admin.GET("/bookings", adminHandler.ListBookings)
			admin.PATCH("/bookings/:id/status", bookingHandler.UpdateBookingStatus)

			// Storefront management
			admin.POST("/products", productHandler.CreateProduct)
			admin.GET("/orders", orderHandler.ListOrders)
			admin.PATCH("/orders/:id/status", orderHandler.UpdateOrderStatus)

			// Promo codes
			admin.POST("/promos", promoHandler.CreatePromo)
			admin.GET("/promos", promoHandler.ListPromos)
			admin.PATCH("/promos/:code/active", promoHandler.SetPromoActive)

			// Contribution review queue
			admin.GET("/contributions", contributionHandler.ListContributions)
			admin.POST("/contributions/:id/review", contributionHandler.ReviewContribution)

			// Mantra catalog
			admin.POST("/mantras", chantHandler.CreateMantra)

			// User engagement dashboard
			admin.GET("/users/engagement", adminHandler.ListUserEngagement)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		if userCtx, exists := middleware.GetUserContext(c); exists {
			fields["user_id"] = userCtx.UserID
		}

		entry := logger.WithFields(fields)

		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
			}
			entry.Error("Request failed with errors")
		} else {
			status := c.Writer.Status()
			if status >= 500 {
				entry.Error("Request completed with server error")
			} else if status >= 400 {
				entry.Warn("Request completed with client error")
			} else {
				entry.Info("Request completed successfully")
			}
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		redisStatus := "healthy"
		if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
			redisStatus = "unhealthy"
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"redis":     redisStatus,
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
