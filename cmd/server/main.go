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
	"github.com/sirupsen/logrus"
	"github.com/skyvista/flight-booking-backend/internal/config"
	"github.com/skyvista/flight-booking-backend/internal/database"
	"github.com/skyvista/flight-booking-backend/internal/handlers"
	"github.com/skyvista/flight-booking-backend/internal/middleware"
	"github.com/skyvista/flight-booking-backend/internal/services"
	"github.com/skyvista/flight-booking-backend/pkg/jwt"
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

	logger.Info("Starting SkyVista Flight Booking Backend")
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

	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Transactional repositories need the underlying *sqlx.DB
	pgDB, ok := db.(*database.PostgresDB)
	if !ok {
		logger.Fatal("Failed to cast database connection to PostgresDB")
	}

	// Initialize repositories
	airportRepository := database.NewAirportRepository(db)
	flightRepository := database.NewFlightRepository(pgDB.DB)
	seatRepository := database.NewSeatRepository(db)
	bookingRepository := database.NewBookingRepository(pgDB.DB)
	userRepository := database.NewUserRepository(db)
	adminRepository := database.NewAdminRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	authService := services.NewAuthService(userRepository, jwtService, cfg.Security.BcryptCost, logger)
	seatMapService := services.NewSeatMapService(seatRepository, logger)
	flightService := services.NewFlightService(flightRepository, airportRepository, seatRepository, seatMapService, logger)
	bookingService := services.NewBookingService(flightRepository, seatRepository, bookingRepository, cfg.Booking, logger)
	logger.Info("Services initialized")

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, logger)
	airportHandler := handlers.NewAirportHandler(airportRepository, logger)
	flightHandler := handlers.NewFlightHandler(flightService, logger)
	bookingHandler := handlers.NewBookingHandler(bookingService, logger)
	adminHandler := handlers.NewAdminHandler(flightService, adminRepository, userRepository, logger)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

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
	router.GET("/health", healthCheckHandler(db))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)

			protected := auth.Group("")
			protected.Use(middleware.AuthMiddleware(jwtService))
			{
				protected.GET("/profile", authHandler.GetProfile)
				protected.PUT("/profile", authHandler.UpdateProfile)
			}
		}

		// Airport directory (public)
		airports := v1.Group("/airports")
		{
			airports.GET("", airportHandler.ListAirports)
			airports.GET("/search", airportHandler.SearchAirports)
			airports.GET("/:code", airportHandler.GetAirport)
		}

		// Flight catalog (public)
		flights := v1.Group("/flights")
		{
			flights.GET("", flightHandler.SearchFlights)
			flights.GET("/:id", flightHandler.GetFlight)
			flights.GET("/:id/seats", flightHandler.GetSeatMap)
		}

		// Booking routes
		bookings := v1.Group("/bookings")
		{
			// Public retrieve-booking flow: PNR plus passenger last name
			bookings.GET("/pnr/:pnr", bookingHandler.GetBookingByPNR)

			bookingsProtected := bookings.Group("")
			bookingsProtected.Use(middleware.AuthMiddleware(jwtService))
			{
				bookingsProtected.POST("", bookingHandler.CreateBooking)
				bookingsProtected.GET("", bookingHandler.ListBookings)
				bookingsProtected.GET("/:id", bookingHandler.GetBooking)
				bookingsProtected.GET("/ref/:reference", bookingHandler.GetBookingByReference)
				bookingsProtected.POST("/:id/cancel", bookingHandler.CancelBooking)
				bookingsProtected.POST("/:id/check-in", bookingHandler.CheckIn)
			}
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(jwtService), middleware.RequireRole("admin"))
		{
			admin.POST("/flights", adminHandler.CreateFlight)
			admin.PUT("/flights/:id", adminHandler.UpdateFlight)
			admin.PUT("/flights/:id/status", adminHandler.UpdateFlightStatus)
			admin.POST("/flights/:id/seats/block", adminHandler.BlockSeats)
			admin.POST("/flights/:id/seats/unblock", adminHandler.UnblockSeats)
			admin.GET("/stats", adminHandler.GetDashboardStats)
			admin.GET("/users", adminHandler.ListUsers)
			admin.PUT("/users/:id/status", adminHandler.UpdateUserStatus)
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

	// Graceful shutdown with timeout
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

		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
