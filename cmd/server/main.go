package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"gram_sahay/internal/config"
	"gram_sahay/internal/handler"
	"gram_sahay/internal/middleware"
	"gram_sahay/internal/model"
	"gram_sahay/internal/repository"
	"gram_sahay/internal/service"
	"gram_sahay/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading, relying on environment variables")
	}

	// --- Configuration ---
	jwtSecret := os.Getenv("JWT_SECRET_KEY")
	if jwtSecret == "" {
		log.Fatalf("JWT_SECRET_KEY not set in environment")
	}
	jwtExpHoursStr := os.Getenv("JWT_EXPIRATION_HOURS")
	jwtExpHours, err := strconv.ParseInt(jwtExpHoursStr, 10, 64)
	if err != nil {
		log.Printf("Invalid JWT_EXPIRATION_HOURS, defaulting to 24: %v", err)
		jwtExpHours = 24
	}

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080" // Default port
	}

	otpDelay := 800 * time.Millisecond // Simulated send/verify delay
	if delayStr := os.Getenv("OTP_DELAY_MS"); delayStr != "" {
		if ms, err := strconv.Atoi(delayStr); err == nil && ms >= 0 {
			otpDelay = time.Duration(ms) * time.Millisecond
		} else {
			log.Printf("Invalid OTP_DELAY_MS %q, keeping default 800ms", delayStr)
		}
	}

	// --- Key-Value Store ---
	// Postgres when configured, in-memory otherwise.
	var store repository.KVStore
	if dbCfg, err := config.LoadDBConfig(); err == nil {
		dbPool, err := config.ConnectDB(dbCfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer dbPool.Close()

		if err := config.AutoMigrate(dbPool); err != nil {
			log.Fatalf("Failed to auto-migrate database: %v", err)
		}
		store = repository.NewPgKVStore(dbPool)
	} else {
		log.Printf("Database not configured (%v), using in-memory store", err)
		store = repository.NewMemoryKVStore()
	}

	// --- Initialize Utilities ---
	jwtUtil := utils.NewJWTUtil(jwtSecret, jwtExpHours)

	// --- Initialize Repositories ---
	complaintRepo := repository.NewComplaintRepository(store)
	noticeRepo := repository.NewNoticeRepository(store)

	// --- Initialize Core Services ---
	startCtx := context.Background()
	router := service.NewSessionRouter(startCtx, store)
	userLogin := service.NewOTPLogin(startCtx, store, model.RoleUser, otpDelay)
	adminLogin := service.NewOTPLogin(startCtx, store, model.RoleAdmin, otpDelay)
	complaintService := service.NewComplaintService(complaintRepo)
	schemeService := service.NewSchemeService()
	noticeService := service.NewNoticeService(noticeRepo)

	router.Subscribe(func(screen, role string) {
		log.Printf("Screen changed to %s (role: %q)", screen, role)
	})

	// --- Initialize Handlers ---
	authHandler := handler.NewAuthHandler(userLogin, adminLogin, router, store, jwtUtil)
	screenHandler := handler.NewScreenHandler(router)
	complaintHandler := handler.NewComplaintHandler(complaintService)
	schemeHandler := handler.NewSchemeHandler(schemeService)
	noticeHandler := handler.NewNoticeHandler(noticeService)

	// --- Setup Gin Router ---
	engine := gin.Default()

	// Simple CORS middleware (allow all for development)
	engine.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
	engine.Use(middleware.RequestIDMiddleware())

	// --- Initialize Middlewares ---
	jwtAuthMW := middleware.JWTAuthMiddleware(jwtUtil)
	userRoleMW := middleware.UserMiddleware()
	adminRoleMW := middleware.AdminMiddleware()

	// --- Register Routes ---
	apiGroup := engine.Group("/api/v1")
	authHandler.RegisterAuthRoutes(apiGroup)
	screenHandler.RegisterScreenRoutes(apiGroup)
	complaintHandler.RegisterComplaintRoutes(apiGroup, jwtAuthMW, userRoleMW, adminRoleMW)
	schemeHandler.RegisterSchemeRoutes(apiGroup, jwtAuthMW, userRoleMW)
	noticeHandler.RegisterNoticeRoutes(apiGroup, jwtAuthMW, adminRoleMW)

	// Health check endpoint
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "screen": router.CurrentScreen()})
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:    ":" + serverPort,
		Handler: engine,
	}

	go func() {
		log.Printf("Server starting on port %s", serverPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
