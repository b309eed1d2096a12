package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/growgram/growgram-api/internal/config"
	"github.com/growgram/growgram-api/internal/handler"
	"github.com/growgram/growgram-api/internal/middleware"
	pgRepo "github.com/growgram/growgram-api/internal/repository/postgres"
	redisRepo "github.com/growgram/growgram-api/internal/repository/redis"
	"github.com/growgram/growgram-api/internal/service"
	"github.com/growgram/growgram-api/pkg/auth"
	"github.com/growgram/growgram-api/pkg/database"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Loading configuration from %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Repositories
	userRepo := pgRepo.NewUserRepo(db)
	sessionRepo := pgRepo.NewVerificationSessionRepo(db)
	auditRepo := pgRepo.NewAuditRepo(db)
	postRepo := pgRepo.NewPostRepo(db)

	tierCacheRepo, err := redisRepo.NewTierCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize TierCacheRepo: %v", err)
		os.Exit(1)
	}

	// Root context governs background goroutines.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// External verification provider: real HTTP integration when an endpoint
	// is configured, stub redirects otherwise (local development).
	var provider service.VerificationProvider
	if cfg.Verification.Endpoint != "" {
		httpProvider, err := service.NewHTTPVerificationProvider(
			cfg.Verification.Provider,
			cfg.Verification.Endpoint,
			cfg.Verification.APIKey,
			time.Duration(cfg.Verification.StartTimeoutSec)*time.Second,
		)
		if err != nil {
			log.Printf("Failed to initialize verification provider: %v", err)
			os.Exit(1)
		}
		provider = httpProvider
	} else {
		log.Println("No verification endpoint configured, using stub provider")
		provider = service.NewStubVerificationProvider(cfg.Verification.Provider, cfg.Verification.FrontendURL)
	}

	var emailService service.EmailService = &service.NoopEmailService{}
	if cfg.Email.Enabled {
		resendService, err := service.NewResendEmailService(cfg.Email.ResendAPIKey, cfg.Email.From)
		if err != nil {
			log.Printf("Failed to initialize email service: %v", err)
			os.Exit(1)
		}
		emailService = resendService
	}

	// Services
	tierService, err := service.NewTierService(userRepo, tierCacheRepo, time.Duration(cfg.Compliance.TierCacheTTLSec)*time.Second)
	if err != nil {
		log.Printf("Failed to initialize TierService: %v", err)
		os.Exit(1)
	}
	complianceService, err := service.NewComplianceService(userRepo, auditRepo, tierCacheRepo, cfg.Compliance.TermsVersion)
	if err != nil {
		log.Printf("Failed to initialize ComplianceService: %v", err)
		os.Exit(1)
	}
	verificationService, err := service.NewAgeVerificationService(
		userRepo,
		sessionRepo,
		auditRepo,
		tierCacheRepo,
		provider,
		emailService,
		cfg.Verification.FrontendURL,
		time.Duration(cfg.Verification.StartTimeoutSec)*time.Second,
		time.Duration(cfg.Verification.SessionTTLHours)*time.Hour,
	)
	if err != nil {
		log.Printf("Failed to initialize AgeVerificationService: %v", err)
		os.Exit(1)
	}
	accountService, err := service.NewAccountService(userRepo, jwtService)
	if err != nil {
		log.Printf("Failed to initialize AccountService: %v", err)
		os.Exit(1)
	}
	feedService, err := service.NewFeedService(postRepo)
	if err != nil {
		log.Printf("Failed to initialize FeedService: %v", err)
		os.Exit(1)
	}
	exportService, err := service.NewAuditExportService(auditRepo, sessionRepo)
	if err != nil {
		log.Printf("Failed to initialize AuditExportService: %v", err)
		os.Exit(1)
	}

	// Handlers
	authHandler := handler.NewAuthHandler(accountService)
	complianceHandler := handler.NewComplianceHandler(complianceService)
	verificationHandler := handler.NewAgeVerificationHandler(verificationService, tierService, exportService)
	feedHandler := handler.NewFeedHandler(feedService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	ageGate := middleware.NewAgeGateMiddleware(tierService)

	// Stale verification sessions are expired hourly; a session that never got
	// its webhook must not stay STARTED forever.
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		log.Println("Starting hourly verification session expiry sweep")
		for {
			select {
			case <-ticker.C:
				n, err := verificationService.ExpireStaleSessions(ctx)
				if err != nil {
					log.Printf("Session expiry sweep failed: %v", err)
				} else if n > 0 {
					log.Printf("Expired %d stale verification sessions", n)
				}
			case <-ctx.Done():
				log.Println("Stopping session expiry sweep")
				return
			}
		}
	}()

	router := gin.Default()

	isProduction := gin.Mode() == gin.ReleaseMode
	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://growgram-app.com", "http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Operator-Token"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)

			// Provider webhook: no user token, the provider signs requests at
			// the gateway. Payloads are validated and idempotent downstream.
			authGroup.POST("/age/provider-webhook", verificationHandler.ProviderWebhook)

			authedAuth := authGroup.Group("/")
			authedAuth.Use(authMiddleware.RequireAuth())
			{
				authedAuth.POST("/compliance-ack", complianceHandler.AcceptCompliance)
				authedAuth.POST("/age/start", verificationHandler.StartSession)
				authedAuth.GET("/age/status", verificationHandler.Status)
			}

			operatorGroup := authGroup.Group("/age")
			operatorGroup.Use(middleware.OperatorOnly(cfg.Verification.OperatorToken))
			{
				operatorGroup.POST("/mark-verified", verificationHandler.MarkVerified)
				operatorGroup.GET("/audit-export", verificationHandler.AuditExport)
			}
		}

		// Feed is open to guests; the soft gate attaches the viewer tier and
		// the service filters what each tier may see.
		api.GET("/feed", authMiddleware.OptionalAuth(), ageGate.AttachTier(), feedHandler.ListFeed)

		posts := api.Group("/posts")
		posts.Use(authMiddleware.RequireAuth())
		{
			posts.POST("", ageGate.AttachTier(), feedHandler.CreatePost)

			// Publishing into the 18+ area sits behind the hard gate: fresh
			// tier resolution, EIGHTEEN_VERIFIED only.
			posts.POST("/adult", ageGate.RequireAdultTier(), feedHandler.CreateAdultPost)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	log.Println("Server exited properly")
}
