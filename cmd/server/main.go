package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/socialvibe/socialvibe/internal/config"
	"github.com/socialvibe/socialvibe/internal/database"
	"github.com/socialvibe/socialvibe/internal/handlers"
	"github.com/socialvibe/socialvibe/internal/logging"
	"github.com/socialvibe/socialvibe/internal/middleware"
	"github.com/socialvibe/socialvibe/internal/services"
	"github.com/socialvibe/socialvibe/internal/services/ai"
)

func main() {
	if err := run(); err != nil {
		logging.Error("Application error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func run() error {
	// Initialize logger
	logger := logging.New()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger.Info("Starting SocialVibe server...")

	// Connect to PostgreSQL
	logger.Info("Connecting to PostgreSQL", map[string]interface{}{
		"host": cfg.Database.Host,
		"port": cfg.Database.Port,
	})
	db, err := database.NewPostgresDB(cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL")

	// Run migrations
	logger.Info("Running database migrations...")
	migrator, err := database.NewMigrator(cfg.Database.DSN(), cfg.Database.MigrationsPath)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		return fmt.Errorf("running migrations: %w", err)
	}
	_ = migrator.Close()
	logger.Info("Migrations completed")

	// Connect to Redis
	logger.Info("Connecting to Redis", map[string]interface{}{
		"addr": cfg.Redis.Addr(),
	})
	redisDB, err := database.NewRedisDB(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() { _ = redisDB.Close() }()
	logger.Info("Connected to Redis")

	// Initialize services
	dbAdapter := services.NewPoolAdapter(db.Pool)

	authService := services.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	userService := services.NewUserService(dbAdapter)
	codeService := services.NewFriendCodeService(dbAdapter)
	friendService := services.NewFriendService(dbAdapter)
	walletService := services.NewWalletService(dbAdapter)
	feedService := services.NewFeedService(dbAdapter)
	notifyService := services.NewNotifyService(&cfg.Email, dbAdapter)
	aiService := ai.NewService(&cfg.AI)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, redisDB)
	authHandler := handlers.NewAuthHandler(userService, authService)
	userHandler := handlers.NewUserHandler(userService, authService)
	friendHandler := handlers.NewFriendHandler(friendService, codeService, notifyService)
	feedHandler := handlers.NewFeedHandler(feedService, userService)
	vibeHandler := handlers.NewVibeHandler(walletService, userService, notifyService)
	aiHandler := handlers.NewAIHandler(aiService)
	uploadHandler := handlers.NewUploadHandler(&cfg.Upload)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(authService, userService)
	securityHeaders := middleware.NewSecurityHeaders(cfg.Server.Environment == "production")
	cors := middleware.NewCORS(cfg.Server.AllowedOrigins)
	cacheControl := middleware.NewCacheControl()
	compress := middleware.NewCompress()
	requestLogger := middleware.NewRequestLogger(logger)

	authRateLimiter := middleware.NewAuthRateLimiter(redisDB.Client)
	apiRateLimiter := middleware.NewAPIRateLimiter(redisDB.Client)
	aiRateLimiter := middleware.NewAIRateLimiter(redisDB.Client)

	requireAuth := authMiddleware.RequireAuth
	limitAuth := authRateLimiter.Limit
	limitAI := func(h http.Handler) http.Handler {
		return aiRateLimiter.Limit(requireAuth(h))
	}

	// Set up router
	mux := http.NewServeMux()

	// Health endpoints (no auth, no rate limit)
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.HandleFunc("GET /live", healthHandler.Live)

	// Auth endpoints
	mux.Handle("POST /api/auth/register", limitAuth(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /api/auth/login", limitAuth(http.HandlerFunc(authHandler.Login)))
	mux.Handle("GET /api/auth/me", requireAuth(http.HandlerFunc(authHandler.Me)))

	// User endpoints
	mux.Handle("GET /api/users/search", http.HandlerFunc(userHandler.Search))
	mux.Handle("GET /api/users/{username}", http.HandlerFunc(userHandler.GetProfile))
	mux.Handle("PUT /api/users/profile", requireAuth(http.HandlerFunc(userHandler.UpdateProfile)))
	mux.Handle("PUT /api/users/password", requireAuth(http.HandlerFunc(userHandler.ChangePassword)))
	mux.Handle("POST /api/users/deactivate", requireAuth(http.HandlerFunc(userHandler.Deactivate)))
	mux.Handle("POST /api/users/{id}/follow", requireAuth(http.HandlerFunc(userHandler.Follow)))
	mux.Handle("DELETE /api/users/{id}/follow", requireAuth(http.HandlerFunc(userHandler.Unfollow)))
	mux.Handle("GET /api/users/{id}/followers", http.HandlerFunc(userHandler.ListFollowers))
	mux.Handle("GET /api/users/{id}/following", http.HandlerFunc(userHandler.ListFollowing))

	// Friend endpoints
	mux.Handle("GET /api/friends", requireAuth(http.HandlerFunc(friendHandler.ListFriends)))
	mux.Handle("GET /api/friends/code", requireAuth(http.HandlerFunc(friendHandler.GetCode)))
	mux.Handle("POST /api/friends/code/generate", requireAuth(http.HandlerFunc(friendHandler.RegenerateCode)))
	mux.Handle("POST /api/friends/request", requireAuth(http.HandlerFunc(friendHandler.SubmitRequest)))
	mux.Handle("GET /api/friends/requests", requireAuth(http.HandlerFunc(friendHandler.ListRequests)))
	mux.Handle("GET /api/friends/requests/count", requireAuth(http.HandlerFunc(friendHandler.CountRequests)))
	mux.Handle("POST /api/friends/requests/{id}/accept", requireAuth(http.HandlerFunc(friendHandler.AcceptRequest)))
	mux.Handle("POST /api/friends/requests/{id}/reject", requireAuth(http.HandlerFunc(friendHandler.RejectRequest)))
	mux.Handle("DELETE /api/friends/{friendId}", requireAuth(http.HandlerFunc(friendHandler.RemoveFriend)))

	// Feed endpoints
	mux.Handle("POST /api/feeds", requireAuth(http.HandlerFunc(feedHandler.Create)))
	mux.Handle("GET /api/feeds", http.HandlerFunc(feedHandler.List))
	mux.Handle("GET /api/feeds/{id}", http.HandlerFunc(feedHandler.Get))
	mux.Handle("PUT /api/feeds/{id}", requireAuth(http.HandlerFunc(feedHandler.Update)))
	mux.Handle("DELETE /api/feeds/{id}", requireAuth(http.HandlerFunc(feedHandler.Delete)))
	mux.Handle("POST /api/feeds/{id}/like", requireAuth(http.HandlerFunc(feedHandler.ToggleLike)))
	mux.Handle("POST /api/feeds/{id}/comments", requireAuth(http.HandlerFunc(feedHandler.AddComment)))
	mux.Handle("GET /api/feeds/{id}/comments", http.HandlerFunc(feedHandler.ListComments))
	mux.Handle("GET /api/users/{id}/feeds", http.HandlerFunc(feedHandler.ListByUser))

	// Vibe coin endpoints
	mux.Handle("GET /api/vibe/balance", requireAuth(http.HandlerFunc(vibeHandler.Balance)))
	mux.Handle("GET /api/vibe/packages", http.HandlerFunc(vibeHandler.Packages))
	mux.Handle("POST /api/vibe/purchase", requireAuth(http.HandlerFunc(vibeHandler.Purchase)))
	mux.Handle("POST /api/vibe/earn", requireAuth(http.HandlerFunc(vibeHandler.Earn)))
	mux.Handle("POST /api/vibe/tip", requireAuth(http.HandlerFunc(vibeHandler.Tip)))
	mux.Handle("GET /api/vibe/transactions", requireAuth(http.HandlerFunc(vibeHandler.Transactions)))
	mux.Handle("GET /api/vibe/leaderboard", http.HandlerFunc(vibeHandler.Leaderboard))

	// AI endpoints
	mux.Handle("POST /api/ai/content-suggestions", limitAI(http.HandlerFunc(aiHandler.ContentSuggestions)))
	mux.Handle("GET /api/ai/topic-suggestions", limitAI(http.HandlerFunc(aiHandler.TopicSuggestions)))
	mux.Handle("POST /api/ai/tag-suggestions", limitAI(http.HandlerFunc(aiHandler.TagSuggestions)))
	mux.Handle("POST /api/ai/hashtag-suggestions", limitAI(http.HandlerFunc(aiHandler.HashtagSuggestions)))
	mux.Handle("POST /api/ai/optimize", limitAI(http.HandlerFunc(aiHandler.OptimizationSuggestions)))
	mux.Handle("POST /api/ai/sentiment", limitAI(http.HandlerFunc(aiHandler.SentimentAnalysis)))
	mux.Handle("GET /api/ai/image-to-text/styles", requireAuth(http.HandlerFunc(aiHandler.DescribeStyles)))
	mux.Handle("POST /api/ai/image-to-text", limitAI(http.HandlerFunc(aiHandler.ImageToText)))
	mux.Handle("GET /api/ai/health", http.HandlerFunc(aiHandler.Health))

	// Upload endpoints
	mux.Handle("POST /api/upload/image", requireAuth(http.HandlerFunc(uploadHandler.Single)))
	mux.Handle("POST /api/upload/images", requireAuth(http.HandlerFunc(uploadHandler.Multiple)))

	// Uploaded files
	fs := http.FileServer(http.Dir(cfg.Upload.Dir))
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", fs))

	// Build middleware chain (order matters: outermost first)
	var handler http.Handler = mux
	handler = apiRateLimiter.Limit(handler)
	handler = authMiddleware.Authenticate(handler)
	handler = cacheControl.Apply(handler)
	handler = compress.Apply(handler)
	handler = securityHeaders.Apply(handler)
	handler = cors.Apply(handler)
	handler = requestLogger.Apply(handler)

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// Image description calls can take a while; keep a higher write
		// timeout so clients get a JSON error instead of a dropped connection.
		WriteTimeout: 95 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Could not gracefully shutdown the server", map[string]interface{}{
				"error": err.Error(),
			})
		}
		close(done)
	}()

	logger.Info("Server listening", map[string]interface{}{
		"addr": addr,
	})
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	logger.Info("Server stopped")
	return nil
}
