package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/linkpulse/backend/src/apiclient"
	"github.com/username/linkpulse/backend/src/config"
	"github.com/username/linkpulse/backend/src/database"
	"github.com/username/linkpulse/backend/src/handlers"
	"github.com/username/linkpulse/backend/src/logger"
	"github.com/username/linkpulse/backend/src/reconcile"
	"github.com/username/linkpulse/backend/src/security"
	"github.com/username/linkpulse/backend/src/services"
	"github.com/username/linkpulse/backend/src/tagging"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000": true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("LinkPulse backend server starting...")

	if config.Cfg.JWTSecret == "" || len(config.Cfg.JWTSecret) < 32 {
		logger.L.Error("JWT_SECRET configuration invalid. Must be at least 32 bytes.")
		os.Exit(1)
	}
	if config.Cfg.AffiliateAPIBaseURL == "" {
		logger.L.Error("AFFILIATE_API_BASE_URL must be configured.")
		os.Exit(1)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing tag cache...")
	tagCache := cache.New(15*time.Minute, 30*time.Minute)
	logger.L.Info("Tag cache initialized.")

	logger.L.Info("Initializing services and handlers...")
	authService := security.NewAuthService(config.Cfg.JWTSecret)
	notifierService := services.NewNotifierService()

	taggingService := tagging.NewService(database.DB, tagCache)
	upserter := reconcile.NewUpserter(database.DB)
	affiliateClient := apiclient.NewClient(
		config.Cfg.AffiliateAPIBaseURL,
		config.Cfg.AffiliateAPITimeout,
		config.Cfg.AffiliateAPIRatePerSec,
	)
	syncService := services.NewSyncService(database.DB, affiliateClient, upserter, notifierService)

	authHandler := handlers.NewAuthHandler(authService)
	clickHandler := handlers.NewClickHandler(taggingService)
	tagHandler := handlers.NewTagHandler(taggingService)
	syncHandler := handlers.NewSyncHandler(syncService)
	txHandler := handlers.NewTransactionHandler()
	publisherHandler := handlers.NewPublisherHandler()

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	// Public routes: login and click tracking.
	apiRouter.HandleFunc("POST /api/auth/login", authHandler.LoginHandler)
	apiRouter.HandleFunc("GET /api/click", clickHandler.HandleClick)

	// Admin routes.
	apiRouter.Handle("POST /api/publishers", authHandler.AuthMiddleware(publisherHandler.HandleRegisterPublisher))
	apiRouter.Handle("POST /api/sync", authHandler.AuthMiddleware(syncHandler.HandleTriggerSync))
	apiRouter.Handle("GET /api/tags/resolve", authHandler.AuthMiddleware(tagHandler.HandleResolveTag))
	apiRouter.Handle("POST /api/tags/context", authHandler.AuthMiddleware(tagHandler.HandleAddContextData))
	apiRouter.Handle("POST /api/tags/purge", authHandler.AuthMiddleware(tagHandler.HandlePurgeExpiredTags))
	apiRouter.Handle("GET /api/transactions", authHandler.AuthMiddleware(txHandler.HandleGetTransactions))
	apiRouter.Handle("GET /api/settlements", authHandler.AuthMiddleware(txHandler.HandleGetSettlements))

	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "LinkPulse Backend is running"})
		} else {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
				http.NotFound(w, r)
			}
		}
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := enableCORS(rateLimitMiddleware(rootMux))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // sync runs can be slow against a large date range
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
