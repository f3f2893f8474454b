package main

import (
	"context"
	"encoding/json"
	stdlog "log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/username/artledger/backend/src/app"
	"github.com/username/artledger/backend/src/cloudsync"
	"github.com/username/artledger/backend/src/config"
	"github.com/username/artledger/backend/src/database"
	"github.com/username/artledger/backend/src/handlers"
	"github.com/username/artledger/backend/src/logger"
	"github.com/username/artledger/backend/src/services"
	"github.com/username/artledger/backend/src/storage"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded", "path", r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000":      true,
			config.Cfg.FrontendBaseURL: true,
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
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	logger.L.Info("artledger backend server starting...")

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	database.RunMigrations(config.Cfg.DatabasePath)

	kv := storage.NewSQLiteKV(database.DB)

	// The remote adapter is only wired when the deployment is configured
	// for cloud sync; everything below works identically without it.
	var adapter cloudsync.Adapter
	if config.Cfg.SyncBaseURL != "" {
		adapter = cloudsync.NewRemoteAdapter(config.Cfg.SyncBaseURL, config.Cfg.SyncAuthToken, config.Cfg.SyncTimeout)
		logger.L.Info("Cloud sync adapter configured", "baseURL", config.Cfg.SyncBaseURL)
	} else {
		logger.L.Info("No SYNC_BASE_URL configured, running local-only")
	}

	// Migration, default project and the current pointer are sequenced
	// inside Initialize; handlers only ever see a ready App.
	application, err := app.Initialize(context.Background(), kv, adapter)
	if err != nil {
		stdlog.Fatalf("failed to initialize storage subsystem: %v", err)
	}

	summaryCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)
	summaryService := services.NewSummaryService(func(projectID string) services.TransactionLoader {
		return application.RecordStore(projectID)
	}, summaryCache)

	txHandler := handlers.NewTransactionHandler(application, summaryService)
	projectHandler := handlers.NewProjectHandler(application.Projects, summaryService)
	syncHandler := handlers.NewSyncHandler(application, summaryService)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(handlers.ContextualLoggerMiddleware)
	r.Use(enableCORS)
	r.Use(rateLimitMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "artledger backend is running"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/projects", projectHandler.HandleList)
		r.Post("/projects", projectHandler.HandleCreate)
		r.Get("/projects/current", projectHandler.HandleGetCurrent)
		r.Put("/projects/current", projectHandler.HandleSetCurrent)
		r.Put("/projects/{id}", projectHandler.HandleUpdate)
		r.Delete("/projects/{id}", projectHandler.HandleDelete)

		r.Get("/projects/{projectID}/transactions", txHandler.HandleList)
		r.Put("/projects/{projectID}/transactions", txHandler.HandleSaveAll)
		r.Post("/projects/{projectID}/transactions", txHandler.HandleAdd)
		r.Delete("/projects/{projectID}/transactions/{id}", txHandler.HandleDelete)
		r.Get("/projects/{projectID}/summary", txHandler.HandleSummary)

		r.Get("/sync/mode", syncHandler.HandleGetMode)
		r.Put("/sync/mode", syncHandler.HandleSetMode)
		r.Get("/sync/status", syncHandler.HandleStatus)
		r.Post("/sync/{projectID}/push", syncHandler.HandlePush)
		r.Post("/sync/{projectID}/pull", syncHandler.HandlePull)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
		}
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stdlog.Fatalf("Failed to start server: %v", err)
	}
}
