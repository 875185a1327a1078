// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	accountrepository "edumarket/internal/account/repository"
	accountservice "edumarket/internal/account/service"
	accounthttp "edumarket/internal/account/transport/http"
	"edumarket/internal/config"
	examrepository "edumarket/internal/exam/repository"
	examservice "edumarket/internal/exam/service"
	examhttp "edumarket/internal/exam/transport/http"
	"edumarket/internal/metrics"
	noterepository "edumarket/internal/note/repository"
	noteservice "edumarket/internal/note/service"
	notehttp "edumarket/internal/note/transport/http"
	premiumrepository "edumarket/internal/premium/repository"
	premiumservice "edumarket/internal/premium/service"
	premiumhttp "edumarket/internal/premium/transport/http"
	questionrepository "edumarket/internal/question/repository"
	questionservice "edumarket/internal/question/service"
	questionhttp "edumarket/internal/question/transport/http"
	readnoterepository "edumarket/internal/readnote/repository"
	readnoteservice "edumarket/internal/readnote/service"
	readnotehttp "edumarket/internal/readnote/transport/http"
	packagerepository "edumarket/internal/testpackage/repository"
	packageservice "edumarket/internal/testpackage/service"
	packagehttp "edumarket/internal/testpackage/transport/http"
	trackingrepository "edumarket/internal/tracking/repository"
	trackingservice "edumarket/internal/tracking/service"
	trackinghttp "edumarket/internal/tracking/transport/http"
	"edumarket/migrations"
	"edumarket/pkg/db"
	"edumarket/pkg/httpjson"
	"edumarket/pkg/logger"
	"edumarket/pkg/middleware"
)

// routable is implemented by every feature handler.
type routable interface {
	Routes(r chi.Router, write func(http.Handler) http.Handler)
}

var server *http.Server

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config load failed: %v", err)
	}

	appLogger := logger.New(cfg.Environment)
	defer appLogger.Sync()
	appLogger.Info("edumarket API starting", zap.String("env", cfg.Environment))

	database, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		appLogger.Fatal("database connection failed", zap.Error(err))
	}
	defer database.Close()
	appLogger.Info("connected to PostgreSQL")

	if cfg.RunMigrations {
		if err := db.Migrate(context.Background(), database, migrations.FS, appLogger); err != nil {
			appLogger.Fatal("migrations failed", zap.Error(err))
		}
	}

	metrics.InitMetrics()

	// --- layers ---
	handlers := []routable{
		accounthttp.NewHandler(accountservice.NewService(accountrepository.NewPostgresRepository(database), appLogger), appLogger),
		notehttp.NewHandler(noteservice.NewService(noterepository.NewPostgresRepository(database), appLogger), appLogger),
		packagehttp.NewHandler(packageservice.NewService(packagerepository.NewPostgresRepository(database), appLogger), appLogger),
		questionhttp.NewHandler(questionservice.NewService(questionrepository.NewPostgresRepository(database), appLogger), appLogger),
		examhttp.NewHandler(examservice.NewService(examrepository.NewPostgresRepository(database), appLogger), appLogger),
		readnotehttp.NewHandler(readnoteservice.NewService(readnoterepository.NewPostgresRepository(database), appLogger), appLogger),
		trackinghttp.NewHandler(trackingservice.NewService(trackingrepository.NewPostgresRepository(database), appLogger), appLogger),
		premiumhttp.NewHandler(premiumservice.NewService(premiumrepository.NewPostgresRepository(database), cfg.CommissionPercent, appLogger), appLogger),
	}

	// --- router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(appLogger))
	r.Use(middleware.Recoverer(appLogger))
	r.Use(middleware.Metrics)
	if cfg.RateLimitPerMin > 0 {
		r.Use(middleware.NewRateLimiter(cfg.RateLimitPerMin, time.Minute, appLogger).Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.JWTSecret == "" {
		appLogger.Warn("JWT_SECRET is empty, write endpoints are not authenticated")
	}
	write := middleware.JWTAuth(cfg.JWTSecret)

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.ValidateRequest)
		for _, h := range handlers {
			h.Routes(api, write)
		}
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := database.PingContext(r.Context()); err != nil {
			httpjson.Error(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		httpjson.Write(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	metricsHandler := promhttp.Handler()
	if cfg.MetricsAuthEnabled() {
		metricsHandler = middleware.BasicAuth("metrics", cfg.MetricsUser, cfg.MetricsPassword)(metricsHandler)
	}
	r.Handle("/metrics", metricsHandler)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpjson.Error(w, http.StatusNotFound, httpjson.MsgNotFound)
	})

	server = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// graceful shutdown on OS signals
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		appLogger.Info("shutdown signal received, starting graceful shutdown")
		shutdownServer(appLogger)
	}()

	appLogger.Info("server running", zap.String("addr", cfg.HTTPAddr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		appLogger.Fatal("server failed", zap.Error(err))
	}
}

func shutdownServer(log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}

	log.Info("server stopped")
}
