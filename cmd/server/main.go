package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/slhealing/storefront/internal/cart"
	"github.com/slhealing/storefront/internal/checkout"
	h "github.com/slhealing/storefront/internal/http"
	"github.com/slhealing/storefront/internal/notify"
)

type Config struct {
	HTTPPort           string
	SendGridAPIKey     string
	SenderName         string
	SenderEmail        string
	AdminEmail         string
	NotifierURL        string
	OrderLogPath       string
	EmailLogPath       string
	CardDelay          time.Duration
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64
}

func loadConfig() *Config {
	port := getEnv("HTTP_PORT", "8080")
	return &Config{
		HTTPPort:       port,
		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		SenderName:     getEnv("SENDER_NAME", "Sarah Lawry Healing"),
		SenderEmail:    getEnv("SENDER_EMAIL", notify.DefaultAdminEmail),
		AdminEmail:     getEnv("ADMIN_EMAIL", notify.DefaultAdminEmail),
		// checkout posts to the notifier over HTTP exactly as the storefront
		// page would; by default that is this same server
		NotifierURL:        getEnv("NOTIFIER_URL", "http://localhost:"+port+"/api/v1/orders"),
		OrderLogPath:       getEnv("ORDER_LOG_PATH", "order_log.txt"),
		EmailLogPath:       getEnv("EMAIL_LOG_PATH", "email_log.txt"),
		CardDelay:          getEnvDuration("CARD_PROCESSING_DELAY", 2*time.Second),
		RequestTimeout:     30 * time.Second,
		ShutdownTimeout:    10 * time.Second,
		MaxRequestBodySize: 1 << 20, // 1MB
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if ms, err := strconv.Atoi(value); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultValue
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// load .env file if it exists
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using environment variables")
	}

	cfg := loadConfig()

	orderLog, err := notify.NewFileLog(cfg.OrderLogPath)
	if err != nil {
		logger.Fatal("failed to open order log", zap.String("path", cfg.OrderLogPath), zap.Error(err))
	}
	defer orderLog.Close()

	emailLog, err := notify.NewFileLog(cfg.EmailLogPath)
	if err != nil {
		logger.Fatal("failed to open email log", zap.String("path", cfg.EmailLogPath), zap.Error(err))
	}
	defer emailLog.Close()

	mailer := notify.NewSendGridMailer(cfg.SendGridAPIKey, cfg.SenderName, cfg.SenderEmail)
	notifier := notify.New(mailer, orderLog, emailLog, cfg.AdminEmail, logger)

	sessions := cart.NewSessionStore()
	defer sessions.Close()

	checkoutSvc := checkout.NewService(
		sessions,
		checkout.NewNotifierClient(cfg.NotifierURL, cfg.RequestTimeout),
		checkout.SimulatedCardProcessor{Delay: cfg.CardDelay},
		cfg.AdminEmail,
		logger,
	)

	orderHandler := h.NewOrderHandler(notifier, cfg.MaxRequestBodySize, logger)
	cartHandler := h.NewCartHandler(sessions, checkoutSvc, logger)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.CORS)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"ok"}`)
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/orders", orderHandler.Create)
		r.Route("/cart", func(r chi.Router) {
			r.Post("/", cartHandler.CreateSession)
			r.Route("/{session_id}", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Post("/items", cartHandler.AddItem)
				r.Delete("/items/{index}", cartHandler.RemoveItem)
				r.Post("/checkout", cartHandler.Checkout)
			})
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("storefront server starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
