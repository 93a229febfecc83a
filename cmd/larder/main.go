package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dukerupert/larder/internal/backup"
	"github.com/dukerupert/larder/internal/database"
	"github.com/dukerupert/larder/internal/llm"
	"github.com/dukerupert/larder/internal/logging"
	"github.com/dukerupert/larder/internal/server"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	envErr := godotenv.Load()

	logger := logging.Setup(os.Getenv("LARDER_LOG_LEVEL"), os.Getenv("LARDER_LOG_FORMAT"))
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		logger.Warn("failed to load .env", "error", envErr)
	}

	port := getEnv("LARDER_PORT", "8080")
	dbPath := getEnv("LARDER_DB_PATH", "larder.db")

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("failed to open database", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	gen, err := llm.New(context.Background(), llm.Config{
		Provider:     getEnv("LLM_PROVIDER", llm.ProviderOpenAI),
		APIURL:       os.Getenv("LLM_API_URL"),
		APIKey:       os.Getenv("OPENAI_API_KEY"),
		Model:        os.Getenv("LLM_MODEL"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  os.Getenv("GEMINI_MODEL"),
	})
	if err != nil {
		logger.Error("failed to configure LLM provider", "error", err)
		os.Exit(1)
	}
	if c, ok := gen.(io.Closer); ok {
		defer c.Close()
	}

	cfg := server.Config{
		TokenHash:     os.Getenv("LARDER_API_TOKEN_HASH"),
		MealRateLimit: getEnvInt("LARDER_MEAL_RATE_LIMIT", 20),
		Backup: backup.Config{
			S3: backup.S3Config{
				Endpoint:  os.Getenv("LARDER_BACKUP_S3_ENDPOINT"),
				Bucket:    os.Getenv("LARDER_BACKUP_S3_BUCKET"),
				Region:    os.Getenv("LARDER_BACKUP_S3_REGION"),
				AccessKey: os.Getenv("LARDER_BACKUP_S3_ACCESS_KEY"),
				SecretKey: os.Getenv("LARDER_BACKUP_S3_SECRET_KEY"),
			},
			Passphrase: os.Getenv("LARDER_BACKUP_PASSPHRASE"),
			Interval:   getEnvDuration("LARDER_BACKUP_INTERVAL", 24*time.Hour),
			Keep:       getEnvInt("LARDER_BACKUP_KEEP", 14),
		},
	}
	if origins := os.Getenv("LARDER_WS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			cfg.OriginPatterns = append(cfg.OriginPatterns, strings.TrimSpace(o))
		}
	}
	if cfg.TokenHash == "" {
		logger.Warn("LARDER_API_TOKEN_HASH not set, API is unauthenticated")
	}

	srv := server.New(db, gen, cfg, logger)

	backups := srv.BackupManager()
	if !cfg.Backup.Enabled() {
		logger.Info("backups disabled, set LARDER_BACKUP_S3_* and LARDER_BACKUP_PASSPHRASE to enable")
	}
	backups.Start(context.Background())

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("larder running", "addr", "http://localhost:"+port, "db", dbPath)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	backups.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}
