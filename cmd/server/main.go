package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"wellbalance/internal/chat"
	"wellbalance/internal/config"
	"wellbalance/internal/db"
	"wellbalance/internal/routes"
)

// @title WellBalance API
// @version 1.0
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:   "wellbalance",
		Usage:  "meal logging and wellness assistant API",
		Flags:  config.Flags(),
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(c *cli.Context) error {
	cfg, err := config.FromContext(c)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbConn, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open db", zap.String("driver", cfg.DBDriver), zap.Error(err))
		return err
	}
	defer dbConn.Close()

	opts := routes.Options{
		DB:          dbConn,
		Logger:      logger,
		Clock:       time.Now,
		JWTSecret:   []byte(cfg.JWTSecret),
		CORSOrigins: cfg.CORSOrigins,
		Weather:     chat.NewWeatherClient(cfg.WeatherAPIKey, cfg.WeatherBaseURL, nil),
	}
	if cfg.ChatEnabled() {
		model, err := googleai.New(ctx, googleai.WithAPIKey(cfg.GoogleAPIKey), googleai.WithDefaultModel(cfg.ChatModel))
		if err != nil {
			logger.Error("failed to init chat model", zap.Error(err))
			return err
		}
		opts.Model = model
	} else {
		logger.Warn("GOOGLE_API_KEY not set; chat is disabled")
	}
	if cfg.WeatherAPIKey == "" {
		logger.Warn("OPENWEATHER_API_KEY not set; weather lookups will report an error")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.New(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutdown initiated")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}
