package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/app"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to an env-format config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	appLogger, err := logger.New(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		OutputFile: cfg.Logger.OutputFile,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Application starting...",
		zap.String("service_name", cfg.Service.Name),
		zap.String("http_port", cfg.Service.HTTPPort),
		zap.String("metrics_port", cfg.Service.MetricsPort),
	)

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	application, err := app.New(startCtx, cfg, appLogger)
	cancel()
	if err != nil {
		appLogger.Fatal("Failed to initialize application", zap.Error(err))
	}

	if err := application.Run(); err != nil {
		appLogger.Error("Application stopped with error", zap.Error(err))
		os.Exit(1)
	}
}
