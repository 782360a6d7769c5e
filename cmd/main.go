package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"diapredict/config"
	qhttp "diapredict/http"
	"diapredict/inference"
	"diapredict/logging"
	"diapredict/ml"
	"diapredict/monitoring"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Load the estimator once; a missing artifact leaves the service up without a model
	holder := ml.NewHolder()
	modelPath, err := cfg.ModelPath()
	if err != nil {
		logger.Fatal("Failed to resolve model path", zap.Error(err))
	}
	loadModel(ctx, cfg, modelPath, holder, logger)

	metrics := monitoring.NewMetrics(holder.Loaded)
	service := inference.NewService(holder, metrics, logger)

	// 3. Start HTTP server
	serverCfg := qhttp.ServerConfig{
		Addr:           cfg.Addr(),
		ReadTimeout:    cfg.Http.ReadTimeout,
		WriteTimeout:   cfg.Http.WriteTimeout,
		AllowedOrigins: cfg.Http.AllowedOrigins,
		MaxBodyBytes:   cfg.Http.MaxBodyBytes,
	}
	if cfg.Metrics.Enabled {
		serverCfg.MetricsPath = cfg.Metrics.Path
	}
	server := qhttp.NewServer(serverCfg, service, metrics, logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 4. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down...")
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Exiting")
}

func loadModel(ctx context.Context, cfg *config.Config, path string, holder *ml.Holder, logger *zap.Logger) {
	est, err := ml.LoadModel(path)
	switch {
	case err == nil:
		m := ml.NewLoadedModel(est, path)
		holder.Set(m)
		logger.Info("Model loaded",
			zap.String("path", path),
			zap.String("type", m.Type),
			zap.String("importance_source", string(m.ImportanceSource)),
		)
	case errors.Is(err, fs.ErrNotExist):
		logger.Warn("Model artifact not found, predictions unavailable", zap.String("path", path))
		if cfg.Model.Watch {
			go func() {
				if err := ml.WatchArtifact(ctx, path, holder, logger); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("Artifact watcher stopped", zap.Error(err))
				}
			}()
		}
	default:
		logger.Fatal("Failed to load model", zap.String("path", path), zap.Error(err))
	}
}
