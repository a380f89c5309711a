package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"addrpool/internal/application/dto"
	"addrpool/internal/infrastructure/config"
	"addrpool/internal/infrastructure/di"
	"addrpool/internal/infrastructure/logging"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, cfgErr := config.LoadConfig()
	if cfgErr != nil {
		logrus.WithFields(logrus.Fields{
			"code":     cfgErr.Code,
			"metadata": cfgErr.Metadata,
		}).Error("startup config error: " + cfgErr.Message)
		os.Exit(1)
	}
	logger := logging.ForService(logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout), "server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, buildErr := di.Build(ctx, cfg, logger, di.Options{})
	if buildErr != nil {
		logger.WithError(buildErr).Error("dependency wiring error")
		os.Exit(1)
	}
	defer func() {
		if err := container.Close(); err != nil {
			logger.WithError(err).Warn("store close warning")
		}
	}()

	if container.InitializePersistenceUseCase != nil {
		logger.WithField("database_target", cfg.DatabaseTarget).Info("persistence initialization starting")
		persistenceErr := container.InitializePersistenceUseCase.Execute(ctx, dto.InitializePersistenceCommand{
			ReadinessTimeout:       cfg.DBReadinessTimeout,
			ReadinessRetryInterval: cfg.DBReadinessRetryInterval,
		})
		if persistenceErr != nil {
			logger.WithFields(logrus.Fields{
				"code":    persistenceErr.Code,
				"details": persistenceErr.Details,
			}).Error("persistence initialization failed: " + persistenceErr.Message)
			os.Exit(1)
		}
		logger.WithField("database_target", cfg.DatabaseTarget).Info("persistence initialization completed")
	}

	if container.RotatorWorker.Enabled() {
		go container.RotatorWorker.Start(ctx)
	}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- container.Server.Start()
	}()

	select {
	case err := <-serverErrCh:
		if err != nil {
			logger.WithError(err).Error("server startup failed")
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := container.Server.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("graceful shutdown failed")
			os.Exit(1)
		}

		if err := <-serverErrCh; err != nil {
			logger.WithError(err).Error("server stopped with error")
			os.Exit(1)
		}

		logger.Info("server stopped")
	}
}
