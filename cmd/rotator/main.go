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

// The rotator runs the pool rotation loop without the HTTP surface, for
// deployments that serve addresses from several replicas sharing one store.
func main() {
	cfg, cfgErr := config.LoadConfig()
	if cfgErr != nil {
		logrus.WithFields(logrus.Fields{
			"code":     cfgErr.Code,
			"metadata": cfgErr.Metadata,
		}).Error("startup config error: " + cfgErr.Message)
		os.Exit(1)
	}
	logger := logging.ForService(logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout), "rotator")
	if !cfg.RotatorEnabled {
		logger.WithField("code", "CONFIG_ROTATOR_DISABLED").Error("ADDRPOOL_ROTATOR_ENABLED must be true for the rotator runtime")
		os.Exit(1)
	}

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
		persistenceErr := container.InitializePersistenceUseCase.Execute(ctx, dto.InitializePersistenceCommand{
			ReadinessTimeout:       cfg.DBReadinessTimeout,
			ReadinessRetryInterval: cfg.DBReadinessRetryInterval,
		})
		if persistenceErr != nil {
			logger.WithFields(logrus.Fields{
				"code":    persistenceErr.Code,
				"details": persistenceErr.Details,
			}).Error("rotator persistence initialization failed: " + persistenceErr.Message)
			os.Exit(1)
		}
	}

	container.RotatorWorker.Start(ctx)
	logger.Info("rotator stopped")
}
