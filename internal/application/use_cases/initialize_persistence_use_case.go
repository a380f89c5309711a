package use_cases

import (
	"context"
	"time"

	"addrpool/internal/application/dto"
	portsin "addrpool/internal/application/ports/in"
	portsout "addrpool/internal/application/ports/out"
	apperrors "addrpool/internal/shared_kernel/errors"

	"github.com/sirupsen/logrus"
)

const (
	codePersistenceGatewayMissing = "persistence_gateway_missing"
	codeReadinessTimeoutInvalid   = "readiness_timeout_invalid"
	codeReadinessRetryInvalid     = "readiness_retry_interval_invalid"
	codePoolStoreNotReady         = "pool_store_not_ready"
)

// initializePersistenceUseCase waits for the pool-state database to accept
// connections, then applies the pool_states schema. It runs once at startup,
// before the first pool access.
type initializePersistenceUseCase struct {
	gateway portsout.PersistenceBootstrapGateway
	log     logrus.FieldLogger
}

func NewInitializePersistenceUseCase(gateway portsout.PersistenceBootstrapGateway, logger logrus.FieldLogger) portsin.InitializePersistenceUseCase {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &initializePersistenceUseCase{
		gateway: gateway,
		log:     logger.WithField("component", "pool_store_bootstrap"),
	}
}

func (u *initializePersistenceUseCase) Execute(ctx context.Context, command dto.InitializePersistenceCommand) *apperrors.AppError {
	if u.gateway == nil {
		return apperrors.NewInternal(
			codePersistenceGatewayMissing,
			"pool store bootstrap gateway is required",
			nil,
		)
	}
	if command.ReadinessTimeout <= 0 {
		return apperrors.NewValidation(
			codeReadinessTimeoutInvalid,
			"readiness timeout must be greater than zero",
			nil,
		)
	}
	if command.ReadinessRetryInterval <= 0 {
		return apperrors.NewValidation(
			codeReadinessRetryInvalid,
			"readiness retry interval must be greater than zero",
			nil,
		)
	}

	readinessCtx, cancel := context.WithTimeout(ctx, command.ReadinessTimeout)
	defer cancel()

	attempts := 0
	lastCode := ""
	for {
		attempts++
		appErr := u.gateway.CheckReadiness(readinessCtx)
		if appErr == nil {
			break
		}
		lastCode = appErr.Code
		u.log.WithFields(logrus.Fields{
			"attempt":    attempts,
			"error_code": appErr.Code,
		}).Debug("pool store not ready yet")

		if readinessCtx.Err() != nil {
			return notReady(attempts, command.ReadinessTimeout, lastCode)
		}

		timer := time.NewTimer(command.ReadinessRetryInterval)
		select {
		case <-readinessCtx.Done():
			timer.Stop()
			return notReady(attempts, command.ReadinessTimeout, lastCode)
		case <-timer.C:
		}
	}

	if appErr := u.gateway.RunMigrations(ctx); appErr != nil {
		return appErr
	}

	u.log.WithField("attempts", attempts).Info("pool store ready, schema applied")
	return nil
}

func notReady(attempts int, timeout time.Duration, lastCode string) *apperrors.AppError {
	return apperrors.NewInternal(
		codePoolStoreNotReady,
		"pool store did not become ready in time",
		map[string]any{
			"attempts":  attempts,
			"timeout":   timeout.String(),
			"last_code": lastCode,
		},
	)
}
