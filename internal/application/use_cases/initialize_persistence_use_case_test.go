//go:build !integration

package use_cases

import (
	"context"
	"testing"
	"time"

	"addrpool/internal/application/dto"
	apperrors "addrpool/internal/shared_kernel/errors"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func TestInitializePersistenceUseCaseExecuteSuccess(t *testing.T) {
	fakeGateway := &fakePersistenceGateway{}
	useCase := NewInitializePersistenceUseCase(fakeGateway, nil)

	appErr := useCase.Execute(context.Background(), dto.InitializePersistenceCommand{
		ReadinessTimeout:       50 * time.Millisecond,
		ReadinessRetryInterval: 5 * time.Millisecond,
	})

	require.Nil(t, appErr)
	require.Equal(t, 1, fakeGateway.readinessChecks)
	require.Equal(t, 1, fakeGateway.migrationRuns)
}

func TestInitializePersistenceUseCaseExecuteRetryThenSuccess(t *testing.T) {
	fakeGateway := &fakePersistenceGateway{
		readinessErrors: []*apperrors.AppError{
			apperrors.NewInternal("DB_CONNECT_FAILED", "failed", nil),
			nil,
		},
	}
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	useCase := NewInitializePersistenceUseCase(fakeGateway, logger)

	appErr := useCase.Execute(context.Background(), dto.InitializePersistenceCommand{
		ReadinessTimeout:       100 * time.Millisecond,
		ReadinessRetryInterval: 5 * time.Millisecond,
	})

	require.Nil(t, appErr)
	require.GreaterOrEqual(t, fakeGateway.readinessChecks, 2)
	require.Equal(t, 1, fakeGateway.migrationRuns)

	entries := hook.AllEntries()
	require.NotEmpty(t, entries)
	require.Equal(t, "pool store not ready yet", entries[0].Message)
	require.Equal(t, "DB_CONNECT_FAILED", entries[0].Data["error_code"])
	require.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	require.Equal(t, "pool store ready, schema applied", hook.LastEntry().Message)
}

func TestInitializePersistenceUseCaseExecuteReadinessTimeout(t *testing.T) {
	fakeGateway := &fakePersistenceGateway{
		readinessErrors: []*apperrors.AppError{
			apperrors.NewInternal("DB_CONNECT_FAILED", "failed", nil),
		},
	}
	useCase := NewInitializePersistenceUseCase(fakeGateway, nil)

	appErr := useCase.Execute(context.Background(), dto.InitializePersistenceCommand{
		ReadinessTimeout:       30 * time.Millisecond,
		ReadinessRetryInterval: 10 * time.Millisecond,
	})

	require.NotNil(t, appErr)
	require.Equal(t, codePoolStoreNotReady, appErr.Code)
	require.Equal(t, "DB_CONNECT_FAILED", appErr.Details["last_code"])
	require.Zero(t, fakeGateway.migrationRuns)
}

func TestInitializePersistenceUseCaseExecuteMigrationFailure(t *testing.T) {
	fakeGateway := &fakePersistenceGateway{
		runMigrationErr: apperrors.NewInternal("DB_MIGRATION_APPLY_FAILED", "failed", nil),
	}
	useCase := NewInitializePersistenceUseCase(fakeGateway, nil)

	appErr := useCase.Execute(context.Background(), dto.InitializePersistenceCommand{
		ReadinessTimeout:       50 * time.Millisecond,
		ReadinessRetryInterval: 5 * time.Millisecond,
	})

	require.NotNil(t, appErr)
	require.Equal(t, "DB_MIGRATION_APPLY_FAILED", appErr.Code)
}

func TestInitializePersistenceUseCaseExecuteInvalidCommand(t *testing.T) {
	useCase := NewInitializePersistenceUseCase(&fakePersistenceGateway{}, nil)

	appErr := useCase.Execute(context.Background(), dto.InitializePersistenceCommand{})
	require.NotNil(t, appErr)
	require.Equal(t, apperrors.TypeValidation, appErr.Type)
}

func TestInitializePersistenceUseCaseExecuteMissingGateway(t *testing.T) {
	useCase := NewInitializePersistenceUseCase(nil, nil)

	appErr := useCase.Execute(context.Background(), dto.InitializePersistenceCommand{
		ReadinessTimeout:       time.Second,
		ReadinessRetryInterval: time.Millisecond,
	})
	require.NotNil(t, appErr)
	require.Equal(t, codePersistenceGatewayMissing, appErr.Code)
}

type fakePersistenceGateway struct {
	readinessErrors []*apperrors.AppError
	runMigrationErr *apperrors.AppError
	readinessChecks int
	migrationRuns   int
}

func (f *fakePersistenceGateway) CheckReadiness(_ context.Context) *apperrors.AppError {
	f.readinessChecks++

	if len(f.readinessErrors) == 0 {
		return nil
	}

	index := f.readinessChecks - 1
	if index >= len(f.readinessErrors) {
		return f.readinessErrors[len(f.readinessErrors)-1]
	}

	return f.readinessErrors[index]
}

func (f *fakePersistenceGateway) RunMigrations(_ context.Context) *apperrors.AppError {
	f.migrationRuns++
	return f.runMigrationErr
}
