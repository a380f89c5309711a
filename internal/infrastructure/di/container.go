package di

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"

	"addrpool/internal/adapters/inbound/http/controllers"
	httpRouter "addrpool/internal/adapters/inbound/http/router"
	"addrpool/internal/adapters/outbound/activity/esplora"
	"addrpool/internal/adapters/outbound/docs"
	dbbadger "addrpool/internal/adapters/outbound/persistence/badger"
	"addrpool/internal/adapters/outbound/persistence/memory"
	"addrpool/internal/adapters/outbound/persistence/postgresql"
	postgresqlpoolstate "addrpool/internal/adapters/outbound/persistence/postgresql/poolstate"
	postgresqlshared "addrpool/internal/adapters/outbound/persistence/postgresql/shared"
	"addrpool/internal/adapters/outbound/wallet/hdwallet"
	portsin "addrpool/internal/application/ports/in"
	portsout "addrpool/internal/application/ports/out"
	"addrpool/internal/application/use_cases"
	valueobjects "addrpool/internal/domain/value_objects"
	"addrpool/internal/infrastructure/config"
	"addrpool/internal/infrastructure/httpserver"
	"addrpool/internal/infrastructure/metrics"
	"addrpool/internal/infrastructure/rotator"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/sirupsen/logrus"
)

type Container struct {
	Server        *httpserver.Server
	RotatorWorker *rotator.Worker
	PoolManager   *use_cases.PoolManager
	Metrics       *metrics.PoolMetrics

	// InitializePersistenceUseCase is nil for stores without a schema.
	InitializePersistenceUseCase portsin.InitializePersistenceUseCase

	closers []func() error
}

// Close releases store resources in reverse build order.
func (c Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

type StoreComponents struct {
	Store     portsout.PoolStateStore
	Bootstrap portsout.PersistenceBootstrapGateway
	Close     func() error
}

type StoreBuilder func(cfg config.Config, logger logrus.FieldLogger) (StoreComponents, error)

var storeBuilders = map[string]StoreBuilder{
	config.StoreMemory: func(_ config.Config, _ logrus.FieldLogger) (StoreComponents, error) {
		return StoreComponents{Store: memory.NewStore()}, nil
	},
	config.StoreBadger: func(cfg config.Config, logger logrus.FieldLogger) (StoreComponents, error) {
		store, err := dbbadger.NewStore(cfg.BadgerDir(), logger)
		if err != nil {
			return StoreComponents{}, fmt.Errorf("open badger store: %w", err)
		}
		return StoreComponents{Store: store, Close: store.Close}, nil
	},
	config.StorePostgres: func(cfg config.Config, logger logrus.FieldLogger) (StoreComponents, error) {
		db, err := postgresqlshared.NewDatabasePool(cfg.DatabaseURL, logger)
		if err != nil {
			return StoreComponents{}, fmt.Errorf("open database pool: %w", err)
		}
		return StoreComponents{
			Store: postgresqlpoolstate.NewStore(db),
			Bootstrap: postgresql.NewPersistenceBootstrapGateway(
				cfg.DatabaseURL,
				cfg.DatabaseTarget,
				cfg.MigrationsPath,
				logger,
			),
			Close: db.Close,
		}, nil
	},
}

var storeBuildersMu sync.RWMutex

func RegisterStoreBuilder(storeType string, builder StoreBuilder) {
	normalized := strings.ToLower(strings.TrimSpace(storeType))
	if normalized == "" || builder == nil {
		return
	}

	storeBuildersMu.Lock()
	defer storeBuildersMu.Unlock()
	storeBuilders[normalized] = builder
}

type Options struct {
	// Clock defaults to the wall clock.
	Clock clock.Clock
	// Oracle replaces the esplora client when set.
	Oracle portsout.ActivityOracle
}

func Build(ctx context.Context, cfg config.Config, logger logrus.FieldLogger, opts Options) (Container, error) {
	clk := opts.Clock
	if clk == nil {
		clk = clock.NewDefaultClock()
	}

	wallet, recognized, appErr := valueobjects.NewWalletConfiguration(valueobjects.WalletConfigurationInput{
		ExtendedPublicKey: cfg.ExtendedPublicKey,
		DerivationPath:    cfg.DerivationPath,
		StrictPath:        cfg.StrictDerivationPath,
	})
	if appErr != nil {
		return Container{}, appErr
	}
	if !recognized {
		logger.WithFields(logrus.Fields{
			"derivation_path":  wallet.DerivationPath.String(),
			"address_standard": wallet.AddressStandard.String(),
		}).Warn("derivation path purpose not recognized, using default address standard")
	}

	deriver := hdwallet.NewGateway(logger)
	if appErr := deriver.ValidateConfiguration(ctx, wallet); appErr != nil {
		return Container{}, appErr
	}

	storeComponents, err := buildStore(cfg, logger)
	if err != nil {
		return Container{}, err
	}
	container := Container{}
	if storeComponents.Close != nil {
		container.closers = append(container.closers, storeComponents.Close)
	}
	if storeComponents.Bootstrap != nil {
		container.InitializePersistenceUseCase = use_cases.NewInitializePersistenceUseCase(storeComponents.Bootstrap, logger)
	}

	oracle := opts.Oracle
	if oracle == nil {
		oracle = esplora.NewOracle(esplora.Config{
			BaseURL:           cfg.EsploraURL,
			HTTPTimeout:       cfg.OracleHTTPTimeout,
			RequestsPerSecond: cfg.OracleRequestsPerSecond,
			FailureThreshold:  uint32(cfg.OracleFailureThreshold),
			Logger:            logger,
		})
	}

	poolMetrics := metrics.NewPoolMetrics()
	manager, appErr := use_cases.NewPoolManager(use_cases.PoolManagerConfig{
		Wallet:           wallet,
		RotationInterval: cfg.RotationInterval,
		Deriver:          deriver,
		Oracle:           oracle,
		Store:            storeComponents.Store,
		Clock:            clk,
		Logger:           logger,
		Metrics:          poolMetrics,
	})
	if appErr != nil {
		_ = container.Close()
		return Container{}, appErr
	}

	getCurrentAddressUseCase := use_cases.NewGetCurrentAddressUseCase(manager)
	healthController := controllers.NewHealthController(use_cases.NewGetHealthUseCase(), logger)
	swaggerController := controllers.NewSwaggerController(
		use_cases.NewGetOpenAPISpecUseCase(docs.NewFileOpenAPISpecReadModel(cfg.OpenAPISpecPath)),
		logger,
	)
	addressPoolController := controllers.NewAddressPoolController(controllers.AddressPoolUseCases{
		GetCurrentAddress: getCurrentAddressUseCase,
		GetPoolStats:      use_cases.NewGetPoolStatsUseCase(manager),
		ForceRotation:     use_cases.NewForceRotationUseCase(manager),
		ClearPool:         use_cases.NewClearPoolUseCase(manager),
	}, logger)

	router := httpRouter.New(httpRouter.Dependencies{
		HealthController:      healthController,
		SwaggerController:     swaggerController,
		AddressPoolController: addressPoolController,
		MetricsHandler:        poolMetrics.Handler(),
	})

	container.Server = httpserver.New(cfg.Address(), router, logger)
	container.RotatorWorker = rotator.NewWorker(
		cfg.RotatorEnabled,
		cfg.RotatorPollInterval,
		getCurrentAddressUseCase,
		clk,
		logger,
	)
	container.PoolManager = manager
	container.Metrics = poolMetrics

	logger.WithFields(logrus.Fields{
		"pool_key":          manager.PoolKey(),
		"store_type":        cfg.StoreType,
		"address_standard":  wallet.AddressStandard.String(),
		"rotation_interval": cfg.RotationInterval,
	}).Info("address pool wired")

	return container, nil
}

func buildStore(cfg config.Config, logger logrus.FieldLogger) (StoreComponents, error) {
	storeType := strings.ToLower(strings.TrimSpace(cfg.StoreType))

	storeBuildersMu.RLock()
	builder, exists := storeBuilders[storeType]
	storeBuildersMu.RUnlock()
	if !exists {
		return StoreComponents{}, fmt.Errorf("unsupported store type: %s", cfg.StoreType)
	}

	return builder(cfg, logger)
}
