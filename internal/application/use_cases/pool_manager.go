package use_cases

import (
	"context"
	"time"

	"addrpool/internal/application/dto"
	portsout "addrpool/internal/application/ports/out"
	"addrpool/internal/domain/entities"
	"addrpool/internal/domain/policies"
	valueobjects "addrpool/internal/domain/value_objects"
	apperrors "addrpool/internal/shared_kernel/errors"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/sirupsen/logrus"
)

type PoolManagerConfig struct {
	Wallet           valueobjects.WalletConfiguration
	RotationInterval time.Duration
	Deriver          portsout.AddressDeriver
	Oracle           portsout.ActivityOracle
	Store            portsout.PoolStateStore
	Clock            clock.Clock
	Logger           logrus.FieldLogger
	Metrics          portsout.PoolMetrics
}

// PoolManager keeps one rotating pool of receive addresses for a wallet
// configuration. It holds no pool state of its own; every call starts from
// the store and ends with at most one whole-record write.
type PoolManager struct {
	wallet   valueobjects.WalletConfiguration
	poolKey  string
	interval time.Duration
	deriver  portsout.AddressDeriver
	oracle   portsout.ActivityOracle
	store    portsout.PoolStateStore
	clock    clock.Clock
	log      logrus.FieldLogger
	metrics  portsout.PoolMetrics
}

func NewPoolManager(cfg PoolManagerConfig) (*PoolManager, *apperrors.AppError) {
	if cfg.Deriver == nil {
		return nil, apperrors.NewInternal("address_deriver_missing", "address deriver is required", nil)
	}
	if cfg.Oracle == nil {
		return nil, apperrors.NewInternal("activity_oracle_missing", "activity oracle is required", nil)
	}
	if cfg.Store == nil {
		return nil, apperrors.NewInternal("pool_state_store_missing", "pool state store is required", nil)
	}
	if !cfg.Wallet.AddressStandard.Valid() {
		return nil, apperrors.NewValidation(
			apperrors.CodeEncoding,
			"unsupported address standard",
			map[string]any{"address_standard": cfg.Wallet.AddressStandard.String()},
		)
	}

	poolKey, appErr := PoolKey(cfg.Wallet)
	if appErr != nil {
		return nil, appErr
	}

	interval := cfg.RotationInterval
	if interval <= 0 {
		interval = policies.DefaultRotationInterval
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.NewDefaultClock()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = noopPoolMetrics{}
	}

	return &PoolManager{
		wallet:   cfg.Wallet,
		poolKey:  poolKey,
		interval: interval,
		deriver:  cfg.Deriver,
		oracle:   cfg.Oracle,
		store:    cfg.Store,
		clock:    clk,
		log: logger.WithFields(logrus.Fields{
			"pool_key":         poolKey,
			"address_standard": cfg.Wallet.AddressStandard.String(),
		}),
		metrics: metrics,
	}, nil
}

func (m *PoolManager) PoolKey() string {
	return m.poolKey
}

// CurrentAddress serves the address at the pool's current position,
// initializing the pool on first use and rotating it once the interval has
// elapsed since the last rotation.
func (m *PoolManager) CurrentAddress(ctx context.Context) (dto.CurrentAddressOutput, *apperrors.AppError) {
	now := m.now()

	state, found := m.load(ctx)
	if !found {
		initialized, appErr := entities.NewPoolState(m.minter(ctx), now)
		if appErr != nil {
			m.metrics.ObserveAccess(portsout.AccessOutcomeFailed)
			return dto.CurrentAddressOutput{}, appErr
		}
		m.metrics.ObserveMinted(len(initialized.Pool))

		if appErr := m.save(ctx, initialized); appErr != nil {
			m.metrics.ObserveAccess(portsout.AccessOutcomeFailed)
			return dto.CurrentAddressOutput{}, appErr
		}

		m.log.WithField("current_address", initialized.Current().Address).Info("address pool initialized")
		m.metrics.ObserveAccess(portsout.AccessOutcomeInitialized)
		output := m.currentOutput(initialized)
		output.Initialized = true
		return output, nil
	}

	if !policies.RotationDue(state.LastRotationAt, now, m.interval) {
		m.log.WithField("current_index", state.CurrentIndex).Debug("serving current address")
		m.metrics.ObserveAccess(portsout.AccessOutcomeCached)
		return m.currentOutput(state), nil
	}

	rotated, appErr := m.rotate(ctx, state, now)
	if appErr != nil {
		m.metrics.ObserveAccess(portsout.AccessOutcomeFailed)
		return dto.CurrentAddressOutput{}, appErr
	}
	if appErr := m.save(ctx, rotated); appErr != nil {
		m.metrics.ObserveAccess(portsout.AccessOutcomeFailed)
		return dto.CurrentAddressOutput{}, appErr
	}

	m.metrics.ObserveAccess(portsout.AccessOutcomeRotated)
	output := m.currentOutput(rotated)
	output.Rotated = true
	return output, nil
}

// rotate scans from the position after the current one, stopping at the
// first entry the oracle does not report as used, then replaces every used
// entry in the pool.
func (m *PoolManager) rotate(ctx context.Context, state entities.PoolState, now time.Time) (entities.PoolState, *apperrors.AppError) {
	var (
		candidate uint32
		found     bool
		scanned   int
	)
	for _, position := range state.ScanOrder() {
		scanned++
		active := m.hasActivity(ctx, state.Pool[position])
		state = state.MarkChecked(position, active, now)
		if !active {
			candidate = state.Pool[position].Index
			found = true
			break
		}
	}

	next, replacements, appErr := state.ReplaceUsed(m.minter(ctx), now)
	if appErr != nil {
		return entities.PoolState{}, appErr
	}
	next = next.SelectCurrent(candidate, found)
	next.LastRotationAt = now

	if appErr := next.Validate(); appErr != nil {
		return entities.PoolState{}, appErr
	}

	for _, replacement := range replacements {
		m.log.WithFields(logrus.Fields{
			"removed_index":    replacement.Removed.Index,
			"removed_address":  replacement.Removed.Address,
			"derivation_index": replacement.Added.Index,
		}).Info("replaced used address")
	}
	m.metrics.ObserveMinted(len(replacements))
	m.metrics.ObserveRotation(len(replacements))
	m.log.WithFields(logrus.Fields{
		"scanned":          scanned,
		"replaced":         len(replacements),
		"current_index":    next.CurrentIndex,
		"derivation_index": next.Current().Index,
	}).Info("address pool rotated")

	return next, nil
}

// hasActivity asks the oracle about one entry. A failed query counts as no
// activity.
func (m *PoolManager) hasActivity(ctx context.Context, entry entities.PoolEntry) bool {
	report, appErr := m.oracle.CheckActivity(ctx, entry.Address)
	if appErr != nil {
		m.log.WithFields(logrus.Fields{
			"derivation_index": entry.Index,
			"address":          entry.Address,
			"error_code":       appErr.Code,
		}).WithError(appErr).Warn("activity check failed, treating address as unused")
		m.metrics.ObserveOracleQuery(portsout.OracleResultError)
		return false
	}

	if report.HasActivity() {
		m.metrics.ObserveOracleQuery(portsout.OracleResultActive)
		return true
	}
	m.metrics.ObserveOracleQuery(portsout.OracleResultUnused)
	return false
}

// Stats is a read-only snapshot of the stored pool.
func (m *PoolManager) Stats(ctx context.Context) (dto.PoolStatsOutput, *apperrors.AppError) {
	output := dto.PoolStatsOutput{
		PoolKey:         m.poolKey,
		AddressStandard: m.wallet.AddressStandard.String(),
		DerivationPath:  m.wallet.DerivationPath.String(),
		PoolSize:        entities.PoolSize,
		Entries:         []dto.PoolEntryOutput{},
	}

	state, found := m.load(ctx)
	if !found {
		return output, nil
	}

	lastRotationAt := state.LastRotationAt
	nextRotationAt := policies.NextRotationAt(state.LastRotationAt, m.interval)
	output.Initialized = true
	output.ActiveEntries = state.CountActive()
	output.CurrentIndex = state.CurrentIndex
	output.CurrentAddress = state.Current().Address
	output.NextDerivationIndex = state.NextDerivationIndex()
	output.LastRotationAt = &lastRotationAt
	output.NextRotationAt = &nextRotationAt
	for position, entry := range state.Pool {
		output.Entries = append(output.Entries, dto.PoolEntryOutput{
			Position:        position,
			DerivationIndex: entry.Index,
			Address:         entry.Address,
			LastCheckedAt:   entry.LastCheckedAt,
			HasActivity:     entry.HasActivity,
			Current:         position == state.CurrentIndex,
		})
	}

	return output, nil
}

// ForceRotation rewinds lastRotationAt so the next access rotates. A pool
// that does not exist yet is left alone; its first access initializes it.
func (m *PoolManager) ForceRotation(ctx context.Context) (dto.ForceRotationOutput, *apperrors.AppError) {
	state, found := m.load(ctx)
	if !found {
		return dto.ForceRotationOutput{PoolKey: m.poolKey}, nil
	}

	state.LastRotationAt = policies.ForcedRotationTime(m.now(), m.interval)
	if appErr := m.save(ctx, state); appErr != nil {
		return dto.ForceRotationOutput{}, appErr
	}

	m.log.WithField("last_rotation_at", state.LastRotationAt).Info("rotation forced")
	lastRotationAt := state.LastRotationAt
	return dto.ForceRotationOutput{
		PoolKey:        m.poolKey,
		Rewound:        true,
		LastRotationAt: &lastRotationAt,
	}, nil
}

// ClearCache deletes the stored pool; the next access rebuilds it from index 0.
func (m *PoolManager) ClearCache(ctx context.Context) (dto.ClearPoolOutput, *apperrors.AppError) {
	if appErr := m.store.Delete(ctx, m.poolKey); appErr != nil {
		m.metrics.ObserveStoreFailure("delete")
		m.log.WithError(appErr).Error("failed to delete pool state")
		return dto.ClearPoolOutput{}, apperrors.NewInternal(
			apperrors.CodeStoreDelete,
			"failed to delete pool state",
			map[string]any{"pool_key": m.poolKey, "cause": appErr.Code},
		)
	}

	m.log.Info("address pool cleared")
	return dto.ClearPoolOutput{PoolKey: m.poolKey}, nil
}

// load reads the stored pool. Read failures and records that break the pool
// invariants are reported as absent so the caller rebuilds.
func (m *PoolManager) load(ctx context.Context) (entities.PoolState, bool) {
	state, found, appErr := m.store.Get(ctx, m.poolKey)
	if appErr != nil {
		m.metrics.ObserveStoreFailure("read")
		m.log.WithField("error_code", appErr.Code).WithError(appErr).Warn("failed to read pool state, rebuilding")
		return entities.PoolState{}, false
	}
	if !found {
		return entities.PoolState{}, false
	}

	if appErr := state.Validate(); appErr != nil {
		m.metrics.ObserveStoreFailure("read")
		m.log.WithFields(logrus.Fields(appErr.Details)).WithError(appErr).Warn("stored pool state is invalid, rebuilding")
		return entities.PoolState{}, false
	}

	return state, true
}

func (m *PoolManager) save(ctx context.Context, state entities.PoolState) *apperrors.AppError {
	if appErr := m.store.Put(ctx, m.poolKey, state); appErr != nil {
		m.metrics.ObserveStoreFailure("write")
		m.log.WithField("error_code", appErr.Code).WithError(appErr).Error("failed to persist pool state")
		return apperrors.NewInternal(
			apperrors.CodeStoreWrite,
			"failed to persist pool state",
			map[string]any{"pool_key": m.poolKey, "cause": appErr.Code},
		)
	}

	return nil
}

func (m *PoolManager) minter(ctx context.Context) entities.Minter {
	return func(index uint32) (string, *apperrors.AppError) {
		return m.deriver.DeriveAddress(ctx, m.wallet, index)
	}
}

func (m *PoolManager) currentOutput(state entities.PoolState) dto.CurrentAddressOutput {
	current := state.Current()
	return dto.CurrentAddressOutput{
		Address:         current.Address,
		AddressStandard: m.wallet.AddressStandard.String(),
		DerivationIndex: current.Index,
		PoolKey:         m.poolKey,
		NextRotationAt:  policies.NextRotationAt(state.LastRotationAt, m.interval),
	}
}

func (m *PoolManager) now() time.Time {
	return m.clock.Now().UTC()
}

type noopPoolMetrics struct{}

func (noopPoolMetrics) ObserveAccess(portsout.AccessOutcome)     {}
func (noopPoolMetrics) ObserveRotation(int)                      {}
func (noopPoolMetrics) ObserveOracleQuery(portsout.OracleResult) {}
func (noopPoolMetrics) ObserveMinted(int)                        {}
func (noopPoolMetrics) ObserveStoreFailure(string)               {}
