package out

type AccessOutcome string

const (
	AccessOutcomeCached      AccessOutcome = "cached"
	AccessOutcomeInitialized AccessOutcome = "initialized"
	AccessOutcomeRotated     AccessOutcome = "rotated"
	AccessOutcomeFailed      AccessOutcome = "failed"
)

type OracleResult string

const (
	OracleResultActive OracleResult = "active"
	OracleResultUnused OracleResult = "unused"
	OracleResultError  OracleResult = "error"
)

type PoolMetrics interface {
	ObserveAccess(outcome AccessOutcome)
	ObserveRotation(replaced int)
	ObserveOracleQuery(result OracleResult)
	ObserveMinted(count int)
	ObserveStoreFailure(operation string)
}
