package config

import (
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const envPrefix = "ADDRPOOL"

const (
	ExtendedPublicKeyKey        = "EXTENDED_PUBLIC_KEY"
	DerivationPathKey           = "DERIVATION_PATH"
	StrictDerivationPathKey     = "STRICT_DERIVATION_PATH"
	PortKey                     = "PORT"
	OpenAPISpecPathKey          = "OPENAPI_SPEC_PATH"
	ShutdownTimeoutKey          = "SHUTDOWN_TIMEOUT"
	RotationIntervalKey         = "ROTATION_INTERVAL"
	StoreTypeKey                = "STORE_TYPE"
	DatadirKey                  = "DATADIR"
	DatabaseURLKey              = "DATABASE_URL"
	MigrationsPathKey           = "MIGRATIONS_PATH"
	DBReadinessTimeoutKey       = "DB_READINESS_TIMEOUT"
	DBReadinessRetryIntervalKey = "DB_READINESS_RETRY_INTERVAL"
	EsploraURLKey               = "ESPLORA_URL"
	OracleHTTPTimeoutKey        = "ORACLE_HTTP_TIMEOUT"
	OracleRequestsPerSecondKey  = "ORACLE_REQUESTS_PER_SECOND"
	OracleFailureThresholdKey   = "ORACLE_FAILURE_THRESHOLD"
	RotatorEnabledKey           = "ROTATOR_ENABLED"
	RotatorPollIntervalKey      = "ROTATOR_POLL_INTERVAL"
	LogLevelKey                 = "LOG_LEVEL"
	LogFormatKey                = "LOG_FORMAT"
)

const (
	StoreMemory   = "memory"
	StoreBadger   = "badger"
	StorePostgres = "postgres"

	LogFormatText = "text"
	LogFormatJSON = "json"

	// DbLocation is the badger directory under DATADIR.
	DbLocation = "db"
)

var defaultDatadir = btcutil.AppDataDir("addrpool", false)

type ConfigError struct {
	Code     string
	Message  string
	Metadata map[string]string
}

func (e *ConfigError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

type Config struct {
	ExtendedPublicKey        string
	DerivationPath           string
	StrictDerivationPath     bool
	Port                     string
	OpenAPISpecPath          string
	ShutdownTimeout          time.Duration
	RotationInterval         time.Duration
	StoreType                string
	Datadir                  string
	DatabaseURL              string
	DatabaseTarget           string
	MigrationsPath           string
	DBReadinessTimeout       time.Duration
	DBReadinessRetryInterval time.Duration
	EsploraURL               string
	OracleHTTPTimeout        time.Duration
	OracleRequestsPerSecond  int
	OracleFailureThreshold   int
	RotatorEnabled           bool
	RotatorPollInterval      time.Duration
	LogLevel                 logrus.Level
	LogFormat                string
}

func newViper() *viper.Viper {
	vip := viper.New()
	vip.SetEnvPrefix(envPrefix)
	vip.AutomaticEnv()

	vip.SetDefault(StrictDerivationPathKey, "false")
	vip.SetDefault(PortKey, "8080")
	vip.SetDefault(OpenAPISpecPathKey, "api/openapi.yaml")
	vip.SetDefault(ShutdownTimeoutKey, "10s")
	vip.SetDefault(RotationIntervalKey, "10m")
	vip.SetDefault(StoreTypeKey, StoreMemory)
	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(MigrationsPathKey, "internal/adapters/outbound/persistence/postgresql/migrations")
	vip.SetDefault(DBReadinessTimeoutKey, "30s")
	vip.SetDefault(DBReadinessRetryIntervalKey, "2s")
	vip.SetDefault(EsploraURLKey, "https://mempool.space/api")
	vip.SetDefault(OracleHTTPTimeoutKey, "0s")
	vip.SetDefault(OracleRequestsPerSecondKey, "5")
	vip.SetDefault(OracleFailureThresholdKey, "5")
	vip.SetDefault(RotatorEnabledKey, "true")
	vip.SetDefault(RotatorPollIntervalKey, "1m")
	vip.SetDefault(LogLevelKey, logrus.InfoLevel.String())
	vip.SetDefault(LogFormatKey, LogFormatText)

	return vip
}

// LoadConfig reads ADDRPOOL_* environment variables.
func LoadConfig() (Config, *ConfigError) {
	return load(newViper())
}

func load(vip *viper.Viper) (Config, *ConfigError) {
	cfg := Config{
		ExtendedPublicKey: strings.TrimSpace(vip.GetString(ExtendedPublicKeyKey)),
		DerivationPath:    strings.TrimSpace(vip.GetString(DerivationPathKey)),
		Port:              strings.TrimSpace(vip.GetString(PortKey)),
		OpenAPISpecPath:   strings.TrimSpace(vip.GetString(OpenAPISpecPathKey)),
		StoreType:         strings.ToLower(strings.TrimSpace(vip.GetString(StoreTypeKey))),
		Datadir:           strings.TrimSpace(vip.GetString(DatadirKey)),
		DatabaseURL:       strings.TrimSpace(vip.GetString(DatabaseURLKey)),
		MigrationsPath:    strings.TrimSpace(vip.GetString(MigrationsPathKey)),
		EsploraURL:        strings.TrimRight(strings.TrimSpace(vip.GetString(EsploraURLKey)), "/"),
		LogFormat:         strings.ToLower(strings.TrimSpace(vip.GetString(LogFormatKey))),
	}

	if cfg.ExtendedPublicKey == "" {
		return Config{}, requiredError(ExtendedPublicKeyKey)
	}
	if cfg.DerivationPath == "" {
		return Config{}, requiredError(DerivationPathKey)
	}
	if cfg.Port == "" {
		return Config{}, requiredError(PortKey)
	}

	var cfgErr *ConfigError
	if cfg.StrictDerivationPath, cfgErr = boolValue(vip, StrictDerivationPathKey); cfgErr != nil {
		return Config{}, cfgErr
	}
	if cfg.RotatorEnabled, cfgErr = boolValue(vip, RotatorEnabledKey); cfgErr != nil {
		return Config{}, cfgErr
	}
	if cfg.ShutdownTimeout, cfgErr = positiveDuration(vip, ShutdownTimeoutKey); cfgErr != nil {
		return Config{}, cfgErr
	}
	if cfg.RotationInterval, cfgErr = positiveDuration(vip, RotationIntervalKey); cfgErr != nil {
		return Config{}, cfgErr
	}
	if cfg.DBReadinessTimeout, cfgErr = positiveDuration(vip, DBReadinessTimeoutKey); cfgErr != nil {
		return Config{}, cfgErr
	}
	if cfg.DBReadinessRetryInterval, cfgErr = positiveDuration(vip, DBReadinessRetryIntervalKey); cfgErr != nil {
		return Config{}, cfgErr
	}
	if cfg.RotatorPollInterval, cfgErr = positiveDuration(vip, RotatorPollIntervalKey); cfgErr != nil {
		return Config{}, cfgErr
	}
	if cfg.OracleHTTPTimeout, cfgErr = durationValue(vip, OracleHTTPTimeoutKey); cfgErr != nil {
		return Config{}, cfgErr
	}
	if cfg.OracleRequestsPerSecond, cfgErr = nonNegativeInt(vip, OracleRequestsPerSecondKey); cfgErr != nil {
		return Config{}, cfgErr
	}
	if cfg.OracleFailureThreshold, cfgErr = nonNegativeInt(vip, OracleFailureThresholdKey); cfgErr != nil {
		return Config{}, cfgErr
	}

	level, err := logrus.ParseLevel(strings.TrimSpace(vip.GetString(LogLevelKey)))
	if err != nil {
		return Config{}, invalidError(LogLevelKey, "must be a logrus level name")
	}
	cfg.LogLevel = level

	switch cfg.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return Config{}, invalidError(LogFormatKey, "must be text or json")
	}

	if cfgErr := validateEsploraURL(cfg.EsploraURL); cfgErr != nil {
		return Config{}, cfgErr
	}

	switch cfg.StoreType {
	case StoreMemory:
	case StoreBadger:
		if cfg.Datadir == "" {
			return Config{}, requiredError(DatadirKey)
		}
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, &ConfigError{
				Code:    "CONFIG_DATABASE_URL_REQUIRED",
				Message: envPrefix + "_" + DatabaseURLKey + " is required for the postgres store",
			}
		}
		target, cfgErr := parseDatabaseTarget(cfg.DatabaseURL)
		if cfgErr != nil {
			return Config{}, cfgErr
		}
		cfg.DatabaseTarget = target
	default:
		return Config{}, invalidError(StoreTypeKey, "must be memory, badger or postgres")
	}

	return cfg, nil
}

func (c Config) Address() string {
	return ":" + c.Port
}

// BadgerDir is where the embedded store keeps its files.
func (c Config) BadgerDir() string {
	return filepath.Join(c.Datadir, DbLocation)
}

func parseDatabaseTarget(databaseURL string) (string, *ConfigError) {
	parsed, err := url.Parse(databaseURL)
	if err != nil {
		return "", &ConfigError{
			Code:    "CONFIG_DATABASE_URL_INVALID",
			Message: "DATABASE_URL is invalid",
		}
	}

	switch parsed.Scheme {
	case "postgres", "postgresql":
	default:
		return "", &ConfigError{
			Code:    "CONFIG_DATABASE_URL_SCHEME_INVALID",
			Message: "DATABASE_URL must use postgres or postgresql scheme",
		}
	}

	if parsed.Host == "" {
		return "", &ConfigError{
			Code:    "CONFIG_DATABASE_URL_HOST_MISSING",
			Message: "DATABASE_URL host is required",
		}
	}

	databaseName := strings.TrimPrefix(parsed.Path, "/")
	if databaseName == "" {
		return "", &ConfigError{
			Code:    "CONFIG_DATABASE_NAME_MISSING",
			Message: "DATABASE_URL database name is required",
		}
	}

	return parsed.Host + "/" + databaseName, nil
}

func validateEsploraURL(raw string) *ConfigError {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return invalidError(EsploraURLKey, "must be an absolute URL")
	}
	switch parsed.Scheme {
	case "http", "https":
		return nil
	default:
		return invalidError(EsploraURLKey, "must use http or https")
	}
}

func boolValue(vip *viper.Viper, key string) (bool, *ConfigError) {
	parsed, err := strconv.ParseBool(strings.TrimSpace(vip.GetString(key)))
	if err != nil {
		return false, invalidError(key, "must be a boolean")
	}
	return parsed, nil
}

func durationValue(vip *viper.Viper, key string) (time.Duration, *ConfigError) {
	parsed, err := time.ParseDuration(strings.TrimSpace(vip.GetString(key)))
	if err != nil || parsed < 0 {
		return 0, invalidError(key, "must be a non-negative duration such as 30s or 10m")
	}
	return parsed, nil
}

func positiveDuration(vip *viper.Viper, key string) (time.Duration, *ConfigError) {
	parsed, cfgErr := durationValue(vip, key)
	if cfgErr != nil {
		return 0, cfgErr
	}
	if parsed == 0 {
		return 0, invalidError(key, "must be greater than zero")
	}
	return parsed, nil
}

func nonNegativeInt(vip *viper.Viper, key string) (int, *ConfigError) {
	parsed, err := strconv.Atoi(strings.TrimSpace(vip.GetString(key)))
	if err != nil || parsed < 0 {
		return 0, invalidError(key, "must be a non-negative integer")
	}
	return parsed, nil
}

func requiredError(key string) *ConfigError {
	return &ConfigError{
		Code:    "CONFIG_" + key + "_REQUIRED",
		Message: envPrefix + "_" + key + " is required",
		Metadata: map[string]string{
			"env": envPrefix + "_" + key,
		},
	}
}

func invalidError(key, reason string) *ConfigError {
	return &ConfigError{
		Code:    "CONFIG_" + key + "_INVALID",
		Message: envPrefix + "_" + key + " " + reason,
		Metadata: map[string]string{
			"env":    envPrefix + "_" + key,
			"reason": reason,
		},
	}
}
