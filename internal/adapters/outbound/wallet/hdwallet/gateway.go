package hdwallet

import (
	"context"
	"sync"

	portsout "addrpool/internal/application/ports/out"
	valueobjects "addrpool/internal/domain/value_objects"
	"addrpool/internal/infrastructure/walletkeys"
	apperrors "addrpool/internal/shared_kernel/errors"

	"github.com/sirupsen/logrus"
)

// Gateway derives receive addresses from account-level extended public keys.
// Parsed keys are cached per serialized key; derivation itself is stateless.
type Gateway struct {
	keys sync.Map
	log  logrus.FieldLogger
}

var _ portsout.AddressDeriver = (*Gateway)(nil)

func NewGateway(logger logrus.FieldLogger) *Gateway {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Gateway{log: logger.WithField("component", "hdwallet")}
}

// ValidateConfiguration parses the extended key and enforces the account
// level policy so misconfiguration surfaces before the first address is
// served.
func (g *Gateway) ValidateConfiguration(_ context.Context, config valueobjects.WalletConfiguration) *apperrors.AppError {
	if !config.AddressStandard.Valid() {
		return apperrors.NewValidation(
			apperrors.CodeEncoding,
			"unsupported address standard",
			map[string]any{"address_standard": config.AddressStandard.String()},
		)
	}

	_, appErr := g.accountKey(config.ExtendedPublicKey)
	return appErr
}

func (g *Gateway) DeriveAddress(_ context.Context, config valueobjects.WalletConfiguration, index uint32) (string, *apperrors.AppError) {
	key, appErr := g.accountKey(config.ExtendedPublicKey)
	if appErr != nil {
		return "", appErr
	}

	address, keyErr := walletkeys.DeriveAddress(key, config.AddressStandard, index)
	if keyErr != nil {
		appErr := mapKeyError(keyErr)
		appErr.Details["derivation_index"] = index
		appErr.Details["address_standard"] = config.AddressStandard.String()
		return "", appErr
	}

	g.log.WithFields(logrus.Fields{
		"derivation_index": index,
		"address_standard": config.AddressStandard.String(),
		"address":          address,
	}).Debug("address derived")

	return address, nil
}

func (g *Gateway) accountKey(serialized string) (walletkeys.ExtendedPublicKey, *apperrors.AppError) {
	if cached, ok := g.keys.Load(serialized); ok {
		return cached.(walletkeys.ExtendedPublicKey), nil
	}

	key, keyErr := walletkeys.ParseExtendedPublicKey(serialized)
	if keyErr != nil {
		return walletkeys.ExtendedPublicKey{}, mapKeyError(keyErr)
	}
	if keyErr := walletkeys.ValidateAccountLevelPolicy(key); keyErr != nil {
		return walletkeys.ExtendedPublicKey{}, mapKeyError(keyErr)
	}

	g.keys.Store(serialized, key)
	return key, nil
}

// mapKeyError folds key errors into the service taxonomy: bad key material
// is a configuration error, everything after parsing is a derivation or
// encoding error.
func mapKeyError(keyErr *walletkeys.KeyError) *apperrors.AppError {
	details := map[string]any{
		"reason":         keyErr.Message,
		"key_error_code": string(keyErr.Code),
	}
	if keyErr.Cause != nil {
		details["cause"] = keyErr.Cause.Error()
	}

	switch keyErr.Code {
	case walletkeys.CodeInvalidKeyMaterialFormat, walletkeys.CodeInvalidConfiguration:
		return apperrors.NewConfiguration(keyErr.Message, details)
	case walletkeys.CodeEncodingFailed:
		return apperrors.NewInternal(apperrors.CodeEncoding, keyErr.Message, details)
	default:
		return apperrors.NewInternal(apperrors.CodeDerivation, keyErr.Message, details)
	}
}
