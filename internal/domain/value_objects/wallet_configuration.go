package valueobjects

import (
	"strings"

	apperrors "addrpool/internal/shared_kernel/errors"
)

// WalletConfiguration identifies one address pool: an account-level extended
// public key and the path it was exported at.
type WalletConfiguration struct {
	ExtendedPublicKey string
	DerivationPath    DerivationPath
	AddressStandard   AddressStandard
}

type WalletConfigurationInput struct {
	ExtendedPublicKey string
	DerivationPath    string
	StrictPath        bool
}

func NewWalletConfiguration(input WalletConfigurationInput) (WalletConfiguration, bool, *apperrors.AppError) {
	extendedKey := strings.TrimSpace(input.ExtendedPublicKey)
	if extendedKey == "" {
		return WalletConfiguration{}, false, apperrors.NewConfiguration(
			"extended public key is required",
			map[string]any{"field": "extended_public_key"},
		)
	}

	path, appErr := ParseDerivationPath(input.DerivationPath)
	if appErr != nil {
		return WalletConfiguration{}, false, appErr
	}

	standard, recognized := DetectAddressStandard(path)
	if !recognized && input.StrictPath {
		return WalletConfiguration{}, false, apperrors.NewConfiguration(
			"derivation path purpose does not map to a supported address standard",
			map[string]any{"derivation_path": path.String(), "purpose": path.Purpose},
		)
	}

	return WalletConfiguration{
		ExtendedPublicKey: extendedKey,
		DerivationPath:    path,
		AddressStandard:   standard,
	}, recognized, nil
}
