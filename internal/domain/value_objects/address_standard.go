package valueobjects

import (
	"strings"

	apperrors "addrpool/internal/shared_kernel/errors"
)

type AddressStandard string

const (
	AddressStandardP2PKH      AddressStandard = "p2pkh"
	AddressStandardP2SHP2WPKH AddressStandard = "p2sh_p2wpkh"
	AddressStandardP2WPKH     AddressStandard = "p2wpkh"
	AddressStandardP2TR       AddressStandard = "p2tr"
)

// DefaultAddressStandard is served for account paths whose purpose is not
// one of 44', 49', 84' or 86'.
const DefaultAddressStandard = AddressStandardP2WPKH

var purposeStandards = map[uint32]AddressStandard{
	44: AddressStandardP2PKH,
	49: AddressStandardP2SHP2WPKH,
	84: AddressStandardP2WPKH,
	86: AddressStandardP2TR,
}

func (s AddressStandard) String() string {
	return string(s)
}

func (s AddressStandard) Valid() bool {
	switch s {
	case AddressStandardP2PKH, AddressStandardP2SHP2WPKH, AddressStandardP2WPKH, AddressStandardP2TR:
		return true
	default:
		return false
	}
}

func ParseAddressStandard(raw string) (AddressStandard, *apperrors.AppError) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, "-", "_")

	standard := AddressStandard(normalized)
	if !standard.Valid() {
		return "", apperrors.NewValidation(
			apperrors.CodeEncoding,
			"unsupported address standard",
			map[string]any{"address_standard": raw},
		)
	}

	return standard, nil
}

// DetectAddressStandard maps an account-level path to the standard implied by
// its purpose field. recognized is false when the purpose is unknown and the
// returned standard is DefaultAddressStandard.
func DetectAddressStandard(path DerivationPath) (standard AddressStandard, recognized bool) {
	if standard, ok := purposeStandards[path.Purpose]; ok {
		return standard, true
	}

	return DefaultAddressStandard, false
}
