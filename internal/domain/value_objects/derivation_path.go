package valueobjects

import (
	"strconv"
	"strings"

	apperrors "addrpool/internal/shared_kernel/errors"
)

const hardenedOffset uint32 = 0x80000000

// DerivationPath is an account-level BIP32 path such as m/84'/0'/0'. Only the
// purpose selects behaviour; deeper derivation is fixed to the receive branch.
type DerivationPath struct {
	Purpose  uint32
	CoinType uint32
	Account  uint32
	raw      string
}

func ParseDerivationPath(raw string) (DerivationPath, *apperrors.AppError) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return DerivationPath{}, apperrors.NewConfiguration(
			"derivation path is required",
			map[string]any{"field": "derivation_path"},
		)
	}

	body := strings.TrimPrefix(strings.TrimPrefix(trimmed, "m/"), "M/")
	segments := strings.Split(body, "/")
	if len(segments) != 3 {
		return DerivationPath{}, apperrors.NewConfiguration(
			"derivation path must be account level (purpose'/coin'/account')",
			map[string]any{"derivation_path": trimmed},
		)
	}

	values := make([]uint32, len(segments))
	for i, segment := range segments {
		value, appErr := parseHardenedSegment(segment)
		if appErr != nil {
			appErr.Details = map[string]any{"derivation_path": trimmed, "segment": segment}
			return DerivationPath{}, appErr
		}
		values[i] = value
	}

	return DerivationPath{
		Purpose:  values[0],
		CoinType: values[1],
		Account:  values[2],
		raw:      trimmed,
	}, nil
}

func parseHardenedSegment(segment string) (uint32, *apperrors.AppError) {
	lower := strings.ToLower(strings.TrimSpace(segment))
	if !strings.HasSuffix(lower, "'") && !strings.HasSuffix(lower, "h") {
		return 0, apperrors.NewConfiguration("account-level path segments must be hardened", nil)
	}

	digits := strings.TrimRight(lower, "'h")
	value, err := strconv.ParseUint(digits, 10, 32)
	if err != nil || uint32(value) >= hardenedOffset {
		return 0, apperrors.NewConfiguration("derivation path segment is not a valid index", nil)
	}

	return uint32(value), nil
}

// String renders the canonical form m/<purpose>'/<coin>'/<account>'.
func (p DerivationPath) String() string {
	return "m/" + strconv.FormatUint(uint64(p.Purpose), 10) + "'/" +
		strconv.FormatUint(uint64(p.CoinType), 10) + "'/" +
		strconv.FormatUint(uint64(p.Account), 10) + "'"
}

func (p DerivationPath) Raw() string {
	return p.raw
}
