package use_cases

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	valueobjects "addrpool/internal/domain/value_objects"
	apperrors "addrpool/internal/shared_kernel/errors"
)

const poolKeyPrefix = "pool:"

// poolKeyPayload fields are declared in lexical key order so the marshalled
// form is canonical.
type poolKeyPayload struct {
	DerivationPath    string `json:"derivation_path"`
	ExtendedPublicKey string `json:"extended_public_key"`
}

// PoolKey is the store key of the pool owned by config. It depends only on the
// extended key and the canonical account path.
func PoolKey(config valueobjects.WalletConfiguration) (string, *apperrors.AppError) {
	canonicalBytes, err := json.Marshal(poolKeyPayload{
		DerivationPath:    config.DerivationPath.String(),
		ExtendedPublicKey: config.ExtendedPublicKey,
	})
	if err != nil {
		return "", apperrors.NewInternal(
			"pool_key_payload_invalid",
			"failed to canonicalize pool key payload",
			map[string]any{"error": err.Error()},
		)
	}

	digest := sha256.Sum256(canonicalBytes)
	return poolKeyPrefix + hex.EncodeToString(digest[:]), nil
}
