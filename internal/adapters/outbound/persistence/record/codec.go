// Package record is the stored form of a PoolState shared by every store
// backend: one JSON document per pool key.
package record

import (
	"bytes"
	"encoding/json"

	"addrpool/internal/domain/entities"
	apperrors "addrpool/internal/shared_kernel/errors"
)

func Encode(state entities.PoolState) ([]byte, *apperrors.AppError) {
	encoded, err := json.Marshal(state)
	if err != nil {
		return nil, apperrors.NewInternal(
			apperrors.CodeStoreWrite,
			"failed to encode pool state",
			map[string]any{"error": err.Error()},
		)
	}

	return encoded, nil
}

func Decode(raw []byte) (entities.PoolState, *apperrors.AppError) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()

	state := entities.PoolState{}
	if err := decoder.Decode(&state); err != nil {
		return entities.PoolState{}, apperrors.NewInternal(
			apperrors.CodeStoreRead,
			"failed to decode pool state",
			map[string]any{"error": err.Error()},
		)
	}

	return state, nil
}
