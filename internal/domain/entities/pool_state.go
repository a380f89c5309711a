package entities

import (
	"time"

	apperrors "addrpool/internal/shared_kernel/errors"
)

// PoolSize is the number of derived addresses a pool holds at all times.
const PoolSize = 5

// HardenedIndexStart is the first child number the non-hardened receive
// branch cannot derive.
const HardenedIndexStart uint32 = 1 << 31

type PoolEntry struct {
	Index         uint32    `json:"index"`
	Address       string    `json:"address"`
	LastCheckedAt time.Time `json:"lastCheck"`
	HasActivity   bool      `json:"hasActivity"`
}

// PoolState is the whole persisted record of one pool. Operations never
// mutate the receiver; they return the next state.
type PoolState struct {
	Pool           []PoolEntry `json:"pool"`
	CurrentIndex   int         `json:"currentIndex"`
	LastRotationAt time.Time   `json:"lastRotation"`
}

// Minter derives the address for a derivation index.
type Minter func(index uint32) (string, *apperrors.AppError)

type Replacement struct {
	Removed PoolEntry
	Added   PoolEntry
}

func NewPoolState(mint Minter, now time.Time) (PoolState, *apperrors.AppError) {
	pool := make([]PoolEntry, 0, PoolSize)
	for index := uint32(0); index < PoolSize; index++ {
		entry, appErr := newEntry(mint, index, now)
		if appErr != nil {
			return PoolState{}, appErr
		}
		pool = append(pool, entry)
	}

	return PoolState{
		Pool:           pool,
		CurrentIndex:   0,
		LastRotationAt: now,
	}, nil
}

func newEntry(mint Minter, index uint32, now time.Time) (PoolEntry, *apperrors.AppError) {
	address, appErr := mint(index)
	if appErr != nil {
		return PoolEntry{}, appErr
	}

	return PoolEntry{
		Index:         index,
		Address:       address,
		LastCheckedAt: now,
		HasActivity:   false,
	}, nil
}

func (s PoolState) Clone() PoolState {
	out := s
	out.Pool = make([]PoolEntry, len(s.Pool))
	copy(out.Pool, s.Pool)
	return out
}

// Validate checks the record invariants: exactly PoolSize entries, derivation
// indices strictly increasing by position and below HardenedIndexStart, and a
// current position in range.
func (s PoolState) Validate() *apperrors.AppError {
	if len(s.Pool) != PoolSize {
		return apperrors.NewInternal(
			apperrors.CodePoolStateBroken,
			"pool must hold exactly five entries",
			map[string]any{"pool_length": len(s.Pool)},
		)
	}

	for position := 1; position < len(s.Pool); position++ {
		if s.Pool[position].Index <= s.Pool[position-1].Index {
			return apperrors.NewInternal(
				apperrors.CodePoolStateBroken,
				"pool derivation indices must be unique and increasing",
				map[string]any{"position": position, "index": s.Pool[position].Index},
			)
		}
	}

	if last := s.Pool[len(s.Pool)-1].Index; last >= HardenedIndexStart {
		return apperrors.NewInternal(
			apperrors.CodePoolStateBroken,
			"pool derivation index is outside the non-hardened range",
			map[string]any{"index": last},
		)
	}

	for position, entry := range s.Pool {
		if entry.Address == "" {
			return apperrors.NewInternal(
				apperrors.CodePoolStateBroken,
				"pool entry address is empty",
				map[string]any{"position": position},
			)
		}
	}

	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Pool) {
		return apperrors.NewInternal(
			apperrors.CodePoolStateBroken,
			"current index is outside the pool",
			map[string]any{"current_index": s.CurrentIndex},
		)
	}

	return nil
}

func (s PoolState) Current() PoolEntry {
	return s.Pool[s.CurrentIndex]
}

// NextDerivationIndex is one past the highest index ever assigned. Replaced
// entries always leave a higher index behind, so the pool maximum suffices.
func (s PoolState) NextDerivationIndex() uint32 {
	var highest uint32
	for _, entry := range s.Pool {
		if entry.Index > highest {
			highest = entry.Index
		}
	}

	return highest + 1
}

// ScanOrder lists pool positions in rotation order, starting right after the
// current position and wrapping around.
func (s PoolState) ScanOrder() []int {
	order := make([]int, 0, len(s.Pool))
	for step := 1; step <= len(s.Pool); step++ {
		order = append(order, (s.CurrentIndex+step)%len(s.Pool))
	}

	return order
}

// MarkChecked records an activity observation for the entry at position.
func (s PoolState) MarkChecked(position int, hasActivity bool, checkedAt time.Time) PoolState {
	out := s.Clone()
	out.Pool[position].HasActivity = hasActivity
	out.Pool[position].LastCheckedAt = checkedAt
	return out
}

// ReplaceUsed drops every entry flagged with activity and appends a freshly
// minted one per removal. Surviving entries keep their relative order.
func (s PoolState) ReplaceUsed(mint Minter, now time.Time) (PoolState, []Replacement, *apperrors.AppError) {
	kept := make([]PoolEntry, 0, len(s.Pool))
	removed := make([]PoolEntry, 0)
	for _, entry := range s.Pool {
		if entry.HasActivity {
			removed = append(removed, entry)
			continue
		}
		kept = append(kept, entry)
	}

	next := s.NextDerivationIndex()
	replacements := make([]Replacement, 0, len(removed))
	for _, old := range removed {
		entry, appErr := newEntry(mint, next, now)
		if appErr != nil {
			return PoolState{}, nil, appErr
		}
		kept = append(kept, entry)
		replacements = append(replacements, Replacement{Removed: old, Added: entry})
		next++
	}

	out := s.Clone()
	out.Pool = kept
	return out, replacements, nil
}

// SelectCurrent points the pool at the entry holding candidate. Without a
// candidate, or when it is no longer in the pool, the first unused entry is
// chosen, falling back to position 0.
func (s PoolState) SelectCurrent(candidate uint32, found bool) PoolState {
	out := s.Clone()
	if found {
		for position, entry := range out.Pool {
			if entry.Index == candidate && !entry.HasActivity {
				out.CurrentIndex = position
				return out
			}
		}
	}

	out.CurrentIndex = 0
	for position, entry := range out.Pool {
		if !entry.HasActivity {
			out.CurrentIndex = position
			break
		}
	}

	return out
}

func (s PoolState) CountActive() int {
	count := 0
	for _, entry := range s.Pool {
		if entry.HasActivity {
			count++
		}
	}

	return count
}
