package dto

import "time"

type GetCurrentAddressQuery struct{}

type CurrentAddressOutput struct {
	Address         string    `json:"address"`
	AddressStandard string    `json:"address_standard"`
	DerivationIndex uint32    `json:"derivation_index"`
	PoolKey         string    `json:"pool_key"`
	Initialized     bool      `json:"initialized"`
	Rotated         bool      `json:"rotated"`
	NextRotationAt  time.Time `json:"next_rotation_at"`
}

type GetPoolStatsQuery struct{}

type PoolEntryOutput struct {
	Position        int       `json:"position"`
	DerivationIndex uint32    `json:"derivation_index"`
	Address         string    `json:"address"`
	LastCheckedAt   time.Time `json:"last_checked_at"`
	HasActivity     bool      `json:"has_activity"`
	Current         bool      `json:"current"`
}

type PoolStatsOutput struct {
	PoolKey             string            `json:"pool_key"`
	AddressStandard     string            `json:"address_standard"`
	DerivationPath      string            `json:"derivation_path"`
	Initialized         bool              `json:"initialized"`
	PoolSize            int               `json:"pool_size"`
	ActiveEntries       int               `json:"active_entries"`
	CurrentIndex        int               `json:"current_index"`
	CurrentAddress      string            `json:"current_address,omitempty"`
	NextDerivationIndex uint32            `json:"next_derivation_index"`
	LastRotationAt      *time.Time        `json:"last_rotation_at,omitempty"`
	NextRotationAt      *time.Time        `json:"next_rotation_at,omitempty"`
	Entries             []PoolEntryOutput `json:"entries"`
}

type ForceRotationCommand struct{}

type ForceRotationOutput struct {
	PoolKey        string     `json:"pool_key"`
	Rewound        bool       `json:"rewound"`
	LastRotationAt *time.Time `json:"last_rotation_at,omitempty"`
}

type ClearPoolCommand struct{}

type ClearPoolOutput struct {
	PoolKey string `json:"pool_key"`
}

// ActivityReport is what the activity oracle knows about one address.
type ActivityReport struct {
	Address           string
	ConfirmedTxCount  int64
	PendingTxCount    int64
	ObservationSource string
}

func (r ActivityReport) HasActivity() bool {
	return r.ConfirmedTxCount > 0 || r.PendingTxCount > 0
}
