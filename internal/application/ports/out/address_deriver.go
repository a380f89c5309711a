package out

import (
	"context"

	valueobjects "addrpool/internal/domain/value_objects"
	apperrors "addrpool/internal/shared_kernel/errors"
)

// AddressDeriver turns a wallet configuration and a receive index into a
// mainnet address. The same inputs always yield the same address.
type AddressDeriver interface {
	ValidateConfiguration(ctx context.Context, config valueobjects.WalletConfiguration) *apperrors.AppError
	DeriveAddress(ctx context.Context, config valueobjects.WalletConfiguration, index uint32) (string, *apperrors.AppError)
}
