//go:build !integration

package hdwallet

import (
	"context"
	"testing"

	valueobjects "addrpool/internal/domain/value_objects"
	apperrors "addrpool/internal/shared_kernel/errors"

	"github.com/stretchr/testify/require"
)

const (
	bip84AccountZPub = "zpub6rFR7y4Q2AijBEqTUquhVz398htDFrtymD9xYYfG1m4wAcvPhXNfE3EfH1r1ADqtfSdVCToUG868RvUUkgDKf31mGDtKsAYz2oz2AGutZYs"
	bip86AccountXPub = "xpub6BgBgsespWvERF3LHQu6CnqdvfEvtMcQjYrcRzx53QJjSxarj2afYWcLteoGVky7D3UKDP9QyrLprQ3VCECoY49yfdDEHGCtMMj92pReUsQ"
	bip32MasterXPrv  = "xprv9s21ZrQH143K3QTDL4LXw2F7HEK3wJUD2nW2nRk4stbPy6cq3jPPqjiChkVvvNKmPGJxWUtg6LnF5kejMRNNU3TGtRBeJgk33yuGBxrMPHi"
	bip32MasterXPub  = "xpub661MyMwAqRbcFtXgS5sYJABqqG9YLmC4Q1Rdap9gSE8NqtwybGhePY2gZ29ESFjqJoCu1Rupje8YtGqsefD265TMg7usUDFdp6W1EGMcet8"
)

func walletConfig(t *testing.T, key, path string) valueobjects.WalletConfiguration {
	t.Helper()

	config, recognized, appErr := valueobjects.NewWalletConfiguration(valueobjects.WalletConfigurationInput{
		ExtendedPublicKey: key,
		DerivationPath:    path,
	})
	require.Nil(t, appErr)
	require.True(t, recognized)
	return config
}

func TestGatewayDerivesBIP84Addresses(t *testing.T) {
	gateway := NewGateway(nil)
	config := walletConfig(t, bip84AccountZPub, "m/84'/0'/0'")

	require.Nil(t, gateway.ValidateConfiguration(context.Background(), config))

	first, appErr := gateway.DeriveAddress(context.Background(), config, 0)
	require.Nil(t, appErr)
	require.Equal(t, "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu", first)

	second, appErr := gateway.DeriveAddress(context.Background(), config, 1)
	require.Nil(t, appErr)
	require.Equal(t, "bc1qnjg0jd8228aq7egyzacy8cys3knf9xvrerkf9g", second)
}

func TestGatewayDerivesBIP86Addresses(t *testing.T) {
	gateway := NewGateway(nil)
	config := walletConfig(t, bip86AccountXPub, "m/86'/0'/0'")

	address, appErr := gateway.DeriveAddress(context.Background(), config, 0)
	require.Nil(t, appErr)
	require.Equal(t, "bc1p5cyxnuxmeuwuvkwfem96lqzszd02n6xdcjrs20cac6yqjjwudpxqkedrcr", address)
}

func TestGatewayRejectsPrivateKeyAsConfigurationError(t *testing.T) {
	gateway := NewGateway(nil)
	config := walletConfig(t, bip32MasterXPrv, "m/84'/0'/0'")

	appErr := gateway.ValidateConfiguration(context.Background(), config)
	require.NotNil(t, appErr)
	require.Equal(t, apperrors.CodeConfiguration, appErr.Code)
	require.Equal(t, apperrors.TypeValidation, appErr.Type)
}

func TestGatewayRejectsNonAccountLevelKey(t *testing.T) {
	gateway := NewGateway(nil)
	config := walletConfig(t, bip32MasterXPub, "m/84'/0'/0'")

	_, appErr := gateway.DeriveAddress(context.Background(), config, 0)
	require.NotNil(t, appErr)
	require.Equal(t, apperrors.CodeConfiguration, appErr.Code)
	require.Equal(t, "invalid_configuration", appErr.Details["key_error_code"])
}

func TestGatewayRejectsHardenedIndexAsDerivationError(t *testing.T) {
	gateway := NewGateway(nil)
	config := walletConfig(t, bip84AccountZPub, "m/84'/0'/0'")

	_, appErr := gateway.DeriveAddress(context.Background(), config, 1<<31)
	require.NotNil(t, appErr)
	require.Equal(t, apperrors.CodeDerivation, appErr.Code)
	require.Equal(t, uint32(1<<31), appErr.Details["derivation_index"])
}

func TestGatewayRejectsUnknownStandard(t *testing.T) {
	gateway := NewGateway(nil)
	config := walletConfig(t, bip84AccountZPub, "m/84'/0'/0'")
	config.AddressStandard = "p2wsh"

	require.NotNil(t, gateway.ValidateConfiguration(context.Background(), config))

	_, appErr := gateway.DeriveAddress(context.Background(), config, 0)
	require.NotNil(t, appErr)
	require.Equal(t, apperrors.CodeEncoding, appErr.Code)
}
