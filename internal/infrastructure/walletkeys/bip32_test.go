//go:build !integration

package walletkeys

import (
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/stretchr/testify/require"
)

const (
	// BIP84 test vector account key for m/84'/0'/0'.
	bip84AccountZPub = "zpub6rFR7y4Q2AijBEqTUquhVz398htDFrtymD9xYYfG1m4wAcvPhXNfE3EfH1r1ADqtfSdVCToUG868RvUUkgDKf31mGDtKsAYz2oz2AGutZYs"
	// BIP86 test vector account key for m/86'/0'/0'.
	bip86AccountXPub = "xpub6BgBgsespWvERF3LHQu6CnqdvfEvtMcQjYrcRzx53QJjSxarj2afYWcLteoGVky7D3UKDP9QyrLprQ3VCECoY49yfdDEHGCtMMj92pReUsQ"

	bip32MasterXPrv = "xprv9s21ZrQH143K3QTDL4LXw2F7HEK3wJUD2nW2nRk4stbPy6cq3jPPqjiChkVvvNKmPGJxWUtg6LnF5kejMRNNU3TGtRBeJgk33yuGBxrMPHi"
	bip32MasterXPub = "xpub661MyMwAqRbcFtXgS5sYJABqqG9YLmC4Q1Rdap9gSE8NqtwybGhePY2gZ29ESFjqJoCu1Rupje8YtGqsefD265TMg7usUDFdp6W1EGMcet8"
	testnetTPub     = "tpubDC2pzLGKv5DoHtRoYjJsbgESSzFqc3mtPzahMMqhH89bqqHot28MFUHkUECJrBGFb2KPQZUrApq4Ti6Y69S2K3snrsT8E5Zjt1GqTMj7xn5"
)

func mustParseKey(t *testing.T, serialized string) ExtendedPublicKey {
	t.Helper()

	key, keyErr := ParseExtendedPublicKey(serialized)
	require.Nil(t, keyErr)
	return key
}

func TestParseExtendedPublicKeyAcceptsMainnetPublicVersions(t *testing.T) {
	for _, serialized := range []string{bip84AccountZPub, bip86AccountXPub, bip32MasterXPub} {
		key, keyErr := ParseExtendedPublicKey("  " + serialized + "\n")
		require.Nil(t, keyErr)
		require.Equal(t, serialized, key.String())
	}
}

func TestParseExtendedPublicKeyRejectsPrivateMaterial(t *testing.T) {
	_, keyErr := ParseExtendedPublicKey(bip32MasterXPrv)
	require.NotNil(t, keyErr)
	require.Equal(t, CodeInvalidConfiguration, keyErr.Code)
}

func TestParseExtendedPublicKeyRejectsTestnetVersion(t *testing.T) {
	_, keyErr := ParseExtendedPublicKey(testnetTPub)
	require.NotNil(t, keyErr)
	require.Equal(t, CodeInvalidKeyMaterialFormat, keyErr.Code)
}

func TestParseExtendedPublicKeyRejectsGarbage(t *testing.T) {
	for _, serialized := range []string{"", "not-a-key", bip84AccountZPub[:len(bip84AccountZPub)-1] + "t"} {
		_, keyErr := ParseExtendedPublicKey(serialized)
		require.NotNil(t, keyErr, serialized)
		require.Equal(t, CodeInvalidKeyMaterialFormat, keyErr.Code)
	}
}

func TestValidateAccountLevelPolicy(t *testing.T) {
	require.Nil(t, ValidateAccountLevelPolicy(mustParseKey(t, bip84AccountZPub)))
	require.Nil(t, ValidateAccountLevelPolicy(mustParseKey(t, bip86AccountXPub)))

	keyErr := ValidateAccountLevelPolicy(mustParseKey(t, bip32MasterXPub))
	require.NotNil(t, keyErr)
	require.Equal(t, CodeInvalidConfiguration, keyErr.Code)
}

func TestDeriveChildKeyMatchesBIP84Vector(t *testing.T) {
	key := mustParseKey(t, bip84AccountZPub)

	child, keyErr := DeriveChildKey(key, 0)
	require.Nil(t, keyErr)
	require.Equal(t,
		"0330d54fd0dd420a6e5f8d3624f5f3482cae350f79d5f0753bf5beef9c2d91af3c",
		hex.EncodeToString(child.Compressed[:]),
	)
	require.Equal(t, child.Compressed[1:], child.XOnly[:])
}

func TestDeriveChildKeyMatchesBIP86InternalKey(t *testing.T) {
	key := mustParseKey(t, bip86AccountXPub)

	child, keyErr := DeriveChildKey(key, 0)
	require.Nil(t, keyErr)
	require.Equal(t,
		"cc8a4bc64d897bddc5fbc2f670f7a8ba0b386779106cf1223c6fc5d7cd6fc115",
		hex.EncodeToString(child.XOnly[:]),
	)
}

func TestDeriveChildKeyIsDeterministic(t *testing.T) {
	key := mustParseKey(t, bip84AccountZPub)

	first, keyErr := DeriveChildKey(key, 42)
	require.Nil(t, keyErr)
	second, keyErr := DeriveChildKey(mustParseKey(t, bip84AccountZPub), 42)
	require.Nil(t, keyErr)
	require.Equal(t, first, second)
}

func TestDeriveChildKeyRejectsHardenedIndex(t *testing.T) {
	key := mustParseKey(t, bip84AccountZPub)

	_, keyErr := DeriveChildKey(key, hdkeychain.HardenedKeyStart)
	require.NotNil(t, keyErr)
	require.Equal(t, CodeDerivationFailed, keyErr.Code)
	require.ErrorIs(t, keyErr, hdkeychain.ErrDeriveHardFromPublic)
}

func TestDeriveChildKeyRejectsZeroValue(t *testing.T) {
	_, keyErr := DeriveChildKey(ExtendedPublicKey{}, 0)
	require.NotNil(t, keyErr)
	require.Equal(t, CodeDerivationFailed, keyErr.Code)
}
