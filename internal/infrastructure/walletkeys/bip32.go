package walletkeys

import (
	"encoding/binary"
	stderrors "errors"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

const (
	versionXPub uint32 = 0x0488b21e
	versionYPub uint32 = 0x049d7cb2
	versionZPub uint32 = 0x04b24746
)

// ReceiveBranch is the fixed external chain below the account key.
const ReceiveBranch uint32 = 0

const accountDepth = 3

// ExtendedPublicKey is a parsed, public-only mainnet account key.
type ExtendedPublicKey struct {
	key *hdkeychain.ExtendedKey
}

// ChildKey is a derived receive key in the two encodings addresses need.
type ChildKey struct {
	Index      uint32
	Compressed [33]byte
	XOnly      [32]byte
}

func ParseExtendedPublicKey(serialized string) (ExtendedPublicKey, *KeyError) {
	key, err := hdkeychain.NewKeyFromString(strings.TrimSpace(serialized))
	if err != nil {
		return ExtendedPublicKey{}, wrapKeyError(CodeInvalidKeyMaterialFormat, "invalid extended public key encoding", err)
	}
	if key.IsPrivate() {
		return ExtendedPublicKey{}, wrapKeyError(CodeInvalidConfiguration, "extended key must not contain private material", nil)
	}

	switch binary.BigEndian.Uint32(key.Version()) {
	case versionXPub, versionYPub, versionZPub:
	default:
		return ExtendedPublicKey{}, wrapKeyError(CodeInvalidKeyMaterialFormat, "unsupported extended public key version", nil)
	}

	if _, err := key.ECPubKey(); err != nil {
		return ExtendedPublicKey{}, wrapKeyError(CodeInvalidKeyMaterialFormat, "extended public key point is invalid", err)
	}

	return ExtendedPublicKey{key: key}, nil
}

func (k ExtendedPublicKey) Depth() uint8 {
	return k.key.Depth()
}

func (k ExtendedPublicKey) ChildNumber() uint32 {
	return k.key.ChildIndex()
}

func (k ExtendedPublicKey) String() string {
	return k.key.String()
}

func ValidateAccountLevelPolicy(key ExtendedPublicKey) *KeyError {
	if key.Depth() != accountDepth {
		return wrapKeyError(CodeInvalidConfiguration, "extended public key depth must be 3 (account-level)", nil)
	}
	if key.ChildNumber() < hdkeychain.HardenedKeyStart {
		return wrapKeyError(CodeInvalidConfiguration, "extended public key child number must be hardened account index", nil)
	}
	return nil
}

// DeriveChildKey derives the receive key at 0/index below the account key.
func DeriveChildKey(key ExtendedPublicKey, index uint32) (ChildKey, *KeyError) {
	if key.key == nil {
		return ChildKey{}, wrapKeyError(CodeDerivationFailed, "extended public key is not initialized", nil)
	}
	if index >= hdkeychain.HardenedKeyStart {
		return ChildKey{}, wrapKeyError(CodeDerivationFailed, "hardened child derivation is not allowed for public key derivation", hdkeychain.ErrDeriveHardFromPublic)
	}

	branch, err := key.key.Derive(ReceiveBranch)
	if err != nil {
		return ChildKey{}, derivationError(err)
	}
	child, err := branch.Derive(index)
	if err != nil {
		return ChildKey{}, derivationError(err)
	}

	publicKey, err := child.ECPubKey()
	if err != nil {
		return ChildKey{}, wrapKeyError(CodeDerivationFailed, "failed to decode child public key", err)
	}

	out := ChildKey{Index: index}
	copy(out.Compressed[:], publicKey.SerializeCompressed())
	copy(out.XOnly[:], out.Compressed[1:])
	return out, nil
}

func derivationError(err error) *KeyError {
	switch {
	case stderrors.Is(err, hdkeychain.ErrInvalidChild):
		return wrapKeyError(CodeDerivationFailed, "child derivation produced an invalid key", err)
	case stderrors.Is(err, hdkeychain.ErrDeriveHardFromPublic):
		return wrapKeyError(CodeDerivationFailed, "hardened child derivation is not allowed for public key derivation", err)
	default:
		return wrapKeyError(CodeDerivationFailed, "child derivation failed", err)
	}
}
