package walletkeys

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // HASH160 is defined over RIPEMD-160.
)

const hash160Size = ripemd160.Size

func hash160(input []byte) [hash160Size]byte {
	sha := sha256.Sum256(input)

	hasher := ripemd160.New()
	_, _ = hasher.Write(sha[:])

	var out [hash160Size]byte
	copy(out[:], hasher.Sum(nil))
	return out
}

// TaggedHash is the BIP340 construction SHA256(SHA256(tag) || SHA256(tag) || msg).
func TaggedHash(tag string, msg []byte) [32]byte {
	return *chainhash.TaggedHash([]byte(tag), msg)
}
