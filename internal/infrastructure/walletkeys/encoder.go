package walletkeys

import (
	valueobjects "addrpool/internal/domain/value_objects"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/btcsuite/btcd/chaincfg"
)

const tapTweakTag = "TapTweak"

var mainNetParams = &chaincfg.MainNetParams

// Encode renders a compressed public key as a mainnet address of the given
// standard.
func Encode(publicKey []byte, standard valueobjects.AddressStandard) (string, *KeyError) {
	parsed, err := btcec.ParsePubKey(publicKey)
	if err != nil {
		return "", wrapKeyError(CodeEncodingFailed, "public key is not a valid curve point", err)
	}
	compressed := parsed.SerializeCompressed()

	switch standard {
	case valueobjects.AddressStandardP2PKH:
		pubKeyHash := hash160(compressed)
		return base58.CheckEncode(pubKeyHash[:], mainNetParams.PubKeyHashAddrID), nil
	case valueobjects.AddressStandardP2SHP2WPKH:
		scriptHash := hash160(witnessV0RedeemScript(compressed))
		return base58.CheckEncode(scriptHash[:], mainNetParams.ScriptHashAddrID), nil
	case valueobjects.AddressStandardP2WPKH:
		pubKeyHash := hash160(compressed)
		return encodeSegWitAddress(mainNetParams.Bech32HRPSegwit, 0, pubKeyHash[:])
	case valueobjects.AddressStandardP2TR:
		var internal [32]byte
		copy(internal[:], compressed[1:])
		outputKey, keyErr := TaprootOutputKey(internal)
		if keyErr != nil {
			return "", keyErr
		}
		return encodeSegWitAddress(mainNetParams.Bech32HRPSegwit, 1, outputKey[:])
	default:
		return "", wrapKeyError(CodeEncodingFailed, "unsupported address standard", nil)
	}
}

// DeriveAddress derives the receive key at index and encodes it.
func DeriveAddress(key ExtendedPublicKey, standard valueobjects.AddressStandard, index uint32) (string, *KeyError) {
	if !standard.Valid() {
		return "", wrapKeyError(CodeEncodingFailed, "unsupported address standard", nil)
	}

	child, keyErr := DeriveChildKey(key, index)
	if keyErr != nil {
		return "", keyErr
	}
	return Encode(child.Compressed[:], standard)
}

// witnessV0RedeemScript is OP_0 <20-byte HASH160(pubkey)>.
func witnessV0RedeemScript(compressed []byte) []byte {
	pubKeyHash := hash160(compressed)
	script := make([]byte, 0, 2+hash160Size)
	script = append(script, 0x00, 0x14)
	return append(script, pubKeyHash[:]...)
}

// TaprootOutputKey applies the BIP341 key-path-only tweak to an x-only
// internal key: Q = P + H_TapTweak(x(P))·G with P the even-y lift of x.
func TaprootOutputKey(internalXOnly [32]byte) ([32]byte, *KeyError) {
	internal, err := LiftX(internalXOnly[:])
	if err != nil {
		return [32]byte{}, wrapKeyError(CodeEncodingFailed, "taproot internal key is not a valid curve point", err)
	}

	tweak := TaggedHash(tapTweakTag, internalXOnly[:])
	var scalar btcec.ModNScalar
	if overflow := scalar.SetByteSlice(tweak[:]); overflow {
		return [32]byte{}, wrapKeyError(CodeEncodingFailed, "taproot tweak exceeds the curve order", nil)
	}

	output := internal
	if !scalar.IsZero() {
		output = internal.Add(ScalarBaseMult(&scalar))
	}

	xOnly, err := output.XOnly()
	if err != nil {
		return [32]byte{}, wrapKeyError(CodeEncodingFailed, "taproot output key is invalid", err)
	}
	return xOnly, nil
}

func encodeSegWitAddress(hrp string, witnessVersion byte, witnessProgram []byte) (string, *KeyError) {
	converted, err := bech32.ConvertBits(witnessProgram, 8, 5, true)
	if err != nil {
		return "", wrapKeyError(CodeEncodingFailed, "failed to convert witness program", err)
	}

	data := make([]byte, 0, len(converted)+1)
	data = append(data, witnessVersion)
	data = append(data, converted...)

	var address string
	if witnessVersion == 0 {
		address, err = bech32.Encode(hrp, data)
	} else {
		address, err = bech32.EncodeM(hrp, data)
	}
	if err != nil {
		return "", wrapKeyError(CodeEncodingFailed, "failed to encode segwit address", err)
	}
	return address, nil
}
