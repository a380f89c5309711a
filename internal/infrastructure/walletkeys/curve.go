package walletkeys

import (
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
)

var errPointAtInfinity = errors.New("point at infinity")

// Point is a secp256k1 group element. Arithmetic is delegated to btcec.
type Point struct {
	jacobian btcec.JacobianPoint
}

func PointFromPublicKey(publicKey *btcec.PublicKey) Point {
	var point Point
	publicKey.AsJacobian(&point.jacobian)
	return point
}

// LiftX returns the curve point with the given x coordinate and an even y.
func LiftX(xOnly []byte) (Point, error) {
	publicKey, err := schnorr.ParsePubKey(xOnly)
	if err != nil {
		return Point{}, err
	}
	return PointFromPublicKey(publicKey), nil
}

// ScalarBaseMult computes scalar·G.
func ScalarBaseMult(scalar *btcec.ModNScalar) Point {
	var point Point
	btcec.ScalarBaseMultNonConst(scalar, &point.jacobian)
	return point
}

func (p Point) Add(other Point) Point {
	var sum Point
	btcec.AddNonConst(&p.jacobian, &other.jacobian, &sum.jacobian)
	return sum
}

func (p Point) IsInfinity() bool {
	x, y, z := p.jacobian.X, p.jacobian.Y, p.jacobian.Z
	x.Normalize()
	y.Normalize()
	z.Normalize()
	return (x.IsZero() && y.IsZero()) || z.IsZero()
}

// XOnly returns the 32-byte big-endian affine x coordinate.
func (p Point) XOnly() ([32]byte, error) {
	if p.IsInfinity() {
		return [32]byte{}, errPointAtInfinity
	}

	affine := p.jacobian
	affine.ToAffine()
	return *affine.X.Bytes(), nil
}

func (p Point) PublicKey() (*btcec.PublicKey, error) {
	if p.IsInfinity() {
		return nil, errPointAtInfinity
	}

	affine := p.jacobian
	affine.ToAffine()
	return btcec.NewPublicKey(&affine.X, &affine.Y), nil
}
