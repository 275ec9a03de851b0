package bls

import (
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// Serialized sizes. Points use the standard compressed encodings; the scalar
// is a 32-byte big-endian integer. These layouts are stable: they are hashed
// both inside and outside the constrained system and must keep matching.
const (
	SizeOfSecretKey  = fr.Bytes
	SizeOfPublicKey  = bls12381.SizeOfG1AffineCompressed
	SizeOfSignature  = bls12381.SizeOfG2AffineCompressed
	SizeOfParameters = bls12381.SizeOfG1AffineCompressed + bls12381.SizeOfG2AffineCompressed
)

// Bytes returns the compressed generators, G1 first.
func (p *Parameters) Bytes() []byte {
	out := make([]byte, 0, SizeOfParameters)
	g1 := p.G1Gen.Bytes()
	g2 := p.G2Gen.Bytes()
	out = append(out, g1[:]...)
	return append(out, g2[:]...)
}

// SetBytes deserializes parameters produced by Bytes.
func (p *Parameters) SetBytes(data []byte) error {
	if len(data) != SizeOfParameters {
		return fmt.Errorf("invalid parameters length %d, expected %d", len(data), SizeOfParameters)
	}
	if _, err := p.G1Gen.SetBytes(data[:bls12381.SizeOfG1AffineCompressed]); err != nil {
		return fmt.Errorf("invalid g1 generator: %w", err)
	}
	if _, err := p.G2Gen.SetBytes(data[bls12381.SizeOfG1AffineCompressed:]); err != nil {
		return fmt.Errorf("invalid g2 generator: %w", err)
	}
	return nil
}

// Bytes returns the scalar as a 32-byte big-endian integer.
func (sk *SecretKey) Bytes() []byte {
	b := sk.s.Bytes()
	return b[:]
}

// SetBytes deserializes a secret key produced by Bytes.
func (sk *SecretKey) SetBytes(data []byte) error {
	if len(data) != SizeOfSecretKey {
		return fmt.Errorf("invalid secret key length %d, expected %d", len(data), SizeOfSecretKey)
	}
	sk.s.SetBytes(data)
	return nil
}

// Bytes returns the compressed G1 point.
func (pk *PublicKey) Bytes() []byte {
	b := pk.Key.Bytes()
	return b[:]
}

// SetBytes deserializes a public key produced by Bytes. The point is checked
// for curve and subgroup membership.
func (pk *PublicKey) SetBytes(data []byte) error {
	if _, err := pk.Key.SetBytes(data); err != nil {
		return fmt.Errorf("invalid public key: %w", err)
	}
	return nil
}

// Bytes returns the compressed G2 point.
func (s *Signature) Bytes() []byte {
	b := s.Sig.Bytes()
	return b[:]
}

// SetBytes deserializes a signature produced by Bytes. The point is checked
// for curve and subgroup membership.
func (s *Signature) SetBytes(data []byte) error {
	if _, err := s.Sig.SetBytes(data); err != nil {
		return fmt.Errorf("invalid signature: %w", err)
	}
	return nil
}
