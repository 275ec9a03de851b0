// Package blsverify provides the in-circuit counterpart of crypto/bls
// verification: given emulated G1/G2 points and a byte-variable message, it
// constrains e(-g1, sig) * e(pk, H(msg)) == 1, the single-final-exponentiation
// form of the pairing equation. All curve arithmetic runs over the emulated
// BLS12-381 base field, so the gadget works on any inner curve the folding
// driver picks.
package blsverify

import (
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/emulated/sw_bls12381"
	"github.com/consensys/gnark/std/algebra/emulated/sw_emulated"
	"github.com/consensys/gnark/std/math/emulated"
	"github.com/consensys/gnark/std/math/uints"
)

// ParametersVar holds the witness form of the scheme generators.
type ParametersVar struct {
	G1Gen sw_bls12381.G1Affine
	G2Gen sw_bls12381.G2Affine
}

// PublicKeyVar is a G1 public key as circuit witness.
type PublicKeyVar struct {
	Key sw_bls12381.G1Affine
}

// SignatureVar is a G2 signature as circuit witness.
type SignatureVar struct {
	Sig sw_bls12381.G2Affine
}

// NewParametersVar assigns native parameters to witness form.
func NewParametersVar(g1Gen bls12381.G1Affine, g2Gen bls12381.G2Affine) ParametersVar {
	return ParametersVar{
		G1Gen: sw_bls12381.NewG1Affine(g1Gen),
		G2Gen: sw_bls12381.NewG2Affine(g2Gen),
	}
}

// NewPublicKeyVar assigns a native public key to witness form.
func NewPublicKeyVar(key bls12381.G1Affine) PublicKeyVar {
	return PublicKeyVar{Key: sw_bls12381.NewG1Affine(key)}
}

// NewSignatureVar assigns a native signature to witness form.
func NewSignatureVar(sig bls12381.G2Affine) SignatureVar {
	return SignatureVar{Sig: sw_bls12381.NewG2Affine(sig)}
}

// Verifier bundles the gadgets needed to verify a signature in-circuit.
type Verifier struct {
	api     frontend.API
	pairing *sw_bls12381.Pairing
	curve   *sw_emulated.Curve[emulated.BLS12381Fp, emulated.BLS12381Fr]
	g2      *sw_bls12381.G2
}

// NewVerifier initializes the pairing, curve and G2 gadgets over the given
// API.
func NewVerifier(api frontend.API) (*Verifier, error) {
	pairing, err := sw_bls12381.NewPairing(api)
	if err != nil {
		return nil, fmt.Errorf("new pairing: %w", err)
	}
	curve, err := sw_emulated.New[emulated.BLS12381Fp, emulated.BLS12381Fr](api, sw_emulated.GetBLS12381Params())
	if err != nil {
		return nil, fmt.Errorf("new curve: %w", err)
	}
	g2, err := sw_bls12381.NewG2(api)
	if err != nil {
		return nil, fmt.Errorf("new g2: %w", err)
	}
	return &Verifier{api: api, pairing: pairing, curve: curve, g2: g2}, nil
}

// Curve exposes the emulated G1 curve gadget for callers that accumulate
// public keys before verifying.
func (v *Verifier) Curve() *sw_emulated.Curve[emulated.BLS12381Fp, emulated.BLS12381Fr] {
	return v.curve
}

// AssertVerified constrains sig to be a valid signature on msg under pk. The
// message is hashed to G2 with the given domain separation tag, then the
// batched check e(-g1, sig) * e(pk, H(msg)) == 1 is enforced with a single
// multi-Miller loop and one final exponentiation.
func (v *Verifier) AssertVerified(params ParametersVar, pk PublicKeyVar, msg []uints.U8, dst []byte, sig SignatureVar) error {
	hm, err := v.g2.HashToG2(msg, dst)
	if err != nil {
		return fmt.Errorf("hash to g2: %w", err)
	}
	negG1 := v.curve.Neg(&params.G1Gen)
	if err := v.pairing.PairingCheck(
		[]*sw_bls12381.G1Affine{negG1, &pk.Key},
		[]*sw_bls12381.G2Affine{&sig.Sig, hm},
	); err != nil {
		return fmt.Errorf("pairing check: %w", err)
	}
	return nil
}
