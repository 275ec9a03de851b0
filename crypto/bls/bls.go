// Package bls implements BLS signatures over BLS12-381 with public keys in
// G1 and signatures in G2, including multi-signer aggregation by point
// addition. Messages are hashed to G2 following RFC 9380 with the package
// domain separation tag, so that the in-circuit verifier (circuits/blsverify)
// recomputes exactly the same curve point from the same bytes.
package bls

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"golang.org/x/sync/errgroup"
)

// DST is the domain separation tag mixed into every hash-to-curve call. It is
// shared with the constrained verifier and must never change once signatures
// exist.
const DST = "EPOCHFOLD-V01-CS01-with-BLS12381G2_XMD:SHA-256_SSWU_RO_"

// Parameters holds the two fixed group generators. It is set up once and
// read-only afterwards, so it can be shared freely across goroutines.
type Parameters struct {
	G1Gen bls12381.G1Affine
	G2Gen bls12381.G2Affine
}

// SecretKey is a scalar in the BLS12-381 scalar field. It is never exposed to
// the constrained side.
type SecretKey struct {
	s fr.Element
}

// PublicKey is a point in G1, derived as g1·sk.
type PublicKey struct {
	Key bls12381.G1Affine
}

// Signature is a point in G2, H(msg)·sk. Signatures over the same message
// aggregate by point addition.
type Signature struct {
	Sig bls12381.G2Affine
}

// Setup returns the fixed curve generators.
func Setup() Parameters {
	_, _, g1, g2 := bls12381.Generators()
	return Parameters{G1Gen: g1, G2Gen: g2}
}

// GenerateKey samples a uniform secret key from the given entropy source.
func GenerateKey(rng io.Reader) (*SecretKey, error) {
	if rng == nil {
		rng = rand.Reader
	}
	n, err := rand.Int(rng, fr.Modulus())
	if err != nil {
		return nil, fmt.Errorf("failed to sample secret scalar: %w", err)
	}
	sk := new(SecretKey)
	sk.s.SetBigInt(n)
	return sk, nil
}

// Public derives the public key g1·sk.
func (sk *SecretKey) Public(params Parameters) *PublicKey {
	pk := new(PublicKey)
	pk.Key.ScalarMultiplication(&params.G1Gen, sk.scalar())
	return pk
}

func (sk *SecretKey) scalar() *big.Int {
	return sk.s.BigInt(new(big.Int))
}

// hashToCurve maps a message to G2. A failure here means a misconfigured
// hasher, not bad user input, and is therefore fatal.
func hashToCurve(msg []byte) bls12381.G2Affine {
	p, err := bls12381.HashToG2(msg, []byte(DST))
	if err != nil {
		panic(fmt.Sprintf("bls: hash to curve: %v", err))
	}
	return p
}

// Sign produces H(msg)·sk.
func Sign(msg []byte, sk *SecretKey, _ Parameters) *Signature {
	hm := hashToCurve(msg)
	sig := new(Signature)
	sig.Sig.ScalarMultiplication(&hm, sk.scalar())
	return sig
}

// AggregateSign signs the message independently with every key and sums the
// resulting points. Signing one by one (instead of summing the keys first)
// mirrors real multi-party signing where keys are never co-located. Returns
// nil when the key list is empty: an empty signer set is a legitimate caller
// state, not an error.
//
// The per-key signatures are computed concurrently into an index slice and
// folded afterwards; point addition is commutative and associative, so the
// result does not depend on scheduling.
func AggregateSign(msg []byte, sks []*SecretKey, params Parameters) *Signature {
	if len(sks) == 0 {
		return nil
	}
	sigs := make([]*Signature, len(sks))
	g := new(errgroup.Group)
	for i, sk := range sks {
		g.Go(func() error {
			sigs[i] = Sign(msg, sk, params)
			return nil
		})
	}
	_ = g.Wait() // the workers never fail

	var acc bls12381.G2Jac
	acc.FromAffine(&sigs[0].Sig)
	for _, s := range sigs[1:] {
		acc.AddMixed(&s.Sig)
	}
	agg := new(Signature)
	agg.Sig.FromJacobian(&acc)
	return agg
}

// VerifySlow checks e(g1, sig) == e(pk, H(msg)) by computing both pairings in
// full, including two final exponentiations. It is the correctness baseline
// for Verify and is not used on the hot path.
func VerifySlow(msg []byte, sig *Signature, pk *PublicKey, params Parameters) bool {
	hm := hashToCurve(msg)
	left, err := bls12381.Pair([]bls12381.G1Affine{params.G1Gen}, []bls12381.G2Affine{sig.Sig})
	if err != nil {
		return false
	}
	right, err := bls12381.Pair([]bls12381.G1Affine{pk.Key}, []bls12381.G2Affine{hm})
	if err != nil {
		return false
	}
	return left.Equal(&right)
}

// Verify checks the same equation as VerifySlow via the product
// e(-g1, sig)·e(pk, H(msg)) == 1: one combined Miller loop over both point
// pairs and a single final exponentiation, which is where the savings are.
// Verify and VerifySlow must agree on every input.
func Verify(msg []byte, sig *Signature, pk *PublicKey, params Parameters) bool {
	hm := hashToCurve(msg)
	var negG1 bls12381.G1Affine
	negG1.Neg(&params.G1Gen)
	ok, err := bls12381.PairingCheck(
		[]bls12381.G1Affine{negG1, pk.Key},
		[]bls12381.G2Affine{sig.Sig, hm},
	)
	if err != nil {
		return false
	}
	return ok
}

// AggregateVerify sums the public keys and checks the aggregate signature
// against the aggregate key. The second return value is false when the key
// list is empty and no meaningful answer exists.
//
// Note: this delegates to VerifySlow while single-signer Verify uses the
// combined-pairing check. The asymmetry is kept on purpose; upgrading this
// call site is an equivalence-preserving change, but should be done
// explicitly, not silently.
func AggregateVerify(msg []byte, aggSig *Signature, pks []*PublicKey, params Parameters) (valid, ok bool) {
	if len(pks) == 0 {
		return false, false
	}
	var acc bls12381.G1Jac
	acc.FromAffine(&pks[0].Key)
	for _, pk := range pks[1:] {
		acc.AddMixed(&pk.Key)
	}
	aggPk := new(PublicKey)
	aggPk.Key.FromJacobian(&acc)
	return VerifySlow(msg, aggSig, aggPk, params), true
}
