package epochfold

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/emulated/sw_bls12381"
	"github.com/consensys/gnark/std/math/emulated"
	"github.com/consensys/gnark/std/rangecheck"

	"github.com/vocdoni/epochfold/chain"
)

// The folded state packs the running committee and the epoch counter into
// native field variables: per slot the 6 little-endian 64-bit limbs of each
// public key coordinate plus the weight, then the epoch as the last entry.
const (
	limbsPerFp    = 6
	varsPerSigner = 2*limbsPerFp + 1

	// StateLen is the length of the folded state vector.
	StateLen = chain.MaxCommitteeSize*varsPerSigner + 1
)

// decodeState rebuilds the committee and epoch from a state vector.
// UnsafeFromLimbs trusts its input, so every state entry (coordinate limbs,
// weights and epoch alike) is range checked to 64 bits first.
func decodeState(api frontend.API, f *emulated.Field[sw_bls12381.BaseField], z []frontend.Variable) (CommitteeVar, frontend.Variable, error) {
	var cv CommitteeVar
	if len(z) != StateLen {
		return cv, nil, fmt.Errorf("state vector has %d entries, expected %d", len(z), StateLen)
	}
	rc := rangecheck.New(api)
	for _, v := range z {
		rc.Check(v, 64)
	}
	for i := range cv.Signers {
		off := i * varsPerSigner
		cv.Signers[i] = SignerVar{
			PublicKey: sw_bls12381.G1Affine{
				X: *f.UnsafeFromLimbs(z[off : off+limbsPerFp]),
				Y: *f.UnsafeFromLimbs(z[off+limbsPerFp : off+2*limbsPerFp]),
			},
			Weight: z[off+2*limbsPerFp],
		}
	}
	return cv, z[StateLen-1], nil
}

// encodeState flattens a committee and epoch back into a state vector. Each
// coordinate is strictly reduced before its limbs are emitted, so equal keys
// always encode to equal state vectors regardless of the witness
// representation they arrived in.
func encodeState(f *emulated.Field[sw_bls12381.BaseField], committee *CommitteeVar, epoch frontend.Variable) ([]frontend.Variable, error) {
	z := make([]frontend.Variable, 0, StateLen)
	for i := range committee.Signers {
		s := &committee.Signers[i]
		for _, coord := range []*emulated.Element[sw_bls12381.BaseField]{&s.PublicKey.X, &s.PublicKey.Y} {
			red := f.ReduceStrict(coord)
			if len(red.Limbs) != limbsPerFp {
				return nil, fmt.Errorf("signer %d coordinate has %d limbs, expected %d", i, len(red.Limbs), limbsPerFp)
			}
			z = append(z, red.Limbs...)
		}
		z = append(z, s.Weight)
	}
	return append(z, epoch), nil
}

// StateVector is the native counterpart of encodeState: the assignment a
// folding driver feeds as the running state for the given committee and
// epoch. The committee must be padded to MaxCommitteeSize.
func StateVector(c chain.Committee, epoch uint64) []*big.Int {
	if len(c.Signers) != chain.MaxCommitteeSize {
		panic(fmt.Sprintf("epochfold: committee has %d signers, expected padded size %d", len(c.Signers), chain.MaxCommitteeSize))
	}
	z := make([]*big.Int, 0, StateLen)
	for i := range c.Signers {
		var x, y big.Int
		c.Signers[i].PublicKey.Key.X.BigInt(&x)
		c.Signers[i].PublicKey.Key.Y.BigInt(&y)
		z = append(z, fpLimbs(&x)...)
		z = append(z, fpLimbs(&y)...)
		z = append(z, new(big.Int).SetUint64(c.Signers[i].Weight))
	}
	return append(z, new(big.Int).SetUint64(epoch))
}

// fpLimbs splits v into limbsPerFp little-endian 64-bit limbs.
func fpLimbs(v *big.Int) []*big.Int {
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 64), big.NewInt(1))
	limbs := make([]*big.Int, limbsPerFp)
	rest := new(big.Int).Set(v)
	for i := range limbs {
		limbs[i] = new(big.Int).And(rest, mask)
		rest.Rsh(rest, 64)
	}
	return limbs
}
