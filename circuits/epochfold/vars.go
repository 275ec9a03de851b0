// Package epochfold implements the epoch transition step circuit: it decodes
// the running committee state, checks that a candidate block advances the
// epoch by one, aggregates the public keys selected by the block's bitmask,
// verifies the quorum signature over the canonical block serialization and
// checks the signed weight against the strong threshold. The step is meant to
// be driven by an external folding scheme, so its state in and out is a flat
// slice of native field variables.
package epochfold

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/emulated/sw_bls12381"
	"github.com/consensys/gnark/std/math/uints"

	"github.com/vocdoni/epochfold/chain"
)

// SignerVar is one committee slot as circuit witness. Padding slots carry the
// (0, 0) point and zero weight, same as the native layout.
type SignerVar struct {
	PublicKey sw_bls12381.G1Affine
	Weight    frontend.Variable
}

// CommitteeVar is a fixed-size committee. There is no variable-size form: the
// byte layout hashed in-circuit depends on every slot.
type CommitteeVar struct {
	Signers [chain.MaxCommitteeSize]SignerVar
}

// QuorumSignatureVar is the aggregate signature and one bitmask variable per
// committee slot.
type QuorumSignatureVar struct {
	Sig     sw_bls12381.G2Affine
	Signers [chain.MaxCommitteeSize]frontend.Variable
}

// BlockVar is the witness form of chain.Block.
type BlockVar struct {
	Epoch      frontend.Variable
	PrevDigest [chain.DigestSize]uints.U8
	Sig        QuorumSignatureVar
	Committee  CommitteeVar
}

// NewCommitteeVar assigns a native committee to witness form. The committee
// must already be padded to MaxCommitteeSize; padding inside the allocator
// would hide a mismatch between the bytes hashed natively and in-circuit, so
// an unpadded committee panics instead.
func NewCommitteeVar(c chain.Committee) CommitteeVar {
	if len(c.Signers) != chain.MaxCommitteeSize {
		panic(fmt.Sprintf("epochfold: committee has %d signers, expected padded size %d", len(c.Signers), chain.MaxCommitteeSize))
	}
	var cv CommitteeVar
	for i, s := range c.Signers {
		cv.Signers[i] = SignerVar{
			PublicKey: sw_bls12381.NewG1Affine(s.PublicKey.Key),
			Weight:    s.Weight,
		}
	}
	return cv
}

// NewQuorumSignatureVar assigns a native quorum signature to witness form.
// The bitmask must already have MaxCommitteeSize entries.
func NewQuorumSignatureVar(qs chain.QuorumSignature) QuorumSignatureVar {
	if len(qs.Signers) != chain.MaxCommitteeSize {
		panic(fmt.Sprintf("epochfold: bitmask has %d slots, expected padded size %d", len(qs.Signers), chain.MaxCommitteeSize))
	}
	qv := QuorumSignatureVar{Sig: sw_bls12381.NewG2Affine(qs.Sig.Sig)}
	for i, signed := range qs.Signers {
		if signed {
			qv.Signers[i] = 1
		} else {
			qv.Signers[i] = 0
		}
	}
	return qv
}

// NewBlockVar assigns a native block to witness form. The block's committee
// and bitmask must be padded to MaxCommitteeSize.
func NewBlockVar(b chain.Block) BlockVar {
	bv := BlockVar{
		Epoch:     b.Epoch,
		Sig:       NewQuorumSignatureVar(b.Sig),
		Committee: NewCommitteeVar(b.Committee),
	}
	copy(bv.PrevDigest[:], uints.NewU8Array(b.PrevDigest[:]))
	return bv
}
