// Package chain holds the native committee and block types mirrored by the
// constrained variables in circuits/epochfold. Every byte layout defined here
// is recomputed bit-for-bit inside the circuit, so the serialization is fixed
// and must not depend on how many real signers a committee has: callers pad
// committees to MaxCommitteeSize before anything is hashed or allocated.
package chain

import (
	"encoding/binary"
	"fmt"

	"github.com/vocdoni/epochfold/crypto/bls"
)

// Signer is one committee slot: a public key and its voting weight. Padding
// slots carry a zero key and zero weight.
type Signer struct {
	PublicKey bls.PublicKey
	Weight    uint64
}

// Committee is the ordered list of signers valid for one epoch.
type Committee struct {
	Signers []Signer
}

// QuorumSignature is an aggregate signature plus one bitmask bit per
// committee slot marking which signers contributed.
type QuorumSignature struct {
	Sig     bls.Signature
	Signers []bool
}

// PadToMax returns a copy of the committee padded with zero-weight dummy
// signers up to MaxCommitteeSize. Padding happens here, on the caller side,
// and never inside a constrained allocator: the padded bytes are part of
// every digest, so both worlds must see the same fixed-size data. A committee
// larger than MaxCommitteeSize is a configuration error and panics.
func (c Committee) PadToMax() Committee {
	if len(c.Signers) > MaxCommitteeSize {
		panic(fmt.Sprintf("chain: committee has %d signers, max is %d", len(c.Signers), MaxCommitteeSize))
	}
	padded := Committee{Signers: make([]Signer, MaxCommitteeSize)}
	copy(padded.Signers, c.Signers)
	return padded
}

// TotalWeight sums the weights of the signers selected by the mask. The mask
// length must match the committee.
func (c Committee) TotalWeight(mask []bool) uint64 {
	var total uint64
	for i, signed := range mask {
		if signed {
			total += c.Signers[i].Weight
		}
	}
	return total
}

// appendSigner writes one committee slot: pk.x ‖ pk.y ‖ weight, coordinates
// as 48-byte big-endian field elements, weight as 8-byte big-endian. The zero
// public key serializes as all-zero bytes, matching the in-circuit identity
// representation.
func appendSigner(out []byte, s *Signer) []byte {
	x := s.PublicKey.Key.X.Bytes()
	y := s.PublicKey.Key.Y.Bytes()
	out = append(out, x[:]...)
	out = append(out, y[:]...)
	return binary.BigEndian.AppendUint64(out, s.Weight)
}

// appendQuorumSig writes the aggregate G2 point (x.A0 ‖ x.A1 ‖ y.A0 ‖ y.A1)
// followed by one byte per bitmask slot. The mask must already have
// MaxCommitteeSize entries.
func appendQuorumSig(out []byte, qs *QuorumSignature) []byte {
	xa0 := qs.Sig.Sig.X.A0.Bytes()
	xa1 := qs.Sig.Sig.X.A1.Bytes()
	ya0 := qs.Sig.Sig.Y.A0.Bytes()
	ya1 := qs.Sig.Sig.Y.A1.Bytes()
	out = append(out, xa0[:]...)
	out = append(out, xa1[:]...)
	out = append(out, ya0[:]...)
	out = append(out, ya1[:]...)
	for _, signed := range qs.Signers {
		if signed {
			out = append(out, 1)
		} else {
			out = append(out, 0)
		}
	}
	return out
}
