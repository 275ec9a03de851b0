package epochfold

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/conversion"
	"github.com/consensys/gnark/std/math/uints"

	"github.com/vocdoni/epochfold/chain"
)

// signingBytes recomputes chain.Block.SigningBytes over witness variables:
// the canonical block layout with the quorum signature field zeroed out. The
// two must stay byte for byte identical, otherwise the in-circuit pairing
// check would verify a signature over different bytes than the committee
// signed.
func signingBytes(api frontend.API, block *BlockVar) ([]uints.U8, error) {
	uapi, err := uints.New[uints.U32](api)
	if err != nil {
		return nil, fmt.Errorf("new uints api: %w", err)
	}
	out := make([]uints.U8, 0, chain.BlockBytesLen)
	out = append(out, u64Bytes(api, uapi, block.Epoch)...)
	out = append(out, block.PrevDigest[:]...)
	// zeroed quorum signature: G2 point and bitmask
	out = append(out, uints.NewU8Array(make([]uint8, chain.QuorumSigBytesLen))...)
	for i := range block.Committee.Signers {
		s := &block.Committee.Signers[i]
		x, err := conversion.EmulatedToBytes(api, &s.PublicKey.X)
		if err != nil {
			return nil, fmt.Errorf("signer %d x: %w", i, err)
		}
		y, err := conversion.EmulatedToBytes(api, &s.PublicKey.Y)
		if err != nil {
			return nil, fmt.Errorf("signer %d y: %w", i, err)
		}
		out = append(out, x...)
		out = append(out, y...)
		out = append(out, u64Bytes(api, uapi, s.Weight)...)
	}
	return out, nil
}

// u64Bytes decomposes v into 8 big-endian bytes. The 64-bit decomposition
// also range checks v, so decoded weights and epochs cannot overflow their
// native counterparts.
func u64Bytes(api frontend.API, uapi *uints.BinaryField[uints.U32], v frontend.Variable) []uints.U8 {
	bits := api.ToBinary(v, 64)
	out := make([]uints.U8, 8)
	for i := range out {
		out[i] = uapi.ByteValueOf(api.FromBinary(bits[(7-i)*8 : (8-i)*8]...))
	}
	return out
}
