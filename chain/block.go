package chain

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Block is one epoch transition: the epoch counter, the digest of the
// previous block, the quorum signature attesting to this block and the
// committee valid for this epoch. Epochs advance by exactly one per block.
type Block struct {
	Epoch      uint64
	PrevDigest common.Hash
	Sig        QuorumSignature
	Committee  Committee
}

// Bytes returns the canonical serialization:
//
//	epoch ‖ prevDigest ‖ quorumSig ‖ committee
//
// with fixed-width big-endian integers and 48-byte big-endian field elements
// throughout. The committee and bitmask must be padded to MaxCommitteeSize;
// anything else is a programmer error and panics, because a variably sized
// layout could never match its in-circuit counterpart.
func (b *Block) Bytes() []byte {
	if len(b.Committee.Signers) != MaxCommitteeSize {
		panic(fmt.Sprintf("chain: block committee has %d signers, expected %d", len(b.Committee.Signers), MaxCommitteeSize))
	}
	if len(b.Sig.Signers) != MaxCommitteeSize {
		panic(fmt.Sprintf("chain: block bitmask has %d slots, expected %d", len(b.Sig.Signers), MaxCommitteeSize))
	}
	out := make([]byte, 0, BlockBytesLen)
	out = binary.BigEndian.AppendUint64(out, b.Epoch)
	out = append(out, b.PrevDigest[:]...)
	out = appendQuorumSig(out, &b.Sig)
	for i := range b.Committee.Signers {
		out = appendSigner(out, &b.Committee.Signers[i])
	}
	return out
}

// SigningBytes is the serialization that committee members sign: the block
// bytes with the quorum signature field zeroed out. The signature never signs
// itself.
func (b *Block) SigningBytes() []byte {
	unsigned := *b
	unsigned.Sig = QuorumSignature{Signers: make([]bool, MaxCommitteeSize)}
	return unsigned.Bytes()
}

// Digest is the keccak256 digest of the canonical block bytes, used as the
// next block's PrevDigest.
func (b *Block) Digest() common.Hash {
	return crypto.Keccak256Hash(b.Bytes())
}
