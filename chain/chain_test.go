package chain

import (
	"bytes"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/epochfold/crypto/bls"
	"github.com/vocdoni/epochfold/util"
)

// sigOffset is where the quorum signature starts inside the block bytes.
const sigOffset = 8 + DigestSize

func testCommittee(t *testing.T, params bls.Parameters, weights []uint64) (Committee, []*bls.SecretKey) {
	t.Helper()
	sks := make([]*bls.SecretKey, len(weights))
	signers := make([]Signer, len(weights))
	for i, w := range weights {
		sk, err := bls.GenerateKey(nil)
		qt.Assert(t, err, qt.IsNil)
		sks[i] = sk
		signers[i] = Signer{PublicKey: *sk.Public(params), Weight: w}
	}
	return Committee{Signers: signers}, sks
}

func testBlock(t *testing.T, params bls.Parameters) (Block, []*bls.SecretKey) {
	t.Helper()
	committee, sks := testCommittee(t, params, []uint64{25, 25, 25, 25})
	block := Block{
		Epoch:      7,
		PrevDigest: util.Random32(),
		Sig:        QuorumSignature{Signers: make([]bool, MaxCommitteeSize)},
		Committee:  committee.PadToMax(),
	}
	for i := range sks {
		block.Sig.Signers[i] = true
	}
	block.Sig.Sig = *bls.AggregateSign(block.SigningBytes(), sks, params)
	return block, sks
}

func TestPadToMax(t *testing.T) {
	params := bls.Setup()
	committee, _ := testCommittee(t, params, []uint64{1, 2, 3})

	padded := committee.PadToMax()
	qt.Assert(t, len(padded.Signers), qt.Equals, MaxCommitteeSize)
	qt.Assert(t, padded.Signers[0], qt.DeepEquals, committee.Signers[0])
	for _, s := range padded.Signers[3:] {
		qt.Assert(t, s.Weight, qt.Equals, uint64(0))
		qt.Assert(t, s.PublicKey.Key.X.IsZero(), qt.IsTrue)
		qt.Assert(t, s.PublicKey.Key.Y.IsZero(), qt.IsTrue)
	}

	oversized := Committee{Signers: make([]Signer, MaxCommitteeSize+1)}
	qt.Assert(t, func() { oversized.PadToMax() }, qt.PanicMatches, "chain: committee has .*")
}

func TestTotalWeight(t *testing.T) {
	params := bls.Setup()
	committee, _ := testCommittee(t, params, []uint64{10, 20, 30})
	padded := committee.PadToMax()

	mask := make([]bool, MaxCommitteeSize)
	qt.Assert(t, padded.TotalWeight(mask), qt.Equals, uint64(0))
	mask[0], mask[2] = true, true
	qt.Assert(t, padded.TotalWeight(mask), qt.Equals, uint64(40))
	mask[10] = true // padding slot adds nothing
	qt.Assert(t, padded.TotalWeight(mask), qt.Equals, uint64(40))
}

func TestBlockBytes(t *testing.T) {
	params := bls.Setup()
	block, _ := testBlock(t, params)

	raw := block.Bytes()
	qt.Assert(t, len(raw), qt.Equals, BlockBytesLen)

	// deterministic
	qt.Assert(t, block.Bytes(), qt.DeepEquals, raw)

	// epoch is big-endian at the front
	qt.Assert(t, raw[:8], qt.DeepEquals, []byte{0, 0, 0, 0, 0, 0, 0, 7})
	qt.Assert(t, raw[8:8+DigestSize], qt.DeepEquals, block.PrevDigest[:])

	unpadded := Block{Sig: QuorumSignature{Signers: make([]bool, MaxCommitteeSize)}}
	qt.Assert(t, func() { unpadded.Bytes() }, qt.PanicMatches, "chain: block committee has .*")
}

func TestSigningBytes(t *testing.T) {
	params := bls.Setup()
	block, _ := testBlock(t, params)

	signing := block.SigningBytes()
	raw := block.Bytes()
	qt.Assert(t, len(signing), qt.Equals, BlockBytesLen)

	// the signature region is zeroed, everything else is untouched
	qt.Assert(t, signing[:sigOffset], qt.DeepEquals, raw[:sigOffset])
	qt.Assert(t, signing[sigOffset:sigOffset+QuorumSigBytesLen], qt.DeepEquals, make([]byte, QuorumSigBytesLen))
	qt.Assert(t, signing[sigOffset+QuorumSigBytesLen:], qt.DeepEquals, raw[sigOffset+QuorumSigBytesLen:])
	qt.Assert(t, bytes.Equal(signing, raw), qt.IsFalse)

	// signing must not clear the block's own signature
	qt.Assert(t, block.Sig.Signers[0], qt.IsTrue)
}

func TestBlockDigest(t *testing.T) {
	params := bls.Setup()
	block, _ := testBlock(t, params)

	d1 := block.Digest()
	qt.Assert(t, block.Digest(), qt.Equals, d1)

	other := block
	other.Epoch++
	qt.Assert(t, other.Digest() == d1, qt.IsFalse)
}

func TestQuorumSignatureVerifies(t *testing.T) {
	params := bls.Setup()
	block, sks := testBlock(t, params)

	pks := make([]*bls.PublicKey, len(sks))
	for i, sk := range sks {
		pks[i] = sk.Public(params)
	}
	valid, ok := bls.AggregateVerify(block.SigningBytes(), &block.Sig.Sig, pks, params)
	qt.Assert(t, ok, qt.IsTrue)
	qt.Assert(t, valid, qt.IsTrue)
	qt.Assert(t, block.Committee.TotalWeight(block.Sig.Signers) > StrongThreshold, qt.IsTrue)
}
