package epochfold

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/uints"
	"github.com/consensys/gnark/test"
	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/epochfold/chain"
	"github.com/vocdoni/epochfold/crypto/bls"
	"github.com/vocdoni/epochfold/util"
)

type signingBytesCircuit struct {
	Block    BlockVar
	Expected [chain.BlockBytesLen]uints.U8
}

func (c *signingBytesCircuit) Define(api frontend.API) error {
	got, err := signingBytes(api, &c.Block)
	if err != nil {
		return err
	}
	uapi, err := uints.New[uints.U32](api)
	if err != nil {
		return err
	}
	for i := range got {
		uapi.ByteAssertEq(got[i], c.Expected[i])
	}
	return nil
}

// The in-circuit signing bytes must match chain.Block.SigningBytes exactly:
// this equality is what makes the native quorum signature verifiable inside
// the step.
func TestSigningBytesMatchesNative(t *testing.T) {
	assert := test.NewAssert(t)
	params := bls.Setup()
	committee := chain.Committee{}
	for i, w := range []uint64{25, 25, 25, 25} {
		sk, err := bls.GenerateKey(nil)
		qt.Assert(t, err, qt.IsNil)
		committee.Signers = append(committee.Signers, chain.Signer{
			PublicKey: *sk.Public(params),
			Weight:    w + uint64(i),
		})
	}
	block := chain.Block{
		Epoch:      42,
		PrevDigest: util.Random32(),
		Sig:        chain.QuorumSignature{Signers: make([]bool, chain.MaxCommitteeSize)},
		Committee:  committee.PadToMax(),
	}
	block.Sig.Signers[0], block.Sig.Signers[2] = true, true
	sk, err := bls.GenerateKey(nil)
	qt.Assert(t, err, qt.IsNil)
	block.Sig.Sig = *bls.Sign(block.SigningBytes(), sk, params)

	assignment := &signingBytesCircuit{Block: NewBlockVar(block)}
	copy(assignment.Expected[:], uints.NewU8Array(block.SigningBytes()))
	assert.NoError(test.IsSolved(&signingBytesCircuit{}, assignment, ecc.BN254.ScalarField()))
}

func TestStateVectorRoundTrip(t *testing.T) {
	params := bls.Setup()
	committee := chain.Committee{}
	for _, w := range []uint64{10, 20} {
		sk, err := bls.GenerateKey(nil)
		qt.Assert(t, err, qt.IsNil)
		committee.Signers = append(committee.Signers, chain.Signer{
			PublicKey: *sk.Public(params),
			Weight:    w,
		})
	}
	padded := committee.PadToMax()

	z := StateVector(padded, 9)
	qt.Assert(t, len(z), qt.Equals, StateLen)
	qt.Assert(t, z[StateLen-1].Uint64(), qt.Equals, uint64(9))
	qt.Assert(t, z[2*limbsPerFp].Uint64(), qt.Equals, uint64(10))

	// padding slots are all zeros
	for _, v := range z[2*varsPerSigner : StateLen-1] {
		qt.Assert(t, v.Sign(), qt.Equals, 0)
	}

	// limbs reassemble into the original coordinate
	var x, check big.Int
	padded.Signers[0].PublicKey.Key.X.BigInt(&x)
	for i := limbsPerFp - 1; i >= 0; i-- {
		check.Lsh(&check, 64)
		check.Add(&check, z[i])
	}
	qt.Assert(t, check.Cmp(&x), qt.Equals, 0)

	qt.Assert(t, func() { StateVector(committee, 9) }, qt.PanicMatches, "epochfold: committee has .*")
}
