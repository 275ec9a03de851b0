package epochfold

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/emulated/sw_bls12381"
	"github.com/consensys/gnark/std/math/emulated"

	"github.com/vocdoni/epochfold/chain"
	"github.com/vocdoni/epochfold/circuits/blsverify"
	"github.com/vocdoni/epochfold/crypto/bls"
)

// Circuit is the epoch transition step. It is not a frontend.Circuit itself:
// a folding driver owns the outer circuit and calls GenerateStepConstraints
// once per folded block, threading the state vector through. StepCircuit
// wraps it for standalone proving and for tests.
type Circuit struct {
	Params bls.Parameters
}

// StateLength returns the length of the folded state vector.
func (c *Circuit) StateLength() int {
	return StateLen
}

// GenerateStepConstraints enforces one epoch transition and returns the next
// state vector. Given the running state z and a candidate block it checks
// that:
//
//   - the block's epoch is the state's epoch plus one
//   - the block's bitmask selects signers from the committee in z, and the
//     aggregate of their public keys verifies the block's quorum signature
//     over the block's signing bytes
//   - the selected weight strictly exceeds the strong threshold
//
// The next state holds the block's committee and epoch. The step index is
// not constrained: the epoch counter in the state plays that role.
func (c *Circuit) GenerateStepConstraints(api frontend.API, step frontend.Variable, z []frontend.Variable, block BlockVar) ([]frontend.Variable, error) {
	_ = step
	f, err := emulated.NewField[sw_bls12381.BaseField](api)
	if err != nil {
		return nil, fmt.Errorf("new emulated field: %w", err)
	}
	committee, epoch, err := decodeState(api, f, z)
	if err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	api.AssertIsEqual(block.Epoch, api.Add(epoch, 1))

	verifier, err := blsverify.NewVerifier(api)
	if err != nil {
		return nil, fmt.Errorf("new verifier: %w", err)
	}
	curve := verifier.Curve()

	// Aggregate the selected keys and weights. The (0, 0) point is the
	// neutral element of AddUnified, so unselected and padding slots both
	// contribute nothing.
	zero := &sw_bls12381.G1Affine{X: *f.Zero(), Y: *f.Zero()}
	acc := zero
	weight := frontend.Variable(0)
	for i := range committee.Signers {
		mask := block.Sig.Signers[i]
		api.AssertIsBoolean(mask)
		acc = curve.AddUnified(acc, curve.Select(mask, &committee.Signers[i].PublicKey, zero))
		weight = api.Add(weight, api.Mul(mask, committee.Signers[i].Weight))
	}

	msg, err := signingBytes(api, &block)
	if err != nil {
		return nil, fmt.Errorf("signing bytes: %w", err)
	}
	err = verifier.AssertVerified(
		blsverify.NewParametersVar(c.Params.G1Gen, c.Params.G2Gen),
		blsverify.PublicKeyVar{Key: *acc},
		msg,
		[]byte(bls.DST),
		blsverify.SignatureVar{Sig: block.Sig.Sig},
	)
	if err != nil {
		return nil, fmt.Errorf("verify quorum signature: %w", err)
	}

	// weight > threshold; the sum of 64-bit weights stays far below the
	// native field size, so the comparison is sound.
	api.AssertIsLessOrEqual(chain.StrongThreshold+1, weight)

	next, err := encodeState(f, &block.Committee, block.Epoch)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return next, nil
}

// StepCircuit is the standalone form of one step: previous state and block as
// private witness, next state as public input. A folding driver replaces this
// with its own outer circuit.
type StepCircuit struct {
	PrevState [StateLen]frontend.Variable
	Block     BlockVar
	NextState [StateLen]frontend.Variable `gnark:",public"`

	params bls.Parameters
}

// NewStepCircuit returns a compilation placeholder bound to the given scheme
// parameters.
func NewStepCircuit(params bls.Parameters) *StepCircuit {
	return &StepCircuit{params: params}
}

func (c *StepCircuit) Define(api frontend.API) error {
	step := &Circuit{Params: c.params}
	next, err := step.GenerateStepConstraints(api, 0, c.PrevState[:], c.Block)
	if err != nil {
		return err
	}
	for i := range next {
		api.AssertIsEqual(next[i], c.NextState[i])
	}
	return nil
}
