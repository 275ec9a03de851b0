// Package tofield is the constrained mirror of crypto/tofield: the same
// expand_message_xmd algorithm, but every byte is a circuit variable and
// every hash invocation is a constrained hash gadget. For every input the
// output bytes must be identical to the plain expander's: any divergence
// would let a prover satisfy the signature constraints with a curve point
// that does not correspond to the real hash of the message.
package tofield

import (
	"crypto/sha256"
	"fmt"
	stdhash "hash"
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash"
	"github.com/consensys/gnark/std/hash/sha2"
	"github.com/consensys/gnark/std/math/emulated"
	"github.com/consensys/gnark/std/math/emulated/emparams"
	"github.com/consensys/gnark/std/math/uints"

	"github.com/vocdoni/epochfold/crypto/tofield"
)

// Backend pairs a constrained hash gadget with its plain counterpart. The
// plain constructor is used where the data is known at compile time (the
// oversized-DST collapse), the gadget everywhere else; both must implement
// the same function with the same block size.
type Backend struct {
	BlockSize int
	NewGadget func(api frontend.API) (hash.BinaryHasher, error)
	NewPlain  func() stdhash.Hash
}

// SHA256 is the default backend, mirrored in-circuit by the sha2 gadget.
var SHA256 = Backend{
	BlockSize: 64,
	NewGadget: func(api frontend.API) (hash.BinaryHasher, error) { return sha2.New(api) },
	NewPlain:  sha256.New,
}

// ExpandMsgXmd is the constrained expand_message_xmd. The domain separation
// tag is a compile-time constant (constraining constant bytes would buy
// nothing), so the oversized-DST collapse runs on the plain backend; message
// bytes, chaining values and XORs are all constrained. The same preconditions
// as the plain expander apply and are equally fatal.
func ExpandMsgXmd(api frontend.API, b Backend, msg []uints.U8, dst []byte, lenInBytes int) ([]uints.U8, error) {
	h, err := b.NewGadget(api)
	if err != nil {
		return nil, fmt.Errorf("new hash gadget: %w", err)
	}
	ell := (lenInBytes + h.Size() - 1) / h.Size()
	if ell > 255 {
		panic(fmt.Sprintf("tofield: requested %d bytes need %d blocks of %d, max is 255", lenInBytes, ell, h.Size()))
	}
	if lenInBytes >= 1<<16 {
		panic(fmt.Sprintf("tofield: requested length %d must be below 2^16", lenInBytes))
	}
	dst = tofield.CollapseDST(b.NewPlain(), dst)
	dstPrime := uints.NewU8Array(append(append([]byte{}, dst...), uint8(len(dst))))

	// b0 = H(Z_pad ‖ msg ‖ I2OSP(lenInBytes, 2) ‖ I2OSP(0, 1) ‖ DST_prime)
	h.Write(uints.NewU8Array(make([]uint8, b.BlockSize)))
	h.Write(msg)
	h.Write(uints.NewU8Array([]uint8{uint8(lenInBytes >> 8), uint8(lenInBytes), 0}))
	h.Write(dstPrime)
	b0 := h.Sum()

	// b1 = H(b0 ‖ I2OSP(1, 1) ‖ DST_prime)
	h, err = b.NewGadget(api)
	if err != nil {
		return nil, fmt.Errorf("new hash gadget: %w", err)
	}
	h.Write(b0)
	h.Write([]uints.U8{uints.NewU8(1)})
	h.Write(dstPrime)
	bi := h.Sum()

	out := make([]uints.U8, lenInBytes)
	copy(out, bi)
	for i := 2; i <= ell; i++ {
		h, err = b.NewGadget(api)
		if err != nil {
			return nil, fmt.Errorf("new hash gadget: %w", err)
		}
		// b_i = H(strxor(b0, b_{i-1}) ‖ I2OSP(i, 1) ‖ DST_prime)
		strxor := make([]uints.U8, h.Size())
		for j := range strxor {
			strxor[j], err = xorU8(api, b0[j], bi[j])
			if err != nil {
				return nil, err
			}
		}
		h.Write(strxor)
		h.Write([]uints.U8{uints.NewU8(uint8(i))})
		h.Write(dstPrime)
		bi = h.Sum()
		copy(out[h.Size()*(i-1):min(h.Size()*i, lenInBytes)], bi)
	}
	return out, nil
}

// HashToFp interprets LenPerFieldElement big-endian bytes as a BLS12-381
// base field element, reduced modulo the field order. The bytes exceed the
// field size, so the element is assembled from a low and a high part instead
// of a direct byte decomposition.
func HashToFp(api frontend.API, data []uints.U8) (*emulated.Element[emparams.BLS12381Fp], error) {
	if len(data) != tofield.LenPerFieldElement {
		return nil, fmt.Errorf("expected %d bytes, got %d", tofield.LenPerFieldElement, len(data))
	}
	f, err := emulated.NewField[emparams.BLS12381Fp](api)
	if err != nil {
		return nil, fmt.Errorf("new emulated field: %w", err)
	}

	// little-endian bit order over the big-endian byte string
	bits := make([]frontend.Variable, 0, len(data)*8)
	for i := len(data) - 1; i >= 0; i-- {
		bits = append(bits, api.ToBinary(data[i].Val, 8)...)
	}

	// The low 17 bytes and the high 47 bytes each fit in the field; the
	// high part is shifted back up by 256^17.
	const cutoff = 17
	low := f.FromBits(bits[:cutoff*8]...)
	high := f.FromBits(bits[cutoff*8:]...)
	shift := new(big.Int).Exp(big.NewInt(256), big.NewInt(cutoff), nil)
	high = f.Mul(high, f.NewElement(shift))
	return f.Add(high, low), nil
}

func xorU8(api frontend.API, a, b uints.U8) (uints.U8, error) {
	aBits := api.ToBinary(a.Val, 8)
	bBits := api.ToBinary(b.Val, 8)
	cBits := make([]frontend.Variable, 8)
	for i := range cBits {
		cBits[i] = api.Xor(aBits[i], bBits[i])
	}
	uapi, err := uints.New[uints.U32](api)
	if err != nil {
		return uints.U8{}, err
	}
	return uapi.ByteValueOf(api.FromBinary(cBits...)), nil
}
