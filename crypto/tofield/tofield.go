// Package tofield implements the expand_message_xmd construction from
// RFC 9380 §5.3.1 over a pluggable hash function, and the derivation of
// BLS12-381 base field elements from the expanded bytes. The constrained
// mirror in circuits/tofield runs the identical algorithm over byte
// variables; both are conformance-tested against each other on shared
// vectors, which is the correctness contract of the whole arithmetized
// signature path.
package tofield

import (
	"fmt"
	"hash"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fp"
)

// MaxDSTLength is the longest domain separation tag that can be used
// directly. Longer tags are first collapsed by hashing.
const MaxDSTLength = 255

// LenPerFieldElement is the number of expanded bytes consumed per derived
// field element: 64 bytes give a 128-bit security margin over the 381-bit
// field.
const LenPerFieldElement = 64

var longDSTPrefix = []byte("H2C-OVERSIZED-DST-")

// CollapseDST shortens an oversized domain separation tag by hashing the
// long-DST prefix constant followed by the tag. Tags of MaxDSTLength or less
// are returned unchanged.
func CollapseDST(h hash.Hash, dst []byte) []byte {
	if len(dst) <= MaxDSTLength {
		return dst
	}
	h.Reset()
	h.Write(longDSTPrefix)
	h.Write(dst)
	return h.Sum(nil)
}

// ExpandMsgXmd expands msg to lenInBytes pseudorandom bytes under the given
// domain separation tag. The construction is the XMD scheme: block 0 mixes a
// zero prefix the size of the hash's internal block, the message, the
// big-endian 2-byte output length, a zero byte and the length-prefixed DST;
// block i mixes block 0, the XOR of the previous block with block 0, the
// index byte and the length-prefixed DST again.
//
// The preconditions ceil(lenInBytes/h.Size()) <= 255 and lenInBytes < 2^16
// are fatal: violating them means a misconfigured hasher, not bad user
// input, so this panics instead of returning an error.
func ExpandMsgXmd(h hash.Hash, msg, dst []byte, lenInBytes int) []byte {
	ell := (lenInBytes + h.Size() - 1) / h.Size()
	if ell > 255 {
		panic(fmt.Sprintf("tofield: requested %d bytes need %d blocks of %d, max is 255", lenInBytes, ell, h.Size()))
	}
	if lenInBytes >= 1<<16 {
		panic(fmt.Sprintf("tofield: requested length %d must be below 2^16", lenInBytes))
	}
	dst = CollapseDST(h, dst)

	// DST_prime = DST ‖ I2OSP(len(DST), 1)
	dstPrime := append(append([]byte{}, dst...), uint8(len(dst)))

	// b0 = H(Z_pad ‖ msg ‖ I2OSP(lenInBytes, 2) ‖ I2OSP(0, 1) ‖ DST_prime)
	h.Reset()
	h.Write(make([]byte, h.BlockSize()))
	h.Write(msg)
	h.Write([]byte{uint8(lenInBytes >> 8), uint8(lenInBytes), 0})
	h.Write(dstPrime)
	b0 := h.Sum(nil)

	// b1 = H(b0 ‖ I2OSP(1, 1) ‖ DST_prime)
	h.Reset()
	h.Write(b0)
	h.Write([]byte{1})
	h.Write(dstPrime)
	bi := h.Sum(nil)

	out := make([]byte, 0, ell*h.Size())
	out = append(out, bi...)
	for i := 2; i <= ell; i++ {
		// b_i = H(strxor(b0, b_{i-1}) ‖ I2OSP(i, 1) ‖ DST_prime)
		h.Reset()
		strxor := make([]byte, h.Size())
		for j := range strxor {
			strxor[j] = b0[j] ^ bi[j]
		}
		h.Write(strxor)
		h.Write([]byte{uint8(i)})
		h.Write(dstPrime)
		bi = h.Sum(nil)
		out = append(out, bi...)
	}
	return out[:lenInBytes]
}

// HashToField derives count base field elements from msg: each element is
// the big-endian interpretation of LenPerFieldElement expanded bytes reduced
// modulo the field order. newHash constructs the underlying hash function.
func HashToField(newHash func() hash.Hash, msg, dst []byte, count int) []fp.Element {
	pseudo := ExpandMsgXmd(newHash(), msg, dst, count*LenPerFieldElement)
	elems := make([]fp.Element, count)
	var v big.Int
	for i := range elems {
		v.SetBytes(pseudo[i*LenPerFieldElement : (i+1)*LenPerFieldElement])
		elems[i].SetBigInt(&v)
	}
	return elems
}
