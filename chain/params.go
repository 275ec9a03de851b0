package chain

const (
	// MaxCommitteeSize is the fixed number of signer slots in every
	// committee. Committees with fewer real members must be padded by the
	// caller before they are serialized or allocated in a circuit, so that
	// the digests computed outside the constraint system match the ones
	// computed inside it.
	MaxCommitteeSize = 25

	// StrongThreshold is the supermajority weight bound a quorum must
	// exceed. Committees are provisioned at genesis with a total weight of
	// 100, so a quorum needs strictly more than two thirds of it.
	StrongThreshold uint64 = 66

	// DigestSize is the byte length of a block digest.
	DigestSize = 32
)

const (
	fpBytes     = 48 // big-endian bytes of a BLS12-381 base field element
	g1Bytes     = 2 * fpBytes
	g2Bytes     = 4 * fpBytes
	epochBytes  = 8
	weightBytes = 8

	// SignerBytesLen is the serialized size of one committee slot.
	SignerBytesLen = g1Bytes + weightBytes
	// QuorumSigBytesLen is the serialized size of a quorum signature: the
	// aggregate G2 point followed by one byte per bitmask slot.
	QuorumSigBytesLen = g2Bytes + MaxCommitteeSize
	// BlockBytesLen is the serialized size of a block.
	BlockBytesLen = epochBytes + DigestSize + QuorumSigBytesLen + MaxCommitteeSize*SignerBytesLen
)
