package vm

import (
	"encoding/binary"

	"github.com/animicaorg/animica-node/codec"
)

// PRNG is the VM's only source of randomness: a counter-mode SHA3-256
// stream seeded from (txHash, callIndex), so OpRand is pure and replayable —
// no ambient entropy ever enters contract execution. Grounded on the same
// "hash as a keyed stream" idiom used by pqsig.DevStdProvider.padOrHash.
type PRNG struct {
	seed    [32]byte
	counter uint64
}

// NewPRNG derives a fresh stream for one call. callIndex distinguishes
// sibling calls within the same transaction (e.g. internal calls) so they
// never share a stream position.
func NewPRNG(txHash [32]byte, callIndex uint64) *PRNG {
	var buf [40]byte
	copy(buf[:32], txHash[:])
	binary.BigEndian.PutUint64(buf[32:], callIndex)
	return &PRNG{seed: codec.SHA3_256(buf[:])}
}

// Next returns the next 32-byte block of the stream.
func (p *PRNG) Next() [32]byte {
	var buf [40]byte
	copy(buf[:32], p.seed[:])
	binary.BigEndian.PutUint64(buf[32:], p.counter)
	p.counter++
	return codec.SHA3_256(buf[:])
}

// NextBytes fills n deterministic pseudorandom bytes.
func (p *PRNG) NextBytes(n int) []byte {
	out := make([]byte, 0, n)
	for len(out) < n {
		block := p.Next()
		out = append(out, block[:]...)
	}
	return out[:n]
}
