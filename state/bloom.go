package state

import "github.com/animicaorg/animica-node/codec"

// BloomBytes is the logs bloom filter width: 2048 bits.
const BloomBytes = 256

// Bloom is a fixed-size Keccak-256-seeded bloom filter over event topics and
// emitting contract addresses, so clients can skip fetching receipts whose
// logs cannot possibly match a filter.
type Bloom [BloomBytes]byte

// bitPositions derives the filter's 3 bit indices from a Keccak-256 digest,
// taking 2 bytes (11 low bits) per index from its first 6 bytes.
func bitPositions(data []byte) [3]uint {
	d := codec.Keccak256(data)
	var pos [3]uint
	for i := 0; i < 3; i++ {
		hi := uint(d[2*i])
		lo := uint(d[2*i+1])
		pos[i] = ((hi<<8 | lo) & 0x07FF) // 11 bits => 0..2047
	}
	return pos
}

// Add sets the bits for data (a topic or a contract address) in the filter.
func (b *Bloom) Add(data []byte) {
	for _, pos := range bitPositions(data) {
		byteIdx := BloomBytes - 1 - pos/8
		bitIdx := pos % 8
		b[byteIdx] |= 1 << bitIdx
	}
}

// Test reports whether data may be present (false positives possible, false
// negatives never).
func (b Bloom) Test(data []byte) bool {
	for _, pos := range bitPositions(data) {
		byteIdx := BloomBytes - 1 - pos/8
		bitIdx := pos % 8
		if b[byteIdx]&(1<<bitIdx) == 0 {
			return false
		}
	}
	return true
}

// BuildBloom folds every log's contract address and topic from a set of
// receipts into a single block-level bloom filter.
func BuildBloom(receipts []Receipt) Bloom {
	var b Bloom
	for _, r := range receipts {
		for _, lg := range r.Logs {
			addr := lg.Contract.Bytes()
			b.Add(addr)
			for _, topic := range lg.Topics {
				if len(topic) > 0 {
					b.Add(topic)
				}
			}
		}
	}
	return b
}
