package codec

import "golang.org/x/crypto/sha3"

// SHA3_256 is the default chain-visible digest (CANONICAL §4.1).
func SHA3_256(b []byte) [32]byte {
	var out [32]byte
	h := sha3.Sum256(b)
	copy(out[:], h[:])
	return out
}

// SHA3_512 is used for artifact hashes.
func SHA3_512(b []byte) [64]byte {
	var out [64]byte
	h := sha3.Sum512(b)
	copy(out[:], h[:])
	return out
}

// Keccak256 backs the logs bloom bit positions and the VM's KECCAK256
// opcode; event topics and every other chain-visible digest use SHA3.
func Keccak256(b []byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(b)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
