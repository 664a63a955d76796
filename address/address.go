// Package address implements the opaque 33-byte Animica address
// (CANONICAL §3): (alg_id: u8, pubkey_hash: 32), rendered as bech32m at
// wire/RPC boundaries and compared bytewise internally.
package address

import "fmt"

const HRP = "animica"

const Size = 33

// Address is (alg_id, pubkey_hash). Equality is bytewise.
type Address [Size]byte

// New builds an Address from an algorithm id and a 32-byte pubkey hash.
func New(algID byte, pubkeyHash [32]byte) Address {
	var a Address
	a[0] = algID
	copy(a[1:], pubkeyHash[:])
	return a
}

func (a Address) AlgID() byte { return a[0] }

func (a Address) PubkeyHash() [32]byte {
	var out [32]byte
	copy(out[:], a[1:])
	return out
}

func (a Address) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, a[:])
	return out
}

func (a Address) Equal(other Address) bool { return a == other }

// String renders the address as bech32m, per CANONICAL §3.
func (a Address) String() string {
	data, err := convertBits(a[:], 8, 5, true)
	if err != nil {
		// Size is fixed at compile time; convertBits can only fail on
		// malformed input, which a [Size]byte value cannot produce.
		panic(err)
	}
	s, err := encodeBech32m(HRP, data)
	if err != nil {
		panic(err)
	}
	return s
}

// Parse decodes a bech32m-rendered address string.
func Parse(s string) (Address, error) {
	hrp, data, err := decodeBech32m(s)
	if err != nil {
		return Address{}, fmt.Errorf("address: %w", err)
	}
	if hrp != HRP {
		return Address{}, fmt.Errorf("address: unexpected hrp %q", hrp)
	}
	raw, err := convertBits(data, 5, 8, false)
	if err != nil {
		return Address{}, fmt.Errorf("address: %w", err)
	}
	if len(raw) != Size {
		return Address{}, fmt.Errorf("address: decoded length %d, want %d", len(raw), Size)
	}
	var a Address
	copy(a[:], raw)
	return a, nil
}

// FromBytes parses a raw 33-byte address.
func FromBytes(b []byte) (Address, error) {
	if len(b) != Size {
		return Address{}, fmt.Errorf("address: length %d, want %d", len(b), Size)
	}
	var a Address
	copy(a[:], b)
	return a, nil
}
