package address

import (
	"fmt"
	"strings"
)

// bech32m implements BIP-350 bech32m, used to render Address at chain
// boundaries (CANONICAL §3: "rendered as bech32m at boundaries"). Written
// directly against the BIP-173/350 constant tables since no bech32 library
// is available as a dependency.
const charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

const bech32mConst = 0x2bc830a3

func polymod(values []byte) uint32 {
	gen := [5]uint32{0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3}
	chk := uint32(1)
	for _, v := range values {
		b := byte(chk >> 25)
		chk = (chk&0x1ffffff)<<5 ^ uint32(v)
		for i := 0; i < 5; i++ {
			if (b>>uint(i))&1 == 1 {
				chk ^= gen[i]
			}
		}
	}
	return chk
}

func hrpExpand(hrp string) []byte {
	out := make([]byte, 0, len(hrp)*2+1)
	for _, c := range hrp {
		out = append(out, byte(c)>>5)
	}
	out = append(out, 0)
	for _, c := range hrp {
		out = append(out, byte(c)&31)
	}
	return out
}

func createChecksum(hrp string, data []byte) []byte {
	values := append(hrpExpand(hrp), data...)
	values = append(values, make([]byte, 6)...)
	mod := polymod(values) ^ bech32mConst
	checksum := make([]byte, 6)
	for i := 0; i < 6; i++ {
		checksum[i] = byte((mod >> uint(5*(5-i))) & 31)
	}
	return checksum
}

func verifyChecksum(hrp string, data []byte) bool {
	return polymod(append(hrpExpand(hrp), data...)) == bech32mConst
}

// encodeBech32m encodes hrp + 5-bit groups data into a bech32m string.
func encodeBech32m(hrp string, data []byte) (string, error) {
	if hrp == "" {
		return "", fmt.Errorf("bech32m: empty hrp")
	}
	combined := append(append([]byte{}, data...), createChecksum(hrp, data)...)
	var sb strings.Builder
	sb.WriteString(hrp)
	sb.WriteByte('1')
	for _, b := range combined {
		if int(b) >= len(charset) {
			return "", fmt.Errorf("bech32m: invalid 5-bit value %d", b)
		}
		sb.WriteByte(charset[b])
	}
	return sb.String(), nil
}

func decodeBech32m(s string) (hrp string, data []byte, err error) {
	if strings.ToLower(s) != s && strings.ToUpper(s) != s {
		return "", nil, fmt.Errorf("bech32m: mixed case")
	}
	s = strings.ToLower(s)
	pos := strings.LastIndexByte(s, '1')
	if pos < 1 || pos+7 > len(s) {
		return "", nil, fmt.Errorf("bech32m: invalid separator position")
	}
	hrp = s[:pos]
	rest := s[pos+1:]
	data = make([]byte, len(rest))
	for i, c := range rest {
		idx := strings.IndexByte(charset, byte(c))
		if idx < 0 {
			return "", nil, fmt.Errorf("bech32m: invalid character %q", c)
		}
		data[i] = byte(idx)
	}
	if !verifyChecksum(hrp, data) {
		return "", nil, fmt.Errorf("bech32m: checksum mismatch")
	}
	return hrp, data[:len(data)-6], nil
}

// convertBits repacks a byte slice between bit-widths, used to go from
// 8-bit address bytes to the 5-bit groups bech32 encodes.
func convertBits(data []byte, fromBits, toBits uint, pad bool) ([]byte, error) {
	acc := uint32(0)
	bits := uint(0)
	var out []byte
	maxVal := uint32(1<<toBits) - 1
	for _, b := range data {
		if uint32(b) >= (1 << fromBits) {
			return nil, fmt.Errorf("bech32m: invalid data range")
		}
		acc = (acc << fromBits) | uint32(b)
		bits += fromBits
		for bits >= toBits {
			bits -= toBits
			out = append(out, byte((acc>>bits)&maxVal))
		}
	}
	if pad {
		if bits > 0 {
			out = append(out, byte((acc<<(toBits-bits))&maxVal))
		}
	} else if bits >= fromBits || ((acc<<(toBits-bits))&maxVal) != 0 {
		return nil, fmt.Errorf("bech32m: non-zero padding")
	}
	return out, nil
}
