package vm

import (
	"encoding/binary"
	"math/big"
	"sort"

	"github.com/animicaorg/animica-node/address"
	"github.com/animicaorg/animica-node/codec"
)

// Selector derives the 8-byte function selector for a call-site signature
// string (e.g. "transfer(address,uint256)"), per CANONICAL §4.2:
// selector := SHA3_256("fn:" + signature)[:8].
func Selector(signature string) [8]byte {
	digest := codec.SHA3_256([]byte("fn:" + signature))
	var sel [8]byte
	copy(sel[:], digest[:8])
	return sel
}

// appendUvarint appends v's canonical LEB128 unsigned varint encoding to buf.
func appendUvarint(buf []byte, v uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	return append(buf, tmp[:n]...)
}

// EncodeScalar renders an unsigned integer as `uvarint(L) || big-endian
// bytes`, per CANONICAL §4.2's ABI int encoding; zero is `L=0` with no
// trailing bytes.
func EncodeScalar(v *big.Int) []byte {
	if v == nil || v.Sign() == 0 {
		return appendUvarint(nil, 0)
	}
	b := v.Bytes()
	return append(appendUvarint(nil, uint64(len(b))), b...)
}

// DecodeScalar parses a `uvarint(L) || big-endian bytes` value produced by
// EncodeScalar.
func DecodeScalar(b []byte) *big.Int {
	l, n := binary.Uvarint(b)
	if n <= 0 {
		return new(big.Int)
	}
	end := n + int(l)
	if end > len(b) {
		end = len(b)
	}
	return new(big.Int).SetBytes(b[n:end])
}

// EncodeAddress renders a 33-byte Animica address as its raw bytes.
func EncodeAddress(a address.Address) []byte {
	return append([]byte(nil), a.Bytes()...)
}

// DecodeAddress parses a raw 33-byte address value.
func DecodeAddress(b []byte) (address.Address, error) {
	return address.FromBytes(b)
}

// EncodeBytes length-prefixes a variable-length byte blob with a 4-byte
// big-endian length.
func EncodeBytes(b []byte) []byte {
	out := make([]byte, 4+len(b))
	binary.BigEndian.PutUint32(out[:4], uint32(len(b)))
	copy(out[4:], b)
	return out
}

// DecodeBytes parses a length-prefixed blob produced by EncodeBytes.
func DecodeBytes(b []byte) ([]byte, int, error) {
	if len(b) < 4 {
		return nil, 0, newVMErr(ErrInvalidProgram, "truncated length prefix")
	}
	n := int(binary.BigEndian.Uint32(b[:4]))
	if n < 0 || 4+n > len(b) {
		return nil, 0, newVMErr(ErrInvalidProgram, "truncated byte blob")
	}
	return b[4 : 4+n], 4 + n, nil
}

// CanonicalArgs assembles an event's canonical_args_bytes per CANONICAL
// §4.2: args keys sorted bytewise ascending and unique UTF-8, each followed
// by its already ABI-encoded value (EncodeScalar/EncodeAddress/EncodeBytes,
// or a single 0x00/0x01 byte for bool) —
// `uvarint(n) || (uvarint(len(key)) || key || value)...`. Map keys are
// unique by construction; sort.Strings sorts Go strings byte-wise, matching
// the bytewise-ascending requirement directly.
func CanonicalArgs(args map[string][]byte) []byte {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf := appendUvarint(nil, uint64(len(keys)))
	for _, k := range keys {
		buf = appendUvarint(buf, uint64(len(k)))
		buf = append(buf, k...)
		buf = append(buf, args[k]...)
	}
	return buf
}

// EventTopics derives an event's two topics from its name and its already
// canonical-encoded args, per CANONICAL §4.2: `topic[0] =
// SHA3-256("event:" || name)[:32]`, `topic[1] =
// SHA3-256(canonical_args_bytes)[:32]`.
func EventTopics(name string, canonicalArgsBytes []byte) (topic0, topic1 [32]byte) {
	topic0 = codec.SHA3_256([]byte("event:" + name))
	topic1 = codec.SHA3_256(canonicalArgsBytes)
	return topic0, topic1
}

// ArgsTuple assembles a call's args_tuple: `uvarint(n) || encode(v0) …
// encode(v_{n-1})`, where each element of values is already ABI-encoded per
// its own value type.
func ArgsTuple(values [][]byte) []byte {
	buf := appendUvarint(nil, uint64(len(values)))
	for _, v := range values {
		buf = append(buf, v...)
	}
	return buf
}

// CallData assembles a call site's wire payload: `selector(8) ||
// args_tuple`.
func CallData(selector [8]byte, values [][]byte) []byte {
	return append(append([]byte(nil), selector[:]...), ArgsTuple(values)...)
}

// SplitCallData separates call data into its 8-byte selector and the raw
// (still ABI-encoded) args_tuple bytes that follow it.
func SplitCallData(data []byte) (selector [8]byte, argsTuple []byte, err error) {
	if len(data) < 8 {
		return selector, nil, newVMErr(ErrInvalidProgram, "truncated call data")
	}
	copy(selector[:], data[:8])
	return selector, data[8:], nil
}

// Dispatcher maps function selectors to their Program, the call-data
// counterpart to a deployed contract's exported function table.
type Dispatcher map[[8]byte]Program

// Dispatch resolves data's selector against d and returns the matching
// Program plus its still-encoded args_tuple for the callee to decode.
func (d Dispatcher) Dispatch(data []byte) (Program, []byte, error) {
	selector, argsTuple, err := SplitCallData(data)
	if err != nil {
		return nil, nil, err
	}
	prog, ok := d[selector]
	if !ok {
		return nil, nil, newVMErr(ErrUnknownSelector, "no function registered for this selector")
	}
	return prog, argsTuple, nil
}
