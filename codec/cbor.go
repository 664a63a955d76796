// Package codec implements the canonical CBOR encoding, hashing, and
// domain-separated sign-bytes rules from CANONICAL §4.1: integers in
// minimal width, map keys sorted by encoded-key bytes, no indefinite-length
// items, raw byte strings rather than hex.
package codec

import (
	"bytes"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

var stringMapType = reflect.TypeOf(map[string]any(nil))

var (
	encMode = mustEncMode()
	decMode = mustDecMode()
)

func mustEncMode() cbor.EncMode {
	opts := cbor.CoreDetEncOptions() // sorted keys, minimal ints, no indefinite length
	opts.Time = cbor.TimeUnix
	opts.TimeTag = cbor.EncTagNone
	opts.ByteArray = cbor.ByteArrayToByteString // [N]byte fields encode as CBOR byte strings, not arrays
	m, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	return m
}

func mustDecMode() cbor.DecMode {
	opts := cbor.DecOptions{
		DupMapKey:      cbor.DupMapKeyEnforcedAPF,
		IndefLength:    cbor.IndefLengthForbidden,
		TagsMd:         cbor.TagsAllowed,
		DefaultMapType: stringMapType,
	}
	m, err := opts.DecMode()
	if err != nil {
		panic(err)
	}
	return m
}

// Marshal produces the canonical CBOR encoding of v.
func Marshal(v any) ([]byte, error) {
	out, err := encMode.Marshal(v)
	if err != nil {
		return nil, newErr(ErrInvalidCBOR, err.Error())
	}
	return out, nil
}

// Unmarshal decodes canonical CBOR into v, rejecting non-canonical input.
//
// Indefinite-length items are refused by the decoder itself and reported
// as InvalidCBOR. Otherwise it re-encodes the decoded value with the same
// canonical EncMode and requires a byte-identical result: any input using a
// non-minimal integer or an unsorted map key would decode structurally but
// fail this round-trip, and is reported as NonCanonical.
func Unmarshal(data []byte, v any) error {
	if err := decMode.Unmarshal(data, v); err != nil {
		return newErr(ErrInvalidCBOR, err.Error())
	}
	reEnc, err := encMode.Marshal(v)
	if err != nil {
		return newErr(ErrInvalidCBOR, err.Error())
	}
	if !bytes.Equal(reEnc, data) {
		return newErr(ErrNonCanonical, "decoded value does not round-trip to identical bytes")
	}
	return nil
}

// UnmarshalLenient decodes canonical CBOR without the round-trip check,
// for call sites that only need structural validity (e.g. inspecting an
// envelope before re-deriving its canonical bytes themselves).
func UnmarshalLenient(data []byte, v any) error {
	if err := decMode.Unmarshal(data, v); err != nil {
		return newErr(ErrInvalidCBOR, err.Error())
	}
	return nil
}
