package codec

import (
	"bytes"
	"testing"
)

type sample struct {
	Z int    `cbor:"z"`
	A string `cbor:"a"`
	M []byte `cbor:"m"`
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	in := sample{Z: 7, A: "hello", M: []byte{1, 2, 3}}
	enc, err := Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out sample
	if err := Unmarshal(enc, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: got=%+v want=%+v", out, in)
	}
}

func TestMarshalSortsMapKeysCanonically(t *testing.T) {
	m1 := map[string]int{"b": 2, "a": 1, "c": 3}
	enc1, err := Marshal(m1)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	m2 := map[string]int{"c": 3, "a": 1, "b": 2}
	enc2, err := Marshal(m2)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(enc1, enc2) {
		t.Fatalf("logically identical maps encoded differently: %x vs %x", enc1, enc2)
	}
}

func TestUnmarshalRejectsNonCanonicalIndefiniteLength(t *testing.T) {
	// 0x5f = indefinite-length byte string head; 0xff = break. This is
	// structurally a valid empty byte string under indefinite-length CBOR
	// but is forbidden by the canonical dialect.
	indef := []byte{0x5f, 0xff}
	var out []byte
	if err := Unmarshal(indef, &out); err == nil {
		t.Fatalf("expected error decoding indefinite-length bytes")
	}
}

func TestDomainSeparatedHashStable(t *testing.T) {
	h1, err := DomainSeparatedHash(TagTxSignV1, sample{Z: 1, A: "x"})
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	h2, err := DomainSeparatedHash(TagTxSignV1, sample{Z: 1, A: "x"})
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("hash not stable across identical inputs")
	}
}
