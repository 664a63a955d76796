package address

import "testing"

func TestAddressStringParseRoundTrip(t *testing.T) {
	var hash [32]byte
	for i := range hash {
		hash[i] = byte(i)
	}
	a := New(0x01, hash)
	s := a.String()
	got, err := Parse(s)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !got.Equal(a) {
		t.Fatalf("round trip mismatch: got=%x want=%x", got, a)
	}
}

func TestParseRejectsWrongHRP(t *testing.T) {
	s, err := encodeBech32m("other", mustConvert(t, make([]byte, Size)))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := Parse(s); err == nil {
		t.Fatalf("expected hrp mismatch error")
	}
}

func TestParseRejectsBadChecksum(t *testing.T) {
	var hash [32]byte
	a := New(0x02, hash)
	s := a.String()
	tampered := s[:len(s)-1] + "q"
	if tampered == s {
		tampered = s[:len(s)-1] + "p"
	}
	if _, err := Parse(tampered); err == nil {
		t.Fatalf("expected checksum error")
	}
}

func mustConvert(t *testing.T, raw []byte) []byte {
	t.Helper()
	data, err := convertBits(raw, 8, 5, true)
	if err != nil {
		t.Fatalf("convertBits: %v", err)
	}
	return data
}
