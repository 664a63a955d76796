package vm

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/animicaorg/animica-node/address"
	"github.com/animicaorg/animica-node/codec"
)

func TestScalarEncodeDecodeRoundTrip(t *testing.T) {
	for _, n := range []int64{0, 1, 255, 65536, 1 << 40} {
		v := big.NewInt(n)
		enc := EncodeScalar(v)
		dec := DecodeScalar(enc)
		if dec.Cmp(v) != 0 {
			t.Fatalf("roundtrip mismatch for %d: got %v", n, dec)
		}
	}
}

func TestAddressEncodeDecodeRoundTrip(t *testing.T) {
	var h [32]byte
	h[0] = 0x42
	a := address.New(0x01, h)
	enc := EncodeAddress(a)
	dec, err := DecodeAddress(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dec != a {
		t.Fatalf("address roundtrip mismatch")
	}
}

func TestBytesEncodeDecodeRoundTrip(t *testing.T) {
	payload := []byte("hello world")
	enc := EncodeBytes(payload)
	dec, n, err := DecodeBytes(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if n != len(enc) {
		t.Fatalf("expected to consume all bytes, consumed %d of %d", n, len(enc))
	}
	if string(dec) != string(payload) {
		t.Fatalf("payload mismatch: got %q", dec)
	}
}

func TestDecodeBytesRejectsTruncated(t *testing.T) {
	if _, _, err := DecodeBytes([]byte{0, 0, 0, 5, 1, 2}); err == nil {
		t.Fatalf("expected truncation error")
	}
}

// TestCanonicalArgsIncEventVector pins the Inc event worked example:
// {value:1} must serialize to 01 05 76 61 6C 75 65 01 01, and its topic[0]
// must be SHA3-256("event:Inc").
func TestCanonicalArgsIncEventVector(t *testing.T) {
	want := []byte{0x01, 0x05, 0x76, 0x61, 0x6C, 0x75, 0x65, 0x01, 0x01}

	args := map[string][]byte{"value": EncodeScalar(big.NewInt(1))}
	got := CanonicalArgs(args)
	if !bytes.Equal(got, want) {
		t.Fatalf("canonical args mismatch: got % X, want % X", got, want)
	}

	topic0, topic1 := EventTopics("Inc", got)
	wantTopic0 := codec.SHA3_256([]byte("event:Inc"))
	if topic0 != wantTopic0 {
		t.Fatalf("topic0 mismatch: got % X, want % X", topic0, wantTopic0)
	}
	wantTopic1 := codec.SHA3_256(got)
	if topic1 != wantTopic1 {
		t.Fatalf("topic1 mismatch: got % X, want % X", topic1, wantTopic1)
	}
}

func TestDispatcherDispatchRoutesBySelector(t *testing.T) {
	sel := Selector("inc()")
	prog := Program{{Op: OpReturn}}
	d := Dispatcher{sel: prog}

	values := [][]byte{EncodeScalar(big.NewInt(1))}
	data := CallData(sel, values)

	got, argsTuple, err := d.Dispatch(data)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(got) != 1 || got[0].Op != OpReturn {
		t.Fatalf("dispatch returned wrong program: %+v", got)
	}
	wantTuple := ArgsTuple(values)
	if !bytes.Equal(argsTuple, wantTuple) {
		t.Fatalf("args tuple mismatch: got % X, want % X", argsTuple, wantTuple)
	}
}

func TestDispatcherDispatchUnknownSelector(t *testing.T) {
	d := Dispatcher{}
	_, _, err := d.Dispatch(CallData(Selector("inc()"), nil))
	if err == nil {
		t.Fatalf("expected error for unknown selector")
	}
}
