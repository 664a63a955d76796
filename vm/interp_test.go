package vm

import (
	"math/big"
	"testing"

	"github.com/animicaorg/animica-node/address"
)

func be(v uint64) []byte {
	return EncodeScalar(big.NewInt(int64(v)))
}

func beU64(v uint64) []byte {
	out := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}
	return out
}

func ctx(gas uint64) CallContext {
	var h [32]byte
	h[0] = 0x01
	return CallContext{
		Contract: address.New(0x01, h),
		TxHash:   h,
		GasLimit: gas,
	}
}

func TestAddProgramCommitsWithExpectedResult(t *testing.T) {
	prog := Program{
		{Op: OpConst, Arg: be(2)},
		{Op: OpConst, Arg: be(3)},
		{Op: OpAdd},
		{Op: OpReturn},
	}
	host := NewMemHost(nil)
	res := Run(prog, host, ctx(1000))
	if res.State != StateCommit {
		t.Fatalf("expected COMMIT, got %v (%v)", res.State, res.Err)
	}
	if got := DecodeScalar(res.ReturnData); got.Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("expected 5, got %v", got)
	}
}

func TestDivByZeroFails(t *testing.T) {
	prog := Program{
		{Op: OpConst, Arg: be(1)},
		{Op: OpConst, Arg: be(0)},
		{Op: OpDiv},
		{Op: OpReturn},
	}
	host := NewMemHost(nil)
	res := Run(prog, host, ctx(1000))
	if res.State != StateFail {
		t.Fatalf("expected FAIL, got %v", res.State)
	}
	if CodeOf(res.Err) != ErrDivByZero {
		t.Fatalf("expected ErrDivByZero, got %v", res.Err)
	}
}

func TestOutOfGasTerminatesOOG(t *testing.T) {
	prog := Program{
		{Op: OpConst, Arg: be(1)},
		{Op: OpConst, Arg: be(1)},
		{Op: OpAdd},
		{Op: OpReturn},
	}
	host := NewMemHost(nil)
	res := Run(prog, host, ctx(1)) // too little gas for even one CONST
	if res.State != StateOOG {
		t.Fatalf("expected OOG, got %v", res.State)
	}
}

func TestRevertReturnsDataWithoutCommittingStorage(t *testing.T) {
	prog := Program{
		{Op: OpConst, Arg: []byte("key")},
		{Op: OpConst, Arg: []byte("val")},
		{Op: OpSStore},
		{Op: OpConst, Arg: []byte("bye")},
		{Op: OpRevert},
	}
	host := NewMemHost(nil)
	res := Run(prog, host, ctx(10000))
	if res.State != StateRevert {
		t.Fatalf("expected REVERT, got %v", res.State)
	}
	// Host writes in this interpreter are applied eagerly; a real node wires
	// Host to a snapshotted state view so REVERT discards writes at the
	// chainstate layer, not here.
	if string(res.ReturnData) != "bye" {
		t.Fatalf("unexpected revert payload %q", res.ReturnData)
	}
}

func TestSelectorDerivation(t *testing.T) {
	sel1 := Selector("transfer(address,uint256)")
	sel2 := Selector("transfer(address,uint256)")
	sel3 := Selector("approve(address,uint256)")
	if sel1 != sel2 {
		t.Fatalf("selector must be stable")
	}
	if sel1 == sel3 {
		t.Fatalf("different signatures must not collide")
	}
}

func TestInvalidJumpRejectedAtValidate(t *testing.T) {
	prog := Program{
		{Op: OpJump, Arg: beU64(99)},
	}
	host := NewMemHost(nil)
	res := Run(prog, host, ctx(1000))
	if res.State != StateFail || CodeOf(res.Err) != ErrInvalidJump {
		t.Fatalf("expected FAIL/ErrInvalidJump, got %v %v", res.State, res.Err)
	}
}

func TestEmitProducesEventTopicsAndData(t *testing.T) {
	payload := CanonicalArgs(map[string][]byte{"value": EncodeScalar(big.NewInt(1))})
	prog := Program{
		{Op: OpConst, Arg: payload},
		{Op: OpEmit, Arg: []byte("Inc")},
		{Op: OpConst, Arg: []byte("done")},
		{Op: OpReturn},
	}
	host := NewMemHost(nil)
	res := Run(prog, host, ctx(100000))
	if res.State != StateCommit {
		t.Fatalf("expected COMMIT, got %v (%v)", res.State, res.Err)
	}
	if len(res.Events) != 1 {
		t.Fatalf("expected exactly one event, got %d", len(res.Events))
	}
	ev := res.Events[0]
	if len(ev.Topics) != 2 {
		t.Fatalf("expected two topics, got %d", len(ev.Topics))
	}
	wantTopic0, wantTopic1 := EventTopics("Inc", payload)
	if string(ev.Topics[0]) != string(wantTopic0[:]) || string(ev.Topics[1]) != string(wantTopic1[:]) {
		t.Fatalf("topic mismatch: got %x/%x, want %x/%x", ev.Topics[0], ev.Topics[1], wantTopic0, wantTopic1)
	}
	if string(ev.Data) != string(payload) {
		t.Fatalf("event data mismatch: got %x, want %x", ev.Data, payload)
	}
}

func TestEmitRequiresNonEmptyEventName(t *testing.T) {
	prog := Program{
		{Op: OpConst, Arg: []byte("payload")},
		{Op: OpEmit, Arg: []byte{}},
		{Op: OpReturn},
	}
	host := NewMemHost(nil)
	res := Run(prog, host, ctx(1000))
	if res.State != StateFail || CodeOf(res.Err) != ErrInvalidProgram {
		t.Fatalf("expected FAIL/ErrInvalidProgram, got %v %v", res.State, res.Err)
	}
}

func TestArithRejectsResultAboveUint256Cap(t *testing.T) {
	prog := Program{
		{Op: OpConst, Arg: EncodeScalar(MaxUint256)},
		{Op: OpConst, Arg: be(1)},
		{Op: OpAdd},
		{Op: OpReturn},
	}
	host := NewMemHost(nil)
	res := Run(prog, host, ctx(100000))
	if res.State != StateFail || CodeOf(res.Err) != ErrOverflow {
		t.Fatalf("expected FAIL/ErrOverflow, got %v %v", res.State, res.Err)
	}
}

func TestArithAcceptsResultAtUint256Cap(t *testing.T) {
	almostMax := new(big.Int).Sub(MaxUint256, big.NewInt(1))
	prog := Program{
		{Op: OpConst, Arg: EncodeScalar(almostMax)},
		{Op: OpConst, Arg: be(1)},
		{Op: OpAdd},
		{Op: OpReturn},
	}
	host := NewMemHost(nil)
	res := Run(prog, host, ctx(100000))
	if res.State != StateCommit {
		t.Fatalf("expected COMMIT, got %v (%v)", res.State, res.Err)
	}
	if got := DecodeScalar(res.ReturnData); got.Cmp(MaxUint256) != 0 {
		t.Fatalf("expected MaxUint256, got %v", got)
	}
}

func TestDepthLimitExceeded(t *testing.T) {
	prog := Program{{Op: OpReturn}}
	host := NewMemHost(nil)
	c := ctx(1000)
	c.Depth = MaxDepth + 1
	res := Run(prog, host, c)
	if res.State != StateFail || CodeOf(res.Err) != ErrDepthLimit {
		t.Fatalf("expected depth limit failure, got %v %v", res.State, res.Err)
	}
}
