package state

import (
	"math/big"
	"testing"

	"github.com/animicaorg/animica-node/address"
	"github.com/animicaorg/animica-node/vm"
)

func addr(b byte) address.Address {
	var h [32]byte
	h[0] = b
	return address.New(0x01, h)
}

func TestRootStableAndOrderIndependent(t *testing.T) {
	a1 := Account{Address: addr(1), Balance: big.NewInt(100), Nonce: 1}
	a2 := Account{Address: addr(2), Balance: big.NewInt(200), Nonce: 2}

	r1 := Root([]Account{a1, a2})
	r2 := Root([]Account{a2, a1})
	if r1 != r2 {
		t.Fatalf("root must be independent of input order")
	}

	a2.Nonce = 3
	r3 := Root([]Account{a1, a2})
	if r3 == r1 {
		t.Fatalf("root must change when account state changes")
	}
}

func TestBuildBloomMatchesEmittedTopics(t *testing.T) {
	c := addr(9)
	topic := []byte("Transfer")
	receipts := []Receipt{
		{Logs: []Log{{Contract: c, Topics: [][]byte{topic}, Data: []byte("payload")}}},
	}
	b := BuildBloom(receipts)
	if !b.Test(c.Bytes()) {
		t.Fatalf("expected bloom to match contract address")
	}
	if !b.Test(topic) {
		t.Fatalf("expected bloom to match topic")
	}
	if b.Test([]byte("definitely-not-present")) {
		// Not a hard requirement (false positives allowed), but this
		// specific case should not collide for a fresh filter.
		t.Logf("warning: unrelated value matched bloom (false positive, allowed)")
	}
}

func TestStatusFromVMMapping(t *testing.T) {
	cases := map[vm.State]Status{
		vm.StateCommit: StatusSuccess,
		vm.StateRevert: StatusRevert,
		vm.StateOOG:    StatusOutOfGas,
		vm.StateFail:   StatusFailed,
	}
	for in, want := range cases {
		if got := StatusFromVM(in); got != want {
			t.Fatalf("StatusFromVM(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestFromVMResultCarriesEventsAsLogs(t *testing.T) {
	res := vm.Result{
		State:   vm.StateCommit,
		GasUsed: 21,
		Events:  []vm.Event{{Contract: addr(3), Topics: [][]byte{[]byte("T")}, Data: []byte("D")}},
	}
	var txHash, blockHash [32]byte
	r := FromVMResult(res, txHash, blockHash, 1, 0, nil)
	if len(r.Logs) != 1 || string(r.Logs[0].Data) != "D" {
		t.Fatalf("expected one log carried over, got %+v", r.Logs)
	}
	if r.Status != StatusSuccess {
		t.Fatalf("expected success status")
	}
}
