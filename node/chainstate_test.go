package node

import (
	"math/big"
	"testing"

	"github.com/animicaorg/animica-node/address"
	"github.com/animicaorg/animica-node/state"
)

func testAddr(b byte) address.Address {
	var hash [32]byte
	hash[0] = b
	return address.New(1, hash)
}

func TestGetAccountDefaultsToZero(t *testing.T) {
	s, err := OpenBlockStore(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	acc, err := s.GetAccount(testAddr(1))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if acc.Balance.Sign() != 0 || acc.Nonce != 0 {
		t.Fatalf("expected zero account, got %+v", acc)
	}
}

func TestPutAccountRoundTrips(t *testing.T) {
	s, err := OpenBlockStore(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	addr := testAddr(2)
	want := state.Account{Address: addr, Balance: big.NewInt(12345), Nonce: 7}
	if err := s.PutAccount(want); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.GetAccount(addr)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Balance.Cmp(want.Balance) != 0 || got.Nonce != want.Nonce {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestAllAccountsIsSortedByAddress(t *testing.T) {
	s, err := OpenBlockStore(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	for _, b := range []byte{3, 1, 2} {
		acc := state.Account{Address: testAddr(b), Balance: big.NewInt(int64(b))}
		if err := s.PutAccount(acc); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	accounts, err := s.AllAccounts()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(accounts) != 3 {
		t.Fatalf("expected 3 accounts, got %d", len(accounts))
	}
	for i := 1; i < len(accounts); i++ {
		if string(accounts[i-1].Address.Bytes()) > string(accounts[i].Address.Bytes()) {
			t.Fatalf("accounts not sorted by address")
		}
	}
}
