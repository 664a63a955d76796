package node

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadGenesisAllocsRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "genesis.json")
	addr := testAddr(7)
	body := `[{"address":"` + addr.String() + `","balance":"12345"}]`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	allocs, err := LoadGenesisAllocs(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(allocs) != 1 || allocs[0].Balance != "12345" {
		t.Fatalf("unexpected allocs: %+v", allocs)
	}
}

func TestLoadGenesisAllocsRejectsTraversalName(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadGenesisAllocs(dir + "/.."); err == nil {
		t.Fatalf("expected error for traversal path")
	}
	if _, err := LoadGenesisAllocs(dir + "/"); err == nil {
		t.Fatalf("expected error for a path ending in a separator")
	}
}

func TestApplyGenesisAllocsSeedsBalances(t *testing.T) {
	store, err := OpenBlockStore(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	addr := testAddr(8)
	allocs := []GenesisAlloc{{Address: addr.String(), Balance: "500"}}
	if err := ApplyGenesisAllocs(store, allocs); err != nil {
		t.Fatalf("apply: %v", err)
	}

	acc, err := store.GetAccount(addr)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if acc.Balance.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("expected balance 500, got %s", acc.Balance)
	}
}

func TestApplyGenesisAllocsRejectsBadBalance(t *testing.T) {
	store, err := OpenBlockStore(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	allocs := []GenesisAlloc{{Address: testAddr(9).String(), Balance: "not-a-number"}}
	if err := ApplyGenesisAllocs(store, allocs); err == nil {
		t.Fatalf("expected error for malformed balance")
	}
}
