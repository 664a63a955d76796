package node

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/animicaorg/animica-node/address"
	"github.com/animicaorg/animica-node/state"
)

// GenesisAlloc is one pre-funded account entry in a genesis allocation file.
type GenesisAlloc struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
}

// LoadGenesisAllocs reads and parses a genesis allocation file through
// readFileByPath's traversal guard (safeio.go). The .env file that
// LoadEnvConfig reads does not pass through this guard.
func LoadGenesisAllocs(path string) ([]GenesisAlloc, error) {
	raw, err := readFileByPath(path)
	if err != nil {
		return nil, fmt.Errorf("node: read genesis file: %w", err)
	}
	var allocs []GenesisAlloc
	if err := json.Unmarshal(raw, &allocs); err != nil {
		return nil, fmt.Errorf("node: parse genesis file: %w", err)
	}
	return allocs, nil
}

// ApplyGenesisAllocs seeds store with the given allocations before any block
// is ever sealed. It fails closed on the first malformed entry rather than
// applying a partial genesis.
func ApplyGenesisAllocs(store *BlockStore, allocs []GenesisAlloc) error {
	for _, a := range allocs {
		addr, err := address.Parse(a.Address)
		if err != nil {
			return fmt.Errorf("node: genesis address %q: %w", a.Address, err)
		}
		balance, ok := new(big.Int).SetString(a.Balance, 10)
		if !ok {
			return fmt.Errorf("node: genesis balance %q for %s is not a decimal integer", a.Balance, a.Address)
		}
		if err := store.PutAccount(state.Account{Address: addr, Balance: balance}); err != nil {
			return fmt.Errorf("node: put genesis account %s: %w", a.Address, err)
		}
	}
	return nil
}
