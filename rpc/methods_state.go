package rpc

import (
	"encoding/json"

	"github.com/animicaorg/animica-node/address"
)

// RegisterStateMethods wires state.getBalance/getNonce (CANONICAL §6
// "Wire: state/receipt"). tx.getTransaction* live in methods_tx.go since
// they key off a tx hash, not an address.
func RegisterStateMethods(reg *Registry, backend Backend) {
	reg.Register("state.getBalance", func(raw json.RawMessage) (any, error) {
		addr, err := decodeAddress(raw)
		if err != nil {
			return nil, err
		}
		return map[string]string{"balance": backend.Balance(addr).String()}, nil
	})

	reg.Register("state.getNonce", func(raw json.RawMessage) (any, error) {
		addr, err := decodeAddress(raw)
		if err != nil {
			return nil, err
		}
		return map[string]uint64{"nonce": backend.Nonce(addr)}, nil
	})
}

func decodeAddress(raw json.RawMessage) (address.Address, error) {
	var p struct {
		Address string `json:"address"`
	}
	if err := decodeParams(raw, &p); err != nil {
		return address.Address{}, err
	}
	addr, err := address.Parse(p.Address)
	if err != nil {
		return address.Address{}, newError(CodeInvalidParams, "malformed address")
	}
	return addr, nil
}
