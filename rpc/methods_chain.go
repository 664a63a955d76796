package rpc

import (
	"encoding/hex"
	"encoding/json"
)

// RegisterChainMethods wires chain.getHead/getParams/getChainId/
// getBlockByNumber/getBlockByHash (CANONICAL §6 "Wire: chain reads").
func RegisterChainMethods(reg *Registry, backend Backend) {
	reg.Register("chain.getHead", func(json.RawMessage) (any, error) {
		return backend.Head(), nil
	})

	reg.Register("chain.getParams", func(json.RawMessage) (any, error) {
		return backend.Params(), nil
	})

	reg.Register("chain.getChainId", func(json.RawMessage) (any, error) {
		return map[string]uint64{"chainId": backend.ChainID()}, nil
	})

	reg.Register("chain.getBlockByNumber", func(raw json.RawMessage) (any, error) {
		var p struct {
			Number uint64           `json:"number"`
			Txs    bool             `json:"txs"`
			Receipts bool           `json:"receipts"`
			Proofs bool             `json:"proofs"`
		}
		if err := decodeParams(raw, &p); err != nil {
			return nil, err
		}
		block, ok := backend.BlockByNumber(p.Number, BlockViewOptions{IncludeTxs: p.Txs, IncludeReceipts: p.Receipts, IncludeProofs: p.Proofs})
		if !ok {
			return nil, newError(CodeUnknownBlock, "unknown block")
		}
		return block, nil
	})

	reg.Register("chain.getBlockByHash", func(raw json.RawMessage) (any, error) {
		var p struct {
			Hash     string `json:"hash"`
			Txs      bool   `json:"txs"`
			Receipts bool   `json:"receipts"`
			Proofs   bool   `json:"proofs"`
		}
		if err := decodeParams(raw, &p); err != nil {
			return nil, err
		}
		b, err := hex.DecodeString(p.Hash)
		if err != nil || len(b) != 32 {
			return nil, newError(CodeInvalidParams, "hash must be 32 bytes hex")
		}
		var hash [32]byte
		copy(hash[:], b)
		block, ok := backend.BlockByHash(hash, BlockViewOptions{IncludeTxs: p.Txs, IncludeReceipts: p.Receipts, IncludeProofs: p.Proofs})
		if !ok {
			return nil, newError(CodeUnknownBlock, "unknown block")
		}
		return block, nil
	})
}
