package rpc

import (
	"encoding/hex"
	"encoding/json"
)

// RegisterTxMethods wires tx.sendRawTransaction and tx.getTransaction*
// (CANONICAL §6 "Wire: TX submission"/"state/receipt").
func RegisterTxMethods(reg *Registry, backend Backend) {
	reg.Register("tx.sendRawTransaction", func(raw json.RawMessage) (any, error) {
		var p struct {
			RawCborHex string `json:"rawCborHex"`
		}
		if err := decodeParams(raw, &p); err != nil {
			return nil, err
		}
		data, err := hex.DecodeString(p.RawCborHex)
		if err != nil {
			return nil, newError(CodeInvalidParams, "rawCborHex is not valid hex")
		}
		hash, err := backend.SubmitRawTransaction(data)
		if err != nil {
			return nil, mapTxError(err)
		}
		return map[string]string{"txHash": hex.EncodeToString(hash[:])}, nil
	})

	reg.Register("tx.getTransactionByHash", func(raw json.RawMessage) (any, error) {
		hash, err := decodeHash32(raw)
		if err != nil {
			return nil, err
		}
		stx, ok := backend.TransactionByHash(hash)
		if !ok {
			return nil, newError(CodeUnknownTransaction, "unknown transaction")
		}
		return transactionView(stx), nil
	})

	reg.Register("tx.getTransactionReceipt", func(raw json.RawMessage) (any, error) {
		hash, err := decodeHash32(raw)
		if err != nil {
			return nil, err
		}
		receipt, ok := backend.Receipt(hash)
		if !ok {
			return nil, newError(CodeUnknownTransaction, "unknown transaction")
		}
		return receiptView(receipt), nil
	})
}

type hashParams struct {
	Hash string `json:"hash"`
}

func decodeHash32(raw json.RawMessage) ([32]byte, error) {
	var p hashParams
	if err := decodeParams(raw, &p); err != nil {
		return [32]byte{}, err
	}
	b, err := hex.DecodeString(p.Hash)
	if err != nil || len(b) != 32 {
		return [32]byte{}, newError(CodeInvalidParams, "hash must be 32 bytes hex")
	}
	var h [32]byte
	copy(h[:], b)
	return h, nil
}
