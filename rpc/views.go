package rpc

import (
	"encoding/hex"

	"github.com/animicaorg/animica-node/state"
	"github.com/animicaorg/animica-node/tx"
)

func hexHash(h [32]byte) string { return hex.EncodeToString(h[:]) }

// TransactionView is the JSON projection of a tx.SignedTx.
type TransactionView struct {
	TxHash   string `json:"txHash"`
	ChainID  uint64 `json:"chainId"`
	From     string `json:"from"`
	Nonce    uint64 `json:"nonce"`
	GasLimit uint64 `json:"gasLimit"`
	MaxFee   string `json:"maxFee"`
	Kind     string `json:"kind"`
	To       string `json:"to,omitempty"`
	Value    string `json:"value,omitempty"`
	Data     string `json:"data,omitempty"`
	Scheme   string `json:"scheme"`
}

func transactionView(stx tx.SignedTx) TransactionView {
	v := TransactionView{
		TxHash:   hexHash(stx.TxHash),
		ChainID:  stx.Body.ChainID,
		From:     stx.Body.From.String(),
		Nonce:    stx.Body.Nonce,
		GasLimit: stx.Body.GasLimit,
		MaxFee:   stx.Body.MaxFee,
		Kind:     string(stx.Body.Kind),
		Scheme:   string(stx.Signature.Scheme),
	}
	switch stx.Body.Kind {
	case tx.KindTransfer:
		v.To = stx.Body.To.String()
		v.Value = stx.Body.Value
	case tx.KindCall:
		v.To = stx.Body.CallTo.String()
		v.Data = hex.EncodeToString(stx.Body.Data)
		if stx.Body.HasValue {
			v.Value = stx.Body.Value
		}
	case tx.KindDeploy:
		v.Data = hex.EncodeToString(stx.Body.Code)
	}
	return v
}

func receiptView(r state.Receipt) ReceiptView {
	v := ReceiptView{
		TxHash:      hexHash(r.TxHash),
		BlockHash:   hexHash(r.BlockHash),
		BlockHeight: r.BlockHeight,
		Index:       r.Index,
		Status:      string(r.Status),
		GasUsed:     r.GasUsed,
		Error:       r.Error,
	}
	if len(r.ReturnData) > 0 {
		v.ReturnData = hex.EncodeToString(r.ReturnData)
	}
	if r.ContractAddress != nil {
		v.ContractAddress = r.ContractAddress.String()
	}
	return v
}
