package node

import (
	"encoding/hex"

	"github.com/animicaorg/animica-node/rpc"
	"github.com/animicaorg/animica-node/state"
)

func hexHash(h [32]byte) string { return hex.EncodeToString(h[:]) }

// receiptView projects a state.Receipt into the wire-facing shape rpc
// already defines for transport, so node stays the only place that reaches
// into state.Receipt's internal representation.
func receiptView(r state.Receipt) rpc.ReceiptView {
	v := rpc.ReceiptView{
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
