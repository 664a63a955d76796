package node

import (
	"github.com/animicaorg/animica-node/address"
	"github.com/animicaorg/animica-node/state"
)

// blockWireT/receiptWireT are the CBOR-friendly projections of Block and
// state.Receipt: canonical CBOR (via codec.Marshal) needs plain slices and
// byte strings, not Go's [32]byte/pointer-typed domain structs, so the
// store's persisted shape is kept separate from the in-memory one.
type blockWireT struct {
	Hash       []byte
	Height     uint64
	ParentHash []byte
	StateRoot  []byte
	DARoot     []byte
	Timestamp  uint64
	TxHashes   [][]byte
}

func blockWire(b Block) blockWireT {
	w := blockWireT{
		Hash:       b.Hash[:],
		Height:     b.Height,
		ParentHash: b.ParentHash[:],
		StateRoot:  b.StateRoot[:],
		DARoot:     b.DARoot[:],
		Timestamp:  b.Timestamp,
	}
	for _, h := range b.TxHashes {
		w.TxHashes = append(w.TxHashes, h[:])
	}
	return w
}

func (w blockWireT) toBlock() Block {
	b := Block{Height: w.Height, Timestamp: w.Timestamp}
	copy(b.Hash[:], w.Hash)
	copy(b.ParentHash[:], w.ParentHash)
	copy(b.StateRoot[:], w.StateRoot)
	copy(b.DARoot[:], w.DARoot)
	for _, raw := range w.TxHashes {
		var h [32]byte
		copy(h[:], raw)
		b.TxHashes = append(b.TxHashes, h)
	}
	return b
}

type logWireT struct {
	Contract []byte
	Topics   [][]byte
	Data     []byte
}

type receiptWireT struct {
	TxHash          []byte
	BlockHash       []byte
	BlockHeight     uint64
	Index           uint32
	Status          string
	GasUsed         uint64
	ReturnData      []byte
	ContractAddress []byte // empty means absent
	Logs            []logWireT
	Error           string
}

func receiptWire(r state.Receipt) receiptWireT {
	w := receiptWireT{
		TxHash:      r.TxHash[:],
		BlockHash:   r.BlockHash[:],
		BlockHeight: r.BlockHeight,
		Index:       r.Index,
		Status:      string(r.Status),
		GasUsed:     r.GasUsed,
		ReturnData:  r.ReturnData,
		Error:       r.Error,
	}
	if r.ContractAddress != nil {
		w.ContractAddress = r.ContractAddress.Bytes()
	}
	for _, l := range r.Logs {
		w.Logs = append(w.Logs, logWireT{Contract: l.Contract.Bytes(), Topics: l.Topics, Data: l.Data})
	}
	return w
}

func (w receiptWireT) toReceipt() state.Receipt {
	r := state.Receipt{
		BlockHeight: w.BlockHeight,
		Index:       w.Index,
		Status:      state.Status(w.Status),
		GasUsed:     w.GasUsed,
		ReturnData:  w.ReturnData,
		Error:       w.Error,
	}
	copy(r.TxHash[:], w.TxHash)
	copy(r.BlockHash[:], w.BlockHash)
	if len(w.ContractAddress) > 0 {
		addr, err := address.FromBytes(w.ContractAddress)
		if err == nil {
			r.ContractAddress = &addr
		}
	}
	for _, l := range w.Logs {
		addr, _ := address.FromBytes(l.Contract)
		r.Logs = append(r.Logs, state.Log{Contract: addr, Topics: l.Topics, Data: l.Data})
	}
	return r
}
