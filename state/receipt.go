// Package state implements the execution-state surface produced by block
// application: receipts, the logs bloom filter, and state root derivation
// (CANONICAL §2, "Execution State").
package state

import (
	"github.com/animicaorg/animica-node/address"
	"github.com/animicaorg/animica-node/vm"
)

// Status is the terminal outcome recorded on a receipt, one level above the
// VM's internal vm.State: REVERT/OOG/FAIL all surface here, but a receipt
// additionally distinguishes a transaction rejected before EXEC ever ran
// (Invalid) from one that ran and failed (Failed).
type Status string

const (
	StatusSuccess  Status = "success"
	StatusRevert   Status = "revert"
	StatusOutOfGas Status = "out_of_gas"
	StatusInvalid  Status = "invalid"
	StatusFailed   Status = "failed"
)

// StatusFromVM maps a vm.Result's terminal state onto a receipt Status.
func StatusFromVM(st vm.State) Status {
	switch st {
	case vm.StateCommit:
		return StatusSuccess
	case vm.StateRevert:
		return StatusRevert
	case vm.StateOOG:
		return StatusOutOfGas
	default:
		return StatusFailed
	}
}

// Log is one contract-emitted event, carried from vm.Event into the
// receipt's permanent record.
type Log struct {
	Contract address.Address
	Topics   [][]byte
	Data     []byte
}

// Receipt is the immutable, append-only record of one transaction's
// execution outcome within a specific block.
type Receipt struct {
	TxHash          [32]byte
	BlockHash       [32]byte
	BlockHeight     uint64
	Index           uint32
	Status          Status
	GasUsed         uint64
	ReturnData      []byte
	ContractAddress *address.Address
	Logs            []Log
	Error           string
}

// FromVMResult builds a Receipt from one call's vm.Result plus its chain
// placement. contractAddress is non-nil only for successful deploys.
func FromVMResult(res vm.Result, txHash, blockHash [32]byte, blockHeight uint64, index uint32, contractAddress *address.Address) Receipt {
	r := Receipt{
		TxHash:          txHash,
		BlockHash:       blockHash,
		BlockHeight:     blockHeight,
		Index:           index,
		Status:          StatusFromVM(res.State),
		GasUsed:         res.GasUsed,
		ReturnData:      res.ReturnData,
		ContractAddress: contractAddress,
	}
	if res.Err != nil {
		r.Error = res.Err.Error()
	}
	for _, ev := range res.Events {
		r.Logs = append(r.Logs, Log{Contract: ev.Contract, Topics: ev.Topics, Data: ev.Data})
	}
	return r
}
