package rpc

import (
	"math/big"

	"github.com/animicaorg/animica-node/address"
	"github.com/animicaorg/animica-node/beacon"
	"github.com/animicaorg/animica-node/da"
	"github.com/animicaorg/animica-node/state"
	"github.com/animicaorg/animica-node/tx"
)

// Backend is the seam between the wire-facing rpc package and the node's
// actual chain state, mempool, DA store, beacon, and AICF registry. The
// node wires a concrete implementation; rpc only ever calls through this
// interface, so the RPC surface binds via explicit configuration structs
// rather than process-wide state.
type Backend interface {
	ChainID() uint64
	Params() NetworkParams
	Head() BlockView
	BlockByNumber(n uint64, opts BlockViewOptions) (BlockView, bool)
	BlockByHash(h [32]byte, opts BlockViewOptions) (BlockView, bool)

	Balance(addr address.Address) *big.Int
	Nonce(addr address.Address) uint64
	Receipt(txHash [32]byte) (state.Receipt, bool)
	TransactionByHash(txHash [32]byte) (tx.SignedTx, bool)
	SubmitRawTransaction(raw []byte) ([32]byte, error)

	PutBlob(ns da.Namespace, data []byte) (commitment [32]byte, size int, err error)
	GetBlob(commitment [32]byte) (da.Blob, bool)
	GetProof(commitment [32]byte, samples int) (InclusionProofView, error)

	RandParams() RandParamsView
	RandRound() RandRoundView
	RandCommit(saltHash, payloadHash [32]byte) error
	RandReveal(salt, payload []byte) error
	Beacon(roundOrLatest string) (beacon.Output, bool)

	ListProviders(filter ProviderFilter) []ProviderView
	GetProvider(id string) (ProviderView, bool)
	ListJobs(filter JobFilter) []JobView
	GetJob(taskID [32]byte) (JobView, bool)
	ClaimPayout(providerID string, epoch uint64) (PayoutView, error)
	ProviderBalance(providerID string) *big.Int
}

// NetworkParams mirrors chain.getParams()'s view of the pinned network
// constants (§4.3/§4.2 parameters surfaced read-only over RPC).
type NetworkParams struct {
	ChainID   uint64 `json:"chainId"`
	ShareSize int    `json:"shareSize"`
	K         int    `json:"k"`
	N         int    `json:"n"`
	NSSize    int    `json:"nsSize"`
	EpochLen  uint64 `json:"epochLength"`
}

// BlockViewOptions controls which optional sections chain.getBlockBy*
// includes, per CANONICAL §6 ("{txs?, receipts?, proofs?}").
type BlockViewOptions struct {
	IncludeTxs      bool
	IncludeReceipts bool
	IncludeProofs   bool
}

// BlockView is the JSON projection of a sealed block.
type BlockView struct {
	Hash         string           `json:"hash"`
	Height       uint64           `json:"height"`
	ParentHash   string           `json:"parentHash"`
	StateRoot    string           `json:"stateRoot"`
	DARoot       string           `json:"daRoot"`
	Timestamp    uint64           `json:"timestamp"`
	Transactions []string         `json:"transactions,omitempty"`
	Receipts     []ReceiptView    `json:"receipts,omitempty"`
}

// ReceiptView is the JSON projection of state.Receipt.
type ReceiptView struct {
	TxHash          string   `json:"txHash"`
	BlockHash       string   `json:"blockHash"`
	BlockHeight     uint64   `json:"blockHeight"`
	Index           uint32   `json:"index"`
	Status          string   `json:"status"`
	GasUsed         uint64   `json:"gasUsed"`
	ReturnData      string   `json:"returnData,omitempty"`
	ContractAddress string   `json:"contractAddress,omitempty"`
	Error           string   `json:"error,omitempty"`
}

// InclusionProofView is the JSON projection of a da inclusion proof.
type InclusionProofView struct {
	Commitment string   `json:"commitment"`
	LeafIndex  int      `json:"leafIndex"`
	Siblings   []string `json:"siblings"`
}

// RandParamsView surfaces the beacon's pinned window/VDF parameters.
type RandParamsView struct {
	CommitWindowBlocks uint64 `json:"commitWindowBlocks"`
	RevealWindowBlocks uint64 `json:"revealWindowBlocks"`
	VDFIterations      uint64 `json:"vdfIterations"`
}

// RandRoundView surfaces the active round's window.
type RandRoundView struct {
	RoundID     uint64 `json:"roundId"`
	CommitStart uint64 `json:"commitStart"`
	CommitEnd   uint64 `json:"commitEnd"`
	RevealStart uint64 `json:"revealStart"`
	RevealEnd   uint64 `json:"revealEnd"`
}

// ProviderFilter narrows aicf.listProviders.
type ProviderFilter struct {
	Status     string
	Capability string
}

// ProviderView is the JSON projection of an aicf.ProviderRecord.
type ProviderView struct {
	ProviderID  string   `json:"providerId"`
	Status      string   `json:"status"`
	Capabilities []string `json:"capabilities"`
	StakeBonded uint64   `json:"stakeBonded"`
	HealthScore float64  `json:"healthScore"`
	Region      string   `json:"region"`
}

// JobFilter narrows aicf.listJobs.
type JobFilter struct {
	Status string
	Kind   string
}

// JobView is the JSON projection of an aicf.JobRecord.
type JobView struct {
	TaskID     string `json:"taskId"`
	Kind       string `json:"kind"`
	Status     string `json:"status"`
	ProviderID string `json:"providerId,omitempty"`
	Retries    uint32 `json:"retries"`
}

// PayoutView is the JSON projection of a settled aicf.Payout.
type PayoutView struct {
	ProviderID  string  `json:"providerId"`
	Epoch       uint64  `json:"epoch"`
	ProviderCut float64 `json:"providerCut"`
	MinerCut    float64 `json:"minerCut"`
	FundCut     float64 `json:"fundCut"`
}
