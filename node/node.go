// Package node wires the durable block/account/DA stores, the mempool, the
// AICF registry, and the randomness beacon into the single Backend the rpc
// package serves over JSON-RPC/WS.
package node

import (
	"fmt"
	"math/big"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/animicaorg/animica-node/address"
	"github.com/animicaorg/animica-node/aicf"
	"github.com/animicaorg/animica-node/beacon"
	"github.com/animicaorg/animica-node/codec"
	"github.com/animicaorg/animica-node/da"
	"github.com/animicaorg/animica-node/internal/metrics"
	"github.com/animicaorg/animica-node/mempool"
	"github.com/animicaorg/animica-node/rpc"
	"github.com/animicaorg/animica-node/state"
	"github.com/animicaorg/animica-node/tx"
)

// ErrUnknownCommitment is returned when a proof is requested for a
// commitment this node never stored.
var ErrUnknownCommitment = fmt.Errorf("node: %w", rpc.ErrUnknownBlob)

// ErrNoSettlement is returned until an epoch-settlement pipeline actually
// lands a payout for a provider (CANONICAL §4.4 "SettleEpoch" is driven by
// the block producer on an epoch boundary; no payout exists before then).
var ErrNoSettlement = fmt.Errorf("node: no settled payout for this epoch")

// Node is the top-level runtime: it owns every durable store and implements
// rpc.Backend directly, binding its store/mempool/server trio under one
// struct.
type Node struct {
	cfg Config
	log *logrus.Logger

	blocks *BlockStore
	blobs  *DAStore
	pool   *mempool.Pool
	sealer *Sealer

	aicfStore *aicf.Store
	aicfReg   *aicf.Registry

	mu          sync.Mutex
	beaconRound *beacon.Round
	beaconEng   *beacon.Beacon
	lastOutput  *beacon.Output
	roundSeq    uint64

	server  *rpc.Server
	metrics *metrics.Collectors
}

var _ rpc.Backend = (*Node)(nil)

// New opens every store under cfg.DataDir and assembles a ready Node; it
// does not yet start the RPC server (call Start for that).
func New(cfg Config, log *logrus.Logger) (*Node, error) {
	blocks, err := OpenBlockStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("node: open block store: %w", err)
	}
	blobs, err := OpenDAStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("node: open da store: %w", err)
	}
	aicfStore, err := aicf.OpenStore(filepath.Join(cfg.DataDir, "aicf.db"))
	if err != nil {
		return nil, fmt.Errorf("node: open aicf store: %w", err)
	}

	pool := mempool.New(cfg.MempoolLimit)
	aicfReg := aicf.NewRegistry(aicfStore)

	n := &Node{
		cfg:       cfg,
		log:       log,
		blocks:    blocks,
		blobs:     blobs,
		pool:      pool,
		aicfStore: aicfStore,
		aicfReg:   aicfReg,
		beaconEng: beacon.New(beacon.NewSequentialHashVDF()),
		metrics:   metrics.New(),
	}
	n.sealer = NewSealer(blocks, pool, aicfReg, aicfStore, defaultGasLimit, cfg.EpochLength, cfg.AICFBaseRate, cfg.AICFFundCapPerEpoch)
	n.beaconRound = beacon.NewRound(n.currentWindow())
	return n, nil
}

const defaultGasLimit = 10_000_000

// Start mounts the RPC/WS server; it does not block.
func (n *Node) Start() *rpc.Server {
	n.server = rpc.NewServer(n, n.log)
	return n.server
}

// Close releases every durable store.
func (n *Node) Close() error {
	if err := n.blocks.Close(); err != nil {
		return err
	}
	if err := n.blobs.Close(); err != nil {
		return err
	}
	return n.aicfStore.Close()
}

// Seal drains the mempool and seals the next block, publishing the new head
// over the WS newHeads topic (rpc.TopicNewHeads; CANONICAL §6 subscription
// catalog).
func (n *Node) Seal(timestamp uint64) (Block, []state.Receipt, error) {
	block, receipts, err := n.sealer.Seal(256, timestamp)
	if err != nil {
		return Block{}, nil, err
	}
	n.metrics.ChainHeight.Set(float64(block.Height))
	n.metrics.MempoolSize.Set(float64(n.pool.Len()))
	n.metrics.BlocksSealed.Inc()
	for _, r := range receipts {
		n.metrics.TxApplied.WithLabelValues(string(r.Status)).Inc()
	}
	if n.server != nil {
		if enc, err := codec.Marshal(blockWire(block)); err == nil {
			n.server.Hub().Publish(rpc.TopicNewHeads, enc)
		}
	}
	return block, receipts, nil
}

func (n *Node) currentWindow() beacon.Window {
	head, _, _ := n.blocks.Head()
	start := head.Height + 1
	return beacon.Window{
		CommitStart: start,
		CommitEnd:   start + n.cfg.EpochLength/2,
		RevealStart: start + n.cfg.EpochLength/2,
		RevealEnd:   start + n.cfg.EpochLength,
	}
}

// --- rpc.Backend ---

func (n *Node) ChainID() uint64 { return n.cfg.ChainID }

func (n *Node) Params() rpc.NetworkParams {
	return rpc.NetworkParams{
		ChainID:   n.cfg.ChainID,
		ShareSize: n.cfg.ShareSize,
		K:         n.cfg.K,
		N:         n.cfg.N,
		NSSize:    n.cfg.NSSize,
		EpochLen:  n.cfg.EpochLength,
	}
}

func (n *Node) Head() rpc.BlockView {
	b, found, _ := n.blocks.Head()
	if !found {
		return rpc.BlockView{}
	}
	return n.blockView(b, rpc.BlockViewOptions{})
}

func (n *Node) BlockByNumber(h uint64, opts rpc.BlockViewOptions) (rpc.BlockView, bool) {
	b, found, err := n.blocks.GetBlockByHeight(h)
	if err != nil || !found {
		return rpc.BlockView{}, false
	}
	return n.blockView(b, opts), true
}

func (n *Node) BlockByHash(hash [32]byte, opts rpc.BlockViewOptions) (rpc.BlockView, bool) {
	b, found, err := n.blocks.GetBlockByHash(hash)
	if err != nil || !found {
		return rpc.BlockView{}, false
	}
	return n.blockView(b, opts), true
}

func (n *Node) blockView(b Block, opts rpc.BlockViewOptions) rpc.BlockView {
	v := rpc.BlockView{
		Hash:       hexHash(b.Hash),
		Height:     b.Height,
		ParentHash: hexHash(b.ParentHash),
		StateRoot:  hexHash(b.StateRoot),
		DARoot:     hexHash(b.DARoot),
		Timestamp:  b.Timestamp,
	}
	if opts.IncludeTxs {
		for _, h := range b.TxHashes {
			v.Transactions = append(v.Transactions, hexHash(h))
		}
	}
	if opts.IncludeReceipts {
		for _, h := range b.TxHashes {
			if r, found, _ := n.blocks.GetReceipt(h); found {
				v.Receipts = append(v.Receipts, receiptView(r))
			}
		}
	}
	return v
}

func (n *Node) Balance(addr address.Address) *big.Int {
	acc, err := n.blocks.GetAccount(addr)
	if err != nil {
		return big.NewInt(0)
	}
	return acc.Balance
}

func (n *Node) Nonce(addr address.Address) uint64 {
	acc, err := n.blocks.GetAccount(addr)
	if err != nil {
		return 0
	}
	return acc.Nonce
}

func (n *Node) Receipt(txHash [32]byte) (state.Receipt, bool) {
	r, found, err := n.blocks.GetReceipt(txHash)
	if err != nil {
		return state.Receipt{}, false
	}
	return r, found
}

func (n *Node) TransactionByHash(txHash [32]byte) (tx.SignedTx, bool) {
	stx, found, err := n.blocks.GetTransaction(txHash)
	if err != nil {
		return tx.SignedTx{}, false
	}
	return stx, found
}

func (n *Node) SubmitRawTransaction(raw []byte) ([32]byte, error) {
	stx, err := tx.DecodeEnvelope(raw)
	if err != nil {
		return [32]byte{}, err
	}
	if stx.Body.ChainID != n.cfg.ChainID {
		return [32]byte{}, &tx.TxError{Code: tx.ErrChainIDMismatch, Msg: "wrong chain id"}
	}
	if err := n.pool.Admit(stx); err != nil {
		return [32]byte{}, err
	}
	n.metrics.MempoolSize.Set(float64(n.pool.Len()))
	return stx.TxHash, nil
}

func (n *Node) PutBlob(ns da.Namespace, data []byte) ([32]byte, int, error) {
	commitment, err := n.blobs.Put(ns, data)
	if err != nil {
		return [32]byte{}, 0, err
	}
	n.metrics.BlobsStored.Inc()
	return commitment, len(data), nil
}

func (n *Node) GetBlob(commitment [32]byte) (da.Blob, bool) {
	blob, found, err := n.blobs.Get(commitment)
	if err != nil || !found {
		return da.Blob{}, false
	}
	return blob, true
}

func (n *Node) GetProof(commitment [32]byte, samples int) (rpc.InclusionProofView, error) {
	proof, _, found, err := n.blobs.Proof(commitment, samples)
	if err != nil {
		return rpc.InclusionProofView{}, err
	}
	if !found {
		return rpc.InclusionProofView{}, ErrUnknownCommitment
	}
	v := rpc.InclusionProofView{
		Commitment: hexHash(commitment),
		LeafIndex:  proof.LeafIndex,
	}
	for _, sib := range proof.Siblings {
		v.Siblings = append(v.Siblings, hexHash(sib.Digest))
	}
	return v, nil
}

func (n *Node) RandParams() rpc.RandParamsView {
	return rpc.RandParamsView{
		CommitWindowBlocks: n.cfg.EpochLength / 2,
		RevealWindowBlocks: n.cfg.EpochLength / 2,
		VDFIterations:      beacon.DefaultVDFIterations,
	}
}

func (n *Node) RandRound() rpc.RandRoundView {
	n.mu.Lock()
	defer n.mu.Unlock()
	w := n.currentWindow()
	return rpc.RandRoundView{
		RoundID:     n.roundSeq,
		CommitStart: w.CommitStart,
		CommitEnd:   w.CommitEnd,
		RevealStart: w.RevealStart,
		RevealEnd:   w.RevealEnd,
	}
}

func (n *Node) RandCommit(saltHash, payloadHash [32]byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	head, _, _ := n.blocks.Head()
	// The rpc.Backend surface does not carry a caller identity for
	// rand.commit/reveal (CANONICAL §6 leaves submission anonymous at the
	// JSON-RPC layer); participants are keyed by their salt hash (wrapped
	// as an address) instead of a caller address here.
	return n.beaconRound.SubmitCommit(beacon.Commit{
		Participant: address.New(0, saltHash),
		SaltHash:    saltHash,
		PayloadHash: payloadHash,
		Height:      head.Height,
	})
}

func (n *Node) RandReveal(salt, payload []byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	head, _, _ := n.blocks.Head()
	saltHash := codec.SHA3_256(salt)
	return n.beaconRound.SubmitReveal(beacon.Reveal{
		Participant: address.New(0, saltHash),
		Salt:        salt,
		Payload:     payload,
		Height:      head.Height,
	})
}

func (n *Node) Beacon(roundOrLatest string) (beacon.Output, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.lastOutput == nil {
		return beacon.Output{}, false
	}
	return *n.lastOutput, true
}

// FinalizeBeaconRound closes the active commit-reveal round, advances the
// beacon's epoch, and opens a fresh round for the next epoch.
func (n *Node) FinalizeBeaconRound() beacon.Output {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.beaconEng.Finalize(n.beaconRound, n.roundSeq)
	n.lastOutput = &out
	n.roundSeq++
	n.beaconRound = beacon.NewRound(n.currentWindow())
	return out
}

func (n *Node) ListProviders(filter rpc.ProviderFilter) []rpc.ProviderView {
	providers, err := n.aicfStore.ListProviders()
	if err != nil {
		return nil
	}
	var out []rpc.ProviderView
	for _, p := range providers {
		if filter.Status != "" && string(p.Status) != filter.Status {
			continue
		}
		if filter.Capability != "" && !p.HasCapability(aicf.Capability(filter.Capability)) {
			continue
		}
		out = append(out, providerView(p))
	}
	return out
}

func (n *Node) GetProvider(id string) (rpc.ProviderView, bool) {
	p, found, err := n.aicfStore.GetProvider(id)
	if err != nil || !found {
		return rpc.ProviderView{}, false
	}
	return providerView(p), true
}

func (n *Node) ListJobs(filter rpc.JobFilter) []rpc.JobView {
	jobs, err := n.aicfStore.ListJobs()
	if err != nil {
		return nil
	}
	n.metrics.AICFJobsActive.Set(float64(len(jobs)))
	var out []rpc.JobView
	for _, j := range jobs {
		if filter.Status != "" && string(j.Status) != filter.Status {
			continue
		}
		if filter.Kind != "" && string(j.Kind) != filter.Kind {
			continue
		}
		out = append(out, jobView(j))
	}
	return out
}

func (n *Node) GetJob(taskID [32]byte) (rpc.JobView, bool) {
	j, found, err := n.aicfStore.GetJob(taskID)
	if err != nil || !found {
		return rpc.JobView{}, false
	}
	return jobView(j), true
}

func (n *Node) ClaimPayout(providerID string, epoch uint64) (rpc.PayoutView, error) {
	payout, found, err := n.aicfStore.GetPayout(providerID, epoch)
	if err != nil {
		return rpc.PayoutView{}, err
	}
	if !found {
		return rpc.PayoutView{}, ErrNoSettlement
	}
	return rpc.PayoutView{
		ProviderID:  payout.ProviderID,
		Epoch:       payout.Epoch,
		ProviderCut: payout.ProviderCut,
		MinerCut:    payout.MinerCut,
		FundCut:     payout.FundCut,
	}, nil
}

// ProviderBalance is a provider's bonded stake plus every provider-cut
// payout it has settled so far — stake and earnings are tracked in
// different units/ledgers (aicf.ProviderRecord.StakeBonded vs. aicf.Payout)
// but both represent value owed to the same provider, so they are summed
// here rather than forcing an RPC caller to make two separate calls.
func (n *Node) ProviderBalance(providerID string) *big.Int {
	p, found, err := n.aicfStore.GetProvider(providerID)
	if err != nil || !found {
		return big.NewInt(0)
	}
	balance := new(big.Int).SetUint64(p.StakeBonded)

	payouts, err := n.aicfStore.ListProviderPayouts(providerID)
	if err != nil {
		return balance
	}
	var earned float64
	for _, payout := range payouts {
		earned += payout.ProviderCut
	}
	return balance.Add(balance, big.NewInt(int64(earned)))
}

func providerView(p aicf.ProviderRecord) rpc.ProviderView {
	caps := make([]string, 0, len(p.Capabilities))
	for _, c := range p.Capabilities {
		caps = append(caps, string(c))
	}
	return rpc.ProviderView{
		ProviderID:   p.ProviderID,
		Status:       string(p.Status),
		Capabilities: caps,
		StakeBonded:  p.StakeBonded,
		HealthScore:  p.HealthScore,
		Region:       p.Region,
	}
}

func jobView(j aicf.JobRecord) rpc.JobView {
	return rpc.JobView{
		TaskID:     hexHash(j.TaskID),
		Kind:       string(j.Kind),
		Status:     string(j.Status),
		ProviderID: j.ProviderID,
		Retries:    j.Retries,
	}
}
