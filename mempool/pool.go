// Package mempool implements transaction admission, fee-priority ordering,
// per-account nonce sequencing, and eviction under a bounded pool size
// (CANONICAL §2 "Mempool/Admission", §6 "many writers / one reader").
package mempool

import (
	"container/heap"
	"math/big"
	"sync"

	"github.com/animicaorg/animica-node/address"
	"github.com/animicaorg/animica-node/tx"
)

// MinFee is the minimum accepted MaxFee; transactions bidding below it are
// rejected at admission. A production network would source this from
// node/config.go; pinned here as the pool's own floor.
const MinFee = 1

// entry is one admitted, not-yet-sealed transaction plus its derived
// priority key.
type entry struct {
	stx      tx.SignedTx
	fee      *big.Int
	gasLimit uint64
	seq      uint64 // arrival order, used to break priority ties (stable)
	index    int    // heap.Interface bookkeeping
}

// priority orders by fee-per-gas descending, then arrival order ascending —
// "ordering by priority is stable under ties" (spec §6). The exact priority
// function is left network-policy by spec §9's Open Questions; fee-rate is
// the natural default and is documented here as this network's choice.
func (e *entry) feeRate() *big.Int {
	if e.gasLimit == 0 {
		return new(big.Int).Set(e.fee)
	}
	return new(big.Int).Div(e.fee, new(big.Int).SetUint64(e.gasLimit))
}

// priorityQueue is a max-heap over entry.feeRate(), ties broken by seq.
type priorityQueue []*entry

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	ri, rj := pq[i].feeRate(), pq[j].feeRate()
	if c := ri.Cmp(rj); c != 0 {
		return c > 0 // higher fee rate first
	}
	return pq[i].seq < pq[j].seq
}
func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index, pq[j].index = i, j
}
func (pq *priorityQueue) Push(x any) {
	e := x.(*entry)
	e.index = len(*pq)
	*pq = append(*pq, e)
}
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*pq = old[:n-1]
	return e
}

// Pool is the node's transaction mempool: a single logical writer
// (Admit/Evict under a lock) with the block builder reading an immutable
// snapshot via Drain.
type Pool struct {
	mu sync.Mutex

	maxSize     int
	nextSeq     uint64
	byHash      map[[32]byte]*entry
	byAccount   map[address.Address]map[uint64]*entry // account -> nonce -> entry
	expectNonce map[address.Address]uint64             // next admissible nonce per account
	pq          priorityQueue
}

// New constructs an empty Pool bounded at maxSize entries.
func New(maxSize int) *Pool {
	return &Pool{
		maxSize:     maxSize,
		byHash:      make(map[[32]byte]*entry),
		byAccount:   make(map[address.Address]map[uint64]*entry),
		expectNonce: make(map[address.Address]uint64),
	}
}

// Admit validates a signed transaction against pool-local admission rules
// and inserts it, evicting the lowest-priority entry if the pool is full and
// the incoming transaction outranks it.
func (p *Pool) Admit(stx tx.SignedTx) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, dup := p.byHash[stx.TxHash]; dup {
		return &tx.TxError{Code: tx.ErrDuplicate, Msg: "transaction already in pool"}
	}

	fee, ok := new(big.Int).SetString(stx.Body.MaxFee, 10)
	if !ok {
		return &tx.TxError{Code: tx.ErrInvalidTx, Msg: "max_fee is not a canonical decimal"}
	}
	if fee.Cmp(big.NewInt(MinFee)) < 0 {
		return &tx.TxError{Code: tx.ErrFeeTooLow, Msg: "max_fee below pool minimum"}
	}

	from := stx.Body.From
	if p.byAccount[from] != nil {
		if _, exists := p.byAccount[from][stx.Body.Nonce]; exists {
			return &tx.TxError{Code: tx.ErrDuplicate, Msg: "nonce already queued"}
		}
	}
	expected, seen := p.expectNonce[from]
	if !seen {
		expected = stx.Body.Nonce
	}
	if stx.Body.Nonce < expected {
		return &tx.TxError{Code: tx.ErrNonceGap, Msg: "nonce already consumed"}
	}

	e := &entry{stx: stx, fee: fee, gasLimit: stx.Body.GasLimit, seq: p.nextSeq}
	p.nextSeq++

	if len(p.byHash) >= p.maxSize {
		worst := p.worst()
		if worst != nil && e.feeRate().Cmp(worst.feeRate()) <= 0 {
			return &tx.TxError{Code: tx.ErrLimitExceeded, Msg: "pool full and incoming fee rate does not exceed the lowest entry"}
		}
		if worst != nil {
			p.removeEntry(worst)
		}
	}

	heap.Push(&p.pq, e)
	p.byHash[stx.TxHash] = e
	if p.byAccount[from] == nil {
		p.byAccount[from] = make(map[uint64]*entry)
	}
	p.byAccount[from][stx.Body.Nonce] = e
	if !seen || stx.Body.Nonce >= expected {
		p.expectNonce[from] = stx.Body.Nonce + 1
	}
	return nil
}

// worst returns the pool's lowest-priority entry (linear scan; pool sizes
// are small enough that this is simpler and cheaper than a second heap).
func (p *Pool) worst() *entry {
	if len(p.pq) == 0 {
		return nil
	}
	w := p.pq[0]
	for _, e := range p.pq {
		if p.pq.Less(w.index, e.index) {
			w = e
		}
	}
	return w
}

func (p *Pool) removeEntry(e *entry) {
	heap.Remove(&p.pq, e.index)
	delete(p.byHash, e.stx.TxHash)
	if m := p.byAccount[e.stx.Body.From]; m != nil {
		delete(m, e.stx.Body.Nonce)
	}
}

// Evict removes a transaction by hash, if present (e.g. superseded by a
// higher-fee replacement, or invalidated by a concurrent balance change).
func (p *Pool) Evict(hash [32]byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.byHash[hash]
	if !ok {
		return false
	}
	p.removeEntry(e)
	return true
}

// Len reports the current pool size.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.byHash)
}

// Drain returns up to n pending transactions in priority order, without
// removing them — the block builder is a read-only observer until it calls
// Evict for each transaction it seals.
func (p *Pool) Drain(n int) []tx.SignedTx {
	p.mu.Lock()
	defer p.mu.Unlock()

	cp := append(priorityQueue(nil), p.pq...)
	sortedCopy := make(priorityQueue, len(cp))
	copy(sortedCopy, cp)
	heap.Init(&sortedCopy)

	out := make([]tx.SignedTx, 0, n)
	for len(out) < n && sortedCopy.Len() > 0 {
		e := heap.Pop(&sortedCopy).(*entry)
		out = append(out, e.stx)
	}
	return out
}
