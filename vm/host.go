package vm

import (
	"math/big"

	"github.com/animicaorg/animica-node/address"
)

// Event is a contract-emitted log entry, collected by the host and attached
// to the transaction's receipt (see state.Receipt). Topics is always
// [topic0, topic1] for an OpEmit-produced event (CANONICAL §4.2's
// name/canonical-args topic pair).
type Event struct {
	Contract address.Address
	Topics   [][]byte
	Data     []byte
}

// Host is the boundary between the deterministic interpreter and the
// surrounding node: account storage, event collection, and value transfer.
// The interpreter never touches state directly — callers supply an
// implementation (backed by node/chainstate in production, an in-memory map
// in tests).
type Host interface {
	SLoad(contract address.Address, key []byte) ([]byte, bool, error)
	SStore(contract address.Address, key, value []byte) error
	SDelete(contract address.Address, key []byte) error

	Emit(ev Event) error

	Transfer(from, to address.Address, amount *big.Int) error

	// BlockHeight and BlockTime expose the minimal deterministic context a
	// contract may read; both are fixed inputs to the call, never sampled.
	BlockHeight() uint64
	BlockTime() uint64
}

// MemHost is a minimal in-memory Host for tests and offline dry-runs.
type MemHost struct {
	Storage map[address.Address]map[string][]byte
	Events  []Event
	Height  uint64
	Time    uint64

	balances map[address.Address]*big.Int
}

// NewMemHost constructs an empty MemHost with the given starting balances.
func NewMemHost(balances map[address.Address]*big.Int) *MemHost {
	return &MemHost{
		Storage:  make(map[address.Address]map[string][]byte),
		balances: balances,
	}
}

func (h *MemHost) SLoad(contract address.Address, key []byte) ([]byte, bool, error) {
	m, ok := h.Storage[contract]
	if !ok {
		return nil, false, nil
	}
	v, ok := m[string(key)]
	return v, ok, nil
}

func (h *MemHost) SStore(contract address.Address, key, value []byte) error {
	if h.Storage[contract] == nil {
		h.Storage[contract] = make(map[string][]byte)
	}
	h.Storage[contract][string(key)] = append([]byte(nil), value...)
	return nil
}

func (h *MemHost) SDelete(contract address.Address, key []byte) error {
	if m, ok := h.Storage[contract]; ok {
		delete(m, string(key))
	}
	return nil
}

func (h *MemHost) Emit(ev Event) error {
	h.Events = append(h.Events, ev)
	return nil
}

func (h *MemHost) Transfer(from, to address.Address, amount *big.Int) error {
	if h.balances == nil {
		h.balances = make(map[address.Address]*big.Int)
	}
	fromBal, ok := h.balances[from]
	if !ok {
		fromBal = big.NewInt(0)
	}
	if fromBal.Cmp(amount) < 0 {
		return newVMErr(ErrHostError, "insufficient balance")
	}
	toBal, ok := h.balances[to]
	if !ok {
		toBal = big.NewInt(0)
	}
	h.balances[from] = new(big.Int).Sub(fromBal, amount)
	h.balances[to] = new(big.Int).Add(toBal, amount)
	return nil
}

func (h *MemHost) BlockHeight() uint64 { return h.Height }
func (h *MemHost) BlockTime() uint64   { return h.Time }

// Balance reports the current balance of addr, for test assertions.
func (h *MemHost) Balance(addr address.Address) *big.Int {
	if b, ok := h.balances[addr]; ok {
		return new(big.Int).Set(b)
	}
	return big.NewInt(0)
}
