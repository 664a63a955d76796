package state

import (
	"math/big"
	"sort"

	"github.com/animicaorg/animica-node/address"
	"github.com/animicaorg/animica-node/codec"
)

// Account is the minimal per-address state the root commits to: balance,
// nonce, and (for contracts) a code hash and storage root.
type Account struct {
	Address     address.Address
	Balance     *big.Int
	Nonce       uint64
	CodeHash    [32]byte // zero for externally-owned accounts
	StorageRoot [32]byte // zero for externally-owned accounts
}

const (
	tagLeaf = "animica:state:leaf/v1"
	tagNode = "animica:state:node/v1"
)

func leafHash(a Account) [32]byte {
	bal := a.Balance
	if bal == nil {
		bal = big.NewInt(0)
	}
	payload := map[string]any{
		"address":      a.Address.Bytes(),
		"balance":      bal.String(),
		"nonce":        a.Nonce,
		"code_hash":    a.CodeHash[:],
		"storage_root": a.StorageRoot[:],
	}
	h, err := codec.DomainSeparatedHash(tagLeaf, payload)
	if err != nil {
		// payload shape is fixed and always canonical-encodable.
		panic(err)
	}
	return h
}

func nodeHash(left, right [32]byte) [32]byte {
	buf := make([]byte, 64)
	copy(buf[:32], left[:])
	copy(buf[32:], right[:])
	h, err := codec.DomainSeparatedHash(tagNode, buf)
	if err != nil {
		panic(err)
	}
	return h
}

// Root computes the account state root: a binary Merkle tree over accounts
// sorted by address, odd nodes promoted by self-pairing (duplicate the last
// leaf).
func Root(accounts []Account) [32]byte {
	if len(accounts) == 0 {
		h, err := codec.DomainSeparatedHash(tagNode, nil)
		if err != nil {
			panic(err)
		}
		return h
	}
	sorted := append([]Account(nil), accounts...)
	sort.Slice(sorted, func(i, j int) bool {
		return lessAddress(sorted[i].Address, sorted[j].Address)
	})

	level := make([][32]byte, len(sorted))
	for i, a := range sorted {
		level[i] = leafHash(a)
	}
	for len(level) > 1 {
		var next [][32]byte
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, nodeHash(level[i], level[i+1]))
			} else {
				next = append(next, nodeHash(level[i], level[i]))
			}
		}
		level = next
	}
	return level[0]
}

func lessAddress(a, b address.Address) bool {
	ab, bb := a.Bytes(), b.Bytes()
	for i := range ab {
		if ab[i] != bb[i] {
			return ab[i] < bb[i]
		}
	}
	return false
}
