package node

import (
	"math/big"
	"sort"

	bolt "go.etcd.io/bbolt"

	"github.com/animicaorg/animica-node/address"
	"github.com/animicaorg/animica-node/codec"
	"github.com/animicaorg/animica-node/state"
)

// accountWireT is the CBOR-persisted projection of state.Account: balance
// as a decimal string (matching the canonical decimal-integer convention
// tx.TxBody already uses for value/maxFee) rather than trusting cbor's
// native bignum support, which CoreDetEncOptions does not pin a rule for.
type accountWireT struct {
	Balance     string
	Nonce       uint64
	CodeHash    []byte
	StorageRoot []byte
}

// GetAccount reads addr's persisted account, defaulting to a zero-balance,
// zero-nonce account if it has never been touched.
func (s *BlockStore) GetAccount(addr address.Address) (state.Account, error) {
	acc := state.Account{Address: addr, Balance: big.NewInt(0)}
	err := s.db.View(func(btx *bolt.Tx) error {
		raw := btx.Bucket(bucketAccounts).Get(addr.Bytes())
		if raw == nil {
			return nil
		}
		var w accountWireT
		if err := codec.Unmarshal(raw, &w); err != nil {
			return err
		}
		bal, ok := new(big.Int).SetString(w.Balance, 10)
		if !ok {
			bal = big.NewInt(0)
		}
		acc.Balance = bal
		acc.Nonce = w.Nonce
		copy(acc.CodeHash[:], w.CodeHash)
		copy(acc.StorageRoot[:], w.StorageRoot)
		return nil
	})
	return acc, err
}

// PutAccount persists acc's current balance/nonce/code/storage-root.
func (s *BlockStore) PutAccount(acc state.Account) error {
	w := accountWireT{
		Balance:     acc.Balance.String(),
		Nonce:       acc.Nonce,
		CodeHash:    acc.CodeHash[:],
		StorageRoot: acc.StorageRoot[:],
	}
	enc, err := codec.Marshal(w)
	if err != nil {
		return err
	}
	return s.db.Update(func(btx *bolt.Tx) error {
		return btx.Bucket(bucketAccounts).Put(acc.Address.Bytes(), enc)
	})
}

// AllAccounts snapshots every known account, sorted by address, for
// state.Root computation at seal time.
func (s *BlockStore) AllAccounts() ([]state.Account, error) {
	var accounts []state.Account
	err := s.db.View(func(btx *bolt.Tx) error {
		return btx.Bucket(bucketAccounts).ForEach(func(k, v []byte) error {
			addr, err := address.FromBytes(k)
			if err != nil {
				return err
			}
			var w accountWireT
			if err := codec.Unmarshal(v, &w); err != nil {
				return err
			}
			bal, ok := new(big.Int).SetString(w.Balance, 10)
			if !ok {
				bal = big.NewInt(0)
			}
			acc := state.Account{Address: addr, Balance: bal, Nonce: w.Nonce}
			copy(acc.CodeHash[:], w.CodeHash)
			copy(acc.StorageRoot[:], w.StorageRoot)
			accounts = append(accounts, acc)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(accounts, func(i, j int) bool {
		return string(accounts[i].Address.Bytes()) < string(accounts[j].Address.Bytes())
	})
	return accounts, nil
}
