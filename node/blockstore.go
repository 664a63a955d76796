package node

import (
	"fmt"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/animicaorg/animica-node/codec"
	"github.com/animicaorg/animica-node/state"
	"github.com/animicaorg/animica-node/tx"
)

var (
	bucketBlocksByHash   = []byte("blocks_by_hash")
	bucketBlocksByHeight = []byte("blocks_by_height")
	bucketReceipts       = []byte("receipts_by_txhash")
	bucketTxs            = []byte("txs_by_hash")
	bucketMeta           = []byte("meta")
	bucketAccounts       = []byte("accounts_by_address")
)

var keyHead = []byte("head")

// Block is the sealed, persisted block record: a thin index over its
// transactions plus the roots committed atomically at seal time
// (CANONICAL §5 "Atomicity": "receipts, logs, bloom, state root, and DA
// root are committed together under the block hash").
type Block struct {
	Hash       [32]byte
	Height     uint64
	ParentHash [32]byte
	StateRoot  [32]byte
	DARoot     [32]byte
	Timestamp  uint64
	TxHashes   [][32]byte
}

// BlockStore is the bbolt-backed durable store for sealed blocks,
// transactions, and receipts: `bolt.Open` with a timeout, one bucket per
// index, buckets created once at open under a single Update.
type BlockStore struct {
	db *bolt.DB
}

// OpenBlockStore opens (creating if needed) the chain database under
// dataDir.
func OpenBlockStore(dataDir string) (*BlockStore, error) {
	path := filepath.Join(dataDir, "chain.db")
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("node: open block store: %w", err)
	}
	s := &BlockStore{db: db}
	err = db.Update(func(btx *bolt.Tx) error {
		for _, b := range [][]byte{bucketBlocksByHash, bucketBlocksByHeight, bucketReceipts, bucketTxs, bucketMeta, bucketAccounts} {
			if _, err := btx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *BlockStore) Close() error { return s.db.Close() }

// PutBlock persists a sealed block along with the receipts and transaction
// bodies produced while applying it, and advances the head pointer. This
// is the single commit point Sealer.Seal calls once a block's invariants
// have all held (CANONICAL §5 "all-or-nothing").
func (s *BlockStore) PutBlock(b Block, receipts []state.Receipt, txs []tx.SignedTx) error {
	return s.db.Update(func(btx *bolt.Tx) error {
		blocks := btx.Bucket(bucketBlocksByHash)
		enc, err := codec.Marshal(blockWire(b))
		if err != nil {
			return err
		}
		if err := blocks.Put(b.Hash[:], enc); err != nil {
			return err
		}
		byHeight := btx.Bucket(bucketBlocksByHeight)
		if err := byHeight.Put(heightKey(b.Height), b.Hash[:]); err != nil {
			return err
		}

		receiptBucket := btx.Bucket(bucketReceipts)
		for _, r := range receipts {
			enc, err := codec.Marshal(receiptWire(r))
			if err != nil {
				return err
			}
			if err := receiptBucket.Put(r.TxHash[:], enc); err != nil {
				return err
			}
		}

		txBucket := btx.Bucket(bucketTxs)
		for _, stx := range txs {
			enc, err := tx.EncodeEnvelope(stx)
			if err != nil {
				return err
			}
			if err := txBucket.Put(stx.TxHash[:], enc); err != nil {
				return err
			}
		}

		return btx.Bucket(bucketMeta).Put(keyHead, b.Hash[:])
	})
}

func (s *BlockStore) GetBlockByHash(hash [32]byte) (Block, bool, error) {
	var out Block
	var found bool
	err := s.db.View(func(btx *bolt.Tx) error {
		raw := btx.Bucket(bucketBlocksByHash).Get(hash[:])
		if raw == nil {
			return nil
		}
		var w blockWireT
		if err := codec.Unmarshal(raw, &w); err != nil {
			return err
		}
		out = w.toBlock()
		found = true
		return nil
	})
	return out, found, err
}

func (s *BlockStore) GetBlockByHeight(height uint64) (Block, bool, error) {
	var hash [32]byte
	var found bool
	err := s.db.View(func(btx *bolt.Tx) error {
		raw := btx.Bucket(bucketBlocksByHeight).Get(heightKey(height))
		if raw == nil {
			return nil
		}
		copy(hash[:], raw)
		found = true
		return nil
	})
	if err != nil || !found {
		return Block{}, false, err
	}
	return s.GetBlockByHash(hash)
}

func (s *BlockStore) Head() (Block, bool, error) {
	var hash [32]byte
	var found bool
	err := s.db.View(func(btx *bolt.Tx) error {
		raw := btx.Bucket(bucketMeta).Get(keyHead)
		if raw == nil {
			return nil
		}
		copy(hash[:], raw)
		found = true
		return nil
	})
	if err != nil || !found {
		return Block{}, false, err
	}
	return s.GetBlockByHash(hash)
}

func (s *BlockStore) GetReceipt(txHash [32]byte) (state.Receipt, bool, error) {
	var out state.Receipt
	var found bool
	err := s.db.View(func(btx *bolt.Tx) error {
		raw := btx.Bucket(bucketReceipts).Get(txHash[:])
		if raw == nil {
			return nil
		}
		var w receiptWireT
		if err := codec.Unmarshal(raw, &w); err != nil {
			return err
		}
		out = w.toReceipt()
		found = true
		return nil
	})
	return out, found, err
}

func (s *BlockStore) GetTransaction(txHash [32]byte) (tx.SignedTx, bool, error) {
	var out tx.SignedTx
	var found bool
	err := s.db.View(func(btx *bolt.Tx) error {
		raw := btx.Bucket(bucketTxs).Get(txHash[:])
		if raw == nil {
			return nil
		}
		stx, err := tx.DecodeEnvelope(raw)
		if err != nil {
			return err
		}
		out = stx
		found = true
		return nil
	})
	return out, found, err
}

func heightKey(h uint64) []byte {
	buf := make([]byte, 8)
	for i := 0; i < 8; i++ {
		buf[7-i] = byte(h >> (8 * i))
	}
	return buf
}
