package node

import (
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/animicaorg/animica-node/codec"
	"github.com/animicaorg/animica-node/da"
)

var (
	daBucketBlobs = []byte("da_blobs_by_commitment")
)

// daBlobWireT is the persisted shape of one submitted blob: enough to
// rebuild its NMT leaves and answer inclusion-proof requests without
// re-partitioning on every read.
type daBlobWireT struct {
	Namespace      []byte
	Bytes          []byte
	OriginalLength int
}

// DAStore is the bbolt-backed blob store behind rpc.Backend's da.* methods,
// grounded on BlockStore's own bolt.Open idiom but kept in its own database
// file so DA traffic never contends with block/account writes.
type DAStore struct {
	db *bolt.DB
}

func OpenDAStore(dataDir string) (*DAStore, error) {
	path := filepath.Join(dataDir, "da.db")
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(daBucketBlobs)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DAStore{db: db}, nil
}

func (s *DAStore) Close() error { return s.db.Close() }

// Put partitions and RS-encodes blob, committing it under its NMT root
// (CANONICAL §4.3), and persists the raw bytes for later proof generation.
func (s *DAStore) Put(ns da.Namespace, data []byte) (commitment [32]byte, err error) {
	blob := da.NewBlob(ns, data)
	leaves, err := blob.Commit()
	if err != nil {
		return [32]byte{}, err
	}
	tree := da.BuildTree(da.SortLeaves(leaves))
	commitment = tree.Root().Digest

	enc, err := codec.Marshal(daBlobWireT{Namespace: ns[:], Bytes: data, OriginalLength: len(data)})
	if err != nil {
		return [32]byte{}, err
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(daBucketBlobs).Put(commitment[:], enc)
	})
	if err != nil {
		return [32]byte{}, err
	}
	return commitment, nil
}

// Get returns the blob stored under commitment, namespace and all.
func (s *DAStore) Get(commitment [32]byte) (da.Blob, bool, error) {
	var out da.Blob
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(daBucketBlobs).Get(commitment[:])
		if raw == nil {
			return nil
		}
		var w daBlobWireT
		if err := codec.Unmarshal(raw, &w); err != nil {
			return err
		}
		var ns da.Namespace
		copy(ns[:], w.Namespace)
		out = da.NewBlob(ns, w.Bytes)
		found = true
		return nil
	})
	return out, found, err
}

// Proof rebuilds commitment's NMT and returns the inclusion proof for leaf
// sampleIndex, for answering da.getProof.
func (s *DAStore) Proof(commitment [32]byte, sampleIndex int) (da.InclusionProof, da.Node, bool, error) {
	var w daBlobWireT
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(daBucketBlobs).Get(commitment[:])
		if raw == nil {
			return nil
		}
		found = true
		return codec.Unmarshal(raw, &w)
	})
	if err != nil || !found {
		return da.InclusionProof{}, da.Node{}, false, err
	}

	var ns da.Namespace
	copy(ns[:], w.Namespace)
	blob := da.NewBlob(ns, w.Bytes)
	leaves, err := blob.Commit()
	if err != nil {
		return da.InclusionProof{}, da.Node{}, false, err
	}
	sorted := da.SortLeaves(leaves)
	tree := da.BuildTree(sorted)
	proof, ok := tree.Prove(sampleIndex)
	if !ok {
		return da.InclusionProof{}, da.Node{}, false, nil
	}
	return proof, tree.Root(), true, nil
}
