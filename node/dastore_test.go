package node

import (
	"testing"

	"github.com/animicaorg/animica-node/da"
)

func TestDAStorePutGetRoundTrips(t *testing.T) {
	s, err := OpenDAStore(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	var ns da.Namespace
	ns[0] = 7
	data := []byte("hello namespaced merkle tree")

	commitment, err := s.Put(ns, data)
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	blob, found, err := s.Get(commitment)
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	if string(blob.Bytes) != string(data) {
		t.Fatalf("bytes mismatch: got %q", blob.Bytes)
	}
	if blob.Namespace != ns {
		t.Fatalf("namespace mismatch")
	}
}

func TestDAStoreProofVerifies(t *testing.T) {
	s, err := OpenDAStore(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	var ns da.Namespace
	commitment, err := s.Put(ns, []byte("some data long enough to span a stripe or two of shares"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	proof, root, found, err := s.Proof(commitment, 0)
	if err != nil || !found {
		t.Fatalf("proof: found=%v err=%v", found, err)
	}
	if !da.VerifyInclusion(root, proof) {
		t.Fatalf("expected inclusion proof to verify")
	}
	if root.Digest != commitment {
		t.Fatalf("root digest does not match stored commitment")
	}
}

func TestDAStoreGetUnknownCommitment(t *testing.T) {
	s, err := OpenDAStore(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	_, found, err := s.Get([32]byte{1, 2, 3})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Fatalf("expected not found for unknown commitment")
	}
}
