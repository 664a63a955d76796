package node

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/animicaorg/animica-node/pqsig"
	"github.com/animicaorg/animica-node/rpc"
	"github.com/animicaorg/animica-node/tx"
)

func testNode(t *testing.T) *Node {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	log := logrus.New()
	log.SetOutput(io.Discard)
	n, err := New(cfg, log)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	t.Cleanup(func() { _ = n.Close() })
	return n
}

func TestNodeSubmitRawTransactionRejectsWrongChainID(t *testing.T) {
	n := testNode(t)
	body := tx.TxBody{ChainID: 999, From: testAddr(1), To: testAddr(2), Kind: tx.KindTransfer, Value: "1", MaxFee: "1"}
	sig := tx.Signature{Scheme: pqsig.SchemeDilithium3, Pubkey: []byte{1}, Sig: []byte{2}}
	stx, err := tx.New(body, sig)
	if err != nil {
		t.Fatalf("new tx: %v", err)
	}
	raw, err := tx.EncodeEnvelope(stx)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := n.SubmitRawTransaction(raw); err == nil {
		t.Fatalf("expected chain id mismatch error")
	}
}

func TestNodeSubmitRawTransactionAdmitsValidTx(t *testing.T) {
	n := testNode(t)
	body := tx.TxBody{ChainID: n.ChainID(), From: testAddr(1), To: testAddr(2), Kind: tx.KindTransfer, Value: "1", MaxFee: "1"}
	sig := tx.Signature{Scheme: pqsig.SchemeDilithium3, Pubkey: []byte{1}, Sig: []byte{2}}
	stx, err := tx.New(body, sig)
	if err != nil {
		t.Fatalf("new tx: %v", err)
	}
	raw, err := tx.EncodeEnvelope(stx)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	hash, err := n.SubmitRawTransaction(raw)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if hash != stx.TxHash {
		t.Fatalf("hash mismatch")
	}
}

func TestNodeHeadIsEmptyBeforeSealing(t *testing.T) {
	n := testNode(t)
	head := n.Head()
	if head.Hash != "" {
		t.Fatalf("expected empty head hash before any block, got %q", head.Hash)
	}
}

func TestNodeSealProducesRetrievableBlock(t *testing.T) {
	n := testNode(t)
	block, _, err := n.Seal(1000)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	view, found := n.BlockByNumber(block.Height, rpc.BlockViewOptions{})
	_ = view
	if !found {
		t.Fatalf("expected sealed block to be retrievable")
	}
}
