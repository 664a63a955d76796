package node

import (
	"testing"

	"github.com/animicaorg/animica-node/pqsig"
	"github.com/animicaorg/animica-node/state"
	"github.com/animicaorg/animica-node/tx"
)

func TestHeadIsEmptyBeforeAnyBlock(t *testing.T) {
	s, err := OpenBlockStore(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	_, found, err := s.Head()
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if found {
		t.Fatalf("expected no head before any block")
	}
}

func TestPutBlockAdvancesHeadAndIndexesByHeight(t *testing.T) {
	s, err := OpenBlockStore(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	block := Block{Height: 0, Hash: [32]byte{1}}
	if err := s.PutBlock(block, nil, nil); err != nil {
		t.Fatalf("put: %v", err)
	}

	head, found, err := s.Head()
	if err != nil || !found {
		t.Fatalf("head: found=%v err=%v", found, err)
	}
	if head.Hash != block.Hash {
		t.Fatalf("head hash mismatch")
	}

	byHeight, found, err := s.GetBlockByHeight(0)
	if err != nil || !found {
		t.Fatalf("get by height: found=%v err=%v", found, err)
	}
	if byHeight.Hash != block.Hash {
		t.Fatalf("height index mismatch")
	}
}

func TestPutBlockPersistsReceiptsAndTransactions(t *testing.T) {
	s, err := OpenBlockStore(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	body := tx.TxBody{ChainID: 1, Kind: tx.KindTransfer, Value: "0", MaxFee: "0"}
	sig := tx.Signature{Scheme: pqsig.SchemeDilithium3, Pubkey: []byte{1}, Sig: []byte{2}}
	stx, err := tx.New(body, sig)
	if err != nil {
		t.Fatalf("new tx: %v", err)
	}
	receipt := state.Receipt{TxHash: stx.TxHash, Status: state.StatusSuccess}
	block := Block{Height: 0, Hash: [32]byte{2}, TxHashes: [][32]byte{stx.TxHash}}

	if err := s.PutBlock(block, []state.Receipt{receipt}, []tx.SignedTx{stx}); err != nil {
		t.Fatalf("put: %v", err)
	}

	gotReceipt, found, err := s.GetReceipt(stx.TxHash)
	if err != nil || !found {
		t.Fatalf("get receipt: found=%v err=%v", found, err)
	}
	if gotReceipt.Status != state.StatusSuccess {
		t.Fatalf("receipt status mismatch: %v", gotReceipt.Status)
	}

	gotTx, found, err := s.GetTransaction(stx.TxHash)
	if err != nil || !found {
		t.Fatalf("get tx: found=%v err=%v", found, err)
	}
	if gotTx.TxHash != stx.TxHash {
		t.Fatalf("tx hash mismatch")
	}
}
