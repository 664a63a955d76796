package node

import (
	"math/big"
	"path/filepath"
	"testing"

	"github.com/animicaorg/animica-node/aicf"
	"github.com/animicaorg/animica-node/mempool"
	"github.com/animicaorg/animica-node/pqsig"
	"github.com/animicaorg/animica-node/state"
	"github.com/animicaorg/animica-node/tx"
)

func TestSealerAppliesTransferAndUpdatesBalances(t *testing.T) {
	store, err := OpenBlockStore(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	from := testAddr(1)
	to := testAddr(2)
	if err := store.PutAccount(state.Account{Address: from, Balance: big.NewInt(1000)}); err != nil {
		t.Fatalf("seed account: %v", err)
	}

	pool := mempool.New(16)
	body := tx.TxBody{ChainID: 1, From: from, To: to, Kind: tx.KindTransfer, Value: "100", MaxFee: "1"}
	sig := tx.Signature{Scheme: pqsig.SchemeDilithium3, Pubkey: []byte{1}, Sig: []byte{2}}
	stx, err := tx.New(body, sig)
	if err != nil {
		t.Fatalf("new tx: %v", err)
	}
	if err := pool.Admit(stx); err != nil {
		t.Fatalf("admit: %v", err)
	}

	sealer := NewSealer(store, pool, nil, nil, 10_000_000, 14400, 1.0, 1_000_000)
	block, receipts, err := sealer.Seal(16, 1000)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if len(receipts) != 1 || receipts[0].Status != state.StatusSuccess {
		t.Fatalf("expected one successful receipt, got %+v", receipts)
	}
	if block.Height != 0 {
		t.Fatalf("expected genesis-child height 0, got %d", block.Height)
	}

	fromAcc, err := store.GetAccount(from)
	if err != nil {
		t.Fatalf("get from: %v", err)
	}
	if fromAcc.Balance.Cmp(big.NewInt(900)) != 0 {
		t.Fatalf("expected from balance 900, got %s", fromAcc.Balance)
	}
	toAcc, err := store.GetAccount(to)
	if err != nil {
		t.Fatalf("get to: %v", err)
	}
	if toAcc.Balance.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("expected to balance 100, got %s", toAcc.Balance)
	}
}

func TestSealerRevertsOnInsufficientBalance(t *testing.T) {
	store, err := OpenBlockStore(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	from := testAddr(3)
	to := testAddr(4)

	pool := mempool.New(16)
	body := tx.TxBody{ChainID: 1, From: from, To: to, Kind: tx.KindTransfer, Value: "5", MaxFee: "1"}
	sig := tx.Signature{Scheme: pqsig.SchemeDilithium3, Pubkey: []byte{1}, Sig: []byte{2}}
	stx, err := tx.New(body, sig)
	if err != nil {
		t.Fatalf("new tx: %v", err)
	}
	if err := pool.Admit(stx); err != nil {
		t.Fatalf("admit: %v", err)
	}

	sealer := NewSealer(store, pool, nil, nil, 10_000_000, 14400, 1.0, 1_000_000)
	_, receipts, err := sealer.Seal(16, 1000)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if len(receipts) != 1 || receipts[0].Status != state.StatusRevert {
		t.Fatalf("expected reverted receipt, got %+v", receipts)
	}
}

func TestSealerSettlesCompletedJobsOnEpochBoundary(t *testing.T) {
	store, err := OpenBlockStore(t.TempDir())
	if err != nil {
		t.Fatalf("open block store: %v", err)
	}
	defer store.Close()

	aicfStore, err := aicf.OpenStore(filepath.Join(t.TempDir(), "aicf.db"))
	if err != nil {
		t.Fatalf("open aicf store: %v", err)
	}
	defer aicfStore.Close()

	taskID := [32]byte{1, 2, 3}
	if err := aicfStore.PutJob(aicf.JobRecord{
		TaskID: taskID,
		Kind:   aicf.CapabilityAI,
		Status: aicf.JobCompleted,
	}); err != nil {
		t.Fatalf("put job: %v", err)
	}
	if err := aicfStore.PutResult(aicf.ResultRecord{
		TaskID:     taskID,
		ProviderID: "provider:abc",
		Units:      10,
	}); err != nil {
		t.Fatalf("put result: %v", err)
	}

	pool := mempool.New(16)
	// epochLength=1 means block height 1 is already an epoch boundary.
	sealer := NewSealer(store, pool, nil, aicfStore, 10_000_000, 1, 2.0, 1_000_000)

	if _, _, err := sealer.Seal(16, 1000); err != nil {
		t.Fatalf("seal genesis-child (height 0): %v", err)
	}
	if _, _, err := sealer.Seal(16, 1001); err != nil {
		t.Fatalf("seal height 1: %v", err)
	}

	payout, found, err := aicfStore.GetPayout("provider:abc", 1)
	if err != nil {
		t.Fatalf("get payout: %v", err)
	}
	if !found {
		t.Fatalf("expected a settled payout at epoch 1")
	}
	if payout.Reward != 20 {
		t.Fatalf("expected reward 10 units * rate 2.0 = 20, got %v", payout.Reward)
	}
	if payout.ProviderCut != 16 {
		t.Fatalf("expected provider cut 80%% of 20 = 16, got %v", payout.ProviderCut)
	}

	settled, err := aicfStore.IsSettled(taskID)
	if err != nil {
		t.Fatalf("is settled: %v", err)
	}
	if !settled {
		t.Fatalf("expected task to be marked settled")
	}
}
