package mempool

import (
	"testing"

	"github.com/animicaorg/animica-node/address"
	"github.com/animicaorg/animica-node/pqsig"
	"github.com/animicaorg/animica-node/tx"
)

func signedTx(t *testing.T, fromByte byte, nonce uint64, maxFee string, gasLimit uint64) tx.SignedTx {
	t.Helper()
	var fromHash, toHash [32]byte
	fromHash[0] = fromByte
	toHash[0] = 0xFF

	body := tx.TxBody{
		ChainID:  1,
		From:     address.New(0x01, fromHash),
		Nonce:    nonce,
		GasLimit: gasLimit,
		MaxFee:   maxFee,
		Kind:     tx.KindTransfer,
		To:       address.New(0x01, toHash),
		Value:    "1",
	}
	provider := pqsig.DevStdProvider{}
	sk := []byte("seed")
	pub, _ := provider.DerivePubkey(pqsig.SchemeDilithium3, sk)
	stx, err := tx.Sign(body, provider, pqsig.SchemeDilithium3, sk, pub)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return stx
}

func TestAdmitRejectsDuplicateAndNonceGap(t *testing.T) {
	p := New(10)
	s1 := signedTx(t, 1, 0, "1000", 21000)
	if err := p.Admit(s1); err != nil {
		t.Fatalf("admit: %v", err)
	}
	if err := p.Admit(s1); tx.CodeOf(err) != tx.ErrDuplicate {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	s2 := signedTx(t, 1, 0, "2000", 21000) // same account+nonce, different fee
	if err := p.Admit(s2); tx.CodeOf(err) != tx.ErrDuplicate {
		t.Fatalf("expected ErrDuplicate on requeued nonce, got %v", err)
	}

	sGap := signedTx(t, 2, 0, "1000", 21000)
	if err := p.Admit(sGap); err != nil {
		t.Fatalf("admit first nonce for account 2: %v", err)
	}
	p.Evict(sGap.TxHash) // as after sealing: nonce 0 of account 2 is consumed
	sBehind := signedTx(t, 2, 0, "1000", 21000)
	if err := p.Admit(sBehind); tx.CodeOf(err) != tx.ErrNonceGap {
		t.Fatalf("expected ErrNonceGap for a consumed nonce, got %v", err)
	}
}

func TestAdmitRejectsFeeBelowMinimum(t *testing.T) {
	p := New(10)
	s := signedTx(t, 3, 0, "0", 21000)
	if err := p.Admit(s); tx.CodeOf(err) != tx.ErrFeeTooLow {
		t.Fatalf("expected ErrFeeTooLow, got %v", err)
	}
}

func TestDrainOrdersByFeeRateDescending(t *testing.T) {
	p := New(10)
	low := signedTx(t, 4, 0, "100", 21000)
	high := signedTx(t, 5, 0, "100000", 21000)
	if err := p.Admit(low); err != nil {
		t.Fatalf("admit low: %v", err)
	}
	if err := p.Admit(high); err != nil {
		t.Fatalf("admit high: %v", err)
	}
	drained := p.Drain(2)
	if len(drained) != 2 {
		t.Fatalf("expected 2 drained, got %d", len(drained))
	}
	if drained[0].TxHash != high.TxHash {
		t.Fatalf("expected higher fee-rate tx first")
	}
}

func TestEvictRemovesEntry(t *testing.T) {
	p := New(10)
	s := signedTx(t, 6, 0, "1000", 21000)
	if err := p.Admit(s); err != nil {
		t.Fatalf("admit: %v", err)
	}
	if !p.Evict(s.TxHash) {
		t.Fatalf("expected evict to find the entry")
	}
	if p.Len() != 0 {
		t.Fatalf("expected pool empty after evict, got %d", p.Len())
	}
}

func TestPoolFullRejectsLowerPriorityIncoming(t *testing.T) {
	p := New(1)
	high := signedTx(t, 7, 0, "100000", 21000)
	if err := p.Admit(high); err != nil {
		t.Fatalf("admit high: %v", err)
	}
	low := signedTx(t, 8, 0, "1", 21000)
	if err := p.Admit(low); tx.CodeOf(err) != tx.ErrLimitExceeded {
		t.Fatalf("expected ErrLimitExceeded, got %v", err)
	}
}
