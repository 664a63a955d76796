package beacon

import (
	"testing"

	"github.com/animicaorg/animica-node/address"
	"github.com/animicaorg/animica-node/codec"
)

func testWindow() Window {
	return Window{CommitStart: 10, CommitEnd: 20, RevealStart: 21, RevealEnd: 30}
}

func participant(b byte) address.Address {
	var h [32]byte
	h[0] = b
	return address.New(0x01, h)
}

func TestSubmitCommitRejectsLateCommit(t *testing.T) {
	r := NewRound(testWindow())
	c := Commit{Participant: participant(1), Height: 21}
	if err := r.SubmitCommit(c); CodeOf(err) != ErrLateCommit {
		t.Fatalf("expected LateCommit, got %v", err)
	}
}

func TestSubmitRevealRejectsEarlyAndLate(t *testing.T) {
	r := NewRound(testWindow())
	p := participant(1)
	salt := []byte("salt-1")
	payload := []byte("payload-1")
	c := Commit{
		Participant: p,
		SaltHash:    codec.SHA3_256(salt),
		PayloadHash: codec.SHA3_256(payload),
		Height:      12,
	}
	if err := r.SubmitCommit(c); err != nil {
		t.Fatalf("commit: %v", err)
	}

	early := Reveal{Participant: p, Salt: salt, Payload: payload, Height: 15}
	if err := r.SubmitReveal(early); CodeOf(err) != ErrEarlyReveal {
		t.Fatalf("expected EarlyReveal, got %v", err)
	}

	late := Reveal{Participant: p, Salt: salt, Payload: payload, Height: 31}
	if err := r.SubmitReveal(late); CodeOf(err) != ErrLateReveal {
		t.Fatalf("expected LateReveal, got %v", err)
	}
}

func TestSubmitRevealRejectsHashMismatch(t *testing.T) {
	r := NewRound(testWindow())
	p := participant(2)
	c := Commit{
		Participant: p,
		SaltHash:    codec.SHA3_256([]byte("salt")),
		PayloadHash: codec.SHA3_256([]byte("payload")),
		Height:      12,
	}
	if err := r.SubmitCommit(c); err != nil {
		t.Fatalf("commit: %v", err)
	}

	wrong := Reveal{Participant: p, Salt: []byte("salt"), Payload: []byte("different-payload"), Height: 22}
	if err := r.SubmitReveal(wrong); CodeOf(err) != ErrHashMismatch {
		t.Fatalf("expected HashMismatch, got %v", err)
	}
}

func TestSubmitRevealRejectsMissingCommit(t *testing.T) {
	r := NewRound(testWindow())
	rv := Reveal{Participant: participant(3), Salt: []byte("s"), Payload: []byte("p"), Height: 22}
	if err := r.SubmitReveal(rv); CodeOf(err) != ErrNoMatchingCommit {
		t.Fatalf("expected NoMatchingCommit, got %v", err)
	}
}

func TestAggregateIsOrderIndependent(t *testing.T) {
	mk := func(order []byte) *Round {
		r := NewRound(testWindow())
		for _, b := range order {
			p := participant(b)
			salt := []byte{b, 's'}
			payload := []byte{b, 'p'}
			_ = r.SubmitCommit(Commit{
				Participant: p,
				SaltHash:    codec.SHA3_256(salt),
				PayloadHash: codec.SHA3_256(payload),
				Height:      12,
			})
			_ = r.SubmitReveal(Reveal{Participant: p, Salt: salt, Payload: payload, Height: 22})
		}
		return r
	}

	r1 := mk([]byte{1, 2, 3})
	r2 := mk([]byte{3, 1, 2})
	if r1.Aggregate() != r2.Aggregate() {
		t.Fatalf("aggregate must not depend on submission order")
	}
}

func TestFinalizeIsDeterministicAndVerifiable(t *testing.T) {
	vdf := SequentialHashVDF{Iterations: 100}
	b := New(vdf)

	r1 := NewRound(testWindow())
	p := participant(9)
	salt, payload := []byte("s9"), []byte("p9")
	_ = r1.SubmitCommit(Commit{Participant: p, SaltHash: codec.SHA3_256(salt), PayloadHash: codec.SHA3_256(payload), Height: 12})
	_ = r1.SubmitReveal(Reveal{Participant: p, Salt: salt, Payload: payload, Height: 22})

	out1 := b.Finalize(r1, 5)
	out2 := b.Finalize(r1, 5)
	if out1.Seed() != out2.Seed() {
		t.Fatalf("finalize must be deterministic for identical round state")
	}
	if !b.VerifyOutput(out1) {
		t.Fatalf("expected beacon output to verify")
	}

	tampered := out1
	tampered.Proof.Output[0] ^= 0xff
	if b.VerifyOutput(tampered) {
		t.Fatalf("expected tampered output to fail verification")
	}
}

func TestTrapSelectDeterministicAndRateMonotonic(t *testing.T) {
	var seed [32]byte
	seed[0] = 7
	candidates := []string{"task:1", "task:2", "task:3", "task:4", "task:5", "task:6", "task:7", "task:8"}

	low := TrapSelect(seed, candidates, 0.1)
	high := TrapSelect(seed, candidates, 0.9)
	if len(high) < len(low) {
		t.Fatalf("higher rate should select at least as many traps: low=%d high=%d", len(low), len(high))
	}

	low2 := TrapSelect(seed, candidates, 0.1)
	if len(low) != len(low2) {
		t.Fatalf("trap selection must be deterministic for a fixed seed")
	}
	for i := range low {
		if low[i] != low2[i] {
			t.Fatalf("trap selection order must be deterministic")
		}
	}

	if got := TrapSelect(seed, candidates, 0); got != nil {
		t.Fatalf("zero rate must select nothing, got %v", got)
	}
}
