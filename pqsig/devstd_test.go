package pqsig

import "testing"

func TestDevStdSignVerifyRoundTrip(t *testing.T) {
	p := DevStdProvider{}
	sk := []byte("test-secret-seed")
	msg := []byte("animica:tx:sign/v1 payload")

	pub, err := p.DerivePubkey(SchemeDilithium3, sk)
	if err != nil {
		t.Fatalf("derive pubkey: %v", err)
	}
	params, _ := ParamsFor(SchemeDilithium3)
	if len(pub) != params.PubkeyBytes {
		t.Fatalf("pubkey width = %d, want %d", len(pub), params.PubkeyBytes)
	}

	sig, err := p.Sign(SchemeDilithium3, sk, msg)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if len(sig) != params.SigBytes {
		t.Fatalf("sig width = %d, want %d", len(sig), params.SigBytes)
	}

	if !p.Verify(SchemeDilithium3, pub, msg, sig) {
		t.Fatalf("expected signature to verify")
	}
	if p.Verify(SchemeDilithium3, pub, []byte("tampered"), sig) {
		t.Fatalf("expected tampered message to fail verification")
	}
}

func TestDevStdVerifyRejectsWrongWidths(t *testing.T) {
	p := DevStdProvider{}
	if p.Verify(SchemeSPHINCSShake128s, make([]byte, 4), []byte("m"), make([]byte, 4)) {
		t.Fatalf("expected verify to reject undersized pubkey/sig")
	}
}

func TestDevStdUnknownScheme(t *testing.T) {
	p := DevStdProvider{}
	if _, err := p.Sign(Scheme("bogus"), []byte("sk"), []byte("m")); err == nil {
		t.Fatalf("expected error for unknown scheme")
	}
}
