package tx

import (
	"bytes"
	"testing"

	"github.com/animicaorg/animica-node/address"
	"github.com/animicaorg/animica-node/pqsig"
)

func testBody(t *testing.T) TxBody {
	t.Helper()
	var fromHash, toHash [32]byte
	fromHash[0] = 0xAA
	toHash[0] = 0xBB
	return TxBody{
		ChainID:  1,
		From:     address.New(0x01, fromHash),
		Nonce:    0,
		GasLimit: 21000,
		MaxFee:   "1000",
		Kind:     KindTransfer,
		To:       address.New(0x01, toHash),
		Value:    "1000",
	}
}

func TestSignBytesStableAndIndependentOfSignature(t *testing.T) {
	body := testBody(t)
	sb1, err := SignBytes(body)
	if err != nil {
		t.Fatalf("signbytes: %v", err)
	}
	sb2, err := SignBytes(body)
	if err != nil {
		t.Fatalf("signbytes: %v", err)
	}
	if !bytes.Equal(sb1, sb2) {
		t.Fatalf("SignBytes not stable across calls")
	}

	h1, err := Hash(body)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	provider := pqsig.DevStdProvider{}
	sk1 := []byte("seed-one")
	sk2 := []byte("seed-two")
	pub1, _ := provider.DerivePubkey(pqsig.SchemeDilithium3, sk1)
	pub2, _ := provider.DerivePubkey(pqsig.SchemeDilithium3, sk2)
	sig1, err := provider.Sign(pqsig.SchemeDilithium3, sk1, sb1)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	sig2, err := provider.Sign(pqsig.SchemeDilithium3, sk2, sb1)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if bytes.Equal(sig1, sig2) {
		t.Fatalf("expected different signatures from different keys")
	}

	stx1, err := New(body, Signature{Scheme: pqsig.SchemeDilithium3, Pubkey: pub1, Sig: sig1})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	stx2, err := New(body, Signature{Scheme: pqsig.SchemeDilithium3, Pubkey: pub2, Sig: sig2})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if stx1.TxHash != h1 || stx2.TxHash != h1 {
		t.Fatalf("txHash must be identical across differing signatures")
	}
}

func TestVerifyAcceptsValidSignatureAndRejectsTamper(t *testing.T) {
	body := testBody(t)
	provider := pqsig.DevStdProvider{}
	sk := []byte("seed")
	pub, _ := provider.DerivePubkey(pqsig.SchemeDilithium3, sk)
	stx, err := Sign(body, provider, pqsig.SchemeDilithium3, sk, pub)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if err := Verify(stx, provider); err != nil {
		t.Fatalf("expected valid signature, got %v", err)
	}

	stx.Body.Nonce = 999
	if err := Verify(stx, provider); err == nil {
		t.Fatalf("expected verification failure after tampering with body")
	}
}

func TestEnvelopeEncodeDecodeRoundTrip(t *testing.T) {
	body := testBody(t)
	provider := pqsig.DevStdProvider{}
	sk := []byte("seed")
	pub, _ := provider.DerivePubkey(pqsig.SchemeDilithium3, sk)
	stx, err := Sign(body, provider, pqsig.SchemeDilithium3, sk, pub)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	raw, err := EncodeEnvelope(stx)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeEnvelope(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.TxHash != stx.TxHash {
		t.Fatalf("txHash mismatch after decode")
	}
	if err := Verify(decoded, provider); err != nil {
		t.Fatalf("decoded envelope failed verification: %v", err)
	}
}

func TestDecodeEnvelopeRejectsUnknownTag(t *testing.T) {
	raw, err := marshalBadEnvelope()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := DecodeEnvelope(raw); CodeOf(err) != ErrUnknownTag {
		t.Fatalf("expected ErrUnknownTag, got %v", err)
	}
}
