package pqsig

import (
	"crypto/ed25519"

	"github.com/animicaorg/animica-node/codec"
)

// DevStdProvider is a development-only Provider. It does NOT implement
// Dilithium3 or SPHINCS+-SHAKE-128s — no such library appears anywhere in
// the retrieval corpus this tree is grounded on, and CANONICAL §1/§4.1
// explicitly treat both schemes as abstract ("pass/fail verify", no pinned
// bitstream). DevStdProvider keeps the envelope's asymmetric-signature
// contract genuinely testable by backing it with stdlib Ed25519, then
// padding/truncating to the pinned widths from Params so every downstream
// size check in the codec and admission path exercises real byte lengths.
//
// It does NOT claim post-quantum security and must never be selected for a
// production network profile.
type DevStdProvider struct{}

func (DevStdProvider) deriveKey(scheme Scheme, sk []byte) (ed25519.PrivateKey, error) {
	seed := codec.SHA3_256(append([]byte("pqsig-devstd:"+string(scheme)+":"), sk...))
	return ed25519.NewKeyFromSeed(seed[:]), nil
}

// Sign produces a pinned-width signature. sk is an opaque caller-held seed,
// not an Ed25519 key directly, so callers never learn the underlying scheme.
func (p DevStdProvider) Sign(scheme Scheme, sk, message []byte) ([]byte, error) {
	params, ok := ParamsFor(scheme)
	if !ok {
		return nil, &ErrUnknownScheme{Scheme: scheme}
	}
	priv, err := p.deriveKey(scheme, sk)
	if err != nil {
		return nil, err
	}
	raw := ed25519.Sign(priv, message)
	return padOrHash(raw, params.SigBytes), nil
}

// DerivePubkey returns the pinned-width public key for sk under scheme.
func (p DevStdProvider) DerivePubkey(scheme Scheme, sk []byte) ([]byte, error) {
	params, ok := ParamsFor(scheme)
	if !ok {
		return nil, &ErrUnknownScheme{Scheme: scheme}
	}
	priv, err := p.deriveKey(scheme, sk)
	if err != nil {
		return nil, err
	}
	pub := priv.Public().(ed25519.PublicKey)
	return padOrHash(pub, params.PubkeyBytes), nil
}

// Verify checks sig against message and pubkey. Because DevStdProvider pads
// rather than truncates when the target width exceeds 32/64 bytes, it
// un-pads deterministically before delegating to ed25519.Verify.
func (p DevStdProvider) Verify(scheme Scheme, pubkey, message, sig []byte) bool {
	params, ok := ParamsFor(scheme)
	if !ok {
		return false
	}
	if len(pubkey) != params.PubkeyBytes || len(sig) != params.SigBytes {
		return false
	}
	pub := unpad(pubkey, ed25519.PublicKeySize)
	rawSig := unpad(sig, ed25519.SignatureSize)
	return ed25519.Verify(ed25519.PublicKey(pub), message, rawSig)
}

// padOrHash widens raw to width bytes by appending a deterministic SHA3
// stream derived from raw, or truncates if raw is already wider. The first
// len(raw) bytes (up to width) are always the real payload so Verify's
// unpad recovers it exactly.
func padOrHash(raw []byte, width int) []byte {
	if len(raw) >= width {
		return append([]byte{}, raw[:width]...)
	}
	out := make([]byte, 0, width)
	out = append(out, raw...)
	counter := byte(0)
	for len(out) < width {
		digest := codec.SHA3_256(append([]byte{counter}, raw...))
		block := digest[:]
		counter++
		remaining := width - len(out)
		if remaining > len(block) {
			remaining = len(block)
		}
		out = append(out, block[:remaining]...)
	}
	return out
}

func unpad(b []byte, width int) []byte {
	if len(b) < width {
		return b
	}
	return b[:width]
}
