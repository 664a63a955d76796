package tx

import (
	"github.com/animicaorg/animica-node/codec"
	"github.com/animicaorg/animica-node/pqsig"
)

// Signature is (scheme, pubkey, sig) per CANONICAL §3.
type Signature struct {
	Scheme pqsig.Scheme
	Pubkey []byte
	Sig    []byte
}

func (s Signature) toMap() map[string]any {
	return map[string]any{
		"scheme": string(s.Scheme),
		"pubkey": s.Pubkey,
		"sig":    s.Sig,
	}
}

// SignedTx is (body, signature, txHash): created once and reused.
type SignedTx struct {
	Body      TxBody
	Signature Signature
	TxHash    [32]byte
}

// New builds and hashes a SignedTx from a body and a raw signature.
func New(body TxBody, sig Signature) (SignedTx, error) {
	if err := body.Validate(); err != nil {
		return SignedTx{}, err
	}
	h, err := Hash(body)
	if err != nil {
		return SignedTx{}, err
	}
	return SignedTx{Body: body, Signature: sig, TxHash: h}, nil
}

// Sign builds a SignedTx by signing body's SignBytes with provider under sk.
func Sign(body TxBody, provider pqsig.Provider, scheme pqsig.Scheme, sk, pubkey []byte) (SignedTx, error) {
	sb, err := SignBytes(body)
	if err != nil {
		return SignedTx{}, err
	}
	sig, err := provider.Sign(scheme, sk, sb)
	if err != nil {
		return SignedTx{}, err
	}
	return New(body, Signature{Scheme: scheme, Pubkey: pubkey, Sig: sig})
}

// Verify checks that stx.Signature validates against stx.Body's SignBytes.
func Verify(stx SignedTx, provider pqsig.Provider) error {
	if _, ok := pqsig.ParamsFor(stx.Signature.Scheme); !ok {
		return txerr(ErrUnknownScheme, string(stx.Signature.Scheme))
	}
	sb, err := SignBytes(stx.Body)
	if err != nil {
		return err
	}
	if !provider.Verify(stx.Signature.Scheme, stx.Signature.Pubkey, sb, stx.Signature.Sig) {
		return txerr(ErrSignatureInvalid, "signature does not verify against SignBytes")
	}
	return nil
}

// EncodeEnvelope produces the wire submission payload:
// CBOR_canonical(["animica:tx:v1", signable(body), {scheme,pubkey,sig}]).
func EncodeEnvelope(stx SignedTx) ([]byte, error) {
	return codec.Marshal([]any{
		codec.TagTxEnvelope,
		stx.Body.Signable(),
		stx.Signature.toMap(),
	})
}

type envelopeWire struct {
	Tag       string
	Signable  map[string]any
	Signature map[string]any
}

// DecodeEnvelope parses and validates an envelope's tag, rebuilding a
// SignedTx. It does not verify the signature; call Verify separately.
func DecodeEnvelope(raw []byte) (SignedTx, error) {
	var parts []any
	if err := codec.Unmarshal(raw, &parts); err != nil {
		return SignedTx{}, err
	}
	if len(parts) != 3 {
		return SignedTx{}, txerr(ErrInvalidCBOR, "envelope must have 3 elements")
	}
	tag, ok := parts[0].(string)
	if !ok || tag != codec.TagTxEnvelope {
		return SignedTx{}, txerr(ErrUnknownTag, "unexpected envelope tag")
	}
	signable, ok := parts[1].(map[string]any)
	if !ok {
		return SignedTx{}, txerr(ErrInvalidCBOR, "envelope body is not a map")
	}
	sigMap, ok := parts[2].(map[string]any)
	if !ok {
		return SignedTx{}, txerr(ErrInvalidCBOR, "envelope signature is not a map")
	}
	body, err := bodyFromSignable(signable)
	if err != nil {
		return SignedTx{}, err
	}
	sig, err := signatureFromMap(sigMap)
	if err != nil {
		return SignedTx{}, err
	}
	return New(body, sig)
}
