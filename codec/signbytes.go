package codec

// Domain-separation tags for canonical CBOR envelopes (CANONICAL §4.1).
const (
	TagTxSignV1   = "animica:tx:sign/v1"
	TagTxEnvelope = "animica:tx:v1"
)

// DomainSeparated encodes [tag, payload] as canonical CBOR, the shape every
// signable or content-addressed structure in the chain is built from.
func DomainSeparated(tag string, payload any) ([]byte, error) {
	return Marshal([]any{tag, payload})
}

// DomainSeparatedHash is DomainSeparated followed by SHA3-256, the shape of
// txHash := SHA3-256(SignBytes(body)).
func DomainSeparatedHash(tag string, payload any) ([32]byte, error) {
	b, err := DomainSeparated(tag, payload)
	if err != nil {
		return [32]byte{}, err
	}
	return SHA3_256(b), nil
}
