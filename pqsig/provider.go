// Package pqsig abstracts the post-quantum signature envelope from
// CANONICAL §4.1: verify(message, sig, pubkey) is pure, sign is
// implementation-defined, and the chain only ever pins fixed pubkey/sig
// byte widths per scheme — never a concrete bitstream.
package pqsig

import "fmt"

// Scheme identifies one of the two PQ signature families the chain accepts.
type Scheme string

const (
	SchemeDilithium3       Scheme = "dilithium3"
	SchemeSPHINCSShake128s Scheme = "sphincs_shake_128s"
)

// Params pins the byte widths a network config fixes per CANONICAL §4.1 and
// §9 (Open Questions: "any implementation must pin these sizes at network
// config").
type Params struct {
	Scheme      Scheme
	PubkeyBytes int
	SigBytes    int
}

var registry = map[Scheme]Params{
	SchemeDilithium3:       {Scheme: SchemeDilithium3, PubkeyBytes: 1952, SigBytes: 3293},
	SchemeSPHINCSShake128s: {Scheme: SchemeSPHINCSShake128s, PubkeyBytes: 32, SigBytes: 7856},
}

// ParamsFor returns the pinned widths for scheme, or ok=false if unknown.
func ParamsFor(s Scheme) (Params, bool) {
	p, ok := registry[s]
	return p, ok
}

// ErrUnknownScheme is returned by Verify/Sign for an unrecognized scheme tag.
type ErrUnknownScheme struct{ Scheme Scheme }

func (e *ErrUnknownScheme) Error() string {
	return fmt.Sprintf("pqsig: unknown scheme %q", e.Scheme)
}

// Provider is the narrow interface consensus-adjacent code depends on: a
// small, explicitly injected interface rather than ambient package state.
type Provider interface {
	Sign(scheme Scheme, sk, message []byte) ([]byte, error)
	Verify(scheme Scheme, pubkey, message, sig []byte) bool
}
