// Package tx implements the canonical TxBody variants, the domain-separated
// SignBytes/txHash derivation, and the signed envelope of CANONICAL §3/§4.1.
package tx

import (
	"regexp"

	"github.com/animicaorg/animica-node/address"
)

// Kind discriminates the TxBody variant (CANONICAL §3: "Tagged variant over
// {transfer, call, deploy}").
type Kind string

const (
	KindTransfer Kind = "transfer"
	KindCall     Kind = "call"
	KindDeploy   Kind = "deploy"
)

var decimalUint = regexp.MustCompile(`^(0|[1-9][0-9]*)$`)

// IsCanonicalDecimal reports whether s is a non-negative decimal integer in
// minimal form (no leading zeros, "0" for zero).
func IsCanonicalDecimal(s string) bool { return decimalUint.MatchString(s) }

// TxBody is the immutable, tagged-variant transaction body shared across
// transfer/call/deploy (CANONICAL §3). Only the fields relevant to Kind are
// populated; Signable projects away the rest.
type TxBody struct {
	ChainID  uint64
	From     address.Address
	Nonce    uint64
	GasLimit uint64
	MaxFee   string // canonical decimal big-integer
	Memo     string // "" means absent

	Kind Kind

	// transfer
	To    address.Address
	Value string // canonical decimal big-integer

	// call
	CallTo address.Address
	Data   []byte
	// Value above is reused for call's optional value.
	HasValue bool

	// deploy
	Code []byte
	Init []byte
}

// Validate checks structural invariants independent of chain state
// (nonce/fee context is checked at admission, not here).
func (b TxBody) Validate() error {
	if b.MaxFee != "" && !IsCanonicalDecimal(b.MaxFee) {
		return txerr(ErrInvalidTx, "max_fee is not a canonical decimal integer")
	}
	switch b.Kind {
	case KindTransfer:
		if !IsCanonicalDecimal(b.Value) {
			return txerr(ErrInvalidTx, "transfer value is not a canonical decimal integer")
		}
	case KindCall:
		if b.HasValue && !IsCanonicalDecimal(b.Value) {
			return txerr(ErrInvalidTx, "call value is not a canonical decimal integer")
		}
	case KindDeploy:
		if len(b.Code) == 0 {
			return txerr(ErrInvalidTx, "deploy requires non-empty code")
		}
	default:
		return txerr(ErrInvalidTx, "unknown tx kind")
	}
	return nil
}

// Signable projects TxBody into the stable, lowercase, enumerated-key form
// SignBytes is computed over, omitting fields the variant doesn't use
// (CANONICAL §4.1: "omitting undefined fields"). Canonical CBOR's sorted
// map-key rule then makes the encoding independent of field insertion order.
func (b TxBody) Signable() map[string]any {
	m := map[string]any{
		"chain_id":  b.ChainID,
		"from":      b.From[:],
		"nonce":     b.Nonce,
		"gas_limit": b.GasLimit,
		"kind":      string(b.Kind),
	}
	if b.MaxFee != "" {
		m["max_fee"] = b.MaxFee
	}
	if b.Memo != "" {
		m["memo"] = b.Memo
	}
	switch b.Kind {
	case KindTransfer:
		m["to"] = b.To[:]
		m["value"] = b.Value
	case KindCall:
		m["to"] = b.CallTo[:]
		m["data"] = b.Data
		if b.HasValue {
			m["value"] = b.Value
		}
	case KindDeploy:
		m["code"] = b.Code
		if len(b.Init) > 0 {
			m["init"] = b.Init
		}
	}
	return m
}
