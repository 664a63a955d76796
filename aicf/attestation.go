package aicf

import "github.com/animicaorg/animica-node/codec"

// Evidence is one vendor attestation bundle (TEE quote or vendor
// certificate chain), parsed and checked against pinned roots (CANONICAL
// §4.4 "Attestation").
type Evidence struct {
	VendorID    string
	Measurement []byte
	PolicyID    string
	Chain       [][]byte // leaf-first certificate/quote chain
}

// PinnedRoot is one network-accepted attestation root, keyed by vendor.
type PinnedRoot struct {
	VendorID string
	RootHash [32]byte
}

// AttestationPolicy gates which measurements and policies are accepted,
// independent of which root signed the evidence.
type AttestationPolicy struct {
	AllowedMeasurements map[string]bool // hex(SHA3-256(measurement)) -> allowed
	AllowedPolicyIDs    map[string]bool
}

// Validate checks ev's chain against pinnedRoots and policy, and if valid
// returns the versioned attest_hash recorded on the provider record.
//
// Chain validation here is a simplified, deterministic pinned-root match
// (hash the chain's root element and compare against the vendor's pinned
// root) rather than a full X.509/TEE-quote parser — no pack repo carries a
// TEE attestation library, and spec §4.4 leaves the evidence format
// vendor-specific; this implements the chain-to-pinned-root binding the
// spec does require, without inventing a concrete vendor wire format.
func Validate(ev Evidence, roots []PinnedRoot, policy AttestationPolicy) ([32]byte, error) {
	if len(ev.Chain) == 0 {
		return [32]byte{}, aicfErr(ErrAttestationError, "empty evidence chain")
	}
	rootElem := ev.Chain[len(ev.Chain)-1]
	rootHash := codec.SHA3_256(rootElem)

	matched := false
	for _, r := range roots {
		if r.VendorID == ev.VendorID && r.RootHash == rootHash {
			matched = true
			break
		}
	}
	if !matched {
		return [32]byte{}, aicfErr(ErrAttestationError, "no pinned root matches evidence chain")
	}

	measHash := codec.SHA3_256(ev.Measurement)
	if policy.AllowedMeasurements != nil && !policy.AllowedMeasurements[hexKey(measHash)] {
		return [32]byte{}, aicfErr(ErrAttestationError, "measurement not in policy allow-list")
	}
	if policy.AllowedPolicyIDs != nil && !policy.AllowedPolicyIDs[ev.PolicyID] {
		return [32]byte{}, aicfErr(ErrAttestationError, "policy id not allowed")
	}

	attestHash, err := codec.DomainSeparatedHash("animica:aicf:attest/v1", map[string]any{
		"vendor_id":   ev.VendorID,
		"measurement": ev.Measurement,
		"policy_id":   ev.PolicyID,
	})
	if err != nil {
		return [32]byte{}, err
	}
	return attestHash, nil
}

func hexKey(h [32]byte) string {
	const hextable = "0123456789abcdef"
	out := make([]byte, 64)
	for i, b := range h {
		out[2*i] = hextable[b>>4]
		out[2*i+1] = hextable[b&0xf]
	}
	return string(out)
}
