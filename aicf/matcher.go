package aicf

import (
	"encoding/binary"
	"sort"

	"github.com/animicaorg/animica-node/codec"
)

// MatchFilter expresses the matcher's eligibility predicate (CANONICAL
// §4.4 "Matcher"): capability match, region policy, stake/health (via
// IsEligibleActive), and quotas. The filter does not check whether a
// provider's attestation is current.
type MatchFilter struct {
	Capability   Capability
	Region       string // "" means no region restriction
	MaxLoad      uint32 // quota ceiling; 0 means unrestricted
}

func eligible(p ProviderRecord, f MatchFilter) bool {
	if !IsEligibleActive(p) {
		return false
	}
	if !p.HasCapability(f.Capability) {
		return false
	}
	if f.Region != "" && p.Region != f.Region {
		return false
	}
	if f.MaxLoad != 0 && p.Quotas >= f.MaxLoad {
		return false
	}
	return true
}

// Shuffle deterministically permutes eligible providers using the
// randomness beacon's output as a seed, so assignment cannot be gamed by an
// adversary who can predict their own position in an unseeded ordering
// (CANONICAL §4.4 "assignment uses a deterministic shuffle seeded by the
// beacon"). This is a Fisher-Yates shuffle driven by a SHA3-256
// counter-mode stream, the same construction as vm.PRNG.
func shuffle(ids []string, beaconSeed [32]byte) []string {
	out := append([]string(nil), ids...)
	counter := uint64(0)
	nextRand := func(bound int) int {
		if bound <= 1 {
			return 0
		}
		var buf [40]byte
		copy(buf[:32], beaconSeed[:])
		binary.BigEndian.PutUint64(buf[32:], counter)
		counter++
		d := codec.SHA3_256(buf[:])
		v := binary.BigEndian.Uint64(d[:8])
		return int(v % uint64(bound))
	}
	for i := len(out) - 1; i > 0; i-- {
		j := nextRand(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Match filters the registry's providers by f and returns them in a
// beacon-seeded deterministic order, ready for lease issuance by the
// caller.
func Match(providers []ProviderRecord, f MatchFilter, beaconSeed [32]byte) []ProviderRecord {
	var ids []string
	byID := make(map[string]ProviderRecord, len(providers))
	for _, p := range providers {
		if eligible(p, f) {
			ids = append(ids, p.ProviderID)
			byID[p.ProviderID] = p
		}
	}
	// stable base order before shuffling, so the shuffle is a pure function
	// of (eligible set, beacon seed) independent of registry iteration order.
	sort.Strings(ids)
	shuffled := shuffle(ids, beaconSeed)

	out := make([]ProviderRecord, len(shuffled))
	for i, id := range shuffled {
		out[i] = byID[id]
	}
	return out
}
