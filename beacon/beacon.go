package beacon

import (
	"encoding/binary"

	"github.com/animicaorg/animica-node/codec"
)

// Output is one round's finalized beacon randomness: the VDF-finalized
// seed plus the proof a light client can use to verify it was derived
// from the round's committed/revealed inputs (CANONICAL §4.5: "Outputs are
// used to seed matcher shuffles and trap selection").
type Output struct {
	Epoch     uint64
	RawSeed   [32]byte
	Proof     Proof
}

// Seed returns the VDF-finalized seed, in the [32]byte form that
// aicf.Match's beaconSeed and TrapSelect's seed parameters take.
func (o Output) Seed() [32]byte { return o.Proof.Output }

// Beacon drives one round end to end: accumulate commits/reveals, then
// finalize with the VDF once the reveal window closes.
type Beacon struct {
	vdf VDF
}

func New(vdf VDF) *Beacon {
	return &Beacon{vdf: vdf}
}

// Finalize aggregates round's reveals and runs the VDF over the result,
// producing this epoch's public Output. Callers must not call Finalize
// before round's reveal window has closed; Round itself only guards
// individual Submit calls, not round completion.
func (b *Beacon) Finalize(round *Round, epoch uint64) Output {
	raw := round.Aggregate()
	proof := b.vdf.Eval(raw)
	return Output{Epoch: epoch, RawSeed: raw, Proof: proof}
}

// VerifyOutput checks that out.Proof is a valid VDF evaluation of
// out.RawSeed, i.e. that finalization wasn't forged.
func (b *Beacon) VerifyOutput(out Output) bool {
	return b.vdf.Verify(out.RawSeed, out.Proof)
}

// TrapSelect marks a deterministic, beacon-seeded subset of candidates as
// traps: decoy jobs mixed into a quantum provider's queue so the matcher
// can cross-check trap_ratio in a submitted proof claim without the
// provider knowing in advance which tasks are traps (CANONICAL §4.5 "trap
// selection"). aicf.SubmitProofClaim's trap_ratio check reads the ratio
// from the claim's metrics and does not call TrapSelect. rate is the
// fraction of candidates selected, in [0, 1].
func TrapSelect(seed [32]byte, candidates []string, rate float64) []string {
	if rate <= 0 || len(candidates) == 0 {
		return nil
	}
	if rate > 1 {
		rate = 1
	}
	threshold := uint64(rate * float64(^uint64(0)))

	var selected []string
	for i, c := range candidates {
		digest := candidateDigest(seed, i, c)
		score := binary.BigEndian.Uint64(digest[:8])
		if score <= threshold {
			selected = append(selected, c)
		}
	}
	return selected
}

func candidateDigest(seed [32]byte, index int, candidate string) [32]byte {
	buf := make([]byte, 0, 32+8+len(candidate))
	buf = append(buf, seed[:]...)
	var idx [8]byte
	binary.BigEndian.PutUint64(idx[:], uint64(index))
	buf = append(buf, idx[:]...)
	buf = append(buf, []byte(candidate)...)
	return codec.SHA3_256(buf)
}
