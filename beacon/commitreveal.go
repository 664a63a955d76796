// Package beacon implements the randomness beacon of CANONICAL §4.5: a
// two-phase commit/reveal window finalized by a pinned VDF, whose output can
// seed matcher shuffles and quantum trap selection.
package beacon

import (
	"github.com/animicaorg/animica-node/address"
	"github.com/animicaorg/animica-node/codec"
)

// Commit is one participant's commit-window publication: a hash binding a
// salt and a payload without revealing either.
type Commit struct {
	Participant address.Address
	SaltHash    [32]byte
	PayloadHash [32]byte
	Height      uint64
}

// Reveal is the preimage published once the reveal window opens.
type Reveal struct {
	Participant address.Address
	Salt        []byte
	Payload     []byte
	Height      uint64
}

// Window defines the commit and reveal block ranges for one beacon round,
// as closed intervals [Start, End].
type Window struct {
	CommitStart, CommitEnd uint64
	RevealStart, RevealEnd uint64
}

// ErrorCode tags commit/reveal rejection reasons.
type ErrorCode string

const (
	ErrLateCommit     ErrorCode = "LateCommit"
	ErrEarlyReveal    ErrorCode = "EarlyReveal"
	ErrLateReveal     ErrorCode = "LateReveal"
	ErrNoMatchingCommit ErrorCode = "NoMatchingCommit"
	ErrHashMismatch   ErrorCode = "HashMismatch"
	ErrDuplicateCommit ErrorCode = "DuplicateCommit"
)

// BeaconError is the package's tagged error type.
type BeaconError struct {
	Code ErrorCode
	Msg  string
}

func (e *BeaconError) Error() string {
	if e.Msg == "" {
		return string(e.Code)
	}
	return string(e.Code) + ": " + e.Msg
}

func beaconErr(code ErrorCode, msg string) error { return &BeaconError{Code: code, Msg: msg} }

// CodeOf extracts the ErrorCode from err, or "" if not a *BeaconError.
func CodeOf(err error) ErrorCode {
	if be, ok := err.(*BeaconError); ok {
		return be.Code
	}
	return ""
}

// commitDigest computes SHA3-256(saltHash || payloadHash), the digest a
// participant's on-chain Commit publishes.
func commitDigest(saltHash, payloadHash [32]byte) [32]byte {
	buf := make([]byte, 64)
	copy(buf[:32], saltHash[:])
	copy(buf[32:], payloadHash[:])
	return codec.SHA3_256(buf)
}

// Round accumulates one beacon round's commits and reveals.
type Round struct {
	window  Window
	commits map[address.Address]Commit
	reveals map[address.Address]Reveal
}

// NewRound starts a fresh round for window.
func NewRound(window Window) *Round {
	return &Round{
		window:  window,
		commits: make(map[address.Address]Commit),
		reveals: make(map[address.Address]Reveal),
	}
}

// SubmitCommit records a participant's commit, rejecting late submissions
// and duplicate commits within one round.
func (r *Round) SubmitCommit(c Commit) error {
	if c.Height < r.window.CommitStart || c.Height > r.window.CommitEnd {
		return beaconErr(ErrLateCommit, "commit outside commit window")
	}
	if _, dup := r.commits[c.Participant]; dup {
		return beaconErr(ErrDuplicateCommit, "")
	}
	r.commits[c.Participant] = c
	return nil
}

// SubmitReveal records a participant's reveal, rejecting reveals outside
// the reveal window or that don't match a prior commit.
func (r *Round) SubmitReveal(rv Reveal) error {
	if rv.Height < r.window.RevealStart {
		return beaconErr(ErrEarlyReveal, "reveal before reveal window opens")
	}
	if rv.Height > r.window.RevealEnd {
		return beaconErr(ErrLateReveal, "reveal after reveal window closes")
	}
	c, ok := r.commits[rv.Participant]
	if !ok {
		return beaconErr(ErrNoMatchingCommit, "")
	}
	saltHash := codec.SHA3_256(rv.Salt)
	payloadHash := codec.SHA3_256(rv.Payload)
	if commitDigest(saltHash, payloadHash) != commitDigest(c.SaltHash, c.PayloadHash) {
		return beaconErr(ErrHashMismatch, "reveal does not match commit")
	}
	r.reveals[rv.Participant] = rv
	return nil
}

// Aggregate folds every valid reveal into a single pre-VDF seed: the
// SHA3-256 of every reveal's payload followed by its salt, concatenated in
// participant-address order so the result is independent of submission
// order.
func (r *Round) Aggregate() [32]byte {
	addrs := make([]address.Address, 0, len(r.reveals))
	for a := range r.reveals {
		addrs = append(addrs, a)
	}
	sortAddresses(addrs)

	var buf []byte
	for _, a := range addrs {
		rv := r.reveals[a]
		buf = append(buf, rv.Payload...)
		buf = append(buf, rv.Salt...)
	}
	return codec.SHA3_256(buf)
}

func sortAddresses(addrs []address.Address) {
	for i := 1; i < len(addrs); i++ {
		for j := i; j > 0; j-- {
			if less(addrs[j], addrs[j-1]) {
				addrs[j], addrs[j-1] = addrs[j-1], addrs[j]
			} else {
				break
			}
		}
	}
}

func less(a, b address.Address) bool {
	ab, bb := a.Bytes(), b.Bytes()
	for i := range ab {
		if ab[i] != bb[i] {
			return ab[i] < bb[i]
		}
	}
	return false
}
