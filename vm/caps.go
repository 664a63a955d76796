package vm

import "math/big"

// Capacity caps bound every dimension of an execution independently of the
// gas meter: a call that is affordable in gas but would blow the interpreter's
// memory or the host's storage footprint is still rejected. CANONICAL §4.2
// pins these as network constants, not configuration.
const (
	MaxSteps = 1_000_000
	MaxDepth = 8

	MaxStackDepth = 1024

	MaxABIValueBytes  = 64 * 1024
	MaxEventDataTotal = 128 * 1024
	MaxEventsPerCall  = 128

	MaxStorageKeyBytes   = 256
	MaxStorageValueBytes = 64 * 1024

	MaxProgramInstructions = 65536
)

// MaxUint256 is the largest integer value an arithmetic op may produce,
// enforcing CANONICAL §4.2's "numerics are integer-only with 256-bit caps"
// determinism contract: unbounded math/big.Int arithmetic would otherwise
// let two conforming nodes diverge on gasUsed/returnData/state root the
// instant a computation exceeded 256 bits.
var MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
