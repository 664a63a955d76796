package aicf

import (
	"encoding/hex"

	"github.com/animicaorg/animica-node/address"
	"github.com/animicaorg/animica-node/codec"
)

// ProviderStatus is the provider's position in the registry state machine
// (CANONICAL §4.4 "Registry").
type ProviderStatus string

const (
	StatusRegistered ProviderStatus = "REGISTERED"
	StatusActive     ProviderStatus = "ACTIVE"
	StatusJailed     ProviderStatus = "JAILED"
	StatusUnstaking  ProviderStatus = "UNSTAKING"
	StatusDeregistered ProviderStatus = "DEREGISTERED"
)

// Capability is a compute kind a provider can serve.
type Capability string

const (
	CapabilityAI       Capability = "ai"
	CapabilityQuantum  Capability = "quantum"
)

// ProviderID derives the stable provider identifier: "provider:" followed
// by the first 12 bytes of SHA3-256(pubkey || alg_id), hex-encoded.
func ProviderID(pubkey []byte, algID byte) string {
	buf := append(append([]byte(nil), pubkey...), algID)
	h := codec.SHA3_256(buf)
	return "provider:" + hex.EncodeToString(h[:12])
}

// ProviderRecord is the registry's durable per-provider state.
type ProviderRecord struct {
	ProviderID   string
	Status       ProviderStatus
	Capabilities []Capability
	AttestHash   [32]byte
	StakeBonded  uint64
	StakeMin     uint64
	UnlockHeight uint64 // 0 if not unstaking
	HealthScore  float64
	Quotas       uint32
	Region       string
	Endpoint     string
	Operator     address.Address
}

// HasCapability reports whether the provider advertises cap.
func (p ProviderRecord) HasCapability(cap Capability) bool {
	for _, c := range p.Capabilities {
		if c == cap {
			return true
		}
	}
	return false
}

// JobStatus is the job's position in its lease lifecycle.
type JobStatus string

const (
	JobQueued    JobStatus = "QUEUED"
	JobAssigned  JobStatus = "ASSIGNED"
	JobRunning   JobStatus = "RUNNING"
	JobCompleted JobStatus = "COMPLETED"
	JobFailed    JobStatus = "FAILED"
	JobExpired   JobStatus = "EXPIRED"
	JobCanceled  JobStatus = "CANCELED"
)

// JobRecord is one enqueued AICF compute job.
type JobRecord struct {
	TaskID        [32]byte
	Kind          Capability
	Caller        address.Address
	Request       []byte // opaque, kind-specific payload
	PriorityScore uint64
	Status        JobStatus
	EnqueuedAt    uint64 // block height
	LeaseID       string // "" until assigned
	ProviderID    string // "" until assigned
	Retries       uint32
}

// Lease is a time-bounded job assignment, kept alive by heartbeats.
type Lease struct {
	LeaseID     string
	ProviderID  string
	TaskID      [32]byte
	IssuedAt    uint64 // block height
	TTLSeconds  uint64
	Renewals    uint32
	MaxRenewals uint32
}

// ProofClaim links a verified ProofEnvelope to the task it resolves.
// Nullifier enforces a one-time claim (CANONICAL §4.4 "ProofClaim").
type ProofClaim struct {
	TaskID        [32]byte
	ProofType     string
	EnvelopeHash  [32]byte
	Nullifier     [32]byte
	Metrics       map[string]float64
	BlockHeight   uint64
}

// ResultRecord is the settled outcome of one completed job.
type ResultRecord struct {
	TaskID       [32]byte
	ProviderID   string
	Units        float64
	Metrics      map[string]float64
	BlockHeight  uint64
}
