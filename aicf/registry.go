package aicf

// Registry enforces the provider status machine (CANONICAL §4.4
// "Registry"):
//
//	REGISTERED --(attest+stake+heartbeat)--> ACTIVE
//	ACTIVE --(slash|health_fail)--> JAILED --(cooldown+recover)--> ACTIVE
//	ACTIVE --(unstake)--> UNSTAKING --(unlock)--> DEREGISTERED|REGISTERED
//
// Every transition is appended to the provider's immutable log before the
// current-snapshot bucket is updated.
type Registry struct {
	store *Store
	seq   map[string]uint64
}

// NewRegistry constructs a Registry bound to store.
func NewRegistry(store *Store) *Registry {
	return &Registry{store: store, seq: make(map[string]uint64)}
}

func (r *Registry) nextSeq(id string) uint64 {
	s := r.seq[id]
	r.seq[id] = s + 1
	return s
}

var validTransitions = map[ProviderStatus]map[ProviderStatus]bool{
	StatusRegistered: {StatusActive: true, StatusDeregistered: true},
	StatusActive:     {StatusJailed: true, StatusUnstaking: true},
	StatusJailed:     {StatusActive: true, StatusDeregistered: true},
	StatusUnstaking:  {StatusDeregistered: true, StatusRegistered: true},
}

// Register inserts a brand-new provider in REGISTERED status.
func (r *Registry) Register(p ProviderRecord, height uint64) error {
	if p.Status == "" {
		p.Status = StatusRegistered
	}
	if p.Status != StatusRegistered {
		return aicfErr(ErrInvalidTransition, "new providers must start REGISTERED")
	}
	if err := r.store.AppendTransition(Transition{ProviderID: p.ProviderID, From: "", To: StatusRegistered, Height: height, Reason: "register"}, r.nextSeq(p.ProviderID)); err != nil {
		return err
	}
	return r.store.PutProvider(p)
}

// Transition moves a provider to a new status, validating the edge against
// validTransitions and persisting the record plus its log entry.
func (r *Registry) Transition(id string, to ProviderStatus, height uint64, reason string) error {
	p, found, err := r.store.GetProvider(id)
	if err != nil {
		return err
	}
	if !found {
		return aicfErr(ErrUnknownProvider, id)
	}
	if !validTransitions[p.Status][to] {
		return aicfErr(ErrInvalidTransition, string(p.Status)+" -> "+string(to))
	}
	from := p.Status
	p.Status = to
	if err := r.store.AppendTransition(Transition{ProviderID: id, From: from, To: to, Height: height, Reason: reason}, r.nextSeq(id)); err != nil {
		return err
	}
	return r.store.PutProvider(p)
}

// Activate attempts REGISTERED|JAILED -> ACTIVE, enforcing the three
// conjunctive eligibility conditions (CANONICAL §4.4's property: "removing
// any one condition must move state out of ACTIVE").
func (r *Registry) Activate(id string, height uint64, attestOK bool) error {
	p, found, err := r.store.GetProvider(id)
	if err != nil {
		return err
	}
	if !found {
		return aicfErr(ErrUnknownProvider, id)
	}
	if !attestOK {
		return aicfErr(ErrAttestationError, "attestation not valid")
	}
	if p.StakeBonded < p.StakeMin {
		return aicfErr(ErrStakeBelowMinimum, "")
	}
	if !IsHealthy(p.HealthScore) {
		return aicfErr(ErrNotEligible, "health score below threshold")
	}
	return r.Transition(id, StatusActive, height, "activate")
}

// HealthThreshold is the minimum health score required for eligibility.
const HealthThreshold = 0.5

// IsHealthy reports whether score meets HealthThreshold.
func IsHealthy(score float64) bool { return score >= HealthThreshold }

// IsEligibleActive reports the ACTIVE-eligibility conjunction used by the
// matcher's filter: status ACTIVE (so not jailed), sufficiently staked, and
// healthy. It does not look at the provider's attestation.
func IsEligibleActive(p ProviderRecord) bool {
	return p.Status == StatusActive && p.StakeBonded >= p.StakeMin && IsHealthy(p.HealthScore)
}
