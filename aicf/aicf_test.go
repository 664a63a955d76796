package aicf

import (
	"path/filepath"
	"testing"

	"github.com/animicaorg/animica-node/address"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := OpenStore(filepath.Join(dir, "aicf.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestTaskIDStableAndInputSensitive(t *testing.T) {
	var txHash [32]byte
	txHash[0] = 1
	var h [32]byte
	caller := address.New(0x01, h)

	id1, err := TaskID(1, 100, txHash, caller, map[string]any{"x": uint64(1)})
	if err != nil {
		t.Fatalf("taskid: %v", err)
	}
	id2, err := TaskID(1, 100, txHash, caller, map[string]any{"x": uint64(1)})
	if err != nil {
		t.Fatalf("taskid: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("task id must be stable for identical inputs")
	}

	id3, _ := TaskID(1, 101, txHash, caller, map[string]any{"x": uint64(1)})
	if id3 == id1 {
		t.Fatalf("task id must change when enqueue height changes")
	}
}

func TestRegistryActivationRequiresAllConditions(t *testing.T) {
	store := newTestStore(t)
	reg := NewRegistry(store)

	p := ProviderRecord{
		ProviderID:   "provider:abc",
		Capabilities: []Capability{CapabilityAI},
		StakeBonded:  0,
		StakeMin:     100,
		HealthScore:  1.0,
	}
	if err := reg.Register(p, 1); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := reg.Activate(p.ProviderID, 2, true); CodeOf(err) != ErrStakeBelowMinimum {
		t.Fatalf("expected stake-below-minimum, got %v", err)
	}

	ledger := NewStakeLedger(store)
	if err := ledger.StakeOrTopUp(p.ProviderID, 100, 2); err != nil {
		t.Fatalf("stake: %v", err)
	}
	if err := reg.Activate(p.ProviderID, 3, false); CodeOf(err) != ErrAttestationError {
		t.Fatalf("expected attestation error, got %v", err)
	}
	if err := reg.Activate(p.ProviderID, 4, true); err != nil {
		t.Fatalf("expected activation to succeed, got %v", err)
	}

	got, _, err := store.GetProvider(p.ProviderID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusActive {
		t.Fatalf("expected ACTIVE, got %v", got.Status)
	}
}

func TestSlashCascadesToDeregistrationWhenStakeZeroed(t *testing.T) {
	store := newTestStore(t)
	reg := NewRegistry(store)
	ledger := NewStakeLedger(store)

	p := ProviderRecord{ProviderID: "provider:x", Capabilities: []Capability{CapabilityAI}, StakeMin: 10, HealthScore: 1}
	_ = reg.Register(p, 1)
	_ = ledger.StakeOrTopUp(p.ProviderID, 50, 1)
	_ = reg.Activate(p.ProviderID, 2, true)

	if err := ledger.Slash(reg, p.ProviderID, 50, 3); err != nil {
		t.Fatalf("slash: %v", err)
	}
	got, _, _ := store.GetProvider(p.ProviderID)
	if got.Status != StatusDeregistered {
		t.Fatalf("expected DEREGISTERED after full slash, got %v", got.Status)
	}
}

func TestMatchShuffleDeterministicPerSeed(t *testing.T) {
	providers := []ProviderRecord{
		{ProviderID: "provider:1", Status: StatusActive, Capabilities: []Capability{CapabilityAI}, StakeBonded: 100, StakeMin: 10, HealthScore: 1},
		{ProviderID: "provider:2", Status: StatusActive, Capabilities: []Capability{CapabilityAI}, StakeBonded: 100, StakeMin: 10, HealthScore: 1},
		{ProviderID: "provider:3", Status: StatusActive, Capabilities: []Capability{CapabilityAI}, StakeBonded: 100, StakeMin: 10, HealthScore: 1},
	}
	var seed [32]byte
	seed[0] = 42

	r1 := Match(providers, MatchFilter{Capability: CapabilityAI}, seed)
	r2 := Match(providers, MatchFilter{Capability: CapabilityAI}, seed)
	if len(r1) != 3 || len(r2) != 3 {
		t.Fatalf("expected all 3 eligible providers")
	}
	for i := range r1 {
		if r1[i].ProviderID != r2[i].ProviderID {
			t.Fatalf("shuffle must be deterministic for a fixed seed")
		}
	}

	var seed2 [32]byte
	seed2[0] = 99
	r3 := Match(providers, MatchFilter{Capability: CapabilityAI}, seed2)
	same := true
	for i := range r1 {
		if r1[i].ProviderID != r3[i].ProviderID {
			same = false
		}
	}
	if same {
		t.Fatalf("different seeds should (almost certainly) produce different orders")
	}
}

func TestLeaseAssignHeartbeatExpire(t *testing.T) {
	store := newTestStore(t)
	var taskID [32]byte
	taskID[0] = 5
	job := JobRecord{TaskID: taskID, Kind: CapabilityAI, Status: JobQueued}
	if err := store.PutJob(job); err != nil {
		t.Fatalf("put job: %v", err)
	}

	candidate := ProviderRecord{ProviderID: "provider:lease", Status: StatusActive, HealthScore: 1}
	lease, err := Assign(store, job, []ProviderRecord{candidate}, 10)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}

	got, found, _ := store.GetJob(taskID)
	if !found || got.Status != JobAssigned {
		t.Fatalf("expected job ASSIGNED, got %+v", got)
	}

	for i := 0; i < DefaultMaxRenewals; i++ {
		_, ok, err := Heartbeat(store, lease.LeaseID)
		if err != nil || !ok {
			t.Fatalf("expected heartbeat renewal %d to succeed: %v %v", i, ok, err)
		}
	}
	_, ok, err := Heartbeat(store, lease.LeaseID)
	if err != nil {
		t.Fatalf("heartbeat: %v", err)
	}
	if ok {
		t.Fatalf("expected renewal to fail once max_renewals is exhausted")
	}

	if err := Expire(store, taskID, 20); err != nil {
		t.Fatalf("expire: %v", err)
	}
	got, _, _ = store.GetJob(taskID)
	if got.Status != JobQueued || got.Retries != 1 {
		t.Fatalf("expected requeue with retries=1, got status=%v retries=%d", got.Status, got.Retries)
	}
}

func TestSubmitProofClaimRejectsNullifierReplay(t *testing.T) {
	store := newTestStore(t)
	var taskID [32]byte
	taskID[0] = 7
	job := JobRecord{TaskID: taskID, Kind: CapabilityAI, Status: JobRunning, ProviderID: "provider:p"}
	_ = store.PutJob(job)

	schedule := LinearPricingSchedule{
		RatePerUnit: map[Capability]float64{CapabilityAI: 1.0},
		MetricKey:   map[Capability]string{CapabilityAI: "compute_seconds"},
	}
	var nullifier [32]byte
	nullifier[0] = 1
	claim := ProofClaim{TaskID: taskID, Nullifier: nullifier, Metrics: map[string]float64{"compute_seconds": 3.25}}

	res, err := SubmitProofClaim(store, schedule, claim)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Units != 3.25 {
		t.Fatalf("expected 3.25 units, got %v", res.Units)
	}

	job.Status = JobRunning
	_ = store.PutJob(job)
	if _, err := SubmitProofClaim(store, schedule, claim); CodeOf(err) != ErrNullifierCollision {
		t.Fatalf("expected nullifier collision on replay, got %v", err)
	}
}

func TestQuantumClaimBelowTrapThresholdFails(t *testing.T) {
	store := newTestStore(t)
	var taskID [32]byte
	taskID[0] = 8
	job := JobRecord{TaskID: taskID, Kind: CapabilityQuantum, Status: JobRunning}
	_ = store.PutJob(job)

	schedule := LinearPricingSchedule{}
	var nullifier [32]byte
	nullifier[0] = 2
	claim := ProofClaim{TaskID: taskID, Nullifier: nullifier, Metrics: map[string]float64{"trap_ratio": 0.5}}

	if _, err := SubmitProofClaim(store, schedule, claim); CodeOf(err) != ErrNotEligible {
		t.Fatalf("expected not-eligible due to trap ratio, got %v", err)
	}
	got, _, _ := store.GetJob(taskID)
	if got.Status != JobFailed {
		t.Fatalf("expected job FAILED, got %v", got.Status)
	}
}

func TestResolverGatesUntilNextBlock(t *testing.T) {
	store := newTestStore(t)
	var taskID [32]byte
	taskID[0] = 9
	_ = store.PutResult(ResultRecord{TaskID: taskID, Units: 1, BlockHeight: 100})

	r := NewResolver(store)
	if _, err := r.Result(taskID, 100); CodeOf(err) != ErrNoResultYet {
		t.Fatalf("expected NoResultYet at the same height, got %v", err)
	}
	if _, err := r.Result(taskID, 101); err != nil {
		t.Fatalf("expected readable result at next height: %v", err)
	}
}

type fixedRate struct{ rate float64 }

func (f fixedRate) BaseRate(kind Capability, modelOrCircuit string, epoch uint64) float64 { return f.rate }

func TestSettleEpochRespectsFundCapAndCarriesOverFIFO(t *testing.T) {
	jobs := []PendingJob{
		{Result: ResultRecord{ProviderID: "p1", Units: 100}, QoSMultiplier: 1, EnqueueSeq: 0},
		{Result: ResultRecord{ProviderID: "p2", Units: 100}, QoSMultiplier: 1, EnqueueSeq: 1},
		{Result: ResultRecord{ProviderID: "p3", Units: 100}, QoSMultiplier: 1, EnqueueSeq: 2},
	}
	// reward=100*1=100, fund cut at 5% = 5 each; cap at 8 allows one job only.
	res := SettleEpoch(jobs, fixedRate{rate: 1}, DefaultSplit, 8, 1)
	if len(res.Payouts) != 1 {
		t.Fatalf("expected exactly 1 payout under the fund cap, got %d", len(res.Payouts))
	}
	if len(res.CarriedOver) != 2 {
		t.Fatalf("expected 2 jobs carried over, got %d", len(res.CarriedOver))
	}
	if res.CarriedOver[0].EnqueueSeq != 1 {
		t.Fatalf("expected FIFO carryover order, got seq %d first", res.CarriedOver[0].EnqueueSeq)
	}
}

func TestProviderIDDeterministic(t *testing.T) {
	pub := []byte("a-test-pubkey")
	id1 := ProviderID(pub, 0x01)
	id2 := ProviderID(pub, 0x01)
	if id1 != id2 {
		t.Fatalf("provider id must be deterministic")
	}
	if id1 == ProviderID(pub, 0x02) {
		t.Fatalf("different alg id must produce a different provider id")
	}
}
