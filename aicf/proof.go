package aicf

// PricingSchedule maps a completed job's raw metrics onto billable compute
// units (CANONICAL §4.4 "Proof binding": "envelope metrics map to units via
// a pricing schedule"). The schedule is network policy, not a fixed
// formula; this is the minimal seam a node configures it through.
type PricingSchedule interface {
	Units(kind Capability, metrics map[string]float64) float64
}

// LinearPricingSchedule prices units as a fixed per-kind rate applied to a
// single named metric (e.g. "compute_seconds" for AI, "circuit_depth" for
// quantum) — the simplest schedule satisfying the metrics-to-units seam.
type LinearPricingSchedule struct {
	RatePerUnit map[Capability]float64
	MetricKey   map[Capability]string
}

func (s LinearPricingSchedule) Units(kind Capability, metrics map[string]float64) float64 {
	key, ok := s.MetricKey[kind]
	if !ok {
		return 0
	}
	rate, ok := s.RatePerUnit[kind]
	if !ok {
		return 0
	}
	return metrics[key] * rate
}

// TrapThreshold is the minimum trap-pass ratio a quantum job's metrics must
// report to settle at all (CANONICAL example #5: "Quantum enqueue with trap
// ratio below threshold -> FAILED; no units settle").
const TrapThreshold = 0.95

// SubmitProofClaim validates and records a ProofClaim against its target
// job, enforcing the resolver's four obligations (CANONICAL §4.4 "Proof
// binding"):
//
//	(a) envelope already validated by consensus (caller's responsibility —
//	    the resolver only ever sees envelopes that passed block validation);
//	(b) claim.TaskID matches an existing in-flight (ASSIGNED or RUNNING) job;
//	(c) the nullifier has not been used before;
//	(d) a ResultRecord is appended.
func SubmitProofClaim(store *Store, schedule PricingSchedule, claim ProofClaim) (ResultRecord, error) {
	job, found, err := store.GetJob(claim.TaskID)
	if err != nil {
		return ResultRecord{}, err
	}
	if !found {
		return ResultRecord{}, aicfErr(ErrUnknownJob, "")
	}
	if job.Status != JobRunning && job.Status != JobAssigned {
		return ResultRecord{}, aicfErr(ErrInvalidTransition, "proof claim requires an in-flight job")
	}

	// A failed trap check settles nothing and must not burn the nullifier
	// (CANONICAL example #5: "trap ratio below threshold -> FAILED; no
	// units settle; nullifier not recorded"), so this check runs before
	// ConsumeNullifier.
	if job.Kind == CapabilityQuantum {
		if claim.Metrics["trap_ratio"] < TrapThreshold {
			job.Status = JobFailed
			_ = store.PutJob(job)
			return ResultRecord{}, aicfErr(ErrNotEligible, "trap ratio below threshold")
		}
	}

	if err := store.ConsumeNullifier(claim.Nullifier); err != nil {
		return ResultRecord{}, err
	}

	units := schedule.Units(job.Kind, claim.Metrics)
	result := ResultRecord{
		TaskID:      claim.TaskID,
		ProviderID:  job.ProviderID,
		Units:       units,
		Metrics:     claim.Metrics,
		BlockHeight: claim.BlockHeight,
	}
	if err := store.PutResult(result); err != nil {
		return ResultRecord{}, err
	}

	job.Status = JobCompleted
	if err := store.PutJob(job); err != nil {
		return ResultRecord{}, err
	}
	return result, nil
}
