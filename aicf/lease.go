package aicf

import "encoding/hex"

// DefaultTTLSeconds and DefaultMaxRenewals pin the lease parameters a fresh
// assignment is issued with (CANONICAL §4.4 "Lease").
const (
	DefaultTTLSeconds = 300
	DefaultMaxRenewals = 3
	MaxRetries         = 5
)

// LeaseID derives a stable lease identifier from its task id.
func LeaseID(taskID [32]byte) string {
	return "lease:" + hex.EncodeToString(taskID[:12])
}

// Assign issues a Lease for job to the first eligible provider in
// candidates (already beacon-shuffled by Match), moving the job
// QUEUED -> ASSIGNED.
func Assign(store *Store, job JobRecord, candidates []ProviderRecord, height uint64) (Lease, error) {
	if job.Status != JobQueued {
		return Lease{}, aicfErr(ErrInvalidTransition, "only QUEUED jobs may be assigned")
	}
	if len(candidates) == 0 {
		return Lease{}, aicfErr(ErrNotEligible, "no eligible providers")
	}
	chosen := candidates[0]

	lease := Lease{
		LeaseID:     LeaseID(job.TaskID),
		ProviderID:  chosen.ProviderID,
		TaskID:      job.TaskID,
		IssuedAt:    height,
		TTLSeconds:  DefaultTTLSeconds,
		MaxRenewals: DefaultMaxRenewals,
	}
	if err := store.PutLease(lease); err != nil {
		return Lease{}, err
	}

	job.Status = JobAssigned
	job.LeaseID = lease.LeaseID
	job.ProviderID = chosen.ProviderID
	if err := store.PutJob(job); err != nil {
		return Lease{}, err
	}
	return lease, nil
}

// Heartbeat renews a lease, bumping its renewal counter, and reports
// whether the renewal succeeded (false once max_renewals is exhausted).
func Heartbeat(store *Store, leaseID string) (Lease, bool, error) {
	lease, found, err := store.GetLease(leaseID)
	if err != nil {
		return Lease{}, false, err
	}
	if !found {
		return Lease{}, false, aicfErr(ErrUnknownLease, leaseID)
	}
	if lease.Renewals >= lease.MaxRenewals {
		return lease, false, nil
	}
	lease.Renewals++
	if err := store.PutLease(lease); err != nil {
		return Lease{}, false, err
	}
	return lease, true, nil
}

// Expire requeues a job whose lease was not renewed in time, bumping its
// retry counter, or marks it EXPIRED once MaxRetries is reached
// (CANONICAL §4.4 "expiry requeues with retries += 1 up to policy cap";
// §7 "JobExpired ... transient").
func Expire(store *Store, taskID [32]byte, height uint64) error {
	job, found, err := store.GetJob(taskID)
	if err != nil {
		return err
	}
	if !found {
		return aicfErr(ErrUnknownJob, "")
	}
	job.Retries++
	if job.Retries > MaxRetries {
		job.Status = JobExpired
	} else {
		job.Status = JobQueued
		job.LeaseID = ""
		job.ProviderID = ""
		job.EnqueuedAt = height
	}
	return store.PutJob(job)
}
