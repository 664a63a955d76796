package aicf

import "sort"

// SplitRatios are the configured (provider, miner, fund) shares of a
// settled job's reward, expressed as parts of 100 (CANONICAL example #4:
// "epoch close pays 80/15/5").
type SplitRatios struct {
	ProviderPct uint64
	MinerPct    uint64
	FundPct     uint64
}

// DefaultSplit matches CANONICAL §4.4's worked example.
var DefaultSplit = SplitRatios{ProviderPct: 80, MinerPct: 15, FundPct: 5}

// RateSchedule maps (kind, model-or-circuit id) to a base rate per unit for
// one epoch (CANONICAL §4.4 "reward = units * base_rate(kind, model/
// circuit, epoch) * multipliers(qos, depth)").
type RateSchedule interface {
	BaseRate(kind Capability, modelOrCircuit string, epoch uint64) float64
}

// FixedRateSchedule pays every (kind, model-or-circuit) pair the same rate
// regardless of epoch. It exists so a node can settle epochs without first
// standing up a governance-driven rate table — a real network profile
// would inject a schedule backed by on-chain params instead.
type FixedRateSchedule struct {
	Rate float64
}

func (f FixedRateSchedule) BaseRate(Capability, string, uint64) float64 {
	return f.Rate
}

// Payout is the immutable per-job settlement record (CANONICAL §4.4:
// "Every payout references (provider_id, task_id, proof_hash/nullifier,
// units, rate, split)").
type Payout struct {
	ProviderID string
	TaskID     [32]byte
	Nullifier  [32]byte
	Units      float64
	Rate       float64
	Reward     float64
	ProviderCut float64
	MinerCut    float64
	FundCut     float64
	Epoch       uint64
}

// PendingJob is one COMPLETED job awaiting epoch settlement.
type PendingJob struct {
	Result         ResultRecord
	Nullifier      [32]byte
	ModelOrCircuit string
	Kind           Capability
	QoSMultiplier  float64 // 1.0 = nominal
	PriorityClass  int     // lower settles first when FIFO-carrying over
	EnqueueSeq     uint64  // FIFO tiebreak within a priority class
}

// SettlementResult is one epoch's outcome: the payouts that fit under the
// fund cap, plus the jobs carried over (FIFO, within priority class) for
// the next epoch.
type SettlementResult struct {
	Payouts       []Payout
	FundSpent     float64
	CarriedOver   []PendingJob
}

// SettleEpoch computes rewards for pending jobs in priority-then-FIFO
// order, enforcing the Γ_fund cap: once the fund's per-epoch allotment is
// exhausted, remaining jobs carry over to the next epoch rather than
// settling at a reduced rate — CANONICAL §4.4 "excess jobs carry to the
// next epoch FIFO within priority class".
func SettleEpoch(pending []PendingJob, schedule RateSchedule, split SplitRatios, fundCapPerEpoch float64, epoch uint64) SettlementResult {
	ordered := append([]PendingJob(nil), pending...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].PriorityClass != ordered[j].PriorityClass {
			return ordered[i].PriorityClass < ordered[j].PriorityClass
		}
		return ordered[i].EnqueueSeq < ordered[j].EnqueueSeq
	})

	res := SettlementResult{}
	var fundSpent float64

	for _, job := range ordered {
		rate := schedule.BaseRate(job.Kind, job.ModelOrCircuit, epoch)
		reward := job.Result.Units * rate * job.QoSMultiplier

		fundCut := reward * float64(split.FundPct) / 100
		if fundSpent+fundCut > fundCapPerEpoch {
			res.CarriedOver = append(res.CarriedOver, job)
			continue
		}
		fundSpent += fundCut

		payout := Payout{
			ProviderID:  job.Result.ProviderID,
			TaskID:      job.Result.TaskID,
			Nullifier:   job.Nullifier,
			Units:       job.Result.Units,
			Rate:        rate,
			Reward:      reward,
			ProviderCut: reward * float64(split.ProviderPct) / 100,
			MinerCut:    reward * float64(split.MinerPct) / 100,
			FundCut:     fundCut,
			Epoch:       epoch,
		}
		res.Payouts = append(res.Payouts, payout)
	}
	res.FundSpent = fundSpent
	return res
}
