// Package metrics collects the prometheus gauges/counters node-level
// components update as they run; the HTTP /metrics endpoint itself is
// already mounted by rpc.Server via promhttp.Handler, so this package only
// owns the collectors, not the transport.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Collectors groups every gauge/counter the node package updates as blocks
// are sealed, transactions admitted, and blobs/jobs tracked.
type Collectors struct {
	ChainHeight    prometheus.Gauge
	MempoolSize    prometheus.Gauge
	BlocksSealed   prometheus.Counter
	TxApplied      *prometheus.CounterVec
	BlobsStored    prometheus.Counter
	AICFJobsActive prometheus.Gauge
}

var (
	once     sync.Once
	instance *Collectors
)

// New returns the process-wide Collectors, registering them against the
// default registry exactly once (mirroring how rpc.Server registers its own
// request counter at construction time) so that constructing more than one
// Node in the same process — as the test suite does — never double-registers
// a metric name.
func New() *Collectors {
	once.Do(func() {
		instance = newCollectors()
	})
	return instance
}

func newCollectors() *Collectors {
	c := &Collectors{
		ChainHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "animica_chain_height",
			Help: "Height of the most recently sealed block.",
		}),
		MempoolSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "animica_mempool_size",
			Help: "Number of transactions currently admitted to the mempool.",
		}),
		BlocksSealed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "animica_blocks_sealed_total",
			Help: "Total number of blocks sealed by this node.",
		}),
		TxApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "animica_transactions_applied_total",
			Help: "Total transactions applied during block sealing, labeled by receipt status.",
		}, []string{"status"}),
		BlobsStored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "animica_da_blobs_stored_total",
			Help: "Total data-availability blobs accepted via PutBlob.",
		}),
		AICFJobsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "animica_aicf_jobs_active",
			Help: "Number of AICF jobs currently tracked by the registry.",
		}),
	}
	prometheus.MustRegister(
		c.ChainHeight,
		c.MempoolSize,
		c.BlocksSealed,
		c.TxApplied,
		c.BlobsStored,
		c.AICFJobsActive,
	)
	return c
}
