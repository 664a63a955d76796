package aicf

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/animicaorg/animica-node/codec"
)

// Bucket layout: one bucket per entity, plus one append-only log bucket
// per entity that has a status machine.
var (
	bucketProviders    = []byte("aicf_providers_by_id")
	bucketProviderLog  = []byte("aicf_provider_transitions")
	bucketJobs         = []byte("aicf_jobs_by_task_id")
	bucketLeases       = []byte("aicf_leases_by_id")
	bucketNullifiers   = []byte("aicf_consumed_nullifiers")
	bucketResults      = []byte("aicf_results_by_task_id")
	bucketStakeLog     = []byte("aicf_stake_transitions")
	bucketPayouts      = []byte("aicf_payouts_by_provider_epoch")
	bucketSettledTasks = []byte("aicf_settled_task_ids")
)

var allBuckets = [][]byte{
	bucketProviders, bucketProviderLog, bucketJobs, bucketLeases,
	bucketNullifiers, bucketResults, bucketStakeLog,
	bucketPayouts, bucketSettledTasks,
}

// Store is the bbolt-backed persistence layer for registry, job, lease, and
// settlement state. Every status/stake transition is appended to its own
// log bucket before the current-state bucket is overwritten, so the
// append-only audit trail CANONICAL §6 requires survives independently of
// the latest-snapshot view used for fast lookups.
type Store struct {
	db *bolt.DB
}

// OpenStore opens (creating if absent) the bbolt database at path.
func OpenStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("aicf: open bbolt: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, b := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", string(b), err)
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func putCBOR(tx *bolt.Tx, bucket, key []byte, v any) error {
	enc, err := codec.Marshal(v)
	if err != nil {
		return err
	}
	return tx.Bucket(bucket).Put(key, enc)
}

func getCBOR(tx *bolt.Tx, bucket, key []byte, v any) (bool, error) {
	raw := tx.Bucket(bucket).Get(key)
	if raw == nil {
		return false, nil
	}
	if err := codec.UnmarshalLenient(raw, v); err != nil {
		return false, err
	}
	return true, nil
}

// PutProvider persists the current snapshot of a provider record.
func (s *Store) PutProvider(p ProviderRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return putCBOR(tx, bucketProviders, []byte(p.ProviderID), p)
	})
}

// GetProvider loads a provider's current snapshot.
func (s *Store) GetProvider(id string) (ProviderRecord, bool, error) {
	var p ProviderRecord
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		ok, err := getCBOR(tx, bucketProviders, []byte(id), &p)
		found = ok
		return err
	})
	return p, found, err
}

// ListProviders returns every provider's current snapshot.
func (s *Store) ListProviders() ([]ProviderRecord, error) {
	var out []ProviderRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketProviders).ForEach(func(_, v []byte) error {
			var p ProviderRecord
			if err := codec.UnmarshalLenient(v, &p); err != nil {
				return err
			}
			out = append(out, p)
			return nil
		})
	})
	return out, err
}

// Transition is one append-only registry status-machine entry.
type Transition struct {
	ProviderID string
	From       ProviderStatus
	To         ProviderStatus
	Height     uint64
	Reason     string
}

// AppendTransition records a status change in the provider's immutable log.
func (s *Store) AppendTransition(t Transition, seq uint64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		key := logKey(t.ProviderID, seq)
		return putCBOR(tx, bucketProviderLog, key, t)
	})
}

func logKey(id string, seq uint64) []byte {
	key := make([]byte, 0, len(id)+9)
	key = append(key, []byte(id)...)
	key = append(key, 0)
	for i := 7; i >= 0; i-- {
		key = append(key, byte(seq>>(8*uint(i))))
	}
	return key
}

// PutJob persists a job's current snapshot.
func (s *Store) PutJob(j JobRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return putCBOR(tx, bucketJobs, j.TaskID[:], j)
	})
}

// ListJobs returns every job's current snapshot.
func (s *Store) ListJobs() ([]JobRecord, error) {
	var out []JobRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketJobs).ForEach(func(_, v []byte) error {
			var j JobRecord
			if err := codec.UnmarshalLenient(v, &j); err != nil {
				return err
			}
			out = append(out, j)
			return nil
		})
	})
	return out, err
}

// GetJob loads a job by task id.
func (s *Store) GetJob(taskID [32]byte) (JobRecord, bool, error) {
	var j JobRecord
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		ok, err := getCBOR(tx, bucketJobs, taskID[:], &j)
		found = ok
		return err
	})
	return j, found, err
}

// PutLease persists a lease's current snapshot.
func (s *Store) PutLease(l Lease) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return putCBOR(tx, bucketLeases, []byte(l.LeaseID), l)
	})
}

// GetLease loads a lease by id.
func (s *Store) GetLease(id string) (Lease, bool, error) {
	var l Lease
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		ok, err := getCBOR(tx, bucketLeases, []byte(id), &l)
		found = ok
		return err
	})
	return l, found, err
}

// ConsumeNullifier atomically checks-and-sets a nullifier, returning
// ErrNullifierCollision if it was already consumed — the one-time-claim
// enforcement point for ProofClaim (CANONICAL §4.4 "ProofClaim").
func (s *Store) ConsumeNullifier(n [32]byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNullifiers)
		if b.Get(n[:]) != nil {
			return aicfErr(ErrNullifierCollision, "nullifier already consumed")
		}
		return b.Put(n[:], []byte{1})
	})
}

// PutResult persists a job's settled result record.
func (s *Store) PutResult(r ResultRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return putCBOR(tx, bucketResults, r.TaskID[:], r)
	})
}

// GetResult loads a job's result, if settled.
func (s *Store) GetResult(taskID [32]byte) (ResultRecord, bool, error) {
	var r ResultRecord
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		ok, err := getCBOR(tx, bucketResults, taskID[:], &r)
		found = ok
		return err
	})
	return r, found, err
}

// StakeEvent is one append-only stake-ledger entry (stake/top-up/unstake/
// withdraw/slash).
type StakeEvent struct {
	ProviderID string
	Kind       string // "stake" | "unstake" | "withdraw" | "slash"
	Amount     uint64
	Height     uint64
}

// AppendStakeEvent records a stake ledger entry.
func (s *Store) AppendStakeEvent(e StakeEvent, seq uint64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return putCBOR(tx, bucketStakeLog, logKey(e.ProviderID, seq), e)
	})
}

func payoutKey(providerID string, epoch uint64) []byte {
	key := make([]byte, 0, len(providerID)+9)
	key = append(key, []byte(providerID)...)
	key = append(key, 0)
	for i := 7; i >= 0; i-- {
		key = append(key, byte(epoch>>(8*uint(i))))
	}
	return key
}

// PutPayout persists one epoch's settlement outcome for a provider, keyed
// by (providerID, epoch) so ClaimPayout can look up a past settlement by
// that pair.
func (s *Store) PutPayout(p Payout) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return putCBOR(tx, bucketPayouts, payoutKey(p.ProviderID, p.Epoch), p)
	})
}

// GetPayout loads a provider's settlement record for epoch, if it settled.
func (s *Store) GetPayout(providerID string, epoch uint64) (Payout, bool, error) {
	var p Payout
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		ok, err := getCBOR(tx, bucketPayouts, payoutKey(providerID, epoch), &p)
		found = ok
		return err
	})
	return p, found, err
}

// ListProviderPayouts returns every epoch a provider has settled, used to
// sum a provider's total earned (as opposed to bonded-stake) balance.
func (s *Store) ListProviderPayouts(providerID string) ([]Payout, error) {
	prefix := append([]byte(providerID), 0)
	var out []Payout
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketPayouts).Cursor()
		for k, v := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, v = c.Next() {
			var p Payout
			if err := codec.UnmarshalLenient(v, &p); err != nil {
				return err
			}
			out = append(out, p)
		}
		return nil
	})
	return out, err
}

func hasPrefix(b, prefix []byte) bool {
	return len(b) >= len(prefix) && string(b[:len(prefix)]) == string(prefix)
}

// MarkSettled records that taskID's job has already been paid out, so a
// completed job is never re-settled in a later epoch.
func (s *Store) MarkSettled(taskID [32]byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSettledTasks).Put(taskID[:], []byte{1})
	})
}

// IsSettled reports whether taskID's job has already been paid out.
func (s *Store) IsSettled(taskID [32]byte) (bool, error) {
	var settled bool
	err := s.db.View(func(tx *bolt.Tx) error {
		settled = tx.Bucket(bucketSettledTasks).Get(taskID[:]) != nil
		return nil
	})
	return settled, err
}
