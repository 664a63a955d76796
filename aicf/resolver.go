package aicf

// Resolver exposes settled AICF results to the VM host, gated so that a
// result becomes readable only from the block following the one that
// finalized it (CANONICAL §4.4: "results are readable by the VM from the
// next block following finalization").
type Resolver struct {
	store *Store
}

// NewResolver constructs a Resolver bound to store.
func NewResolver(store *Store) *Resolver {
	return &Resolver{store: store}
}

// Result returns the ResultRecord for taskID if it was finalized at a block
// height strictly less than currentHeight, and ErrNoResultYet otherwise
// (CANONICAL §7 "NoResultYet").
func (r *Resolver) Result(taskID [32]byte, currentHeight uint64) (ResultRecord, error) {
	res, found, err := r.store.GetResult(taskID)
	if err != nil {
		return ResultRecord{}, err
	}
	if !found || res.BlockHeight >= currentHeight {
		return ResultRecord{}, aicfErr(ErrNoResultYet, "")
	}
	return res, nil
}
