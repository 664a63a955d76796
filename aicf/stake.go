package aicf

// StakeLedger manages the stake/top-up/unstake/withdraw/slash operations of
// CANONICAL §4.4 "Staking" against a Registry's backing Store. Every
// mutation appends a StakeEvent before updating the provider snapshot.
type StakeLedger struct {
	store *Store
	seq   map[string]uint64
}

// NewStakeLedger constructs a StakeLedger bound to store.
func NewStakeLedger(store *Store) *StakeLedger {
	return &StakeLedger{store: store, seq: make(map[string]uint64)}
}

func (l *StakeLedger) nextSeq(id string) uint64 {
	s := l.seq[id]
	l.seq[id] = s + 1
	return s
}

func (l *StakeLedger) append(id, kind string, amount, height uint64) error {
	return l.store.AppendStakeEvent(StakeEvent{ProviderID: id, Kind: kind, Amount: amount, Height: height}, l.nextSeq(id))
}

// StakeOrTopUp increases a provider's bonded stake and resets its unlock
// timer ("Stake/top-up resets the lock timer").
func (l *StakeLedger) StakeOrTopUp(id string, amount, height uint64) error {
	p, found, err := l.store.GetProvider(id)
	if err != nil {
		return err
	}
	if !found {
		return aicfErr(ErrUnknownProvider, id)
	}
	p.StakeBonded += amount
	p.UnlockHeight = 0
	if err := l.append(id, "stake", amount, height); err != nil {
		return err
	}
	return l.store.PutProvider(p)
}

// UnstakeLockBlocks is the number of blocks a provider's stake remains
// locked after an unstake request, before Withdraw is permitted.
const UnstakeLockBlocks = 10_000

// RequestUnstake moves a provider into UNSTAKING and sets its unlock
// height.
func (l *StakeLedger) RequestUnstake(reg *Registry, id string, height uint64) error {
	p, found, err := l.store.GetProvider(id)
	if err != nil {
		return err
	}
	if !found {
		return aicfErr(ErrUnknownProvider, id)
	}
	p.UnlockHeight = height + UnstakeLockBlocks
	if err := l.store.PutProvider(p); err != nil {
		return err
	}
	if err := l.append(id, "unstake", 0, height); err != nil {
		return err
	}
	return reg.Transition(id, StatusUnstaking, height, "unstake-request")
}

// Withdraw releases bonded stake after the unlock height has elapsed.
func (l *StakeLedger) Withdraw(reg *Registry, id string, height uint64) (uint64, error) {
	p, found, err := l.store.GetProvider(id)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, aicfErr(ErrUnknownProvider, id)
	}
	if p.Status != StatusUnstaking {
		return 0, aicfErr(ErrInvalidTransition, "withdraw requires UNSTAKING status")
	}
	if height < p.UnlockHeight {
		return 0, aicfErr(ErrLockNotElapsed, "")
	}
	amount := p.StakeBonded
	p.StakeBonded = 0
	if err := l.store.PutProvider(p); err != nil {
		return 0, err
	}
	if err := l.append(id, "withdraw", amount, height); err != nil {
		return 0, err
	}
	return amount, reg.Transition(id, StatusDeregistered, height, "withdraw")
}

// SlashCooldownBlocks is how long a slashed provider stays JAILED before it
// may recover back to ACTIVE.
const SlashCooldownBlocks = 5_000

// Slash reduces a provider's stake, forces JAILED, and cascades to
// deregistration if the remaining stake falls to zero.
func (l *StakeLedger) Slash(reg *Registry, id string, amount, height uint64) error {
	p, found, err := l.store.GetProvider(id)
	if err != nil {
		return err
	}
	if !found {
		return aicfErr(ErrUnknownProvider, id)
	}
	if amount > p.StakeBonded {
		amount = p.StakeBonded
	}
	p.StakeBonded -= amount
	if err := l.store.PutProvider(p); err != nil {
		return err
	}
	if err := l.append(id, "slash", amount, height); err != nil {
		return err
	}
	if p.StakeBonded == 0 {
		_ = reg.Transition(id, StatusJailed, height, "slash-zeroed-stake")
		return reg.Transition(id, StatusDeregistered, height, "slash-cascade")
	}
	return reg.Transition(id, StatusJailed, height, "slash")
}
