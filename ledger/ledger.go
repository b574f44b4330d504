// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"sync"
	"time"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/rewardpool/kv"
	"github.com/vechain/rewardpool/log"
	"github.com/vechain/rewardpool/precision"
	"github.com/vechain/rewardpool/schedule"
	"github.com/vechain/rewardpool/settlement"
	"github.com/vechain/rewardpool/state"
	"github.com/vechain/rewardpool/thor"
)

var logger = log.WithContext("pkg", "ledger")

// Transferer moves the underlying value in and out of the pool's custody.
// Either call succeeds completely or has no effect.
type Transferer interface {
	TransferIn(from thor.Address, amount *uint256.Int) error
	TransferOut(to thor.Address, amount *uint256.Int) error
}

// BlockSource supplies the current block height, the only clock of the ledger.
type BlockSource interface {
	BestBlockNumber() uint64
}

// BlockSourceFunc adapts a function to BlockSource.
type BlockSourceFunc func() uint64

func (f BlockSourceFunc) BestBlockNumber() uint64 { return f() }

// Config is fixed for the lifetime of a ledger.
type Config struct {
	EpochStartBlock uint64
	Schedule        *schedule.Schedule
	Scale           *uint256.Int // defaults to thor.DefaultPrecisionScale
}

// Totals is a snapshot of the global ledger figures.
type Totals struct {
	EpochStartBlock         uint64
	LastSettledBlock        uint64
	TotalStaked             uint256.Int
	TotalRewardPotRemaining uint256.Int
	Participants            int
}

// Ledger is the reward pool. All operations are serialized; every mutation
// settles the pool to the current block first and commits atomically.
type Ledger struct {
	mu       sync.RWMutex
	state    *state.State
	store    kv.Store
	engine   *settlement.Engine
	transfer Transferer
	blocks   BlockSource
}

// Open loads the ledger persisted in store, or initializes an empty one.
func Open(store kv.Store, cfg Config, transfer Transferer, blocks BlockSource) (*Ledger, error) {
	if transfer == nil || blocks == nil {
		return nil, errors.New("ledger needs a transferer and a block source")
	}
	scale := cfg.Scale
	if scale == nil {
		scale = thor.DefaultPrecisionScale
	}
	engine, err := settlement.New(cfg.Schedule, scale)
	if err != nil {
		return nil, errors.Wrap(err, "settlement engine")
	}

	st, err := state.Load(store)
	switch {
	case errors.Is(err, state.ErrNotInitialized):
		st = state.New(cfg.EpochStartBlock)
		if err := st.Commit(store); err != nil {
			return nil, errors.Wrap(err, "initialize ledger")
		}
		logger.Info("ledger initialized", "epoch", cfg.EpochStartBlock, "phases", cfg.Schedule.Len(), "horizon", cfg.Schedule.Horizon())
	case err != nil:
		return nil, errors.Wrap(err, "load ledger")
	case st.EpochStartBlock != cfg.EpochStartBlock:
		return nil, errors.Errorf("stored epoch start %d differs from configured %d", st.EpochStartBlock, cfg.EpochStartBlock)
	default:
		logger.Info("ledger loaded", "epoch", st.EpochStartBlock, "settled", st.LastSettledBlock, "participants", st.Len(), "staked", &st.TotalStaked)
	}

	l := &Ledger{
		state:    st,
		store:    store,
		engine:   engine,
		transfer: transfer,
		blocks:   blocks,
	}
	l.observe()
	return l, nil
}

// Deposit stakes amount for addr. The amount is pulled into custody through the
// transferer; it is added to the participant's balance, the total staked and
// the reward pot.
func (l *Ledger) Deposit(addr thor.Address, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return ErrInvalidAmount
	}
	return l.mutate("deposit", func(st *state.State) (*movement, error) {
		acc := st.Register(addr)
		balance, err := precision.Add(&acc.Balance, amount)
		if err != nil {
			return nil, err
		}
		total, err := precision.Add(&st.TotalStaked, amount)
		if err != nil {
			return nil, err
		}
		pot, err := precision.Add(&st.TotalRewardPotRemaining, amount)
		if err != nil {
			return nil, err
		}
		st.SetBalance(acc, balance)
		st.TotalStaked = *total
		st.TotalRewardPotRemaining = *pot

		logger.Debug("deposit", "participant", addr, "amount", amount, "balance", balance)
		return &movement{in: true, addr: addr, amount: amount}, nil
	})
}

// Withdraw pays out the participant's whole settled balance, capped by the reward pot.
// It returns the amount paid.
func (l *Ledger) Withdraw(addr thor.Address) (*uint256.Int, error) {
	return l.withdraw(addr, nil)
}

// WithdrawPartial pays out amount, capped by the settled balance and the reward pot.
// It returns the amount paid.
func (l *Ledger) WithdrawPartial(addr thor.Address, amount *uint256.Int) (*uint256.Int, error) {
	if amount == nil || amount.IsZero() {
		return nil, ErrInvalidAmount
	}
	return l.withdraw(addr, amount)
}

func (l *Ledger) withdraw(addr thor.Address, requested *uint256.Int) (*uint256.Int, error) {
	var paid *uint256.Int
	err := l.mutate("withdraw", func(st *state.State) (*movement, error) {
		acc, ok := st.Account(addr)
		if !ok {
			return nil, errors.Wrap(ErrUnknownParticipant, addr.String())
		}
		if acc.Balance.IsZero() {
			return nil, errors.Wrap(ErrNothingToWithdraw, addr.String())
		}
		if requested == nil {
			requested = &acc.Balance
		}
		// accrued balance beyond the pot is forfeited
		paid = precision.Min(requested, &acc.Balance, &st.TotalRewardPotRemaining)

		balance, err := precision.Sub(&acc.Balance, paid)
		if err != nil {
			return nil, err
		}
		total, err := precision.Sub(&st.TotalStaked, paid)
		if err != nil {
			return nil, err
		}
		pot, err := precision.Sub(&st.TotalRewardPotRemaining, paid)
		if err != nil {
			return nil, err
		}
		st.SetBalance(acc, balance)
		st.TotalStaked = *total
		st.TotalRewardPotRemaining = *pot

		logger.Debug("withdraw", "participant", addr, "paid", paid, "balance", balance, "pot", pot)
		if paid.IsZero() {
			return nil, nil
		}
		return &movement{addr: addr, amount: paid}, nil
	})
	if err != nil {
		return nil, err
	}
	return paid, nil
}

// GetBalance returns the participant's balance as of the last settlement.
func (l *Ledger) GetBalance(addr thor.Address) (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	acc, ok := l.state.Account(addr)
	if !ok {
		return nil, errors.Wrap(ErrUnknownParticipant, addr.String())
	}
	return new(uint256.Int).Set(&acc.Balance), nil
}

// GetSettledBalance settles the pool to the current block, commits, and returns
// the participant's balance.
func (l *Ledger) GetSettledBalance(addr thor.Address) (*uint256.Int, error) {
	var balance *uint256.Int
	err := l.mutate("settled-balance", func(st *state.State) (*movement, error) {
		acc, ok := st.Account(addr)
		if !ok {
			return nil, errors.Wrap(ErrUnknownParticipant, addr.String())
		}
		balance = new(uint256.Int).Set(&acc.Balance)
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return balance, nil
}

// RequestSettlement settles the pool to the current block and commits.
func (l *Ledger) RequestSettlement() (*settlement.Result, error) {
	var res *settlement.Result
	err := l.mutateWithResult("settle", func(st *state.State) (*movement, error) {
		return nil, nil
	}, func(r *settlement.Result) { res = r })
	if err != nil {
		return nil, err
	}
	return res, nil
}

// PreviewBalance returns the balance the participant would have if the pool
// were settled at the current block. Nothing is committed.
func (l *Ledger) PreviewBalance(addr thor.Address) (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if _, ok := l.state.Account(addr); !ok {
		return nil, errors.Wrap(ErrUnknownParticipant, addr.String())
	}
	balance, err := l.engine.Preview(l.state, addr, l.blocks.BestBlockNumber())
	return balance, arithmetic(err)
}

// Totals returns a snapshot of the global figures.
func (l *Ledger) Totals() Totals {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return Totals{
		EpochStartBlock:         l.state.EpochStartBlock,
		LastSettledBlock:        l.state.LastSettledBlock,
		TotalStaked:             l.state.TotalStaked,
		TotalRewardPotRemaining: l.state.TotalRewardPotRemaining,
		Participants:            l.state.Len(),
	}
}

// Participants returns every address that ever deposited, in registration order.
func (l *Ledger) Participants() []thor.Address {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.state.Participants()
}

// LastSettledBlock returns the height the pool was last settled to.
func (l *Ledger) LastSettledBlock() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.state.LastSettledBlock
}

// Schedule returns the phase schedule.
func (l *Ledger) Schedule() *schedule.Schedule {
	return l.engine.Schedule()
}

// movement is a value transfer between a participant and the pool custody.
type movement struct {
	in     bool
	addr   thor.Address
	amount *uint256.Int
}

func (m *movement) run(t Transferer) error {
	if m.in {
		return t.TransferIn(m.addr, m.amount)
	}
	return t.TransferOut(m.addr, m.amount)
}

func (m *movement) reverse() *movement {
	return &movement{in: !m.in, addr: m.addr, amount: m.amount}
}

// mutate runs apply on a settled working copy of the state. apply may return
// a movement to run before the copy is committed. Any error drops the copy.
func (l *Ledger) mutate(op string, apply func(st *state.State) (*movement, error)) error {
	return l.mutateWithResult(op, apply, nil)
}

func (l *Ledger) mutateWithResult(
	op string,
	apply func(st *state.State) (*movement, error),
	settled func(*settlement.Result),
) (err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	defer func() {
		result := "ok"
		if err != nil {
			result = "failed"
			logger.Debug("operation rolled back", "op", op, "err", err)
		}
		metricOperations().AddWithLabel(1, map[string]string{"op": op, "result": result})
	}()

	height := l.blocks.BestBlockNumber()
	work := l.state.Copy()

	start := time.Now()
	res, err := l.engine.Settle(work, height)
	if err != nil {
		return arithmetic(err)
	}
	metricSettlementDuration().Observe(time.Since(start).Milliseconds())
	metricVisitedAccounts().Add(int64(res.Visited))

	move, err := apply(work)
	if err != nil {
		return arithmetic(err)
	}
	if move != nil {
		if err := move.run(l.transfer); err != nil {
			return errors.Wrapf(ErrTransferFailed, "%s: %v", op, err)
		}
	}

	if err := work.Commit(l.store); err != nil {
		if move != nil {
			if rerr := move.reverse().run(l.transfer); rerr != nil {
				logger.Error("failed to reverse transfer", "op", op, "participant", move.addr, "amount", move.amount, "err", rerr)
			}
		}
		return errors.Wrap(err, "commit")
	}
	l.state = work
	if settled != nil {
		settled(res)
	}
	if res.Credited > 0 {
		logger.Debug("settled", "block", height, "credited", res.Credited, "minted", &res.Minted)
	}
	l.observe()
	return nil
}

// observe publishes the committed totals.
func (l *Ledger) observe() {
	metricParticipants().Set(int64(l.state.Len()))
	setAmountGauge("staked", &l.state.TotalStaked)
	setAmountGauge("pot", &l.state.TotalRewardPotRemaining)
}
