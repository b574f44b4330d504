// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package settlement

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/rewardpool/log"
	"github.com/vechain/rewardpool/precision"
	"github.com/vechain/rewardpool/schedule"
	"github.com/vechain/rewardpool/state"
	"github.com/vechain/rewardpool/thor"
)

var logger = log.WithContext("pkg", "settlement")

// Engine settles ledger states against a fixed phase schedule.
type Engine struct {
	schedule *schedule.Schedule
	scale    uint256.Int
}

// New creates an engine. scale is the fixed-point multiplier for shares.
func New(sched *schedule.Schedule, scale *uint256.Int) (*Engine, error) {
	if sched == nil {
		return nil, errors.New("nil schedule")
	}
	if scale == nil || scale.IsZero() {
		return nil, precision.ErrDivisionByZero
	}
	return &Engine{schedule: sched, scale: *scale}, nil
}

// Schedule returns the engine's phase schedule.
func (e *Engine) Schedule() *schedule.Schedule {
	return e.schedule
}

// Scale returns the fixed-point multiplier.
func (e *Engine) Scale() *uint256.Int {
	return new(uint256.Int).Set(&e.scale)
}

// Result summarizes a settlement pass.
type Result struct {
	From, To uint64 // settled block interval (From, To]
	Visited  int    // accounts in the registry
	Credited int    // accounts whose balance grew
	Minted   uint256.Int
}

// Settle brings every account of st up to block current. It does nothing when
// current is not past st.LastSettledBlock.
//
// Every account earns its share of the pre-settlement TotalStaked, so neither the
// order of the registry nor deposits made later in the same window change the
// outcome. On error st is left untouched.
func (e *Engine) Settle(st *state.State, current uint64) (*Result, error) {
	if current <= st.LastSettledBlock {
		return &Result{From: st.LastSettledBlock, To: st.LastSettledBlock}, nil
	}
	res := &Result{
		From:    st.LastSettledBlock,
		To:      current,
		Visited: st.Len(),
	}

	segments := e.segments(st, current)
	accounts := st.Accounts()
	balances := make([]uint256.Int, len(accounts))
	var pending uint256.Int

	for i, acc := range accounts {
		credit, err := e.accrue(st, &acc.Balance, segments)
		if err != nil {
			return nil, errors.Wrapf(err, "settle %v", acc.Address)
		}
		if _, overflow := balances[i].AddOverflow(&acc.Balance, credit); overflow {
			return nil, errors.Wrapf(precision.ErrOverflow, "balance of %v", acc.Address)
		}
		if !credit.IsZero() {
			res.Credited++
			if _, overflow := res.Minted.AddOverflow(&res.Minted, credit); overflow {
				return nil, errors.Wrap(precision.ErrOverflow, "minted total")
			}
		}
		if _, overflow := pending.AddOverflow(&pending, &balances[i]); overflow {
			return nil, errors.Wrap(precision.ErrOverflow, "pending total staked")
		}
	}

	// all arithmetic succeeded, apply
	for i, acc := range accounts {
		st.SetBalance(acc, &balances[i])
	}
	st.PendingTotalStaked = pending
	st.TotalStaked = st.PendingTotalStaked
	st.PendingTotalStaked.Clear()
	st.LastSettledBlock = current

	logger.Trace("settled", "from", res.From, "to", res.To, "visited", res.Visited, "credited", res.Credited, "minted", &res.Minted)
	return res, nil
}

// Preview returns the balance addr would have after settling st to block current,
// without modifying st.
func (e *Engine) Preview(st *state.State, addr thor.Address, current uint64) (*uint256.Int, error) {
	acc, ok := st.Account(addr)
	if !ok {
		return nil, errors.Errorf("unknown participant %v", addr)
	}
	balance := new(uint256.Int).Set(&acc.Balance)
	if current <= st.LastSettledBlock {
		return balance, nil
	}
	credit, err := e.accrue(st, balance, e.segments(st, current))
	if err != nil {
		return nil, err
	}
	return precision.Add(balance, credit)
}

func (e *Engine) segments(st *state.State, current uint64) []schedule.Segment {
	return e.schedule.Segments(st.LastSettledBlock-st.EpochStartBlock, current-st.EpochStartBlock)
}

// accrue returns the reward a balance earns over the segments.
func (e *Engine) accrue(st *state.State, balance *uint256.Int, segments []schedule.Segment) (*uint256.Int, error) {
	credit := new(uint256.Int)
	if balance.IsZero() || st.TotalRewardPotRemaining.IsZero() || st.TotalStaked.IsZero() {
		return credit, nil
	}
	share, err := precision.ScaledShare(balance, &st.TotalStaked, &e.scale)
	if err != nil {
		return nil, err
	}
	for _, seg := range segments {
		reward, err := precision.Reward(share, &seg.Rate, &e.scale, seg.Blocks)
		if err != nil {
			return nil, err
		}
		if credit, err = precision.Add(credit, reward); err != nil {
			return nil, err
		}
	}
	return credit, nil
}
