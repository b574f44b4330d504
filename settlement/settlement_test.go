// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package settlement

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/rewardpool/precision"
	"github.com/vechain/rewardpool/schedule"
	"github.com/vechain/rewardpool/state"
	"github.com/vechain/rewardpool/thor"
)

var (
	alice = thor.BytesToAddress([]byte("alice"))
	bob   = thor.BytesToAddress([]byte("bob"))
	carol = thor.BytesToAddress([]byte("carol"))
)

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }

func phase(rate, limit uint64) schedule.Phase {
	return schedule.Phase{Rate: *u(rate), Limit: limit}
}

func newEngine(t *testing.T, scale uint64, phases ...schedule.Phase) *Engine {
	e, err := New(schedule.MustNew(phases...), u(scale))
	require.NoError(t, err)
	return e
}

// stake registers balances directly, as a deposit would after settling.
func stake(st *state.State, addr thor.Address, amount uint64) {
	acc := st.Register(addr)
	st.SetBalance(acc, new(uint256.Int).Add(&acc.Balance, u(amount)))
	st.TotalStaked.Add(&st.TotalStaked, u(amount))
	st.TotalRewardPotRemaining.Add(&st.TotalRewardPotRemaining, u(amount))
}

func balanceOf(t *testing.T, st *state.State, addr thor.Address) uint64 {
	acc, ok := st.Account(addr)
	require.True(t, ok)
	return acc.Balance.Uint64()
}

func assertConserved(t *testing.T, st *state.State) {
	sum, overflow := st.SumBalances()
	require.False(t, overflow)
	assert.Equal(t, st.TotalStaked, sum)
	assert.True(t, st.PendingTotalStaked.IsZero())
}

func TestNew(t *testing.T) {
	_, err := New(nil, u(1))
	assert.Error(t, err)

	_, err = New(schedule.MustNew(phase(1, 1)), u(0))
	assert.ErrorIs(t, err, precision.ErrDivisionByZero)

	e := newEngine(t, 1e6, phase(1, 1))
	assert.Equal(t, u(1e6), e.Scale())
	assert.Equal(t, 1, e.Schedule().Len())
}

func TestSettleAcrossBoundary(t *testing.T) {
	e := newEngine(t, 1e6, phase(10, 5), phase(4, 15))
	st := state.New(0)
	stake(st, alice, 1_000_000)

	res, err := e.Settle(st, 8)
	require.NoError(t, err)

	// 5 blocks at 10 plus 3 blocks at 4
	assert.Equal(t, uint64(1_000_062), balanceOf(t, st, alice))
	assert.Equal(t, uint64(8), st.LastSettledBlock)
	assert.Equal(t, 1, res.Visited)
	assert.Equal(t, 1, res.Credited)
	assert.Equal(t, u(62), &res.Minted)
	assertConserved(t, st)
}

func TestSettleWithinPhase(t *testing.T) {
	e := newEngine(t, 1e6, phase(10, 5), phase(4, 15))
	st := state.New(100)
	stake(st, alice, 1_000_000)

	_, err := e.Settle(st, 103)
	require.NoError(t, err)

	share, _ := precision.ScaledShare(u(1_000_000), u(1_000_000), u(1e6))
	want, _ := precision.Reward(share, u(10), u(1e6), 3)
	assert.Equal(t, 1_000_000+want.Uint64(), balanceOf(t, st, alice))
}

func TestSettleTwoBlocksAroundBoundary(t *testing.T) {
	e := newEngine(t, 1e6, phase(10, 5), phase(4, 15))
	st := state.New(0)
	st.LastSettledBlock = 3
	stake(st, alice, 1_000_000)

	_, err := e.Settle(st, 7)
	require.NoError(t, err)
	// 2 blocks at 10, 2 blocks at 4
	assert.Equal(t, uint64(1_000_028), balanceOf(t, st, alice))
}

func TestSettleSeveralBoundaries(t *testing.T) {
	e := newEngine(t, 1e6, phase(10, 5), phase(4, 15), phase(2, 20))
	st := state.New(0)
	stake(st, alice, 1_000_000)

	_, err := e.Settle(st, 30)
	require.NoError(t, err)
	// 5*10 + 10*4 + 5*2, nothing past the horizon
	assert.Equal(t, uint64(1_000_100), balanceOf(t, st, alice))
}

func TestSettleProportional(t *testing.T) {
	e := newEngine(t, 1e6, phase(100, 1000))
	st := state.New(0)
	stake(st, alice, 1000)
	stake(st, bob, 1000)
	stake(st, carol, 2000)

	_, err := e.Settle(st, 10)
	require.NoError(t, err)

	aliceReward := balanceOf(t, st, alice) - 1000
	bobReward := balanceOf(t, st, bob) - 1000
	carolReward := balanceOf(t, st, carol) - 2000

	assert.Equal(t, uint64(250), aliceReward)
	assert.Equal(t, aliceReward, bobReward)
	assert.Equal(t, 2*aliceReward, carolReward)
	assertConserved(t, st)
}

func TestSettleIdempotent(t *testing.T) {
	e := newEngine(t, 1e6, phase(10, 50))
	st := state.New(0)
	stake(st, alice, 500)
	stake(st, bob, 1500)

	_, err := e.Settle(st, 20)
	require.NoError(t, err)
	snapshot := st.Copy()

	res, err := e.Settle(st, 20)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Visited)
	assert.Equal(t, snapshot, st)

	// going backwards is a no-op as well
	_, err = e.Settle(st, 10)
	require.NoError(t, err)
	assert.Equal(t, snapshot, st)
	assert.Equal(t, uint64(20), st.LastSettledBlock)
}

func TestSettleSkips(t *testing.T) {
	e := newEngine(t, 1e6, phase(10, 50))

	t.Run("empty pot", func(t *testing.T) {
		st := state.New(0)
		stake(st, alice, 1000)
		st.TotalRewardPotRemaining.Clear()

		res, err := e.Settle(st, 10)
		require.NoError(t, err)
		assert.Equal(t, uint64(1000), balanceOf(t, st, alice))
		assert.Equal(t, 0, res.Credited)
		assertConserved(t, st)
		assert.Equal(t, uint64(10), st.LastSettledBlock)
	})

	t.Run("zero balances", func(t *testing.T) {
		st := state.New(0)
		st.Register(alice)
		st.Register(bob)

		res, err := e.Settle(st, 10)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Visited)
		assert.Equal(t, 0, res.Credited)
		assert.True(t, st.TotalStaked.IsZero())
		assert.Equal(t, uint64(10), st.LastSettledBlock)
	})

	t.Run("past horizon", func(t *testing.T) {
		st := state.New(0)
		st.LastSettledBlock = 50
		stake(st, alice, 1000)

		_, err := e.Settle(st, 80)
		require.NoError(t, err)
		assert.Equal(t, uint64(1000), balanceOf(t, st, alice))
	})
}

func TestSettleOverflowLeavesStateUntouched(t *testing.T) {
	e := newEngine(t, 1e6, phase(10, 50))
	st := state.New(0)
	stake(st, alice, 10)

	huge := new(uint256.Int).Lsh(u(1), 250)
	acc := st.Register(bob)
	st.SetBalance(acc, huge)
	st.TotalStaked.Add(&st.TotalStaked, huge)
	st.TotalRewardPotRemaining.Set(huge)
	before := st.Copy()

	_, err := e.Settle(st, 10)
	assert.ErrorIs(t, err, precision.ErrOverflow)
	assert.Equal(t, before, st)
}

func TestSettleIgnoresLaterRegistrationOrder(t *testing.T) {
	e := newEngine(t, 1e6, phase(7, 100))

	st1 := state.New(0)
	stake(st1, alice, 300)
	stake(st1, bob, 700)

	st2 := state.New(0)
	stake(st2, bob, 700)
	stake(st2, alice, 300)

	_, err := e.Settle(st1, 9)
	require.NoError(t, err)
	_, err = e.Settle(st2, 9)
	require.NoError(t, err)

	assert.Equal(t, balanceOf(t, st1, alice), balanceOf(t, st2, alice))
	assert.Equal(t, balanceOf(t, st1, bob), balanceOf(t, st2, bob))
	assert.Equal(t, st1.TotalStaked, st2.TotalStaked)
}

func TestPreview(t *testing.T) {
	e := newEngine(t, 1e6, phase(10, 5), phase(4, 15))
	st := state.New(0)
	stake(st, alice, 1_000_000)
	stake(st, bob, 3_000_000)
	before := st.Copy()

	preview, err := e.Preview(st, bob, 8)
	require.NoError(t, err)
	assert.Equal(t, before, st)

	current, err := e.Preview(st, bob, 0)
	require.NoError(t, err)
	assert.Equal(t, u(3_000_000), current)

	_, err = e.Settle(st, 8)
	require.NoError(t, err)
	assert.Equal(t, preview.Uint64(), balanceOf(t, st, bob))

	_, err = e.Preview(st, carol, 9)
	assert.Error(t, err)
}
