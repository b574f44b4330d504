// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/rewardpool/lvldb"
	"github.com/vechain/rewardpool/thor"
)

var (
	alice = thor.BytesToAddress([]byte("alice"))
	bob   = thor.BytesToAddress([]byte("bob"))
)

func TestRegister(t *testing.T) {
	s := New(10)
	assert.Equal(t, uint64(10), s.LastSettledBlock)

	a := s.Register(alice)
	s.Register(bob)
	assert.Same(t, a, s.Register(alice))
	assert.Equal(t, []thor.Address{alice, bob}, s.Participants())
	assert.Equal(t, 2, s.Len())

	_, ok := s.Account(thor.BytesToAddress([]byte("carol")))
	assert.False(t, ok)
}

func TestCopyIsIndependent(t *testing.T) {
	s := New(0)
	s.SetBalance(s.Register(alice), uint256.NewInt(5))
	s.TotalStaked.SetUint64(5)

	cpy := s.Copy()
	acc, _ := cpy.Account(alice)
	cpy.SetBalance(acc, uint256.NewInt(7))
	cpy.Register(bob)
	cpy.TotalStaked.SetUint64(7)

	orig, _ := s.Account(alice)
	assert.Equal(t, uint64(5), orig.Balance.Uint64())
	assert.Equal(t, uint64(5), s.TotalStaked.Uint64())
	assert.Equal(t, 1, s.Len())
	assert.Same(t, acc, cpy.Accounts()[0], "registry and index share accounts")
}

func TestSumBalances(t *testing.T) {
	s := New(0)
	s.SetBalance(s.Register(alice), uint256.NewInt(5))
	s.SetBalance(s.Register(bob), uint256.NewInt(6))
	sum, overflow := s.SumBalances()
	assert.False(t, overflow)
	assert.Equal(t, uint64(11), sum.Uint64())

	s.SetBalance(s.Register(bob), new(uint256.Int).SetAllOne())
	_, overflow = s.SumBalances()
	assert.True(t, overflow)
}

func TestCommitLoad(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	_, err = Load(db)
	assert.True(t, errors.Is(err, ErrNotInitialized))

	s := New(3)
	s.SetBalance(s.Register(alice), uint256.NewInt(100))
	s.SetBalance(s.Register(bob), uint256.NewInt(200))
	s.TotalStaked.SetUint64(300)
	s.TotalRewardPotRemaining.SetUint64(250)
	s.LastSettledBlock = 9
	assert.Equal(t, 2, s.DirtyAccounts())

	require.NoError(t, s.Commit(db))
	assert.Equal(t, 0, s.DirtyAccounts())

	loaded, err := Load(db)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)

	// only the changed account is rewritten
	acc, _ := loaded.Account(bob)
	loaded.SetBalance(acc, uint256.NewInt(201))
	loaded.SetBalance(acc, uint256.NewInt(201))
	assert.Equal(t, 1, loaded.DirtyAccounts())
	require.NoError(t, loaded.Commit(db))

	again, err := Load(db)
	require.NoError(t, err)
	acc, _ = again.Account(bob)
	assert.Equal(t, uint64(201), acc.Balance.Uint64())
	assert.Equal(t, []thor.Address{alice, bob}, again.Participants())
}
