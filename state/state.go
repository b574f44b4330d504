// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/holiman/uint256"

	"github.com/vechain/rewardpool/thor"
)

// State is the whole ledger: totals, registry and accounts.
type State struct {
	EpochStartBlock         uint64
	LastSettledBlock        uint64
	TotalStaked             uint256.Int
	TotalRewardPotRemaining uint256.Int
	// PendingTotalStaked accumulates new balances during a settlement pass, zero otherwise.
	PendingTotalStaked uint256.Int

	registry []*Account // insertion order
	index    map[thor.Address]*Account
	dirty    map[thor.Address]struct{}
}

// New creates an empty state whose epoch, and first settlement point, is epochStartBlock.
func New(epochStartBlock uint64) *State {
	return &State{
		EpochStartBlock:  epochStartBlock,
		LastSettledBlock: epochStartBlock,
		index:            make(map[thor.Address]*Account),
		dirty:            make(map[thor.Address]struct{}),
	}
}

// Copy returns a deep copy. Pending changes are carried over.
func (s *State) Copy() *State {
	cpy := &State{
		EpochStartBlock:         s.EpochStartBlock,
		LastSettledBlock:        s.LastSettledBlock,
		TotalStaked:             s.TotalStaked,
		TotalRewardPotRemaining: s.TotalRewardPotRemaining,
		PendingTotalStaked:      s.PendingTotalStaked,
		registry:                make([]*Account, 0, len(s.registry)),
		index:                   make(map[thor.Address]*Account, len(s.index)),
		dirty:                   make(map[thor.Address]struct{}, len(s.dirty)),
	}
	for _, acc := range s.registry {
		a := *acc
		cpy.registry = append(cpy.registry, &a)
		cpy.index[a.Address] = &a
	}
	for addr := range s.dirty {
		cpy.dirty[addr] = struct{}{}
	}
	return cpy
}

// Account returns the account of a known participant.
func (s *State) Account(addr thor.Address) (*Account, bool) {
	acc, ok := s.index[addr]
	return acc, ok
}

// Register returns the participant's account, appending a zero balance account to
// the registry if the participant is new.
func (s *State) Register(addr thor.Address) *Account {
	if acc, ok := s.index[addr]; ok {
		return acc
	}
	acc := &Account{Address: addr}
	s.registry = append(s.registry, acc)
	s.index[addr] = acc
	s.dirty[addr] = struct{}{}
	return acc
}

// SetBalance updates an account's balance.
func (s *State) SetBalance(acc *Account, balance *uint256.Int) {
	if acc.Balance.Eq(balance) {
		return
	}
	acc.Balance.Set(balance)
	s.dirty[acc.Address] = struct{}{}
}

// Len returns the number of registered participants.
func (s *State) Len() int {
	return len(s.registry)
}

// Accounts returns the registry in insertion order. The slice is shared, do not modify it.
func (s *State) Accounts() []*Account {
	return s.registry
}

// Participants returns a copy of the registered addresses in insertion order.
func (s *State) Participants() []thor.Address {
	addrs := make([]thor.Address, 0, len(s.registry))
	for _, acc := range s.registry {
		addrs = append(addrs, acc.Address)
	}
	return addrs
}

// SumBalances returns the sum of all balances and whether it overflowed.
func (s *State) SumBalances() (uint256.Int, bool) {
	var sum uint256.Int
	for _, acc := range s.registry {
		if _, overflow := sum.AddOverflow(&sum, &acc.Balance); overflow {
			return sum, true
		}
	}
	return sum, false
}
