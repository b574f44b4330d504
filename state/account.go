// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/holiman/uint256"

	"github.com/vechain/rewardpool/thor"
)

// Account is a participant's merged principal and credited rewards.
type Account struct {
	Address thor.Address
	Balance uint256.Int
}

// accountRecord is the RLP form of an account, keyed by address.
type accountRecord struct {
	Index   uint64 // position in the registry
	Balance *uint256.Int
}

// stateRecord is the RLP form of the global totals.
type stateRecord struct {
	EpochStartBlock         uint64
	LastSettledBlock        uint64
	TotalStaked             *uint256.Int
	TotalRewardPotRemaining *uint256.Int
	Participants            uint64
}
