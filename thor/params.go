// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import "github.com/holiman/uint256"

// Constants of the reward pool.
const (
	DefaultPrecisionDecimals = 12 // share fractions are scaled by 10^12
)

var (
	// DefaultPrecisionScale is the fixed-point multiplier used for proportional shares.
	DefaultPrecisionScale = new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(DefaultPrecisionDecimals))

	// PotCustodyAddress is the vault account holding deposited value on behalf of the pool.
	PotCustodyAddress = BytesToAddress([]byte("reward-pool"))
)
