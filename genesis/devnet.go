// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/holiman/uint256"

	"github.com/vechain/rewardpool/thor"
)

// DevAccounts are pre-funded by DevConfig.
var DevAccounts = []thor.Address{
	thor.MustParseAddress("0xf077b491b355E64048cE21E3A6Fc4751eEeA77fa"),
	thor.MustParseAddress("0x435933c8064b4Ae76bE665428e0307eF2cCFBD68"),
	thor.MustParseAddress("0x0F872421Dc479F3c11eDd89512731814D0598dB5"),
}

// DevConfig returns a config for local testing: a halving rate over three phases
// and a million tokens for each dev account.
func DevConfig() *Config {
	ether := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(18))
	amount := func(n uint64) HexOrDecimal256 {
		return HexOrDecimal256(*new(uint256.Int).Mul(uint256.NewInt(n), ether))
	}

	cfg := &Config{
		Name: "devnet",
		Phases: []Phase{
			{Rate: amount(40), Limit: 100_000},
			{Rate: amount(20), Limit: 200_000},
			{Rate: amount(10), Limit: 400_000},
		},
	}
	for _, addr := range DevAccounts {
		cfg.Allocations = append(cfg.Allocations, Allocation{Address: addr, Amount: amount(1_000_000)})
	}
	return cfg
}
