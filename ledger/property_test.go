// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"errors"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/rewardpool/thor"
)

type randomOp struct {
	Kind    uint8
	Who     uint8
	Amount  uint32
	Advance uint8
}

func TestRandomOperationsConserve(t *testing.T) {
	for seed := int64(1); seed <= 8; seed++ {
		env := newEnv(t)
		who := []thor.Address{alice, bob, carol}
		for _, addr := range who {
			env.fund(t, addr, u(1<<40))
		}
		l := env.open(t, nil)

		f := fuzz.NewWithSeed(seed).NilChance(0)
		lastSettled := l.LastSettledBlock()
		for i := 0; i < 200; i++ {
			var op randomOp
			f.Fuzz(&op)

			env.height.Add(uint64(op.Advance % 4))
			addr := who[int(op.Who)%len(who)]
			amount := uint256.NewInt(uint64(op.Amount%100_000) + 1)

			var err error
			switch op.Kind % 5 {
			case 0, 1:
				err = l.Deposit(addr, amount)
			case 2:
				_, err = l.Withdraw(addr)
			case 3:
				_, err = l.WithdrawPartial(addr, amount)
			case 4:
				_, err = l.RequestSettlement()
			}
			if err != nil {
				require.True(t,
					errors.Is(err, ErrUnknownParticipant) || errors.Is(err, ErrNothingToWithdraw),
					"seed %d: unexpected error %v", seed, err)
				continue
			}

			assert.GreaterOrEqual(t, l.LastSettledBlock(), lastSettled, "seed %d", seed)
			assert.LessOrEqual(t, l.LastSettledBlock(), env.height.Load(), "seed %d", seed)
			lastSettled = l.LastSettledBlock()
			assertConserved(t, env, l)
		}
	}
}
