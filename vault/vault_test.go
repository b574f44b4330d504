// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/rewardpool/kv"
	"github.com/vechain/rewardpool/lvldb"
	"github.com/vechain/rewardpool/thor"
)

var (
	alice = thor.BytesToAddress([]byte("alice"))
	bob   = thor.BytesToAddress([]byte("bob"))
)

func newVault(t *testing.T) (*Vault, kv.Store) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := kv.Bucket("v").NewStore(db)
	v, err := New(store, thor.PotCustodyAddress)
	require.NoError(t, err)
	return v, store
}

func TestCreditAndBalance(t *testing.T) {
	v, _ := newVault(t)

	bal, err := v.BalanceOf(alice)
	require.NoError(t, err)
	assert.True(t, bal.IsZero())

	require.NoError(t, v.Credit(alice, uint256.NewInt(100)))
	require.NoError(t, v.Credit(alice, uint256.NewInt(50)))

	bal, err = v.BalanceOf(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(150), bal.Uint64())
}

func TestTransfer(t *testing.T) {
	v, _ := newVault(t)
	require.NoError(t, v.Credit(alice, uint256.NewInt(100)))

	require.NoError(t, v.TransferIn(alice, uint256.NewInt(60)))
	custody, _ := v.BalanceOf(v.Custody())
	assert.Equal(t, uint64(60), custody.Uint64())

	err := v.TransferIn(alice, uint256.NewInt(41))
	assert.True(t, errors.Is(err, ErrInsufficientFunds))
	bal, _ := v.BalanceOf(alice)
	assert.Equal(t, uint64(40), bal.Uint64(), "failed transfer has no effect")

	require.NoError(t, v.TransferOut(bob, uint256.NewInt(60)))
	bal, _ = v.BalanceOf(bob)
	assert.Equal(t, uint64(60), bal.Uint64())
	custody, _ = v.BalanceOf(v.Custody())
	assert.True(t, custody.IsZero())

	assert.True(t, errors.Is(v.TransferOut(bob, uint256.NewInt(1)), ErrInsufficientFunds))
}

func TestPersistence(t *testing.T) {
	v, store := newVault(t)
	require.NoError(t, v.Credit(alice, uint256.NewInt(7)))
	require.NoError(t, v.TransferIn(alice, uint256.NewInt(3)))

	reopened, err := New(store, thor.PotCustodyAddress)
	require.NoError(t, err)

	bal, err := reopened.BalanceOf(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), bal.Uint64())

	got := map[thor.Address]uint64{}
	require.NoError(t, reopened.Iterate(func(addr thor.Address, balance *uint256.Int) error {
		got[addr] = balance.Uint64()
		return nil
	}))
	assert.Equal(t, map[thor.Address]uint64{alice: 4, thor.PotCustodyAddress: 3}, got)
}

func TestCacheStats(t *testing.T) {
	v, _ := newVault(t)

	_, err := v.BalanceOf(alice)
	require.NoError(t, err)
	_, err = v.BalanceOf(alice)
	require.NoError(t, err)

	hit, miss := v.CacheStats()
	assert.Equal(t, int64(1), hit)
	assert.Equal(t, int64(1), miss)
}
