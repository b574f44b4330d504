// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package vault keeps the external balances the reward pool draws deposits from
// and pays withdrawals to. The pool's own holdings sit on a custody address.
package vault

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/rewardpool/cache"
	"github.com/vechain/rewardpool/kv"
	"github.com/vechain/rewardpool/log"
	"github.com/vechain/rewardpool/thor"
)

var logger = log.WithContext("pkg", "vault")

// ErrInsufficientFunds is returned when the sender holds less than the amount moved.
var ErrInsufficientFunds = errors.New("insufficient funds")

const (
	balanceCacheSize    = 4096
	statsReportInterval = 20 * time.Second
)

// Vault is a kv backed balance book. It is safe for concurrent use.
type Vault struct {
	mu      sync.Mutex
	store   kv.Store
	custody thor.Address
	cache   *cache.LRU[thor.Address, uint256.Int]

	lastReport atomic.Int64
}

// New creates a vault over store. custody holds the value transferred in.
func New(store kv.Store, custody thor.Address) (*Vault, error) {
	c, err := cache.NewLRU[thor.Address, uint256.Int](balanceCacheSize)
	if err != nil {
		return nil, err
	}
	return &Vault{
		store:   store,
		custody: custody,
		cache:   c,
	}, nil
}

// Custody returns the address holding transferred-in value.
func (v *Vault) Custody() thor.Address {
	return v.custody
}

// BalanceOf returns the balance of addr. Unknown addresses hold zero.
func (v *Vault) BalanceOf(addr thor.Address) (*uint256.Int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	bal, err := v.balance(addr)
	if err != nil {
		return nil, err
	}
	return &bal, nil
}

// Credit mints amount to addr.
func (v *Vault) Credit(addr thor.Address, amount *uint256.Int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	bal, err := v.balance(addr)
	if err != nil {
		return err
	}
	if _, overflow := bal.AddOverflow(&bal, amount); overflow {
		return errors.Errorf("credit %v: balance overflow", addr)
	}

	bulk := v.store.Bulk()
	if err := putBalance(bulk, addr, &bal); err != nil {
		return err
	}
	if err := bulk.Write(); err != nil {
		return errors.Wrap(err, "write balance")
	}
	v.cache.Add(addr, bal)
	logger.Debug("credited", "account", addr, "amount", amount, "balance", &bal)
	return nil
}

// TransferIn moves amount from an account into custody.
func (v *Vault) TransferIn(from thor.Address, amount *uint256.Int) error {
	return v.move(from, v.custody, amount)
}

// TransferOut moves amount out of custody to an account.
func (v *Vault) TransferOut(to thor.Address, amount *uint256.Int) error {
	return v.move(v.custody, to, amount)
}

// Iterate calls fn for every non-empty balance in address order, stopping at the first error.
func (v *Vault) Iterate(fn func(addr thor.Address, balance *uint256.Int) error) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	iter := v.store.Iterate(kv.Range{})
	defer iter.Release()

	for iter.Next() {
		var bal uint256.Int
		if err := rlp.DecodeBytes(iter.Value(), &bal); err != nil {
			return errors.Wrap(err, "decode balance")
		}
		if bal.IsZero() {
			continue
		}
		if err := fn(thor.BytesToAddress(iter.Key()), &bal); err != nil {
			return err
		}
	}
	return iter.Error()
}

func (v *Vault) move(from, to thor.Address, amount *uint256.Int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if from == to {
		return errors.New("transfer to self")
	}
	src, err := v.balance(from)
	if err != nil {
		return err
	}
	if src.Lt(amount) {
		return errors.Wrapf(ErrInsufficientFunds, "%v has %v, needs %v", from, &src, amount)
	}
	dst, err := v.balance(to)
	if err != nil {
		return err
	}
	src.Sub(&src, amount)
	if _, overflow := dst.AddOverflow(&dst, amount); overflow {
		return errors.Errorf("transfer to %v: balance overflow", to)
	}

	bulk := v.store.Bulk()
	if err := putBalance(bulk, from, &src); err != nil {
		return err
	}
	if err := putBalance(bulk, to, &dst); err != nil {
		return err
	}
	if err := bulk.Write(); err != nil {
		v.cache.Remove(from)
		v.cache.Remove(to)
		return errors.Wrap(err, "write balances")
	}
	v.cache.Add(from, src)
	v.cache.Add(to, dst)
	return nil
}

// CacheStats publishes and returns the balance cache hits and misses.
func (v *Vault) CacheStats() (hit, miss int64) {
	changed, hit, miss := v.cache.Stats().Stats()
	if changed {
		logger.Debug("balance cache stats", "hit", hit, "miss", miss)
	}
	metricCacheHitMiss().SetWithLabel(hit, map[string]string{"event": "hit"})
	metricCacheHitMiss().SetWithLabel(miss, map[string]string{"event": "miss"})
	return hit, miss
}

func (v *Vault) balance(addr thor.Address) (uint256.Int, error) {
	now := time.Now().UnixNano()
	if now-v.lastReport.Load() > int64(statsReportInterval) {
		v.lastReport.Store(now)
		defer v.CacheStats()
	}
	return v.cache.GetOrLoad(addr, func(addr thor.Address) (uint256.Int, error) {
		var bal uint256.Int
		data, err := v.store.Get(addr.Bytes())
		if err != nil {
			if v.store.IsNotFound(err) {
				return bal, nil
			}
			return bal, errors.Wrapf(err, "get balance %v", addr)
		}
		if err := rlp.DecodeBytes(data, &bal); err != nil {
			return bal, errors.Wrapf(err, "decode balance %v", addr)
		}
		return bal, nil
	})
}

func putBalance(w kv.Putter, addr thor.Address, bal *uint256.Int) error {
	data, err := rlp.EncodeToBytes(bal)
	if err != nil {
		return errors.Wrapf(err, "encode balance %v", addr)
	}
	return w.Put(addr.Bytes(), data)
}
