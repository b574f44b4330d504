// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/rewardpool/kv"
	"github.com/vechain/rewardpool/thor"
)

var (
	metaKey        = []byte("state")
	accountsBucket = kv.Bucket("a")
	registryBucket = kv.Bucket("r")
)

// ErrNotInitialized is returned by Load when the store holds no ledger.
var ErrNotInitialized = errors.New("ledger state not initialized")

func registryKey(i uint64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], i)
	return k[:]
}

// Load reads a state previously written by Commit.
func Load(store kv.Store) (*State, error) {
	data, err := store.Get(metaKey)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrNotInitialized
		}
		return nil, errors.Wrap(err, "get state")
	}
	var meta stateRecord
	if err := rlp.DecodeBytes(data, &meta); err != nil {
		return nil, errors.Wrap(err, "decode state")
	}

	s := New(meta.EpochStartBlock)
	s.LastSettledBlock = meta.LastSettledBlock
	if meta.TotalStaked != nil {
		s.TotalStaked = *meta.TotalStaked
	}
	if meta.TotalRewardPotRemaining != nil {
		s.TotalRewardPotRemaining = *meta.TotalRewardPotRemaining
	}

	registry := registryBucket.NewGetter(store)
	accounts := accountsBucket.NewGetter(store)
	for i := uint64(0); i < meta.Participants; i++ {
		raw, err := registry.Get(registryKey(i))
		if err != nil {
			return nil, errors.Wrapf(err, "get registry entry #%d", i)
		}
		addr := thor.BytesToAddress(raw)

		data, err := accounts.Get(addr.Bytes())
		if err != nil {
			return nil, errors.Wrapf(err, "get account %v", addr)
		}
		var rec accountRecord
		if err := rlp.DecodeBytes(data, &rec); err != nil {
			return nil, errors.Wrapf(err, "decode account %v", addr)
		}
		if rec.Index != i {
			return nil, errors.Errorf("account %v registered at #%d, recorded #%d", addr, i, rec.Index)
		}
		acc := s.Register(addr)
		if rec.Balance != nil {
			acc.Balance = *rec.Balance
		}
	}
	s.clean()
	return s, nil
}

// Commit writes the totals and every account changed since the state was
// loaded or last committed in a single atomic bulk.
func (s *State) Commit(store kv.Store) error {
	bulk := store.Bulk()
	registry := registryBucket.NewPutter(bulk)
	accounts := accountsBucket.NewPutter(bulk)

	positions := make(map[thor.Address]uint64, len(s.dirty))
	for i, acc := range s.registry {
		if _, ok := s.dirty[acc.Address]; ok {
			positions[acc.Address] = uint64(i)
		}
	}
	for addr, i := range positions {
		acc := s.index[addr]
		data, err := rlp.EncodeToBytes(&accountRecord{Index: i, Balance: &acc.Balance})
		if err != nil {
			return errors.Wrapf(err, "encode account %v", addr)
		}
		if err := accounts.Put(addr.Bytes(), data); err != nil {
			return err
		}
		if err := registry.Put(registryKey(i), addr.Bytes()); err != nil {
			return err
		}
	}

	{
		data, err := rlp.EncodeToBytes(&stateRecord{
			EpochStartBlock:         s.EpochStartBlock,
			LastSettledBlock:        s.LastSettledBlock,
			TotalStaked:             &s.TotalStaked,
			TotalRewardPotRemaining: &s.TotalRewardPotRemaining,
			Participants:            uint64(len(s.registry)),
		})
		if err != nil {
			return errors.Wrap(err, "encode state")
		}
		if err := bulk.Put(metaKey, data); err != nil {
			return err
		}
	}

	if err := bulk.Write(); err != nil {
		return errors.Wrap(err, "write state")
	}
	metricCommittedAccounts().Add(int64(len(positions)))
	s.clean()
	return nil
}

// DirtyAccounts returns the number of accounts changed since the last commit.
func (s *State) DirtyAccounts() int {
	return len(s.dirty)
}

func (s *State) clean() {
	clear(s.dirty)
}
