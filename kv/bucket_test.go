// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/rewardpool/kv"
	"github.com/vechain/rewardpool/lvldb"
)

func TestBucketGetPut(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	accounts := kv.Bucket("a").NewStore(db)
	require.NoError(t, accounts.Put([]byte("1"), []byte("v1")))

	val, err := db.Get([]byte("a1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), val)

	val, err = accounts.Get([]byte("1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), val)

	_, err = accounts.Get([]byte("2"))
	assert.True(t, accounts.IsNotFound(err))

	require.NoError(t, accounts.Delete([]byte("1")))
	has, err := db.Has([]byte("a1"))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestBucketBulkIterate(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Put([]byte("b0"), []byte("outside")))
	require.NoError(t, db.Put([]byte("c0"), []byte("outside")))

	bucket := kv.Bucket("bb").NewStore(db)
	bulk := bucket.Bulk()
	for _, k := range []string{"3", "1", "2"} {
		require.NoError(t, bulk.Put([]byte(k), []byte("v"+k)))
	}
	assert.Equal(t, 3, bulk.Len())
	require.NoError(t, bulk.Write())

	iter := bucket.Iterate(kv.Range{})
	defer iter.Release()
	var keys, vals []string
	for iter.Next() {
		keys = append(keys, string(iter.Key()))
		vals = append(vals, string(iter.Value()))
	}
	require.NoError(t, iter.Error())
	assert.Equal(t, []string{"1", "2", "3"}, keys)
	assert.Equal(t, []string{"v1", "v2", "v3"}, vals)
}
