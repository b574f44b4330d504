// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/rewardpool/kv"
)

func TestLevelDB(t *testing.T) {
	persistent, err := New(filepath.Join(t.TempDir(), "db"), Options{16, 16})
	require.NoError(t, err)
	defer persistent.Close()

	mem, err := NewMem()
	require.NoError(t, err)
	defer mem.Close()

	for _, db := range []*LevelDB{persistent, mem} {
		assert.NoError(t, db.Put([]byte("123"), []byte("456")))

		val, err := db.Get([]byte("123"))
		assert.NoError(t, err)
		assert.Equal(t, []byte("456"), val)

		has, err := db.Has([]byte("123"))
		assert.NoError(t, err)
		assert.True(t, has)

		has, err = db.Has([]byte("abc"))
		assert.NoError(t, err)
		assert.False(t, has)

		assert.NoError(t, db.Delete([]byte("123")))
		_, err = db.Get([]byte("123"))
		assert.True(t, db.IsNotFound(err))
	}
}

func TestLevelDBBulkAndIterate(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	bulk := db.Bulk()
	assert.NoError(t, bulk.Put([]byte("a1"), []byte("x")))
	assert.NoError(t, bulk.Put([]byte("a2"), []byte("y")))
	assert.NoError(t, bulk.Put([]byte("b1"), []byte("z")))
	assert.Equal(t, 3, bulk.Len())

	// nothing visible before write
	has, _ := db.Has([]byte("a1"))
	assert.False(t, has)
	require.NoError(t, bulk.Write())

	iter := db.Iterate(kv.Range{Start: []byte("a"), Limit: []byte("b")})
	defer iter.Release()
	var keys []string
	for iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	assert.NoError(t, iter.Error())
	assert.Equal(t, []string{"a1", "a2"}, keys)
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")
	db, err := New(path, Options{})
	require.NoError(t, err)
	require.NoError(t, db.Put([]byte("k"), []byte("v")))
	require.NoError(t, db.Close())

	db, err = New(path, Options{})
	require.NoError(t, err)
	defer db.Close()
	val, err := db.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)
}
