// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vechain/rewardpool/metrics"
	"github.com/vechain/rewardpool/thor"
)

const testConfig = `
name: cmd-test
precisionScale: 1000000
phases:
  - {rate: 10, limit: 5}
  - {rate: 4, limit: 15}
allocations:
  - address: "0xf077b491b355E64048cE21E3A6Fc4751eEeA77fa"
    amount: 1000000
`

const testAddr = "0xf077b491b355E64048cE21E3A6Fc4751eEeA77fa"

func run(t *testing.T, args ...string) error {
	return newApp().Run(append([]string{"rewardpool"}, args...))
}

func TestParseAmount(t *testing.T) {
	v, err := parseAmount("1000")
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), v.Uint64())

	v, err = parseAmount("0x10")
	require.NoError(t, err)
	assert.Equal(t, uint64(16), v.Uint64())

	_, err = parseAmount("ten")
	assert.Error(t, err)
	_, err = parseAmount("-1")
	assert.Error(t, err)
}

func TestCommands(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "pool")
	cfgPath := filepath.Join(t.TempDir(), "pool.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(testConfig), 0o600))

	assert.Error(t, run(t, "status", "--data-dir", dir), "not initialized")
	assert.Error(t, run(t, "init", "--data-dir", dir), "no config given")

	require.NoError(t, run(t, "init", "--data-dir", dir, "--config", cfgPath, "--verbosity", "0"))
	assert.Error(t, run(t, "init", "--data-dir", dir, "--dev"), "already initialized")

	assert.Error(t, run(t, "deposit", "--data-dir", dir, "--address", testAddr, "--amount", "1000000"), "block required")
	require.NoError(t, run(t, "deposit", "--data-dir", dir, "--block", "0", "--address", testAddr, "--amount", "1000000"))
	require.NoError(t, run(t, "settle", "--data-dir", dir, "--block", "8"))
	require.NoError(t, run(t, "balance", "--data-dir", dir, "--address", testAddr, "--block", "9"))
	require.NoError(t, run(t, "status", "--data-dir", dir))
	require.NoError(t, run(t, "faucet", "--data-dir", dir, "--address", testAddr, "--amount", "5"))

	p, err := openPool(dir, noBlock)
	require.NoError(t, err)
	addr := thor.MustParseAddress(testAddr)
	bal, err := p.ledger.GetBalance(addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_062), bal.Uint64())
	funds, err := p.vault.BalanceOf(addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), funds.Uint64())
	p.Close()

	require.NoError(t, run(t, "withdraw", "--data-dir", dir, "--block", "8", "--address", testAddr, "--amount", "62"))
	require.NoError(t, run(t, "withdraw", "--data-dir", dir, "--block", "8", "--address", testAddr))

	p, err = openPool(dir, noBlock)
	require.NoError(t, err)
	defer p.Close()
	bal, err = p.ledger.GetBalance(addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(62), bal.Uint64(), "the pot caps the payout")
	funds, err = p.vault.BalanceOf(addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_005), funds.Uint64())
}

func TestMetricsServer(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	metrics.InitializePrometheusMetrics()
	metrics.Counter("cmd_test_count").Add(3)

	url, closeFunc, err := startMetricsServer("localhost:0")
	require.NoError(t, err)
	defer closeFunc()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	res, err := client.Get(url)
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	res.Body.Close()
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), "rewardpool_cmd_test_count 3")
}
