// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math"

	"github.com/holiman/uint256"

	"github.com/vechain/rewardpool/metrics"
)

var (
	metricOperations         = metrics.LazyLoadCounterVec("ledger_operations_count", []string{"op", "result"})
	metricSettlementDuration = metrics.LazyLoadHistogram("ledger_settlement_duration_ms", metrics.BucketSettlementMs)
	metricVisitedAccounts    = metrics.LazyLoadCounter("ledger_settlement_visited_accounts_count")
	metricParticipants       = metrics.LazyLoadGauge("ledger_participants")
	metricTotals             = metrics.LazyLoadGaugeVec("ledger_totals", []string{"kind"})
)

// setAmountGauge reports an amount, saturating at the gauge's int64 range.
func setAmountGauge(kind string, amount *uint256.Int) {
	v := int64(math.MaxInt64)
	if amount.IsUint64() && amount.Uint64() <= math.MaxInt64 {
		v = int64(amount.Uint64())
	}
	metricTotals().SetWithLabel(v, map[string]string{"kind": kind})
}
