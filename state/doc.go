// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state holds the reward pool ledger state: global totals, the
// participant registry and per-participant balances.
//
// A State is owned by exactly one writer. Mutations are applied to a Copy and
// the copy replaces the original only after it has been persisted:
//
//	committed state --Copy--> working state --settle/apply--> Commit --> committed state
//
// Dropping the working copy is the rollback.
package state
