// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"time"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/rewardpool/log"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:   "data-dir",
		Value:  defaultDataDir(),
		Usage:  "directory for the pool database and config",
		EnvVar: "REWARDPOOL_DATA_DIR",
	}
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to the pool config (YAML)",
	}
	devFlag = cli.BoolFlag{
		Name:  "dev",
		Usage: "use the built-in development config",
	}
	blockFlag = cli.Uint64Flag{
		Name:  "block",
		Usage: "current block height",
	}
	addressFlag = cli.StringFlag{
		Name:  "address",
		Usage: "participant address",
	}
	amountFlag = cli.StringFlag{
		Name:  "amount",
		Usage: "amount in base units, decimal or 0x-prefixed hex",
	}
	verbosityFlag = cli.Uint64Flag{
		Name:   "verbosity",
		Value:  log.LegacyLevelInfo,
		Usage:  "log verbosity (0-5)",
		EnvVar: "REWARDPOOL_VERBOSITY",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
	blockIntervalFlag = cli.DurationFlag{
		Name:  "block-interval",
		Value: 10 * time.Second,
		Usage: "interval between blocks produced by the local clock",
	}
)
