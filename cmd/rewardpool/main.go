// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// rewardpool manages a phased proportional reward pool stored in a local data dir.
package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func newApp() *cli.App {
	common := []cli.Flag{dataDirFlag, verbosityFlag, jsonLogsFlag}
	with := func(flags ...cli.Flag) []cli.Flag {
		return append(append([]cli.Flag{}, common...), flags...)
	}

	app := cli.NewApp()
	app.Name = "rewardpool"
	app.Usage = "Phased proportional reward pool"
	app.Version = fullVersion()
	app.Copyright = "2025 VeChain Foundation <https://vechain.org/>"
	app.Commands = []cli.Command{
		{
			Name:   "init",
			Usage:  "initialize a data dir from a config",
			Flags:  with(configFlag, devFlag),
			Action: initAction,
		},
		{
			Name:   "deposit",
			Usage:  "stake an amount from the participant's wallet",
			Flags:  with(blockFlag, addressFlag, amountFlag),
			Action: depositAction,
		},
		{
			Name:   "withdraw",
			Usage:  "withdraw the whole balance, or -amount of it",
			Flags:  with(blockFlag, addressFlag, amountFlag),
			Action: withdrawAction,
		},
		{
			Name:   "balance",
			Usage:  "show a participant's balance; with -block also the accrued balance",
			Flags:  with(blockFlag, addressFlag),
			Action: balanceAction,
		},
		{
			Name:   "settle",
			Usage:  "settle the pool up to -block",
			Flags:  with(blockFlag),
			Action: settleAction,
		},
		{
			Name:   "status",
			Usage:  "show pool totals, schedule and participants",
			Flags:  with(),
			Action: statusAction,
		},
		{
			Name:   "faucet",
			Usage:  "credit a wallet",
			Flags:  with(addressFlag, amountFlag),
			Action: faucetAction,
		},
		{
			Name:   "serve",
			Usage:  "run a local block clock settling the pool every block",
			Flags:  with(blockFlag, blockIntervalFlag, enableMetricsFlag, metricsAddrFlag),
			Action: serveAction,
		},
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
