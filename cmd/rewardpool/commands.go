// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/rewardpool/co"
	"github.com/vechain/rewardpool/genesis"
	"github.com/vechain/rewardpool/ledger"
	"github.com/vechain/rewardpool/log"
	"github.com/vechain/rewardpool/metrics"
	"github.com/vechain/rewardpool/thor"
)

func initAction(ctx *cli.Context) error {
	if err := initLogger(ctx); err != nil {
		return err
	}
	dir, err := dataDir(ctx)
	if err != nil {
		return err
	}

	var cfg *genesis.Config
	switch {
	case ctx.Bool(devFlag.Name):
		cfg = genesis.DevConfig()
	case ctx.String(configFlag.Name) != "":
		if cfg, err = genesis.Load(ctx.String(configFlag.Name)); err != nil {
			return err
		}
	default:
		return fmt.Errorf("either -%s or -%s is required", configFlag.Name, devFlag.Name)
	}

	cfgPath := filepath.Join(dir, configFileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("pool already initialized in %v", dir)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrapf(err, "create data dir at '%v'", dir)
	}

	p, err := openPoolWithConfig(dir, cfg, noBlock)
	if err != nil {
		return err
	}
	defer p.Close()

	for _, a := range cfg.Allocations {
		if err := p.vault.Credit(a.Address, a.Amount.Int()); err != nil {
			return errors.Wrapf(err, "allocate %v", a.Address)
		}
	}

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfgPath, data, 0o600); err != nil {
		return errors.Wrap(err, "write config")
	}
	log.Info("pool initialized", "dir", dir, "name", cfg.Name, "phases", len(cfg.Phases), "allocations", len(cfg.Allocations))
	return nil
}

// withPool opens the data dir with the height from -block, runs fn and closes the pool.
func withPool(ctx *cli.Context, needBlock bool, fn func(p *pool) error) error {
	if err := initLogger(ctx); err != nil {
		return err
	}
	dir, err := dataDir(ctx)
	if err != nil {
		return err
	}
	var blocks ledger.BlockSource = noBlock
	if needBlock {
		if blocks, err = fixedBlock(ctx); err != nil {
			return err
		}
	}
	p, err := openPool(dir, blocks)
	if err != nil {
		return err
	}
	defer p.Close()
	return fn(p)
}

func depositAction(ctx *cli.Context) error {
	addr, err := parseAddress(ctx)
	if err != nil {
		return err
	}
	amount, err := requireAmount(ctx)
	if err != nil {
		return err
	}
	return withPool(ctx, true, func(p *pool) error {
		if err := p.ledger.Deposit(addr, amount); err != nil {
			return err
		}
		return printBalance(p, addr)
	})
}

func withdrawAction(ctx *cli.Context) error {
	addr, err := parseAddress(ctx)
	if err != nil {
		return err
	}
	var amount *uint256.Int
	if ctx.IsSet(amountFlag.Name) {
		if amount, err = requireAmount(ctx); err != nil {
			return err
		}
	}
	return withPool(ctx, true, func(p *pool) error {
		var paid *uint256.Int
		if amount == nil {
			paid, err = p.ledger.Withdraw(addr)
		} else {
			paid, err = p.ledger.WithdrawPartial(addr, amount)
		}
		if err != nil {
			return err
		}
		fmt.Println("paid:", paid.Dec())
		return printBalance(p, addr)
	})
}

func balanceAction(ctx *cli.Context) error {
	addr, err := parseAddress(ctx)
	if err != nil {
		return err
	}
	preview := ctx.IsSet(blockFlag.Name)
	return withPool(ctx, preview, func(p *pool) error {
		bal, err := p.ledger.GetBalance(addr)
		if err != nil {
			return err
		}
		fmt.Println("settled:", bal.Dec(), "at block", p.ledger.LastSettledBlock())
		if preview {
			accrued, err := p.ledger.PreviewBalance(addr)
			if err != nil {
				return err
			}
			fmt.Println("accrued:", accrued.Dec(), "at block", ctx.Uint64(blockFlag.Name))
		}
		funds, err := p.vault.BalanceOf(addr)
		if err != nil {
			return err
		}
		fmt.Println("wallet: ", funds.Dec())
		return nil
	})
}

func settleAction(ctx *cli.Context) error {
	return withPool(ctx, true, func(p *pool) error {
		res, err := p.ledger.RequestSettlement()
		if err != nil {
			return err
		}
		fmt.Printf("settled (%d, %d]: %d of %d accounts credited, %s minted\n",
			res.From, res.To, res.Credited, res.Visited, res.Minted.Dec())
		return nil
	})
}

func statusAction(ctx *cli.Context) error {
	return withPool(ctx, false, func(p *pool) error {
		totals := p.ledger.Totals()
		fmt.Println("name:        ", p.config.Name)
		fmt.Println("epoch start: ", totals.EpochStartBlock)
		fmt.Println("settled at:  ", totals.LastSettledBlock)
		fmt.Println("staked:      ", totals.TotalStaked.Dec())
		fmt.Println("pot:         ", totals.TotalRewardPotRemaining.Dec())
		fmt.Println("participants:", totals.Participants)

		for i, phase := range p.ledger.Schedule().Phases() {
			fmt.Printf("phase #%d:     %v\n", i, phase)
		}
		for _, addr := range p.ledger.Participants() {
			bal, err := p.ledger.GetBalance(addr)
			if err != nil {
				return err
			}
			fmt.Printf("  %v %s\n", addr, bal.Dec())
		}
		return nil
	})
}

func faucetAction(ctx *cli.Context) error {
	addr, err := parseAddress(ctx)
	if err != nil {
		return err
	}
	amount, err := requireAmount(ctx)
	if err != nil {
		return err
	}
	if addr == thor.PotCustodyAddress {
		return errors.New("cannot credit the pool custody")
	}
	return withPool(ctx, false, func(p *pool) error {
		if err := p.vault.Credit(addr, amount); err != nil {
			return err
		}
		funds, err := p.vault.BalanceOf(addr)
		if err != nil {
			return err
		}
		fmt.Println("wallet:", funds.Dec())
		return nil
	})
}

// serveAction advances a local block clock and settles the pool on every block.
func serveAction(ctx *cli.Context) error {
	if err := initLogger(ctx); err != nil {
		return err
	}
	dir, err := dataDir(ctx)
	if err != nil {
		return err
	}
	interval := ctx.Duration(blockIntervalFlag.Name)
	if interval <= 0 {
		return fmt.Errorf("-%s must be positive", blockIntervalFlag.Name)
	}

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	var height atomic.Uint64
	p, err := openPool(dir, ledger.BlockSourceFunc(height.Load))
	if err != nil {
		return err
	}
	defer p.Close()

	if ctx.IsSet(blockFlag.Name) {
		height.Store(ctx.Uint64(blockFlag.Name))
	} else {
		height.Store(p.ledger.LastSettledBlock())
	}

	if ctx.Bool(enableMetricsFlag.Name) {
		url, closeFunc, err := startMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return fmt.Errorf("unable to start metrics server - %w", err)
		}
		log.Info("metrics server started", "url", url)
		defer closeFunc()
	}

	exitSignal := handleExitSignal()

	var goes co.Goes
	goes.Go(func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-exitSignal.Done():
				return
			case <-ticker.C:
				h := height.Add(1)
				res, err := p.ledger.RequestSettlement()
				if err != nil {
					log.Error("settlement failed", "block", h, "err", err)
					continue
				}
				log.Info("settled", "block", h, "credited", res.Credited, "minted", &res.Minted)
			}
		}
	})
	log.Info("serving pool", "dir", dir, "block", height.Load(), "interval", interval)

	goes.Wait()
	return nil
}

func printBalance(p *pool, addr thor.Address) error {
	bal, err := p.ledger.GetBalance(addr)
	if err != nil {
		return err
	}
	funds, err := p.vault.BalanceOf(addr)
	if err != nil {
		return err
	}
	fmt.Println("staked:", bal.Dec())
	fmt.Println("wallet:", funds.Dec())
	return nil
}
