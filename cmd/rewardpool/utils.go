// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"syscall"

	"github.com/holiman/uint256"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/rewardpool/genesis"
	"github.com/vechain/rewardpool/kv"
	"github.com/vechain/rewardpool/ledger"
	"github.com/vechain/rewardpool/log"
	"github.com/vechain/rewardpool/lvldb"
	"github.com/vechain/rewardpool/thor"
	"github.com/vechain/rewardpool/vault"
)

const (
	configFileName = "config.yaml"
	dbDirName      = "pool.db"
)

var (
	ledgerBucket = kv.Bucket("l")
	vaultBucket  = kv.Bucket("v")
)

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		return filepath.Join(home, ".rewardpool")
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func readIntFromUInt64Flag(val uint64) (int, error) {
	if val > math.MaxInt {
		return 0, fmt.Errorf("invalid value %d", val)
	}
	return int(val), nil
}

func initLogger(ctx *cli.Context) error {
	lvl, err := readIntFromUInt64Flag(ctx.Uint64(verbosityFlag.Name))
	if err != nil {
		return errors.Wrap(err, "parse verbosity flag")
	}
	var level slog.LevelVar
	level.Set(log.FromLegacyLevel(lvl))

	var handler slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) {
		handler = log.JSONHandlerWithLevel(os.Stderr, &level)
	} else {
		fd := os.Stderr.Fd()
		useColor := (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) && os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandlerWithLevel(os.Stderr, &level, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
	return nil
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		log.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func dataDir(ctx *cli.Context) (string, error) {
	dir := ctx.String(dataDirFlag.Name)
	if dir == "" {
		return "", fmt.Errorf("unable to infer default data dir, use -%s to specify one", dataDirFlag.Name)
	}
	return dir, nil
}

func parseAddress(ctx *cli.Context) (thor.Address, error) {
	s := ctx.String(addressFlag.Name)
	if s == "" {
		return thor.Address{}, fmt.Errorf("-%s is required", addressFlag.Name)
	}
	addr, err := thor.ParseAddress(s)
	if err != nil {
		return thor.Address{}, errors.Wrapf(err, "-%s", addressFlag.Name)
	}
	return addr, nil
}

func parseAmount(s string) (*uint256.Int, error) {
	var amount genesis.HexOrDecimal256
	if err := amount.UnmarshalText([]byte(s)); err != nil {
		return nil, err
	}
	return amount.Int(), nil
}

func requireAmount(ctx *cli.Context) (*uint256.Int, error) {
	s := ctx.String(amountFlag.Name)
	if s == "" {
		return nil, fmt.Errorf("-%s is required", amountFlag.Name)
	}
	amount, err := parseAmount(s)
	if err != nil {
		return nil, errors.Wrapf(err, "-%s", amountFlag.Name)
	}
	return amount, nil
}

// pool bundles everything opened from a data dir.
type pool struct {
	db     *lvldb.LevelDB
	config *genesis.Config
	vault  *vault.Vault
	ledger *ledger.Ledger
}

func (p *pool) Close() {
	if err := p.db.Close(); err != nil {
		log.Warn("failed to close database", "err", err)
	}
}

// openPool opens an initialized data dir. blocks supplies the current height.
func openPool(dir string, blocks ledger.BlockSource) (*pool, error) {
	cfg, err := genesis.Load(filepath.Join(dir, configFileName))
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			return nil, fmt.Errorf("no pool in %v, run init first", dir)
		}
		return nil, err
	}
	return openPoolWithConfig(dir, cfg, blocks)
}

func openPoolWithConfig(dir string, cfg *genesis.Config, blocks ledger.BlockSource) (*pool, error) {
	lcfg, err := cfg.LedgerConfig()
	if err != nil {
		return nil, err
	}
	db, err := lvldb.New(filepath.Join(dir, dbDirName), lvldb.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "open database at %v", dir)
	}
	v, err := vault.New(vaultBucket.NewStore(db), thor.PotCustodyAddress)
	if err != nil {
		db.Close()
		return nil, err
	}
	l, err := ledger.Open(ledgerBucket.NewStore(db), lcfg, v, blocks)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &pool{db: db, config: cfg, vault: v, ledger: l}, nil
}

// fixedBlock reports the height given by -block.
func fixedBlock(ctx *cli.Context) (ledger.BlockSource, error) {
	if !ctx.IsSet(blockFlag.Name) {
		return nil, fmt.Errorf("-%s is required", blockFlag.Name)
	}
	height := ctx.Uint64(blockFlag.Name)
	return ledger.BlockSourceFunc(func() uint64 { return height }), nil
}

// noBlock is used by read-only commands which never settle.
var noBlock = ledger.BlockSourceFunc(func() uint64 { return 0 })
