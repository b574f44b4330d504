// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package precision implements the fixed-point helpers used for proportional
// reward shares. All values are unsigned 256-bit integers, every operation is
// overflow checked and nothing saturates.
package precision

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

var (
	ErrOverflow       = errors.New("arithmetic overflow")
	ErrUnderflow      = errors.New("arithmetic underflow")
	ErrDivisionByZero = errors.New("division by zero")
)

// ScaledShare returns balance*scale/total, the balance's fraction of total
// expressed in units of 1/scale.
func ScaledShare(balance, total, scale *uint256.Int) (*uint256.Int, error) {
	if total.IsZero() || scale.IsZero() {
		return nil, ErrDivisionByZero
	}
	product, overflow := new(uint256.Int).MulOverflow(balance, scale)
	if overflow {
		return nil, errors.Wrapf(ErrOverflow, "share %v*%v", balance.Dec(), scale.Dec())
	}
	return product.Div(product, total), nil
}

// Reward returns share*rate/scale*blocks. The per-block amount is truncated
// before it is multiplied by the block count, so every block of a segment
// pays the same integer amount.
func Reward(share, rate, scale *uint256.Int, blocks uint64) (*uint256.Int, error) {
	if scale.IsZero() {
		return nil, ErrDivisionByZero
	}
	perBlock, overflow := new(uint256.Int).MulOverflow(share, rate)
	if overflow {
		return nil, errors.Wrapf(ErrOverflow, "rate %v*%v", share.Dec(), rate.Dec())
	}
	perBlock.Div(perBlock, scale)

	reward, overflow := new(uint256.Int).MulOverflow(perBlock, uint256.NewInt(blocks))
	if overflow {
		return nil, errors.Wrapf(ErrOverflow, "reward over %d blocks", blocks)
	}
	return reward, nil
}

// Add returns x+y.
func Add(x, y *uint256.Int) (*uint256.Int, error) {
	sum, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow {
		return nil, errors.Wrapf(ErrOverflow, "add %v+%v", x.Dec(), y.Dec())
	}
	return sum, nil
}

// Sub returns x-y.
func Sub(x, y *uint256.Int) (*uint256.Int, error) {
	diff, underflow := new(uint256.Int).SubOverflow(x, y)
	if underflow {
		return nil, errors.Wrapf(ErrUnderflow, "sub %v-%v", x.Dec(), y.Dec())
	}
	return diff, nil
}

// Min returns a copy of the smallest argument.
func Min(x *uint256.Int, others ...*uint256.Int) *uint256.Int {
	m := x
	for _, o := range others {
		if o.Lt(m) {
			m = o
		}
	}
	return new(uint256.Int).Set(m)
}
