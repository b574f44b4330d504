// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/pkg/errors"

	"github.com/vechain/rewardpool/precision"
)

// Errors returned by ledger operations. Use errors.Is to test for them.
var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrUnknownParticipant = errors.New("unknown participant")
	ErrNothingToWithdraw  = errors.New("nothing to withdraw")
	ErrTransferFailed     = errors.New("transfer failed")
	ErrArithmeticOverflow = precision.ErrOverflow
)

// arithmetic folds every fixed-point failure into ErrArithmeticOverflow.
func arithmetic(err error) error {
	if err == nil || errors.Is(err, ErrArithmeticOverflow) {
		return err
	}
	if errors.Is(err, precision.ErrUnderflow) || errors.Is(err, precision.ErrDivisionByZero) {
		return errors.Wrap(ErrArithmeticOverflow, err.Error())
	}
	return err
}
