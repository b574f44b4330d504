// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/holiman/uint256"
	"gopkg.in/yaml.v3"
)

// HexOrDecimal256 is a 256-bit amount written in config as either 0x-prefixed hex or decimal.
type HexOrDecimal256 uint256.Int

// NewHexOrDecimal256 wraps v.
func NewHexOrDecimal256(v *uint256.Int) *HexOrDecimal256 {
	h := HexOrDecimal256(*v)
	return &h
}

// Int returns the amount.
func (i *HexOrDecimal256) Int() *uint256.Int {
	return new(uint256.Int).Set((*uint256.Int)(i))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *HexOrDecimal256) UnmarshalText(text []byte) error {
	bigint, ok := math.ParseBig256(string(text))
	if !ok || bigint.Sign() < 0 {
		return fmt.Errorf("invalid hex or decimal integer %q", text)
	}
	v, overflow := uint256.FromBig(bigint)
	if overflow {
		return fmt.Errorf("integer %q exceeds 256 bits", text)
	}
	*i = HexOrDecimal256(*v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (i HexOrDecimal256) MarshalText() ([]byte, error) {
	return []byte((*uint256.Int)(&i).Dec()), nil
}

// UnmarshalYAML accepts plain integers as well as quoted strings.
func (i *HexOrDecimal256) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: amount must be a scalar", value.Line)
	}
	if err := i.UnmarshalText([]byte(value.Value)); err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	return nil
}

// MarshalYAML writes the amount as a decimal string.
func (i HexOrDecimal256) MarshalYAML() (any, error) {
	text, err := i.MarshalText()
	return string(text), err
}
