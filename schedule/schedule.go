// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package schedule

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

var (
	ErrEmpty          = errors.New("schedule has no phases")
	ErrLimitNotRising = errors.New("phase limits must strictly increase")
)

// Phase is a contiguous range of blocks paying a fixed per-block rate to the whole pool.
// A phase covers the blocks after the previous phase's limit up to and including its own Limit,
// counted from the epoch start.
type Phase struct {
	Rate  uint256.Int
	Limit uint64
}

func (p Phase) String() string {
	return fmt.Sprintf("Phase(rate=%v limit=%v)", p.Rate.Dec(), p.Limit)
}

// Segment is the part of a settlement interval that falls into a single phase.
type Segment struct {
	Rate   uint256.Int
	Blocks uint64
}

// Schedule is an immutable, ordered list of phases.
type Schedule struct {
	phases []Phase
}

// New creates a schedule. Phases must be given in ascending limit order and
// the first limit must be positive.
func New(phases []Phase) (*Schedule, error) {
	if len(phases) == 0 {
		return nil, ErrEmpty
	}
	var prev uint64
	for i, p := range phases {
		if p.Limit <= prev {
			return nil, errors.Wrapf(ErrLimitNotRising, "phase #%d limit %d", i, p.Limit)
		}
		prev = p.Limit
	}
	return &Schedule{
		append([]Phase(nil), phases...),
	}, nil
}

// MustNew creates a schedule, panics on invalid phases.
func MustNew(phases ...Phase) *Schedule {
	s, err := New(phases)
	if err != nil {
		panic(err)
	}
	return s
}

// RateAt returns the rate and limit of the first phase whose limit is not below
// blocksSinceEpoch. Past the horizon it returns a zero rate and a zero limit,
// the reward stream has ended.
func (s *Schedule) RateAt(blocksSinceEpoch uint64) (uint256.Int, uint64) {
	for _, p := range s.phases {
		if p.Limit >= blocksSinceEpoch {
			return p.Rate, p.Limit
		}
	}
	return uint256.Int{}, 0
}

// Segments splits the block interval (from, to], counted since the epoch,
// at every phase boundary it crosses. Blocks past the horizon earn nothing and
// produce no segment.
func (s *Schedule) Segments(from, to uint64) []Segment {
	if to <= from {
		return nil
	}
	var (
		segments []Segment
		start    uint64
	)
	for _, p := range s.phases {
		lo := max(from, start)
		hi := min(to, p.Limit)
		if hi > lo {
			segments = append(segments, Segment{Rate: p.Rate, Blocks: hi - lo})
		}
		if p.Limit >= to {
			break
		}
		start = p.Limit
	}
	return segments
}

// Horizon returns the last block, counted since the epoch, that still accrues rewards.
func (s *Schedule) Horizon() uint64 {
	return s.phases[len(s.phases)-1].Limit
}

// Len returns the number of phases.
func (s *Schedule) Len() int {
	return len(s.phases)
}

// Phases returns a copy of the phases.
func (s *Schedule) Phases() []Phase {
	return append([]Phase(nil), s.phases...)
}
