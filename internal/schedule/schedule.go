// Package schedule implements the pure, stateless functions that map a
// time into the LBP's target commitment and target range
// of the epoch synchronisation engine.
package schedule

import (
	"errors"
	"math/big"
)

// ErrBeforeStartTime is an internal assertion: the public surface must
// never call TargetCommitted/TargetLowerTick with t < StartTime. It is not
// meant to be handled by callers outside this package.
var ErrBeforeStartTime = errors.New("schedule: t before start_time")

// Params is the immutable schedule configuration, in canonical
// (token0-selling) orientation. MinTick/MaxTick are the eventual widest
// range; TotalAmount is the full bootstrapping-token quantity to commit.
type Params struct {
	TotalAmount *big.Int
	StartTime   uint32
	EndTime     uint32
	MinTick     int32
	MaxTick     int32
}

// TargetCommitted returns A*(t): the cumulative token amount that should be
// committed (placed or sold) by epoch-floored time t.
//
//	t >= EndTime:  TotalAmount
//	otherwise:     floor((t - StartTime) * TotalAmount / (EndTime - StartTime))
//
// The product is carried in a width well beyond 192 bits (big.Int has no
// fixed width) so a u32 interval times a u128 amount never overflows.
func (p Params) TargetCommitted(t uint32) (*big.Int, error) {
	if t < p.StartTime {
		return nil, ErrBeforeStartTime
	}
	if t >= p.EndTime {
		return new(big.Int).Set(p.TotalAmount), nil
	}

	elapsed := big.NewInt(int64(t - p.StartTime))
	span := big.NewInt(int64(p.EndTime - p.StartTime))

	numerator := new(big.Int).Mul(elapsed, p.TotalAmount)
	return numerator.Div(numerator, span), nil
}

// TargetLowerTick returns L*(t) in canonical orientation:
//
//	t >= EndTime:  MinTick
//	otherwise:     MaxTick - floor((t - StartTime) * (MaxTick - MinTick) / (EndTime - StartTime))
//
// Expressing it as max minus a shrinking delta (rather than directly as a
// fraction of MinTick..MaxTick) keeps L*(StartTime) = MaxTick and
// L*(EndTime) = MinTick exact under integer division.
func (p Params) TargetLowerTick(t uint32) (int32, error) {
	if t < p.StartTime {
		return 0, ErrBeforeStartTime
	}
	if t >= p.EndTime {
		return p.MinTick, nil
	}

	elapsed := big.NewInt(int64(t - p.StartTime))
	span := big.NewInt(int64(p.EndTime - p.StartTime))
	tickRange := big.NewInt(int64(p.MaxTick - p.MinTick))

	numerator := new(big.Int).Mul(elapsed, tickRange)
	delta := numerator.Quo(numerator, span) // truncated toward zero; both operands non-negative here

	lower := int64(p.MaxTick) - delta.Int64()
	if lower < int64(p.MinTick) {
		lower = int64(p.MinTick)
	}
	if lower > int64(p.MaxTick) {
		lower = int64(p.MaxTick)
	}
	return int32(lower), nil
}
