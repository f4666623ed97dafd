package lbpengine

import (
	"errors"
	"math/big"

	"github.com/lbpsync/lbpengine/internal/schedule"
)

// targetCommitted and targetLowerTick adapt a Schedule to the pure
// schedule evaluator, converting its BeforeStartTime sentinel into the
// internal assertion panic: callers (Sync, BeforeSwap) already guard
// floor(now) >= start_time, so this should be unreachable.
func targetCommitted(sched Schedule, t uint64) (*big.Int, error) {
	params := schedule.Params{
		TotalAmount: sched.TotalAmount,
		StartTime:   sched.StartTime,
		EndTime:     sched.EndTime,
		MinTick:     sched.MinTick,
		MaxTick:     sched.MaxTick,
	}
	amount, err := params.TargetCommitted(uint32(t))
	if errors.Is(err, schedule.ErrBeforeStartTime) {
		panic(errBeforeStartTime)
	}
	return amount, err
}

func targetLowerTick(sched Schedule, t uint64) (int32, error) {
	params := schedule.Params{
		TotalAmount: sched.TotalAmount,
		StartTime:   sched.StartTime,
		EndTime:     sched.EndTime,
		MinTick:     sched.MinTick,
		MaxTick:     sched.MaxTick,
	}
	tick, err := params.TargetLowerTick(uint32(t))
	if errors.Is(err, schedule.ErrBeforeStartTime) {
		panic(errBeforeStartTime)
	}
	return tick, err
}
