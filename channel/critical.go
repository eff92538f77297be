package channel

import "sync"

// CriticalRegion models the SMP-safe critical region spec §4.1/§9 requires:
// "wrap a dual-core spin-lock primitive behind a typed guard that both
// disables interrupts on the current core and acquires the lock, releasing
// on scope exit." On real hardware this is a dual-core hardware spinlock
// plus local interrupt masking; on this host implementation it is a mutex,
// which is the correct degenerate case of the same contract (mutual
// exclusion across any number of concurrent callers, core or goroutine).
//
// CriticalRegion also implements the pre-scheduler degradation spec §4.1
// and §9 both call out: before the scheduler starts, only one core is
// live, so the dual-core primitive is unnecessary and the mutex alone
// (standing in for "disable interrupts") is sufficient and safe.
type CriticalRegion struct {
	mu sync.Mutex
}

// Enter acquires the region, returning a function that releases it. Callers
// use it as `defer region.Enter()()`, mirroring catrate.Limiter's
// lock/defer-unlock shape.
func (r *CriticalRegion) Enter() func() {
	r.mu.Lock()
	return r.mu.Unlock
}
