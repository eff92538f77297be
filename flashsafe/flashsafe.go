// Package flashsafe implements C7, Flash-Safe Execute: run a callback with
// flash reads/writes globally quiesced. Pre-scheduler, that only requires
// disabling interrupts on this core; post-scheduler it requires pausing the
// peer core and suspending the scheduler too, since the peer core might
// otherwise execute code out of the same flash bank being written (spec
// §4.7).
package flashsafe

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/embeddedkit/m0core/ambient"
)

// HW is the hardware watchdog collaborator: fed immediately before the
// callback runs, since flash operations can take long enough to starve the
// cooperative watchdog's monitor task (spec §4.7: "feed HW watchdog
// immediately before invoking callback").
type HW interface {
	Feed()
}

// InterruptController models disabling/restoring this core's interrupts,
// the pre-scheduler primitive (spec §4.7).
type InterruptController interface {
	Disable() (prior any)
	Restore(prior any)
}

// PeerCore models pausing and resuming the second core, the
// post-scheduler primitive on top of interrupt masking.
type PeerCore interface {
	Pause(ctx context.Context) error
	Resume() error
}

// SchedulerSuspender models suspending the scheduler on this core, the
// third post-scheduler primitive (alongside interrupt masking and peer-core
// pause).
type SchedulerSuspender interface {
	Suspend()
	Resume()
}

// Executor runs a callback with flash safely quiesced, choosing its locking
// strategy based on whether the scheduler has started (spec §4.7, §8 item
// 10, §8 S5).
type Executor struct {
	hw        HW
	irq       InterruptController
	peer      PeerCore
	scheduler SchedulerSuspender
	amb       ambient.Logger
}

// New constructs an Executor from its four collaborators.
func New(hw HW, irq InterruptController, peer PeerCore, scheduler SchedulerSuspender, amb ambient.Logger) *Executor {
	return &Executor{hw: hw, irq: irq, peer: peer, scheduler: scheduler, amb: amb.With("flashsafe")}
}

// Run invokes fn with flash quiesced. schedulerStarted selects the locking
// strategy: true takes the full dual-core lockout path, false takes the
// interrupt-disable-only path (which must never attempt the dual-core
// lockout — spec §4.7 explicitly warns that would deadlock pre-scheduler,
// since the peer core cannot yet acknowledge a pause request it has no
// scheduler to service). It reports whether fn ran: the pre-scheduler path
// always runs it and returns true; the post-scheduler path returns false,
// without running fn, when the peer core cannot be paused.
func (e *Executor) Run(ctx context.Context, schedulerStarted bool, fn func()) bool {
	e.hw.Feed()

	if !schedulerStarted {
		return e.runPreScheduler(fn)
	}
	return e.runPostScheduler(ctx, fn)
}

func (e *Executor) runPreScheduler(fn func()) bool {
	prior := e.irq.Disable()
	defer e.irq.Restore(prior)
	fn()
	return true
}

func (e *Executor) runPostScheduler(ctx context.Context, fn func()) bool {
	e.scheduler.Suspend()
	defer e.scheduler.Resume()

	prior := e.irq.Disable()
	defer e.irq.Restore(prior)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return e.peer.Pause(gctx)
	})
	if err := g.Wait(); err != nil {
		e.amb.Error("peer core pause failed, aborting flash-safe window", map[string]any{"error": err.Error()})
		return false
	}
	defer func() {
		if err := e.peer.Resume(); err != nil {
			e.amb.Error("peer core resume failed", map[string]any{"error": err.Error()})
		}
	}()

	fn()
	return true
}
