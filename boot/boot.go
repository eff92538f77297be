// Package boot implements the fixed eleven-step boot sequence spec §4.8
// requires every application built on this stack to follow, wiring C1-C7
// together in their documented dependency order (spec §2: "C1 → {C2, C3};
// C7 → (byte store, C5); C4 → (C5 on next boot); C6 → C2").
package boot

import (
	"context"
	"fmt"

	"github.com/embeddedkit/m0core/ambient"
	"github.com/embeddedkit/m0core/bytestore"
	"github.com/embeddedkit/m0core/channel"
	"github.com/embeddedkit/m0core/config"
	"github.com/embeddedkit/m0core/crashreport"
	"github.com/embeddedkit/m0core/flashsafe"
	"github.com/embeddedkit/m0core/hw"
	"github.com/embeddedkit/m0core/nvram"
	"github.com/embeddedkit/m0core/sched"
	"github.com/embeddedkit/m0core/telemetry"
	"github.com/embeddedkit/m0core/tokenlog"
	"github.com/embeddedkit/m0core/watchdog"
)

// TaskSpec is one application task, supplied to Sequence for step 7
// ("create application tasks") and, if WatchdogBit is non-zero, step 9
// ("register each long-running task's watchdog bit").
type TaskSpec struct {
	Name        string
	Priority    int
	CoreID      int
	Fn          func(ctx context.Context, log *tokenlog.Logger, checkin func())
	WatchdogBit watchdog.Bit
}

// Collaborators bundles every external-hardware interface Sequence needs,
// per spec §6 and SPEC_FULL.md §0's "hardware as external collaborator"
// ground rule.
type Collaborators struct {
	Stdio      hw.Stdio
	HWWatchdog hw.Watchdog
	Reboot     hw.Reboot
	Kernel     hw.KernelIntrospection

	Interrupts flashsafe.InterruptController
	Peer       flashsafe.PeerCore
	Scheduler  flashsafe.SchedulerSuspender

	Bytes bytestore.Store
	Heap  telemetry.HeapStats

	// Registers backs the scratch-register store C4/C5 share. Nil
	// constructs a fresh, zeroed store; callers that want to simulate
	// "survives a watchdog reset" across repeated Sequence calls within
	// one test process pass the same *nvram.Registers both times.
	Registers nvram.Store

	// TokenDB is the compiled token database's raw bytes, hashed by
	// tokenlog.BuildID into the handshake value C2 logs first (spec §3
	// "Build identity").
	TokenDB []byte
}

// System is the live, booted stack: every component Sequence constructed,
// kept so the caller (or a test) can inspect or drive it further.
type System struct {
	Config     config.Config
	Ambient    ambient.Logger
	Channels   *channel.Driver
	Sched      *sched.Supervisor
	Log        *tokenlog.Logger
	Registers  nvram.Store
	Crash      *crashreport.Reporter
	CrashState crashreport.State
	Telemetry  *telemetry.Supervisor
	Watchdog   *watchdog.Watchdog
	Flash      *flashsafe.Executor

	stopTelemetry chan struct{}
}

// Sequence runs boot steps 1-11 in order and returns the live System. It
// does not itself block on step 11 ("start the scheduler, does not
// return"); that is left to the caller via System.RunScheduler, so tests
// retain control of the process's main goroutine.
func Sequence(cfg config.Config, col Collaborators, amb ambient.Logger, tasks []TaskSpec) (*System, error) {
	sys := &System{Config: cfg, Ambient: amb, stopTelemetry: make(chan struct{})}

	// 1. system_init(): clocks, stdio. This repo has no clocks to
	// configure; stdio is col.Stdio, already constructed by the caller.
	amb.Info("system init", nil)

	// 2. log_init()
	sys.Channels = channel.NewDriver(cfg.LogChannelBytes, cfg.TelemetryChannelBytes)
	sys.Log = tokenlog.NewLogger(sys.Channels.Channel(channel.AiLog), tokenlog.ParseLevel(cfg.MinLogLevel), amb)
	buildID := tokenlog.BuildID(col.TokenDB)
	sys.Log.Init(buildID)

	// 3. persistence_init(): mounts the byte store; may invoke C7, since
	// mounting can itself need flash quiesced on some targets. This runs
	// before the scheduler starts, so flashsafe must take the
	// interrupt-disable-only path (spec §4.7, §8 S5).
	sys.Registers = col.Registers
	if sys.Registers == nil {
		sys.Registers = nvram.NewRegisters()
	}
	sys.Flash = flashsafe.New(col.HWWatchdog, col.Interrupts, col.Peer, col.Scheduler, amb)
	var mountErr error
	sys.Flash.Run(context.Background(), sys.Channels.SchedulerStarted(), func() {
		mountErr = col.Bytes.MkdirAll("/crash")
	})
	if mountErr != nil {
		return nil, fmt.Errorf("boot: persistence_init: %w", mountErr)
	}

	// 4. crash_reporter_init(): runs the §4.5 state machine.
	sys.Crash = crashreport.NewReporter(sys.Registers, col.Bytes, sys.Channels.Channel(channel.Terminal), sys.Flash, amb)
	sys.CrashState = sys.Crash.Run(col.Kernel.LastResetWasWatchdog())

	// 5. telemetry_init()
	sys.Sched = sched.NewSupervisor()
	telemetryCheckin := func() {} // wired to the watchdog bit once it exists, see below
	sys.Telemetry = telemetry.NewSupervisor(
		sys.Channels.Channel(channel.Vitals),
		sys.Sched,
		func() []telemetry.TaskSnapshot { return adaptSnapshots(sys.Sched.Snapshot()) },
		col.Heap,
		cfg.TelemetryInterval(),
		func() { telemetryCheckin() },
		amb,
	)

	// 6. watchdog_init(hw_timeout_ms)
	sys.Watchdog = watchdog.New(col.HWWatchdog, sys.Registers, amb)
	col.HWWatchdog.Enable(uint32(cfg.WatchdogHWTimeoutMS), true)

	// 7. create application tasks
	for _, spec := range tasks {
		t := sys.Sched.Register(spec.Name, spec.Priority, spec.CoreID)
		bit := spec.WatchdogBit
		fn := spec.Fn
		ctx := context.Background()
		go sys.Sched.Run(t, func() {
			fn(ctx, sys.Log, func() {
				if bit != 0 {
					sys.Watchdog.Checkin(bit)
				}
			})
		})
	}

	// 8. start the telemetry supervisor
	const telemetryBit = watchdog.Bit(1 << 23) // reserved top bit for the telemetry task itself
	telemetryCheckin = func() { sys.Watchdog.Checkin(telemetryBit) }
	telemetryTask := sys.Sched.Register("telemetry", 1, 1)
	go sys.Sched.Run(telemetryTask, func() { sys.Telemetry.Run(sys.stopTelemetry) })

	// 9. register each long-running task's watchdog bit
	sys.Watchdog.Register(telemetryBit)
	for _, spec := range tasks {
		if spec.WatchdogBit != 0 {
			sys.Watchdog.Register(spec.WatchdogBit)
		}
	}

	// 10. watchdog_start()
	go sys.Watchdog.Start()

	// 11. start the scheduler (does not return, per spec; modeled here as
	// flipping the started predicate the other components already branch
	// on -- RunScheduler is what actually blocks).
	sys.Sched.Start()
	sys.Channels.SetSchedulerStarted(true)

	return sys, nil
}

// RunScheduler blocks until ctx is cancelled, standing in for step 11's
// "does not return." Production firmware never returns from this call;
// tests pass a cancellable context so the process can
// shut down cleanly.
func (s *System) RunScheduler(ctx context.Context) {
	<-ctx.Done()
	close(s.stopTelemetry)
	s.Watchdog.Stop()
}

func adaptSnapshots(snaps []sched.Snapshot) []telemetry.TaskSnapshot {
	out := make([]telemetry.TaskSnapshot, len(snaps))
	for i, s := range snaps {
		out[i] = telemetry.TaskSnapshot{
			Number:   s.Number,
			State:    uint8(s.State),
			Priority: clampPriority(s.Priority),
			StackHWM: clampStackHWM(s.StackHWM),
			Runtime:  s.Runtime,
		}
	}
	return out
}

func clampPriority(p int) uint8 {
	if p < 0 {
		return 0
	}
	if p > 255 {
		return 255
	}
	return uint8(p)
}

func clampStackHWM(words uint32) uint16 {
	if words > 0xFFFF {
		return 0xFFFF
	}
	return uint16(words)
}
