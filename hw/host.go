package hw

import (
	"fmt"
	"os"
	"sync/atomic"
)

// HostWatchdog is a no-op Watchdog for host builds and tests: there is no
// hardware timer to arm, so Feed is a counter a caller can inspect.
type HostWatchdog struct {
	feeds   atomic.Int64
	timeout uint32
}

func (w *HostWatchdog) Enable(timeoutMS uint32, pauseOnDebug bool) { w.timeout = timeoutMS }
func (w *HostWatchdog) Feed()                                      { w.feeds.Add(1) }
func (w *HostWatchdog) Feeds() int64 { return w.feeds.Load() }

// HostReboot logs and exits the process, the host analogue of a hardware
// reset. Tests set ExitFunc (boot/boot_test.go) or pass reboot closures
// directly (fault/capture_test.go) so they never actually terminate the
// test process.
type HostReboot struct {
	ExitFunc func(code int)
}

func (r *HostReboot) Reboot() {
	exit := r.ExitFunc
	if exit == nil {
		exit = os.Exit
	}
	exit(1)
}

// HostStdio writes channel 0 to the given *os.File (os.Stdout by default),
// standing in for the debug probe's opaque UTF-8 passthrough.
type HostStdio struct {
	File *os.File
}

func (s *HostStdio) WriteString(str string) (int, bool) {
	f := s.File
	if f == nil {
		f = os.Stdout
	}
	n, err := fmt.Fprint(f, str)
	return n, err == nil
}

// HostKernelIntrospection lets tests script whether the
// simulated last reset was watchdog-caused, since a host process has no
// real reset-cause register.
type HostKernelIntrospection struct {
	WasWatchdog bool
}

func (k *HostKernelIntrospection) LastResetWasWatchdog() bool {
	return k.WasWatchdog
}
