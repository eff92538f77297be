//go:build unix

package hw

import (
	"os"

	"golang.org/x/sys/unix"
)

// UnixReboot models a hardware reset as a SIGTERM to the current process,
// giving a host process an observable "reboot" (the process really does
// exit and can be relaunched by a supervisor) without actually invoking
// unix.Reboot(2), which would take down the host machine itself. Nothing
// in this repository uses it; tests inject reboot closures instead.
type UnixReboot struct{}

func (UnixReboot) Reboot() {
	_ = unix.Kill(os.Getpid(), unix.SIGTERM)
}
