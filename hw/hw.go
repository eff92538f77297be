// Package hw defines the external hardware collaborators spec §6 scopes
// out of this repository's own responsibility (the HW watchdog silicon,
// the reset/reboot primitive, the raw stdio transport, and kernel
// introspection), plus host-side implementations good enough for tests. A
// real target satisfies these same interfaces with
// register-level code built by the separate hardware-abstraction-layer
// collaborator spec §6 names.
package hw

// Watchdog is the real hardware watchdog timer: feed it or it resets the
// chip once Enable's timeout elapses.
type Watchdog interface {
	Enable(timeoutMS uint32, pauseOnDebug bool)
	Feed()
}

// Reboot requests an immediate reset, preserving scratch[0..3] (spec §4.4
// step 4: "the reboot primitive must not touch those indices").
type Reboot interface {
	Reboot()
}

// Stdio is the raw channel-0 passthrough transport (spec §6).
type Stdio interface {
	WriteString(s string) (n int, ok bool)
}

// KernelIntrospection exposes whatever the RTOS/kernel collaborator offers
// beyond what package sched already models in-process (spec §4.3's
// "non-blocking kernel introspection call" and the reset-cause register
// crashreport needs).
type KernelIntrospection interface {
	// LastResetWasWatchdog reports whether the most recent reset was
	// caused by the hardware watchdog (spec §4.5 step 1).
	LastResetWasWatchdog() bool
}
