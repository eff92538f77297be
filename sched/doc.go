// Package sched stands in for the RTOS kernel the rest of this repository
// is written against: task registration with stable numbers, per-task and
// aggregate free-running runtime counters (wrap-safe, as spec §4.3/§9
// require), a 24-bit event-bit group for the cooperative watchdog, a
// per-task core id, and a scheduler-started predicate. boot.Sequence flips
// this predicate together with channel.Driver's own flag; C1 keeps that
// flag itself and C7 receives it as an argument, so neither reads
// Supervisor.Started.
//
// It is deliberately not a real preemptive scheduler: spec §1 treats the
// actual RTOS as an external collaborator (the "host scheduler" the
// dual-core spin-lock primitive belongs to). What's implemented here is the
// slice of kernel-introspection surface C3, C4, and C6 depend on.
package sched
