package crashreport

import (
	"context"

	"github.com/embeddedkit/m0core/ambient"
	"github.com/embeddedkit/m0core/bytestore"
	"github.com/embeddedkit/m0core/flashsafe"
	"github.com/embeddedkit/m0core/nvram"
)

// Writer is the narrow channel write this package needs (channel 0, the
// Terminal passthrough), satisfied by channel.Driver.Channel(channel.Terminal).
type Writer interface {
	Write(p []byte) (n int, ok bool)
}

// knownSentinels lists every scratch[0] value Decode understands (spec §4.5
// step 2: "scratch[0] matches a known sentinel").
var knownSentinels = map[uint32]bool{
	nvram.SentinelFault:           true,
	nvram.SentinelStackOverflow:   true,
	nvram.SentinelAllocFail:       true,
	nvram.SentinelWatchdogTimeout: true,
}

// Reporter runs the post-boot crash-detection state machine exactly once
// per boot (spec §4.5).
type Reporter struct {
	store     nvram.Store
	bytes     bytestore.Store
	term      Writer
	flash     *flashsafe.Executor
	amb       ambient.Logger
	lastState State
}

// NewReporter constructs a Reporter. term is the channel-0 writer the
// summary goes to; bytes is the byte store the JSON record is persisted to,
// and flash is the C7 executor every byte-store mutation must run through
// (spec §5: "the byte store is mutated only via C7"). Run always happens
// before the scheduler starts (boot step 4 precedes step 11), so persist
// always takes flashsafe's interrupt-disable-only path.
func NewReporter(store nvram.Store, bytes bytestore.Store, term Writer, flash *flashsafe.Executor, amb ambient.Logger) *Reporter {
	return &Reporter{store: store, bytes: bytes, term: term, flash: flash, amb: amb.With("crashreport")}
}

// Run executes the state machine once. lastResetWasWatchdog reports whether
// the prior reset was watchdog-driven, per spec §4.5 step 1; on real
// hardware this reads the reset-cause register via hw, on the host it is
// whatever the caller (boot, or a test) determines.
func (r *Reporter) Run(lastResetWasWatchdog bool) State {
	r.lastState = StateInit

	if !lastResetWasWatchdog {
		r.lastState = StateNoCrash
		return r.lastState
	}

	scratch := r.store.Load()
	if !knownSentinels[scratch[0]] {
		r.lastState = StateWatchdogUnknown
		r.amb.Warn("watchdog reset with unrecognized scratch sentinel", map[string]any{
			"scratch0": scratch[0],
		})
		return r.lastState
	}

	r.lastState = StateDecode
	rec := Decode(scratch)

	if _, ok := r.term.Write([]byte(Summary(rec) + "\n")); !ok {
		r.amb.Warn("crash summary dropped, channel 0 full", nil)
	}

	r.lastState = StatePersist
	if err := r.persist(rec); err != nil {
		// spec §4.5: "on any byte-store failure, log and transition to
		// Armed without persistence (the on-device report is still valid)."
		r.amb.Warn("crash record persistence failed", map[string]any{"error": err.Error()})
	}

	r.store.ClearSentinel()
	r.lastState = StateArmed
	return r.lastState
}

func (r *Reporter) persist(rec Record) error {
	var persistErr error
	r.flash.Run(context.Background(), false, func() {
		if err := r.bytes.MkdirAll("/crash"); err != nil {
			persistErr = err
			return
		}
		w, err := r.bytes.Create(CrashPath)
		if err != nil {
			persistErr = err
			return
		}
		var buf [256]byte
		doc := AppendJSON(buf[:0], rec)
		if _, err := w.Write(doc); err != nil {
			w.Close()
			persistErr = err
			return
		}
		persistErr = w.Close()
	})
	return persistErr
}

// LastState returns the terminal state of the most recent Run.
func (r *Reporter) LastState() State {
	return r.lastState
}
