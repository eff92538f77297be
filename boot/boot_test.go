package boot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embeddedkit/m0core/ambient"
	"github.com/embeddedkit/m0core/bytestore"
	"github.com/embeddedkit/m0core/config"
	"github.com/embeddedkit/m0core/crashreport"
	"github.com/embeddedkit/m0core/flashsafe"
	"github.com/embeddedkit/m0core/hw"
	"github.com/embeddedkit/m0core/nvram"
	"github.com/embeddedkit/m0core/tokenlog"
	"github.com/embeddedkit/m0core/watchdog"
)

func testCollaborators() Collaborators {
	peer := flashsafe.NewHostPeerCore()
	return Collaborators{
		Stdio:      &hw.HostStdio{},
		HWWatchdog: &hw.HostWatchdog{},
		Reboot:     &hw.HostReboot{ExitFunc: func(int) {}},
		Kernel:     &hw.HostKernelIntrospection{WasWatchdog: false},
		Interrupts: &flashsafe.HostInterrupts{},
		Peer:       peer,
		Scheduler:  &flashsafe.HostScheduler{},
		Bytes:      bytestore.NewMemory(),
		TokenDB:    []byte("fake-token-database"),
	}
}

func TestSequence_BootsWithNoCrashAndNoTasks(t *testing.T) {
	sys, err := Sequence(config.Default(), testCollaborators(), ambient.Discard(), nil)
	require.NoError(t, err)

	assert.Equal(t, crashreport.StateNoCrash, sys.CrashState)
	assert.True(t, sys.Sched.Started())
	assert.True(t, sys.Channels.SchedulerStarted())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sys.RunScheduler(ctx)
}

func TestSequence_DetectsPriorCrashFromSurvivingScratch(t *testing.T) {
	// one nvram.Registers instance shared across two Sequence calls models
	// the same scratch registers surviving a watchdog reset between boots.
	shared := nvram.NewRegisters()
	shared.StoreFault(nvram.SentinelFault, 0x1000, 0x2000, 0x61001007)

	col := testCollaborators()
	col.Registers = shared
	col.Kernel = &hw.HostKernelIntrospection{WasWatchdog: true}

	sys, err := Sequence(config.Default(), col, ambient.Discard(), nil)
	require.NoError(t, err)

	assert.Equal(t, crashreport.StateArmed, sys.CrashState)
	assert.Equal(t, nvram.SentinelNone, shared.Load()[0], "reporter must clear the sentinel it just decoded")

	body, ok := col.Bytes.(*bytestore.Memory).Get(crashreport.CrashPath)
	require.True(t, ok)
	assert.Contains(t, string(body), `"pc":"0x00001000"`) // the decoded pc, hex-string encoded per spec §6

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sys.RunScheduler(ctx)
}

func TestSequence_RegistersTasksAndWatchdogBits(t *testing.T) {
	col := testCollaborators()
	ran := make(chan struct{}, 1)

	tasks := []TaskSpec{
		{
			Name:        "worker",
			Priority:    1,
			CoreID:      0,
			WatchdogBit: watchdog.Bit(1 << 0),
			Fn: func(ctx context.Context, log *tokenlog.Logger, checkin func()) {
				checkin()
				ran <- struct{}{}
			},
		},
	}

	sys, err := Sequence(config.Default(), col, ambient.Discard(), tasks)
	require.NoError(t, err)

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}

	assert.NotZero(t, sys.Watchdog.RegisteredBits())
	assert.Equal(t, uint32(1<<0)|uint32(1<<23), sys.Watchdog.RegisteredBits())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sys.RunScheduler(ctx)
}
