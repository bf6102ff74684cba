package control

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"procman/internal/history"
	"procman/internal/proc"
	"procman/internal/proc/proctest"
)

func newController(records ...proc.Record) (*Controller, *proctest.Platform, *history.Ledger) {
	fake := proctest.New(records...)
	ledger := history.NewLedger(zerolog.Nop())
	return New(fake, ledger), fake, ledger
}

func TestTerminateSuccess(t *testing.T) {
	c, fake, ledger := newController(proc.Record{PID: 42, Name: "sleep"})

	out := c.Terminate(42)
	assert.True(t, out.OK())

	calls := fake.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, proctest.Call{Op: "signal", PID: 42, Value: 0}, calls[0])
	assert.Equal(t, proctest.Call{Op: "signal", PID: 42, Value: int(unix.SIGKILL)}, calls[1])

	entries, ok := ledger.ReadAll()
	require.True(t, ok)
	require.Len(t, entries, 1)
	assert.Equal(t, history.ActionKill, entries[0].Action.Kind)
	assert.Equal(t, 42, entries[0].TargetPID)
	assert.True(t, entries[0].Outcome.OK())
}

func TestTerminateMissingPIDFailsAndRecordsOnce(t *testing.T) {
	c, _, ledger := newController(proc.Record{PID: 1, Name: "init"})

	out := c.Terminate(4242)
	assert.False(t, out.OK())
	assert.Equal(t, "no such process", out.Reason)

	entries, ok := ledger.ReadAll()
	require.True(t, ok)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Outcome.OK())
}

func TestTerminateTwiceIsSafe(t *testing.T) {
	c, _, ledger := newController(proc.Record{PID: 8, Name: "worker"})

	assert.True(t, c.Terminate(8).OK())
	second := c.Terminate(8)
	assert.False(t, second.OK())
	assert.Equal(t, "no such process", second.Reason)
	assert.Equal(t, 2, ledger.Len())
}

func TestTerminatePermissionDenied(t *testing.T) {
	c, fake, _ := newController(proc.Record{PID: 1, Name: "init"})
	fake.Deny(1)

	out := c.Terminate(1)
	assert.False(t, out.OK())
	assert.Equal(t, "permission denied", out.Reason)
}

func TestTerminateRejectsNonPositivePID(t *testing.T) {
	c, fake, ledger := newController()

	for _, pid := range []int{0, -1} {
		out := c.Terminate(pid)
		assert.False(t, out.OK())
		assert.Equal(t, "invalid pid", out.Reason)
	}
	assert.Empty(t, fake.Calls(), "no signal may reach the OS for pid <= 0")
	assert.Equal(t, 2, ledger.Len())
}

func TestSetPriorityOutOfRangeRejectedBeforeOSCall(t *testing.T) {
	c, fake, ledger := newController(proc.Record{PID: 5, Name: "job"})

	out, err := c.SetPriority(5, 25)
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.False(t, out.OK())
	assert.Empty(t, fake.Calls())

	entries, ok := ledger.ReadAll()
	require.True(t, ok)
	require.Len(t, entries, 1)
	assert.Equal(t, history.SetPriority(25), entries[0].Action)
	assert.False(t, entries[0].Outcome.OK())
}

func TestSetPriorityBounds(t *testing.T) {
	c, fake, _ := newController(proc.Record{PID: 5, Name: "job"})

	for _, nice := range []int{proc.MinNice, 0, proc.MaxNice} {
		out, err := c.SetPriority(5, nice)
		require.NoError(t, err)
		assert.True(t, out.OK(), "nice %d", nice)
	}
	_, err := c.SetPriority(5, proc.MinNice-1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Len(t, fake.Calls(), 3)
}

func TestSetPriorityOSFailuresAreOutcomes(t *testing.T) {
	c, fake, ledger := newController(proc.Record{PID: 5, Name: "job"})
	fake.Deny(5)

	out, err := c.SetPriority(5, -5)
	require.NoError(t, err)
	assert.Equal(t, "permission denied", out.Reason)

	out, err = c.SetPriority(77, 3)
	require.NoError(t, err)
	assert.Equal(t, "no such process", out.Reason)
	assert.Equal(t, 2, ledger.Len())
}

func TestRestartAlwaysFails(t *testing.T) {
	c, fake, ledger := newController(proc.Record{PID: 5, Name: "job"})

	out := c.Restart(5)
	assert.False(t, out.OK())
	assert.Equal(t, "restart is not supported", out.Reason)
	assert.Empty(t, fake.Calls())

	entries, _ := ledger.ReadAll()
	require.Len(t, entries, 1)
	assert.Equal(t, history.ActionRestart, entries[0].Action.Kind)
}

func TestDescribeMatchesWrappedErrno(t *testing.T) {
	assert.Equal(t, "no such process", describe(fmt.Errorf("kill 9: %w", unix.ESRCH)))
	assert.Equal(t, "permission denied", describe(fmt.Errorf("setpriority: %w", unix.EACCES)))
	assert.Equal(t, "permission denied", describe(unix.EPERM))
	assert.Equal(t, unix.EINVAL.Error(), describe(unix.EINVAL))
}
