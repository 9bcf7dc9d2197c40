package rtos_test

import (
	"testing"
	"time"

	"github.com/bbrown1867/rucos-go/port/sim"
	"github.com/bbrown1867/rucos-go/rtos"
	"github.com/stretchr/testify/require"
)

// TestRuntimeSchedulesTaskThroughSim drives a full Runtime, including the
// idle task New installs automatically, against the host simulation HAL:
// Create before Start, Start, a Sleep long enough to hand off to idle, a
// tick sequence that wakes the sleeper back up, and a final Suspend.
func TestRuntimeSchedulesTaskThroughSim(t *testing.T) {
	h := sim.New()
	rt := rtos.New(h, make([]byte, 256), nil)

	const taskID = uint64(1)

	started := make(chan struct{})
	woke := make(chan struct{})

	// The task records the current task itself: right after signalling it
	// sleeps and hands off to idle, so a read from this goroutine would race.
	var firstCurrent uint64
	require.False(t, rt.Create(taskID, 10, make([]byte, 256), func(uintptr) {
		firstCurrent = rt.GetCurrentTask()
		close(started)
		rt.Sleep(5)
		close(woke)
		rt.Suspend(nil)
	}, 0))

	go rt.Start(1000, 0)

	waitOrFail(t, started, "task never started")

	require.Equal(t, taskID, firstCurrent)

	for i := 0; i < 4; i++ {
		require.False(t, h.Tick(1), "must not wake before tick 5")
	}
	require.NotEqual(t, taskID, rt.GetCurrentTask(), "idle runs while task 1 sleeps")

	require.True(t, h.Tick(1))
	waitOrFail(t, woke, "task never woke after sleeping 5 ticks")

	require.Equal(t, uint64(5), uint64(rt.GetCurrentTick()))
}

func waitOrFail(t *testing.T, ch <-chan struct{}, msg string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal(msg)
	}
}
