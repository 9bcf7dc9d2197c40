// Package rtos is the application-facing API: the top-level wrappers that
// bracket every kernel call in a globally-interrupts-disabled critical
// section and pend a deferred context switch when the kernel reports one
// is needed. It is the Go analogue of the Rust port crate's free functions
// (init/create/start/sleep/suspend/resume/delete/get_current_task/
// get_current_tick), generalized to take a [hal.HAL] instead of hard-coding
// a single architecture.
package rtos

import (
	"github.com/bbrown1867/rucos-go/kernel"
	"github.com/bbrown1867/rucos-go/port/hal"
)

// Runtime wires a [kernel.Kernel] to a [hal.HAL] implementation. Construct
// exactly one per process with [New]; like the kernel it wraps, a Runtime
// is meant to be a single, never-destroyed instance reachable from ISR
// context.
type Runtime struct {
	krn *kernel.Kernel
	hal hal.HAL
}

// New constructs a Runtime over hal and creates the idle task: the
// always-runnable, lowest-priority task that keeps the scheduler from ever
// finding "no runnable task" during ordinary operation. If idle is nil, the
// idle task loops forever; a caller-supplied idle function must never
// block or call any Runtime method, since doing so can leave the
// scheduler with nothing runnable until the next tick.
func New(h hal.HAL, idleStack []byte, idle func(arg uintptr), opts ...Option) *Runtime {
	cfg := resolveOptions(opts)

	krn := kernel.New()
	krn.SetLogger(cfg.logger)
	h.Bind(krn)

	r := &Runtime{krn: krn, hal: h}

	if idle == nil {
		idle = idleLoop
	}
	r.Create(kernel.IdleTaskID, kernel.IdlePriority, idleStack, idle, 0)

	return r
}

func idleLoop(uintptr) {
	for {
	}
}

// criticalSection runs fn with interrupts disabled and pends a context
// switch if fn reports one is needed. Every top-level wrapper below makes
// its one kernel call through this helper.
func (r *Runtime) criticalSection(fn func() bool) bool {
	tok := r.hal.DisableInterrupts()
	defer r.hal.RestoreInterrupts(tok)

	need := fn()
	if need {
		r.hal.PendContextSwitch()
	}
	return need
}

// Create builds the task's initial stack image and registers it with the
// kernel. entry must never return: a returning task traps into an
// infinite-loop trampoline, effectively stalling — surfaceable by a
// watchdog. A context switch may occur once the calling critical section
// ends, if the kernel reports the new task should preempt the caller.
func (r *Runtime) Create(id kernel.TaskID, priority kernel.Priority, stack []byte, entry func(arg uintptr), arg uintptr) bool {
	sp := r.hal.BuildInitialStack(stack, entry, arg)
	return r.criticalSection(func() bool {
		return r.krn.Create(id, priority, kernel.StackPtr(sp))
	})
}

// Delete removes a task. If id is nil, the current task is deleted.
func (r *Runtime) Delete(id *kernel.TaskID) bool {
	return r.criticalSection(func() bool {
		return r.krn.Delete(id)
	})
}

// Sleep pends the current task for delay ticks.
func (r *Runtime) Sleep(delay kernel.Tick) bool {
	return r.criticalSection(func() bool {
		return r.krn.Sleep(delay)
	})
}

// Suspend pends a task indefinitely. If id is nil, the current task is
// suspended.
func (r *Runtime) Suspend(id *kernel.TaskID) bool {
	return r.criticalSection(func() bool {
		return r.krn.Suspend(id)
	})
}

// Resume makes a task Ready.
func (r *Runtime) Resume(id kernel.TaskID) bool {
	return r.criticalSection(func() bool {
		return r.krn.Resume(id)
	})
}

// GetCurrentTask returns the identifier of the currently-executing task.
func (r *Runtime) GetCurrentTask() kernel.TaskID {
	var id kernel.TaskID
	r.criticalSection(func() bool {
		id = r.krn.GetCurrentTask()
		return false
	})
	return id
}

// GetCurrentTick returns the current value of the tick counter.
func (r *Runtime) GetCurrentTick() kernel.Tick {
	var tick kernel.Tick
	r.criticalSection(func() bool {
		tick = r.krn.GetCurrentTick()
		return false
	})
	return tick
}

// Start configures the tick source and the switch trap's priority, then
// installs the first task. It never returns: control passes to the first
// task via the port's EnterFirstTask.
func (r *Runtime) Start(tickRateHz, coreHz uint32) {
	r.hal.SetSwitchTrapLowestPriority()
	var sp kernel.StackPtr
	r.criticalSection(func() bool {
		sp = r.krn.Start()
		return false
	})
	r.hal.ProgramTickSource(tickRateHz, coreHz)
	r.hal.EnterFirstTask(sp)
}
