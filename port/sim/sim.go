// Package sim is a host-side implementation of [hal.HAL]. It stands in for
// real Cortex-M silicon (port/cortexm) so the portable kernel, the rtos
// wrapper and whole example programs can run, and be tested, under plain
// `go test`/`go run` without a real OS timer or interrupt controller wired
// up.
//
// There is no real preemption here: a Cortex-M core can suspend a task's
// execution at any instruction, mid-expression, because the timer IRQ and
// PendSV are hardware. A goroutine cannot be suspended from the outside
// without the race detector's unsafe cousins, so this package instead
// models each task as a goroutine that runs uninterrupted between the
// defined kernel API boundaries (Sleep, Suspend, Resume, Delete, tick
// advance) and is handed off to cooperatively, exactly at those boundaries.
// Programs that only call into the kernel through the rtos package cannot
// tell the difference; tight loops with no RTOS calls in them can, and
// should not be used to test preemption fidelity against this port.
package sim

import (
	"sync"

	"github.com/bbrown1867/rucos-go/port/hal"
)

// task is one simulated task's execution context: a goroutine that is
// either parked on run waiting for its turn, or running free. blocked is
// guarded by HAL.mu and records which; a task only needs waking (a send on
// run) when blocked is true. A task that was ticked out rather than
// self-yielded (see [HAL.Tick]) never parks, so blocked stays false and
// reselecting it later requires no send at all — it never stopped running.
type task struct {
	token   hal.StackWord
	run     chan struct{}
	blocked bool
}

// HAL is a [hal.HAL] backed by goroutines instead of hardware registers.
// Zero value is not usable; construct with [New].
type HAL struct {
	mu sync.Mutex

	kp hal.KernelPort

	tasks     map[hal.StackWord]*task
	nextToken hal.StackWord

	current    hal.StackWord
	hasCurrent bool
	pending    bool
}

// New returns a ready-to-[Bind] simulation HAL.
func New() *HAL {
	return &HAL{tasks: map[hal.StackWord]*task{}}
}

func (h *HAL) Bind(kp hal.KernelPort) {
	h.kp = kp
}

// DisableInterrupts takes h.mu and always returns 0. Critical sections do
// not nest in the simulation: a second call before RestoreInterrupts
// deadlocks.
func (h *HAL) DisableInterrupts() uintptr {
	h.mu.Lock()
	return 0
}

// RestoreInterrupts ends the critical section and, if a switch was pended
// during it, performs the handoff: it asks the bound kernel which task
// should run next, wakes that task's goroutine, and blocks until this task
// is scheduled again. A caller therefore sees RestoreInterrupts return only
// once its own task has been rescheduled, mirroring a real port where the
// deferred-switch trap eventually resumes the interrupted instruction
// stream for any task that is merely preempted. A task that deleted itself
// is never chosen again, so its goroutine stays parked here for good.
func (h *HAL) RestoreInterrupts(uintptr) {
	var wake *task
	var self *task
	var doSend, doWait bool

	if h.pending {
		h.pending = false

		var outgoing *hal.StackWord
		if h.hasCurrent {
			tok := h.current
			outgoing = &tok
			self = h.tasks[h.current]
		}

		next := h.kp.HandleContextSwitch(outgoing)
		wake = h.tasks[next]
		h.current = next
		h.hasCurrent = true

		if wake != nil && wake.blocked {
			doSend = true
			wake.blocked = false
		}
		if self != nil {
			self.blocked = true
			doWait = true
		}
	}

	h.mu.Unlock()

	if doSend {
		wake.run <- struct{}{}
	}
	if doWait {
		<-self.run
	}
}

func (h *HAL) PendContextSwitch() {
	h.pending = true
}

// SetSwitchTrapLowestPriority is a no-op: there is no interrupt priority
// hierarchy to configure in the simulation, only the cooperative handoff in
// RestoreInterrupts.
func (h *HAL) SetSwitchTrapLowestPriority() {}

// ProgramTickSource is a no-op: this port has no free-running timer. Tests
// and examples drive the tick count explicitly with [HAL.Tick].
func (h *HAL) ProgramTickSource(tickRateHz, coreHz uint32) {}

// BuildInitialStack ignores the supplied stack slice — there is no real
// register frame to lay out on a host — and instead allocates a unique
// token identifying the task, then launches its goroutine parked on run
// until [HAL.EnterFirstTask] or a later switch hands it control.
func (h *HAL) BuildInitialStack(stack []byte, entry func(arg uintptr), arg uintptr) hal.StackWord {
	h.mu.Lock()
	h.nextToken++
	tok := h.nextToken
	t := &task{token: tok, run: make(chan struct{}), blocked: true}
	h.tasks[tok] = t
	h.mu.Unlock()

	go func() {
		<-t.run
		entry(arg)
		// entry must never return; block forever rather than let the
		// goroutine fall off the end, so this task is never mistaken for
		// one that can still be switched to.
		select {}
	}()

	return tok
}

// EnterFirstTask hands control to the task identified by sp and parks the
// calling goroutine forever, matching a real port's EnterFirstTask, which
// never returns to its caller either.
func (h *HAL) EnterFirstTask(sp hal.StackWord) {
	h.mu.Lock()
	t := h.tasks[sp]
	h.current = sp
	h.hasCurrent = true
	t.blocked = false
	h.mu.Unlock()

	t.run <- struct{}{}
	select {}
}

// Tick is this port's stand-in for the SysTick ISR. It takes the same lock
// DisableInterrupts does, but not RestoreInterrupts's handoff — it stands
// for the privileged context — so call it from test code or an example's
// driver goroutine to simulate the passage of time.
//
// It deliberately does not park its caller waiting for the preempted task
// to resume, unlike RestoreInterrupts: the goroutine calling Tick is a
// stand-in for interrupt context, not for the task it may be preempting,
// so it has nothing to wait for. The outgoing task's goroutine is left
// running; since nothing this package does ever forcibly suspends a
// goroutine mid-instruction (see package doc), a task that does not yield
// back into the rtos API promptly after being ticked-out keeps consuming a
// CPU core in the background. Kernel-tracked state (the demoted task's TCB
// becomes Ready) is correct regardless.
func (h *HAL) Tick(elapsed uint64) bool {
	h.mu.Lock()

	need := h.kp.TickUpdate(elapsed)

	var wake *task
	var doSend bool
	if need {
		var outgoing *hal.StackWord
		if h.hasCurrent {
			tok := h.current
			outgoing = &tok
		}
		next := h.kp.HandleContextSwitch(outgoing)
		wake = h.tasks[next]
		h.current = next
		h.hasCurrent = true

		if wake != nil && wake.blocked {
			doSend = true
			wake.blocked = false
		}
		// The outgoing task's blocked flag is left untouched: it was
		// ticked out, not self-parked, so it is still running free (see
		// the package doc) and needs no wake when reselected later.
	}

	h.mu.Unlock()

	if doSend {
		wake.run <- struct{}{}
	}
	return need
}
