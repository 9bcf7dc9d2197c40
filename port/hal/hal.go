// Package hal defines the narrow contract between the portable kernel's
// rtos wrapper and an architecture-specific port. The hardware
// abstraction, the interrupt-disable primitive and the register-save
// assembly are external collaborators the kernel invokes but never
// implements; this package is the Go-shaped seam that lets a single rtos
// wrapper run unmodified against real silicon (port/cortexm) or a
// host-side simulation (port/sim) — a GOOS-tagged backend-swap pair
// generalized to an explicit interface, since unlike two host OSes, a
// Cortex-M target and a test host cannot both be compiled by the same
// `go build` invocation.
package hal

// StackWord is the machine word size used for stack slots and stack
// pointers: 32 bits on every Cortex-M core this module targets.
type StackWord = uintptr

// KernelPort is the slice of *kernel.Kernel a port needs direct access to,
// outside the critical-section wrappers rtos already provides: the
// deferred-switch trap calls HandleContextSwitch, and the tick source's
// ISR calls TickUpdate. *kernel.Kernel satisfies this without any adapter.
type KernelPort interface {
	HandleContextSwitch(updatedSP *StackWord) StackWord
	TickUpdate(elapsed uint64) bool
}

// HAL is the contract an architecture-specific port must satisfy. The rtos
// package depends only on this interface, never on a concrete port, so it
// can be driven by real hardware or by a host simulation interchangeably.
type HAL interface {
	// Bind gives the port the kernel reference its trap and tick-ISR need.
	// Called once, by rtos.New, before any other method.
	Bind(kp KernelPort)

	// DisableInterrupts blocks all maskable interrupts and returns an
	// opaque token describing the previous interrupt state, so nested
	// critical sections restore correctly.
	DisableInterrupts() (token uintptr)

	// RestoreInterrupts releases the critical section opened by the
	// matching DisableInterrupts call.
	RestoreInterrupts(token uintptr)

	// PendContextSwitch requests the lowest-priority deferred-switch trap.
	// It must be safe to call from within a DisableInterrupts section; the
	// trap itself only actually runs once every higher-priority interrupt,
	// including the critical section's own caller, has drained.
	PendContextSwitch()

	// SetSwitchTrapLowestPriority configures the deferred-switch trap's
	// priority to the lowest level the hardware supports. Called exactly
	// once, by Start.
	SetSwitchTrapLowestPriority()

	// ProgramTickSource configures the periodic tick interrupt so that it
	// fires at tickRateHz given a core clock of coreHz, and arranges for it
	// to invoke TickUpdate(1) under a critical section.
	ProgramTickSource(tickRateHz, coreHz uint32)

	// BuildInitialStack lays out a synthetic initial stack frame in stack
	// (caller-owned memory) such that an exception-return sequence followed
	// by this port's register-pop sequence leaves the CPU executing entry
	// with arg in the first argument register. It returns the resulting
	// stack pointer.
	BuildInitialStack(stack []byte, entry func(arg uintptr), arg uintptr) StackWord

	// EnterFirstTask leaps into the task whose stack pointer is sp,
	// bypassing the usual "save outgoing context" phase since there is no
	// outgoing task. It never returns.
	EnterFirstTask(sp StackWord)
}
