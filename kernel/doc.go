// Package kernel implements the portable state machine at the center of
// rucos-go: task control blocks, the priority scheduler, tick bookkeeping
// and the two-phase context-switch handshake. Nothing in this package
// touches a register, a stack frame or an interrupt controller — it knows
// only about abstract task identifiers, priorities and an opaque stack
// pointer word. The architecture-specific half of the kernel (building a
// task's initial stack image, the deferred-switch trap, the tick source)
// lives in the sibling port/ tree and is wired to this package through the
// port/hal.HAL contract.
//
// # Single global instance
//
// A [Kernel] is meant to be constructed exactly once, by the application's
// rtos wrapper, and never destroyed: interrupt handlers have no way to
// thread a handle to "their" kernel through, so there can only be one.
// [Kernel] itself does not enforce this (it is an ordinary value with no
// hidden global state); the rtos package is what gives the process a single
// shared instance, reachable from ISR context, protected by a
// globally-interrupts-disabled critical section around every call.
//
// # Tagged pend state
//
// A task that is not runnable records *why* in [Pend], a discriminated
// struct rather than an integer reason code plus a loose timestamp field:
// the wake tick carried in [Pend.WakeTick] is only meaningful when Reason is
// [PendReasonSleep]. Treat [Pend] as a closed sum type; the zero value is
// [PendReasonNotPending].
//
// # Equal-priority scheduling is unsupported
//
// The scheduler has no round-robin among equal priorities. [Kernel.Create]
// does not check that a new task's priority is unused by other live tasks;
// when two runnable tasks share a priority, the scheduler always picks the
// one that comes first in the task table. An implementation that wants
// round-robin among equal priorities needs a per-priority ready queue.
//
// # The scheduler is a pure decision, the switch is a separate commit
//
// [Kernel]'s scheduler only ever writes the next-task decision; it never
// touches a stack pointer or a CPU register. [Kernel.HandleContextSwitch]
// is the only method that commits a decision already made, and it does so
// without reconsidering the decision. This split exists so that the
// portable half stays free of register-level concerns, and so a switch can
// be deferred until every higher-priority interrupt has drained, which is
// the actual preemption mechanism: the scheduler runs with interrupts
// disabled and always completes before any switch is performed.
package kernel
