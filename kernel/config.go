package kernel

// TickRateHz is the frequency, in hertz, at which the port layer's tick
// source is expected to invoke [Kernel.TickUpdate]. It is a compile-time
// constant because the kernel treats a tick as the smallest unit of time it
// understands; changing it changes the meaning of every Sleep delay in the
// system, not just the rate of the interrupt.
const TickRateHz = 1000

// MaxNumTasks bounds the fixed-capacity task table a [Kernel] owns. It
// exists because the kernel never allocates: the task table is a plain
// array sized once, matching the caller-owns-all-memory contract that also
// governs task stacks.
//
// The wake sweep in the scheduler is O(MaxNumTasks) and runs on every tick
// and every API call. 256 keeps that linear scan cheap
// enough to run at TickRateHz on a single Cortex-M core. A deployment that
// wants hundreds of tasks and still wants cheap ticks should replace the
// linear sweep with a wake-time priority queue instead of raising this
// constant; the scan cost does not disappear, it just gets paid at a
// different layer.
const MaxNumTasks = 256

// IdleTaskID is the identifier conventionally used for the kernel's idle
// task, the always-runnable lowest-priority task created by the rtos
// package's New. It is the maximum representable [TaskID] so that no
// application task can accidentally collide with it.
const IdleTaskID TaskID = ^TaskID(0)

// IdlePriority is the priority conventionally assigned to the idle task:
// the maximum representable [Priority], i.e. numerically the lowest
// priority a task can have.
const IdlePriority Priority = ^Priority(0)
