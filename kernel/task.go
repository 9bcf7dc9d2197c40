package kernel

// TaskID is a caller-chosen, unique-among-live-tasks identifier. Identifiers
// need not be contiguous; by convention the idle task uses [IdleTaskID].
type TaskID = uint64

// Priority orders tasks for scheduling purposes: numerically smaller means
// higher priority. Priorities must be pairwise distinct among live tasks —
// this kernel has no concept of round-robin among equal priorities.
type Priority = uint32

// Tick is the kernel's notion of time: a monotonically non-decreasing count
// of periodic timer interrupts, advanced only through [Kernel.TickUpdate].
type Tick = uint64

// StackPtr is an opaque, pointer-sized value representing a task's saved
// stack top. The kernel never dereferences it; only the port layer's
// context-switch and initial-stack-image code gives it meaning.
type StackPtr = uintptr

// TaskState is the run state of a task.
type TaskState uint8

const (
	// TaskReady means the task is runnable but not currently executing.
	TaskReady TaskState = iota
	// TaskRunning means the task is the one currently executing. At most
	// one task in a [Kernel] may hold this state at any time.
	TaskRunning
	// TaskPending means the task is not runnable; see [Pend] for why.
	TaskPending
)

// String returns a human-readable name for the state, used in diagnostics.
func (s TaskState) String() string {
	switch s {
	case TaskReady:
		return "Ready"
	case TaskRunning:
		return "Running"
	case TaskPending:
		return "Pending"
	default:
		return "Unknown"
	}
}

// PendReason discriminates the variants of [Pend]. The zero value,
// [PendReasonNotPending], is the only value valid for a task whose
// TaskState is not [TaskPending].
type PendReason uint8

const (
	// PendReasonNotPending means the task is not waiting on anything; valid
	// only when TaskState is [TaskReady] or [TaskRunning].
	PendReasonNotPending PendReason = iota
	// PendReasonSuspended means the task was suspended and can only become
	// runnable again through an explicit Resume.
	PendReasonSuspended
	// PendReasonSleep means the task is waiting for the tick counter to
	// reach WakeTick; see [Pend.WakeTick].
	PendReasonSleep
)

// Pend is the tagged reason a [TaskPending] task is not runnable. WakeTick
// is meaningful only when Reason is [PendReasonSleep]; it is part of the
// contract, not merely convention, that callers never read WakeTick for any
// other Reason.
type Pend struct {
	Reason   PendReason
	WakeTick Tick
}

// TCB is a task control block: the kernel's complete record of one task.
type TCB struct {
	ID       TaskID
	Priority Priority
	StackPtr StackPtr
	State    TaskState
	Pend     Pend
}

// runnable reports whether t may be selected by the scheduler: Ready and
// Running tasks are runnable, Pending tasks never are.
func (t *TCB) runnable() bool {
	return t.State == TaskReady || t.State == TaskRunning
}
