package kernel

// Kernel is the portable RTOS state machine: a running flag, a
// monotonically non-decreasing tick counter, a fixed-capacity task table,
// and the identifiers of the currently-executing and next-to-run tasks.
//
// A zero-value Kernel is not usable; construct one with [New]. Every
// exported method here is expected to run with interrupts disabled — the
// type itself performs no locking, by design (see package doc).
type Kernel struct {
	running bool
	tick    Tick

	tasks  [MaxNumTasks]TCB
	nTasks int

	curr    TaskID
	hasCurr bool

	next    TaskID
	hasNext bool

	logger Logger
}

// New constructs an idle, not-yet-running [Kernel]. Tasks may be created
// immediately; [Kernel.Start] makes it schedule them.
func New() *Kernel {
	return &Kernel{logger: NoopLogger{}}
}

// SetLogger installs the [Logger] used for scheduler tracing; contract
// violations panic with a [FatalError] without logging. A nil logger is
// replaced with [NoopLogger].
func (k *Kernel) SetLogger(l Logger) {
	if l == nil {
		l = NoopLogger{}
	}
	k.logger = l
}

func (k *Kernel) findIndex(id TaskID) (int, bool) {
	for i := 0; i < k.nTasks; i++ {
		if k.tasks[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

// Create adds a new task to the kernel in the Ready state and runs the
// scheduler. It is legal to call before [Kernel.Start]; a switch is never
// reported as needed before the kernel is running.
//
// Create panics with a [FatalError] if id is already held by a live task,
// or if the task table is already at [MaxNumTasks].
func (k *Kernel) Create(id TaskID, priority Priority, sp StackPtr) bool {
	if _, ok := k.findIndex(id); ok {
		fatalTask(ErrDuplicateTaskID, id)
	}
	if k.nTasks >= MaxNumTasks {
		fatal(ErrTooManyTasks)
	}

	k.tasks[k.nTasks] = TCB{
		ID:       id,
		Priority: priority,
		StackPtr: sp,
		State:    TaskReady,
		Pend:     Pend{Reason: PendReasonNotPending},
	}
	k.nTasks++

	return k.scheduler()
}

// Delete removes a task from the kernel and runs the scheduler. If id is
// nil, the current task is deleted. Deleting the current task is legal and
// clears [Kernel.GetCurrentTask]'s notion of "current" until the next
// switch commits; it signals [Kernel.HandleContextSwitch] to skip saving
// outgoing register state, since there is no longer an outgoing task to
// save it for.
//
// Delete panics with a [FatalError] if the kernel is not running, or if id
// names a task that does not exist.
func (k *Kernel) Delete(id *TaskID) bool {
	if !k.running {
		fatal(ErrKernelNotRunning)
	}

	target := k.requireCurrentOrID(id)

	idx, ok := k.findIndex(target)
	if !ok {
		fatalTask(ErrUnknownTaskID, target)
	}

	wasCurrent := k.hasCurr && k.curr == target
	k.removeAt(idx)
	if wasCurrent {
		k.hasCurr = false
	}

	return k.scheduler()
}

// removeAt deletes the task at index idx, preserving the order of the
// remaining tasks (the scheduler's first-seen tie-break between equal
// priorities depends on a stable order).
func (k *Kernel) removeAt(idx int) {
	copy(k.tasks[idx:k.nTasks-1], k.tasks[idx+1:k.nTasks])
	k.nTasks--
}

// Sleep pends the current task until the tick counter reaches
// tick+delay, then runs the scheduler. A delay of 0 sets the wake tick to
// the current tick, so the wake sweep of the scheduler pass that Sleep
// itself runs revives the task at once (it is Pending only briefly); that
// pass then selects as usual, so the task keeps the CPU unless a
// higher-priority task is runnable.
//
// Sleep panics with a [FatalError] if the kernel is not running.
func (k *Kernel) Sleep(delay Tick) bool {
	id := k.requireCurrent()
	idx, _ := k.findIndex(id)

	k.tasks[idx].State = TaskPending
	k.tasks[idx].Pend = Pend{Reason: PendReasonSleep, WakeTick: k.tick + delay}

	return k.scheduler()
}

// Suspend pends a task unconditionally, even if it was already pending for
// another reason (e.g. mid-sleep). If id is nil, the current task is
// suspended, which requires the kernel to be running.
//
// Suspend panics with a [FatalError] if id names a task that does not
// exist, or if id is nil and the kernel is not running.
func (k *Kernel) Suspend(id *TaskID) bool {
	target := k.requireCurrentOrID(id)

	idx, ok := k.findIndex(target)
	if !ok {
		fatalTask(ErrUnknownTaskID, target)
	}

	k.tasks[idx].State = TaskPending
	k.tasks[idx].Pend = Pend{Reason: PendReasonSuspended}

	return k.scheduler()
}

// Resume makes a task Ready regardless of why it was pending — suspended,
// sleeping, or (idempotently) already Ready — then runs the scheduler.
//
// Resume panics with a [FatalError] if id names a task that does not exist.
func (k *Kernel) Resume(id TaskID) bool {
	idx, ok := k.findIndex(id)
	if !ok {
		fatalTask(ErrUnknownTaskID, id)
	}

	k.tasks[idx].State = TaskReady
	k.tasks[idx].Pend = Pend{Reason: PendReasonNotPending}

	return k.scheduler()
}

// TickUpdate advances the tick counter by elapsed and runs the scheduler.
// It is safe to call from tick-ISR context (i.e. it performs no allocation
// and assumes interrupts are already disabled by the caller).
func (k *Kernel) TickUpdate(elapsed Tick) bool {
	k.tick += elapsed
	return k.scheduler()
}

// HandleContextSwitch commits the scheduler's already-made decision: the
// port layer calls this from its deferred-switch trap after saving any
// outgoing register state to updatedSP. If there was no outgoing task
// (e.g. it was just deleted, or this is the very first switch performed by
// [Kernel.Start]), pass a nil updatedSP.
//
// It returns the incoming task's stack pointer, which the port layer uses
// to restore register state and resume execution.
//
// HandleContextSwitch panics with a [FatalError] if the scheduler had not
// actually requested a switch — that indicates the port layer ran the trap
// spuriously.
func (k *Kernel) HandleContextSwitch(updatedSP *StackPtr) StackPtr {
	if k.hasCurr {
		idx, ok := k.findIndex(k.curr)
		if ok {
			if updatedSP != nil {
				k.tasks[idx].StackPtr = *updatedSP
			}
			if k.tasks[idx].State == TaskRunning {
				k.tasks[idx].State = TaskReady
			}
		}
	}

	if !k.hasNext {
		fatal(ErrNoSwitchPending)
	}

	k.curr = k.next
	k.hasCurr = true
	k.hasNext = false

	idx, _ := k.findIndex(k.curr)
	k.tasks[idx].State = TaskRunning

	return k.tasks[idx].StackPtr
}

// Start transitions the kernel to running and installs the first task,
// returning its stack pointer for the port layer to leap into (bypassing
// the usual "save outgoing context" phase, since there is no outgoing
// task).
//
// Start panics with a [FatalError] if called a second time, or if no task
// is runnable (e.g. no task was ever created).
func (k *Kernel) Start() StackPtr {
	if k.running {
		fatal(ErrAlreadyRunning)
	}
	k.running = true

	if !k.scheduler() {
		fatal(ErrNoRunnableTask)
	}

	return k.HandleContextSwitch(nil)
}

// GetCurrentTask returns the identifier of the currently-executing task.
//
// GetCurrentTask panics with a [FatalError] if the kernel is not running or
// has no current task (the latter only transiently true, between a Delete
// of the current task and the switch that commits its successor).
func (k *Kernel) GetCurrentTask() TaskID {
	return k.requireCurrent()
}

// GetCurrentTick returns the current value of the tick counter.
func (k *Kernel) GetCurrentTick() Tick {
	return k.tick
}

func (k *Kernel) requireCurrent() TaskID {
	if !k.running || !k.hasCurr {
		fatal(ErrKernelNotRunning)
	}
	return k.curr
}

func (k *Kernel) requireCurrentOrID(id *TaskID) TaskID {
	if id != nil {
		return *id
	}
	return k.requireCurrent()
}

// scheduler is the sole place next is written. It performs the wake sweep,
// then selects the runnable task of smallest Priority, then decides whether
// that selection differs from the task already running.
func (k *Kernel) scheduler() bool {
	if !k.running {
		return false
	}

	k.wakeSweep()

	chosen, ok := k.selectHighestPriorityRunnable()
	switch {
	case !ok:
		// No runnable task: only reachable if the idle task was deleted.
		k.hasNext = false
	case k.hasCurr && k.curr == chosen:
		k.hasNext = false
	default:
		k.next = chosen
		k.hasNext = true
	}

	if k.logger.IsEnabled(LevelDebug) {
		k.logger.Log(LogEntry{
			Level:   LevelDebug,
			Message: "scheduler pass",
			TaskID:  k.next,
			HasTask: k.hasNext,
			Tick:    k.tick,
		})
	}

	return k.hasNext
}

// wakeSweep runs before selection so that a task whose sleep expires at the
// current tick can be selected immediately, without waiting another pass.
func (k *Kernel) wakeSweep() {
	for i := 0; i < k.nTasks; i++ {
		t := &k.tasks[i]
		if t.Pend.Reason == PendReasonSleep && k.tick >= t.Pend.WakeTick {
			t.State = TaskReady
			t.Pend = Pend{Reason: PendReasonNotPending}
		}
	}
}

// selectHighestPriorityRunnable scans linearly and keeps the runnable task
// with the numerically smallest Priority, breaking ties between equal
// priorities by first-seen order.
func (k *Kernel) selectHighestPriorityRunnable() (TaskID, bool) {
	best := -1
	for i := 0; i < k.nTasks; i++ {
		if !k.tasks[i].runnable() {
			continue
		}
		if best == -1 || k.tasks[i].Priority < k.tasks[best].Priority {
			best = i
		}
	}
	if best == -1 {
		return 0, false
	}
	return k.tasks[best].ID, true
}
