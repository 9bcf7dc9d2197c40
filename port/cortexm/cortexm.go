//go:build tinygo && arm

package cortexm

import "github.com/bbrown1867/rucos-go/port/hal"

var _ hal.HAL = (*HAL)(nil)

// HAL is the real-silicon [hal.HAL]. Construct with [New] and pass to
// rtos.New; there should be exactly one per program, matching the single
// static KERNEL the reference port holds.
type HAL struct{}

// New returns a ready-to-bind Cortex-M HAL.
func New() *HAL {
	return &HAL{}
}

func (h *HAL) Bind(kp hal.KernelPort) {
	boundKernel = kp
}

func (h *HAL) DisableInterrupts() uintptr {
	return disableInterrupts()
}

func (h *HAL) RestoreInterrupts(token uintptr) {
	restoreInterrupts(token)
}

func (h *HAL) PendContextSwitch() {
	scb.triggerPendSV()
}

// SetSwitchTrapLowestPriority sets PendSV to 0xFF, the lowest priority an
// implementation-defined number of priority bits can always represent, so
// the context switch only ever runs once every other interrupt has
// returned.
func (h *HAL) SetSwitchTrapLowestPriority() {
	scb.setPendSVPriority(0xFF)
}

func (h *HAL) ProgramTickSource(tickRateHz, coreHz uint32) {
	systick.program(tickRateHz, coreHz)
}

func (h *HAL) BuildInitialStack(stack []byte, entry func(arg uintptr), arg uintptr) hal.StackWord {
	return BuildInitialStack(stack, entry, arg)
}

func (h *HAL) EnterFirstTask(sp hal.StackWord) {
	enterFirstTask(sp)
}
