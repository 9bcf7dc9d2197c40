//go:build tinygo && arm

package cortexm

import "device/arm"

// boundKernel is the kernel this port's exception handlers call into. It is
// a single package-level variable, not a field on [HAL], because PendSV and
// SysTick are free-standing exported functions the vector table calls by
// name — they have no receiver to hang state off, the same constraint the
// reference Cortex-M port works around with its own `static mut KERNEL`.
var boundKernel interface {
	HandleContextSwitch(updatedSP *uintptr) uintptr
	TickUpdate(elapsed uint64) bool
}

// SysTick is the tick-source interrupt handler: advance the kernel's tick
// counter by one and pend a switch if the kernel reports one is due.
//
//export SysTick
func SysTick() {
	tok := disableInterrupts()
	need := boundKernel.TickUpdate(1)
	if need {
		scb.triggerPendSV()
	}
	restoreInterrupts(tok)
}

// PendSV is the deferred-switch trap. It runs at the lowest exception
// priority (set once by [HAL.SetSwitchTrapLowestPriority]) so every
// higher-priority interrupt, including the one that pended it, has already
// returned by the time it executes. It saves the outgoing task's
// callee-saved registers to its own stack, calls into the kernel to learn
// the incoming task's stack pointer, restores that task's callee-saved
// registers, and returns into it.
//
//export PendSV
//go:naked
func PendSV() {
	arm.AsmFull(`
		cpsid i
		mrs r0, psp
		mov r1, lr
		tst r14, #0x10
		it eq
		vstmdbeq r0!, {{s16-s31}}
		stmdb r0!, {{r4-r11, r14}}
		push {{r1}}
		bl {contextSwitch}
		pop {{r1}}
		ldmia r0!, {{r4-r11, r14}}
		tst r14, #0x10
		it eq
		vldmiaeq r0!, {{s16-s31}}
		msr psp, r0
		cpsie i
		bx r1
	`, map[string]interface{}{
		"contextSwitch": contextSwitch,
	})
}

// contextSwitch is PendSV's non-naked half: ordinary Go, called with the
// outgoing task's saved stack pointer in r0 by the assembly above, and
// expected to return the incoming task's stack pointer in r0.
//
//export contextSwitch
func contextSwitch(outgoingSP uintptr) uintptr {
	sp := outgoingSP
	return boundKernel.HandleContextSwitch(&sp)
}

// enterFirstTask never returns: it switches the CPU onto the process stack
// at sp and jumps into the first task, discarding the caller's own context
// entirely — there is no "outgoing" task to save.
//
//go:naked
func enterFirstTask(sp uintptr) {
	arm.AsmFull(`
		cpsid i
		mov r0, {sp}
		msr psp, r0
		mrs r1, control
		orr r1, r1, #2
		bic r1, r1, #4
		msr control, r1
		isb
		ldmia sp!, {{r4-r11, r14}}
		ldmia sp!, {{r0-r3}}
		ldmia sp!, {{r12, r14}}
		ldmia sp!, {{r1, r2}}
		cpsie i
		bx r1
	`, map[string]interface{}{
		"sp": sp,
	})
}

func disableInterrupts() uintptr {
	return uintptr(arm.DisableInterrupts())
}

func restoreInterrupts(mask uintptr) {
	arm.EnableInterrupts(uintptr(mask))
}
