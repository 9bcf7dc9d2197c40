package cortexm

import (
	"encoding/binary"
	"reflect"
	"unsafe"
)

// Exception-return frame constants. xpsrThumb sets only the Thumb bit,
// matching every task entry's calling convention (Cortex-M has no ARM
// instruction set). The two EXC_RETURN values select a thread-mode return
// through the process stack, with (excReturnFPU) or without (excReturnBase)
// an extended frame for the FPU caller-saved registers; this port always
// builds the non-FPU frame, since task entry points here never run with a
// live FPU context at creation time.
const (
	xpsrThumb     = 0x01000000
	excReturnBase = 0xFFFFFFFD
	excReturnFPU  = 0xFFFFFFED //lint:ignore U1000 documents the extended-frame alternative
)

// frameWords are the register values for a freshly created task's stack,
// highest-addressed word first (the order BuildInitialStack writes them in,
// working down from the top of the stack). Popped by the reference port's
// PendSV/EnterFirstTask restore sequence as, in order:
//
//	ldmia sp!, {r4-r11, r14}  // r14 <- EXC_RETURN
//	ldmia sp!, {r0-r3}
//	ldmia sp!, {r12, r14}     // r14 <- taskExit
//	ldmia sp!, {r1, r2}       // r1 <- entry, r2 <- xPSR (discarded)
//	bx r1
//
// R1-R12 carry debug-visible poison patterns (0xNN...NN) instead of
// zero, so an unexpectedly-read uninitialized register is obvious in a
// debugger rather than silently looking like valid data.
func frameWords(entry, arg, taskExit uintptr) [17]uint32 {
	return [17]uint32{
		xpsrThumb,
		uint32(entry),
		uint32(taskExit),
		0x12121212,
		0x03030303,
		0x02020202,
		0x01010101,
		uint32(arg),
		excReturnBase,
		0x11111111,
		0x10101010,
		0x09090909,
		0x08080808,
		0x07070707,
		0x06060606,
		0x05050505,
		0x04040404,
	}
}

// BuildInitialStack lays out a synthetic exception-return frame at the top
// of stack such that restoring it leaves the CPU in thread mode executing
// entry with arg in r0. entry must be a plain, non-capturing function: its
// code address is taken with reflect, which only yields a meaningful,
// stable pointer for a function with no closed-over state — a closure's
// code pointer does not carry its captured context the way this frame's
// hand-built r0 carries arg.
func BuildInitialStack(stack []byte, entry func(arg uintptr), arg uintptr) uintptr {
	base := uintptr(unsafe.Pointer(&stack[0]))
	top := (base + uintptr(len(stack))) &^ 7

	entryAddr := reflect.ValueOf(entry).Pointer()
	exitAddr := reflect.ValueOf(taskExit).Pointer()

	words := frameWords(entryAddr, arg, exitAddr)

	sp := top
	for _, w := range words {
		sp -= 4
		off := sp - base
		binary.LittleEndian.PutUint32(stack[off:off+4], w)
	}
	return sp
}

// taskExit is where a task's saved LR points: a task entry point must never
// return, so landing here traps it in place rather than falling into
// whatever memory follows.
func taskExit(uintptr) {
	for {
	}
}
