//go:build tinygo && arm

package cortexm

import (
	"runtime/volatile"
	"unsafe"
)

// System Control Block and SysTick register layouts, per the Cortex-M
// Architecture Reference Manual. Only the fields this port touches are
// named; the rest are left as anonymous padding, the same trimmed
// memory-mapped-register style the tinygo runtime's own MMIO struct
// definitions use for peripherals it only partially drives.
var scb = (*scbRegisters)(unsafe.Pointer(uintptr(0xE000ED00)))

type scbRegisters struct {
	_    [6]volatile.Register32 // CPUID, ICSR, VTOR, AIRCR, SCR, CCR
	shpr [3]volatile.Register32 // SHPR1, SHPR2, SHPR3
}

// SHPR3 bits[23:16] hold PendSV's priority (exception number 14).
const shpr3PendSVByteOffset = 16

func (r *scbRegisters) setPendSVPriority(prio uint8) {
	v := r.shpr[2].Get()
	v &^= 0xFF << shpr3PendSVByteOffset
	v |= uint32(prio) << shpr3PendSVByteOffset
	r.shpr[2].Set(v)
}

const icsrPendSVSet = 1 << 28 // PENDSVSET bit

func (r *scbRegisters) triggerPendSV() {
	icsr := (*volatile.Register32)(unsafe.Pointer(uintptr(0xE000ED04)))
	icsr.Set(icsrPendSVSet)
}

var systick = (*systickRegisters)(unsafe.Pointer(uintptr(0xE000E010)))

type systickRegisters struct {
	csr   volatile.Register32
	rvr   volatile.Register32
	cvr   volatile.Register32
	calib volatile.Register32
}

const (
	systickCSREnable    = 1 << 0
	systickCSRTickInt   = 1 << 1
	systickCSRClkSource = 1 << 2 // 1 = core clock, 0 = external reference
)

func (r *systickRegisters) program(tickRateHz, coreHz uint32) {
	r.csr.Set(0)
	r.rvr.Set(coreHz/tickRateHz - 1)
	r.cvr.Set(0)
	r.csr.Set(systickCSRClkSource | systickCSRTickInt | systickCSREnable)
}
