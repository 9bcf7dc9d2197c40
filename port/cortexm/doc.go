// Package cortexm is the real-hardware [hal.HAL] implementation: it lays
// out the synthetic exception-return stack frame a task needs to start
// running, and drives the SysTick/PendSV pair the way the reference
// Cortex-M port does — PendSV as the deferred-switch trap, at the lowest
// exception priority so it only fires once every other interrupt has
// drained, and SysTick as the tick source.
//
// Only [BuildInitialStack] and the stack-layout constants are buildable and
// tested on a plain host; everything that touches SCB/SysTick registers or
// the PendSV/EnterFirstTask exception-return assembly requires a TinyGo
// build for an actual ARM Cortex-M target (build tag `tinygo && arm`), the
// same way the tinygo runtime's own per-architecture interrupt trampolines
// (e.g. its RISC-V handleInterruptASM) are gated to the target they assume.
package cortexm
