// Package sim provides the core slot-synchronous simulation engine for
// battery-powered devices contending on a shared slotted-Aloha channel.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - device.go: the duty-cycle state machine (active → idle → sleep →
//     wakeup, dead terminal), energy accounting, and the per-slot
//     evaluation order
//   - channel.go: slot contention and the one-slot lagged resolution
//     contract
//   - simulator.go: the slot loop tying devices and channel together
//
// # Architecture
//
// Time advances in unit slots. Every slot, each device independently
// evaluates its state machine (arrivals, energy draw, timers, transmission
// draw) and may register an attempt with the channel; the channel resolves
// the previous slot only after all devices have stepped, so resolution of
// slot t never happens before the start of slot t+1.
//
// Determinism: every stochastic source (per-device inter-arrival draws,
// per-device-per-slot transmission draws) is a private stream derived from
// the run seed via PartitionedRNG (rng.go). Identical seed and configuration
// produce byte-identical results.
//
// Post-run, Aggregate (result.go) reduces device statistics and channel
// totals into a RunResult. The optional sim/trace sub-package records
// per-slot states for external plotting.
package sim
