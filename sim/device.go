// Defines the Device and its duty-cycle state machine.
// A device alternates between ACTIVE, IDLE, SLEEP and WAKEUP while its
// battery lasts; DEAD is terminal. Transition logic lives in pure functions
// (arrivalTransition, evalSlot) so the state machine is unit-testable
// without running a full simulation.

package sim

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// DeviceState represents the duty-cycle state of a device.
// Exactly one state holds at any slot boundary.
type DeviceState string

const (
	StateActive DeviceState = "active"
	StateIdle   DeviceState = "idle"
	StateSleep  DeviceState = "sleep"
	StateWakeup DeviceState = "wakeup"
	StateDead   DeviceState = "dead"
)

// arrivalTransition applies the forced transition a packet arrival causes:
// IDLE wakes straight to ACTIVE (idle timer cancelled), SLEEP starts the
// wake-up sequence. Arrivals in other states only enqueue; in particular an
// ACTIVE device with a pending transmission is not disturbed.
func arrivalTransition(state DeviceState, wakeTimerSlots int) (DeviceState, int) {
	switch state {
	case StateIdle:
		return StateActive, 0
	case StateSleep:
		return StateWakeup, wakeTimerSlots
	default:
		return state, 0
	}
}

// slotOutcome is the result of one slot of state-machine evaluation.
type slotOutcome struct {
	State     DeviceState
	IdleTimer int
	WakeTimer int
	Transmit  bool // register a transmission attempt for the current slot
}

// evalSlot advances the duty-cycle state machine by one slot. It is a pure
// function of the current state, timers, queue occupancy and the slot's
// transmission draw; energy accounting and arrivals happen before it runs.
//
// Timer semantics: a timer of N holds its state for N full slots and the
// transition fires on the slot the timer reaches zero. A WAKEUP device whose
// timer expired becomes ACTIVE and may transmit in the same slot.
//
// A DEAD device reaching evaluation indicates a broken invariant upstream
// and panics.
func evalSlot(state DeviceState, idleTimer, wakeTimer, queueLen int, txDraw float64, cfg Config) slotOutcome {
	if state == StateDead {
		panic("evalSlot: dead device reached state machine evaluation")
	}

	out := slotOutcome{State: state, IdleTimer: idleTimer, WakeTimer: wakeTimer}

	if out.State == StateWakeup {
		if out.WakeTimer == 0 {
			out.State = StateActive
		} else {
			out.WakeTimer--
		}
	}

	if queueLen > 0 {
		if out.State == StateActive {
			out.Transmit = txDraw < cfg.TxProbability
		}
		return out
	}

	// Queue empty: idle-timer bookkeeping.
	switch out.State {
	case StateActive:
		out.State = StateIdle
		out.IdleTimer = cfg.IdleTimerSlots
	case StateIdle:
		out.IdleTimer--
		if out.IdleTimer == 0 {
			out.State = StateSleep
		}
	case StateSleep, StateWakeup:
		// nothing to advance
	default:
		panic(fmt.Sprintf("evalSlot: unreachable state %q with empty queue", out.State))
	}
	return out
}

// Device models one battery-powered node contending for the shared channel.
type Device struct {
	ID int

	State     DeviceState
	Queue     *PacketQueue
	IdleTimer int // remaining slots before IDLE -> SLEEP; valid only in IDLE
	WakeTimer int // remaining slots before WAKEUP -> ACTIVE; valid only in WAKEUP

	Energy         float64 // remaining battery, non-negative and non-increasing
	SlotsProcessed int64   // slots this device consumed energy for

	Stats *DeviceStats

	cfg        Config
	arrivalRng *rand.Rand
	txRng      *rand.Rand

	nextArrival float64       // absolute time of the next stochastic arrival, in slots
	injected    map[int64]int // forced arrivals per slot, consumed by drainArrivals
}

// NewDevice creates a device in ACTIVE state with a full battery and its two
// private RNG streams drawn from rng.
func NewDevice(id int, cfg Config, rng *PartitionedRNG) *Device {
	d := &Device{
		ID:         id,
		State:      StateActive,
		Queue:      &PacketQueue{},
		Energy:     cfg.InitialEnergy,
		Stats:      NewDeviceStats(),
		cfg:        cfg,
		arrivalRng: rng.ForSubsystem(SubsystemDeviceArrival(id)),
		txRng:      rng.ForSubsystem(SubsystemDeviceTx(id)),
		injected:   make(map[int64]int),
	}
	if cfg.ArrivalRate > 0 {
		d.nextArrival = d.arrivalRng.ExpFloat64() / cfg.ArrivalRate
	} else {
		d.nextArrival = math.Inf(1)
	}
	return d
}

// InjectPacket schedules a deterministic packet arrival at the given slot,
// bypassing the stochastic arrival stream. Used by tests and degenerate
// scenarios.
func (d *Device) InjectPacket(slot int64) {
	d.injected[slot]++
}

// drainArrivals enqueues every packet arriving during the given slot
// (injected first, then the exponential inter-arrival stream) and reports
// whether anything arrived.
func (d *Device) drainArrivals(slot int64) bool {
	arrived := false
	if n := d.injected[slot]; n > 0 {
		for i := 0; i < n; i++ {
			d.Queue.Enqueue(Packet{ArrivalSlot: slot})
		}
		delete(d.injected, slot)
		arrived = true
	}
	for d.nextArrival < float64(slot)+1 {
		d.Queue.Enqueue(Packet{ArrivalSlot: slot})
		d.nextArrival += d.arrivalRng.ExpFloat64() / d.cfg.ArrivalRate
		arrived = true
	}
	return arrived
}

// Step evaluates the device for one slot, in order: packet arrivals (which
// force IDLE->ACTIVE or SLEEP->WAKEUP immediately), energy consumption for
// the current state (death is checked before anything else may happen),
// then the state machine, registering a transmission attempt with the
// channel when one is due. A DEAD device does nothing, consumes nothing.
func (d *Device) Step(slot int64, ch *Channel) {
	if d.State == StateDead {
		return
	}

	if d.drainArrivals(slot) {
		state, wake := arrivalTransition(d.State, d.cfg.WakeTimerSlots)
		if state != d.State {
			logrus.Debugf("device %d: arrival forces %s -> %s at slot %d", d.ID, d.State, state, slot)
			switch state {
			case StateActive:
				d.IdleTimer = 0 // idle timer cancelled
			case StateWakeup:
				d.WakeTimer = wake
			}
			d.State = state
		}
	}

	d.SlotsProcessed++
	d.Energy -= d.cfg.Power.For(d.State) * d.cfg.SlotDuration
	if d.Energy <= 0 {
		d.Energy = 0
		d.State = StateDead
		logrus.Debugf("device %d: battery exhausted at slot %d", d.ID, slot)
		return
	}

	out := evalSlot(d.State, d.IdleTimer, d.WakeTimer, d.Queue.Len(), d.txRng.Float64(), d.cfg)
	d.State, d.IdleTimer, d.WakeTimer = out.State, out.IdleTimer, out.WakeTimer

	if out.Transmit {
		d.Stats.Attempts++
		ch.RegisterAttempt(d, slot)
	}
}

// CompleteTransmission acknowledges a success resolved for resolvedSlot:
// the earliest-queued packet leaves the queue and its delay is recorded.
// Resolution lags registration by one slot, so the resolution time is
// (resolvedSlot+1) slots.
func (d *Device) CompleteTransmission(resolvedSlot int64) {
	pkt, ok := d.Queue.Dequeue()
	if !ok {
		panic(fmt.Sprintf("device %d: success acknowledged with empty queue", d.ID))
	}
	delaySlots := resolvedSlot + 1 - pkt.ArrivalSlot
	if delaySlots < 0 {
		panic(fmt.Sprintf("device %d: negative delay %d slots for packet arrived at %d",
			d.ID, delaySlots, pkt.ArrivalSlot))
	}
	d.Stats.Successes++
	d.Stats.DelaySamples = append(d.Stats.DelaySamples, float64(delaySlots)*d.cfg.SlotDuration)
}

// RecordCollision notes that this device's attempt collided. The queue is
// untouched: the packet stays at the head for the next attempt.
func (d *Device) RecordCollision() {
	d.Stats.Collisions++
}

// LifetimeEstimate extrapolates the average power draw observed so far
// linearly to the full initial energy budget, returning the projected
// lifetime in seconds. Returns +Inf before any energy has been consumed.
//
// This is a snapshot heuristic, not a guarantee: a device that changes
// behavioral phase (an early burst followed by quiescence) will see the
// estimate drift as the run progresses.
func (d *Device) LifetimeEstimate() float64 {
	consumed := d.cfg.InitialEnergy - d.Energy
	if consumed <= 0 || d.SlotsProcessed == 0 {
		return math.Inf(1)
	}
	elapsed := float64(d.SlotsProcessed) * d.cfg.SlotDuration
	return d.cfg.InitialEnergy / (consumed / elapsed)
}

func (d *Device) String() string {
	return fmt.Sprintf("Device: (ID: %d, State: %s, Queue: %d, Energy: %.3f)",
		d.ID, d.State, d.Queue.Len(), d.Energy)
}
