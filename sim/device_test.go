package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.IdleTimerSlots = 3
	cfg.WakeTimerSlots = 2
	cfg.TxProbability = 0.5
	return cfg
}

// === Pure transition function ===

func TestEvalSlot_Transitions(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name      string
		state     DeviceState
		idleTimer int
		wakeTimer int
		queueLen  int
		txDraw    float64
		want      slotOutcome
	}{
		{
			name:  "active with packet, draw below q_tx, transmits",
			state: StateActive, queueLen: 1, txDraw: 0.4,
			want: slotOutcome{State: StateActive, Transmit: true},
		},
		{
			name:  "active with packet, draw above q_tx, holds",
			state: StateActive, queueLen: 1, txDraw: 0.6,
			want: slotOutcome{State: StateActive, Transmit: false},
		},
		{
			name:  "active with empty queue starts idle timer",
			state: StateActive, queueLen: 0, txDraw: 0.0,
			want: slotOutcome{State: StateIdle, IdleTimer: 3},
		},
		{
			name:  "idle counts down",
			state: StateIdle, idleTimer: 3, queueLen: 0,
			want: slotOutcome{State: StateIdle, IdleTimer: 2},
		},
		{
			name:  "idle timer expiring falls asleep",
			state: StateIdle, idleTimer: 1, queueLen: 0,
			want: slotOutcome{State: StateSleep, IdleTimer: 0},
		},
		{
			name:  "sleep is stable without arrivals",
			state: StateSleep, queueLen: 0,
			want: slotOutcome{State: StateSleep},
		},
		{
			name:  "wakeup counts down, no transmission",
			state: StateWakeup, wakeTimer: 2, queueLen: 1, txDraw: 0.0,
			want: slotOutcome{State: StateWakeup, WakeTimer: 1},
		},
		{
			name:  "wakeup expired becomes active and may transmit same slot",
			state: StateWakeup, wakeTimer: 0, queueLen: 1, txDraw: 0.1,
			want: slotOutcome{State: StateActive, Transmit: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := evalSlot(tt.state, tt.idleTimer, tt.wakeTimer, tt.queueLen, tt.txDraw, cfg)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalSlot_DeadDevice_Panics(t *testing.T) {
	assert.Panics(t, func() {
		evalSlot(StateDead, 0, 0, 0, 0, testConfig())
	})
}

func TestArrivalTransition(t *testing.T) {
	// IDLE wakes straight to ACTIVE, SLEEP starts the wake-up sequence,
	// everything else is untouched.
	state, _ := arrivalTransition(StateIdle, 2)
	assert.Equal(t, StateActive, state)

	state, wake := arrivalTransition(StateSleep, 2)
	assert.Equal(t, StateWakeup, state)
	assert.Equal(t, 2, wake)

	state, _ = arrivalTransition(StateActive, 2)
	assert.Equal(t, StateActive, state)

	state, _ = arrivalTransition(StateWakeup, 2)
	assert.Equal(t, StateWakeup, state)
}

// === Energy and death ===

func TestDevice_EnergyExhaustion_DeadExactlyOnce(t *testing.T) {
	// GIVEN initial energy 100, ACTIVE power 10, slot duration 1, and a
	// queued packet that is never transmitted (q_tx = 0) so the device
	// stays ACTIVE
	cfg := DefaultConfig()
	cfg.InitialEnergy = 100
	cfg.Power.Active = 10
	cfg.SlotDuration = 1
	cfg.TxProbability = 0
	cfg.ArrivalRate = 0

	d := NewDevice(0, cfg, NewPartitionedRNG(NewSimulationKey(1)))
	d.InjectPacket(0)
	ch := NewChannel()

	// WHEN the device runs for 15 slots
	var energies []float64
	for slot := int64(0); slot < 15; slot++ {
		d.Step(slot, ch)
		energies = append(energies, d.Energy)
	}

	// THEN energy hits exactly 0 on the 10th slot and the device is DEAD
	// and inert from then on
	assert.Equal(t, 0.0, energies[9])
	assert.Equal(t, StateDead, d.State)
	assert.Equal(t, int64(10), d.SlotsProcessed, "dead device must not consume further slots")

	// AND energy is non-increasing throughout
	for i := 1; i < len(energies); i++ {
		assert.LessOrEqual(t, energies[i], energies[i-1])
	}
}

func TestDevice_Dead_NeverTransmits(t *testing.T) {
	// A device with one slot of battery and q_tx = 1 dies before the
	// transmission step of its first slot (energy precedes the request).
	cfg := DefaultConfig()
	cfg.InitialEnergy = 5
	cfg.Power.Active = 10
	cfg.TxProbability = 1
	cfg.ArrivalRate = 0

	d := NewDevice(0, cfg, NewPartitionedRNG(NewSimulationKey(1)))
	d.InjectPacket(0)
	ch := NewChannel()

	d.Step(0, ch)

	assert.Equal(t, StateDead, d.State)
	assert.Equal(t, int64(0), d.Stats.Attempts)
}

// === Acknowledgments ===

func TestDevice_CompleteTransmission_DelayAccounting(t *testing.T) {
	// GIVEN a packet that arrived at slot 3
	cfg := DefaultConfig()
	cfg.SlotDuration = 0.5
	d := NewDevice(0, cfg, NewPartitionedRNG(NewSimulationKey(1)))
	d.Queue.Enqueue(Packet{ArrivalSlot: 3})

	// WHEN its transmission for slot 5 is acknowledged (resolution time is
	// slot 6, the start of the slot after the attempt)
	d.CompleteTransmission(5)

	// THEN delay = (5 + 1 - 3) slots * 0.5 s/slot
	assert.Equal(t, int64(1), d.Stats.Successes)
	assert.Equal(t, []float64{1.5}, d.Stats.DelaySamples)
	assert.Equal(t, 0, d.Queue.Len())
}

func TestDevice_CompleteTransmission_EmptyQueue_Panics(t *testing.T) {
	d := NewDevice(0, DefaultConfig(), NewPartitionedRNG(NewSimulationKey(1)))
	assert.Panics(t, func() { d.CompleteTransmission(0) })
}

func TestDevice_RecordCollision_KeepsQueue(t *testing.T) {
	d := NewDevice(0, DefaultConfig(), NewPartitionedRNG(NewSimulationKey(1)))
	d.Queue.Enqueue(Packet{ArrivalSlot: 0})

	d.RecordCollision()

	assert.Equal(t, int64(1), d.Stats.Collisions)
	assert.Equal(t, 1, d.Queue.Len(), "collision must not touch the queue")
}

// === Lifetime estimator ===

func TestDevice_LifetimeEstimate_NoDrawYet_Infinite(t *testing.T) {
	d := NewDevice(0, DefaultConfig(), NewPartitionedRNG(NewSimulationKey(1)))
	assert.True(t, math.IsInf(d.LifetimeEstimate(), 1))
}

func TestDevice_LifetimeEstimate_Extrapolates(t *testing.T) {
	// GIVEN a device that consumed 10 of 1000 units over 5 slots of 2 s
	cfg := DefaultConfig()
	cfg.InitialEnergy = 1000
	cfg.SlotDuration = 2
	d := NewDevice(0, cfg, NewPartitionedRNG(NewSimulationKey(1)))
	d.Energy = 990
	d.SlotsProcessed = 5

	// THEN average power is 1 unit/s and the projection is 1000 s
	assert.InDelta(t, 1000.0, d.LifetimeEstimate(), 1e-9)
}

func TestDevice_LifetimeEstimate_DeadDevice_EqualsElapsed(t *testing.T) {
	// A fully drained device's projection collapses to its actual lifetime.
	cfg := DefaultConfig()
	cfg.InitialEnergy = 100
	cfg.SlotDuration = 1
	d := NewDevice(0, cfg, NewPartitionedRNG(NewSimulationKey(1)))
	d.Energy = 0
	d.SlotsProcessed = 10

	assert.InDelta(t, 10.0, d.LifetimeEstimate(), 1e-9)
}

// === Arrivals ===

func TestDevice_ZeroArrivalRate_NeverGeneratesPackets(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ArrivalRate = 0
	d := NewDevice(0, cfg, NewPartitionedRNG(NewSimulationKey(1)))
	ch := NewChannel()

	for slot := int64(0); slot < 100; slot++ {
		d.Step(slot, ch)
	}

	assert.Equal(t, 0, d.Queue.Len())
	assert.Equal(t, int64(0), d.Stats.Attempts)
}

func TestDevice_InjectedArrival_WakesSleepingDevice(t *testing.T) {
	// GIVEN a device deep asleep (no traffic, idle timer long expired)
	cfg := testConfig()
	cfg.ArrivalRate = 0
	d := NewDevice(0, cfg, NewPartitionedRNG(NewSimulationKey(1)))
	ch := NewChannel()
	for slot := int64(0); slot < 10; slot++ {
		d.Step(slot, ch)
	}
	assert.Equal(t, StateSleep, d.State)

	// WHEN a packet is injected at slot 10
	d.InjectPacket(10)
	d.Step(10, ch)

	// THEN the arrival forces SLEEP -> WAKEUP in the same slot
	assert.Equal(t, StateWakeup, d.State)
	assert.Equal(t, 1, d.Queue.Len())
}
