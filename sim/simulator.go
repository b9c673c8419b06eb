// sim/simulator.go
package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/aloha-sim/aloha-sim/sim/trace"
)

// Simulator drives the slot loop. Each slot t: every device evaluates its
// state machine for t (fixed id order) and may register a transmission
// attempt, then the channel resolves slot t-1. Within a slot no device's
// decision depends on another device's same-slot decision; only channel
// resolution aggregates across devices, and it sees only requests already
// registered for the slot it resolves.
type Simulator struct {
	Config  Config
	Clock   int64 // current slot
	Devices []*Device
	Channel *Channel

	// Trace, when non-nil, records every device's state at every slot
	// boundary. Nil means zero overhead.
	Trace *trace.SimulationTrace
}

// NewSimulator validates the configuration and builds the devices and
// channel for a run. The seed fully determines the run's stochastic
// behavior: every device derives its private arrival and transmission
// streams from it.
func NewSimulator(cfg Config, seed int64) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	rng := NewPartitionedRNG(NewSimulationKey(seed))
	devices := make([]*Device, cfg.NumDevices)
	for i := range devices {
		devices[i] = NewDevice(i, cfg, rng)
	}

	return &Simulator{
		Config:  cfg,
		Devices: devices,
		Channel: NewChannel(),
	}, nil
}

// InjectPacket schedules a deterministic packet arrival for a device,
// bypassing its stochastic arrival stream. Must be called before Run.
func (s *Simulator) InjectPacket(deviceID int, slot int64) {
	s.Devices[deviceID].InjectPacket(slot)
}

// Run executes the configured slot budget and returns the aggregated result.
// The final slot's requests are resolved after the loop so that every slot
// is resolved exactly once.
func (s *Simulator) Run() *RunResult {
	logrus.Infof("starting run: %d devices, %d slots, q_tx=%.3f, rate=%.4f/slot",
		s.Config.NumDevices, s.Config.TotalSlots, s.Config.TxProbability, s.Config.ArrivalRate)

	for slot := int64(0); slot < s.Config.TotalSlots; slot++ {
		s.Clock = slot
		for _, d := range s.Devices {
			d.Step(slot, s.Channel)
		}
		if slot > 0 {
			s.Channel.Resolve(slot - 1)
		}
		s.recordTrace(slot)
	}
	s.Channel.Resolve(s.Config.TotalSlots - 1)

	logrus.Infof("run complete: %d successes, %d collisions, %d empty slots",
		s.Channel.Successes, s.Channel.Collisions, s.Channel.EmptySlots)

	return Aggregate(s.Devices, s.Channel)
}

// recordTrace snapshots every device's state at the end of a slot.
func (s *Simulator) recordTrace(slot int64) {
	if s.Trace == nil {
		return
	}
	for _, d := range s.Devices {
		s.Trace.RecordState(trace.StateRecord{
			Slot:     slot,
			DeviceID: d.ID,
			State:    string(d.State),
			Energy:   d.Energy,
		})
	}
}
