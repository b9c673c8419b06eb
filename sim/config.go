package sim

import "fmt"

// PowerProfile maps each device state to its power draw, in energy units per
// second. A DEAD device always draws zero; it is not configurable.
type PowerProfile struct {
	Active float64 `yaml:"active"` // transmitting / ready to transmit
	Wakeup float64 `yaml:"wakeup"` // radio warming up
	Idle   float64 `yaml:"idle"`   // awake, queue empty
	Sleep  float64 `yaml:"sleep"`  // deep sleep, near-zero draw
}

// For returns the power draw for the given state.
func (p PowerProfile) For(state DeviceState) float64 {
	switch state {
	case StateActive:
		return p.Active
	case StateWakeup:
		return p.Wakeup
	case StateIdle:
		return p.Idle
	case StateSleep:
		return p.Sleep
	case StateDead:
		return 0
	default:
		panic(fmt.Sprintf("PowerProfile: unknown device state %q", state))
	}
}

// Config holds all parameters of a single simulation run.
type Config struct {
	NumDevices     int     `yaml:"num_devices"`
	ArrivalRate    float64 `yaml:"arrival_rate"`     // mean packet arrivals per slot, per device
	TxProbability  float64 `yaml:"tx_probability"`   // q_tx: per-slot transmission probability while ACTIVE
	IdleTimerSlots int     `yaml:"idle_timer_slots"` // t_s: slots spent in IDLE before SLEEP
	WakeTimerSlots int     `yaml:"wake_timer_slots"` // t_w: slots spent in WAKEUP before ACTIVE
	SlotDuration   float64 `yaml:"slot_duration"`    // seconds per slot
	TotalSlots     int64   `yaml:"total_slots"`      // slot budget; the run ends after this many slots
	InitialEnergy  float64 `yaml:"initial_energy"`   // battery budget per device, energy units

	Power PowerProfile `yaml:"power"`
}

// DefaultConfig returns the documented default simulation parameters.
func DefaultConfig() Config {
	return Config{
		NumDevices:     10,
		ArrivalRate:    0.05,
		TxProbability:  0.25,
		IdleTimerSlots: 5,
		WakeTimerSlots: 2,
		SlotDuration:   1.0,
		TotalSlots:     10000,
		InitialEnergy:  1000.0,
		Power: PowerProfile{
			Active: 10.0,
			Wakeup: 5.0,
			Idle:   1.0,
			Sleep:  0.01,
		},
	}
}

// Validate reports the first configuration error found. A run refuses to
// start on a non-nil error.
func (c Config) Validate() error {
	if c.NumDevices <= 0 {
		return fmt.Errorf("num_devices must be > 0, got %d", c.NumDevices)
	}
	if c.ArrivalRate < 0 {
		return fmt.Errorf("arrival_rate must be >= 0, got %v", c.ArrivalRate)
	}
	if c.TxProbability < 0 || c.TxProbability > 1 {
		return fmt.Errorf("tx_probability must be within [0,1], got %v", c.TxProbability)
	}
	if c.IdleTimerSlots <= 0 {
		return fmt.Errorf("idle_timer_slots must be > 0, got %d", c.IdleTimerSlots)
	}
	if c.WakeTimerSlots <= 0 {
		return fmt.Errorf("wake_timer_slots must be > 0, got %d", c.WakeTimerSlots)
	}
	if c.SlotDuration <= 0 {
		return fmt.Errorf("slot_duration must be > 0, got %v", c.SlotDuration)
	}
	if c.TotalSlots <= 0 {
		return fmt.Errorf("total_slots must be > 0, got %d", c.TotalSlots)
	}
	if c.InitialEnergy <= 0 {
		return fmt.Errorf("initial_energy must be > 0, got %v", c.InitialEnergy)
	}
	if c.Power.Active < 0 || c.Power.Wakeup < 0 || c.Power.Idle < 0 || c.Power.Sleep < 0 {
		return fmt.Errorf("power draws must be >= 0, got %+v", c.Power)
	}
	return nil
}
