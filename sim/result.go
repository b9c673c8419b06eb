// Post-run aggregation: reduces finished device states and channel totals
// into per-device reports and a network-wide summary. Pure and reproducible
// from stored statistics alone; no re-simulation.

package sim

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Lifetime is a lifetime estimate in seconds that may be infinite.
// JSON cannot represent IEEE infinities, so +Inf encodes as the string "inf".
type Lifetime float64

// MarshalJSON encodes an infinite lifetime as "inf".
func (l Lifetime) MarshalJSON() ([]byte, error) {
	if math.IsInf(float64(l), 1) {
		return []byte(`"inf"`), nil
	}
	return json.Marshal(float64(l))
}

// ChannelTotals are the channel's running totals at the end of a run.
// SlotsProcessed always equals Successes + Collisions + EmptySlots.
type ChannelTotals struct {
	SlotsProcessed int64 `json:"slots_processed"`
	Successes      int64 `json:"successes"`
	Collisions     int64 `json:"collisions"`
	EmptySlots     int64 `json:"empty_slots"`
}

// DeviceReport is the final per-device metric record. DEAD devices keep
// their last known state here even though they are excluded from the delay
// statistics.
type DeviceReport struct {
	ID               int         `json:"id"`
	State            DeviceState `json:"state"`
	QueueLength      int         `json:"queue_length"`
	Attempts         int64       `json:"attempts"`
	Successes        int64       `json:"successes"`
	Collisions       int64       `json:"collisions"`
	MeanDelay        float64     `json:"mean_delay"`
	LifetimeEstimate Lifetime    `json:"lifetime_estimate"`
	ResidualEnergy   float64     `json:"residual_energy"`
}

// Summary holds the network-wide metrics. Delay moments are taken over the
// per-device mean delays of devices with at least one success; the median
// lifetime spans all devices.
type Summary struct {
	MeanDelay      float64  `json:"mean_delay"`
	MedianDelay    float64  `json:"median_delay"`
	MedianLifetime Lifetime `json:"median_lifetime"`
	Throughput     float64  `json:"throughput"` // successes per processed slot
}

// RunResult is the structured outcome of a simulation run.
type RunResult struct {
	Totals  ChannelTotals  `json:"channel"`
	Devices []DeviceReport `json:"devices"`
	Summary Summary        `json:"summary"`
}

// Aggregate reduces the devices and channel of a finished run into a
// RunResult. Devices are reported in id order, so output is deterministic.
func Aggregate(devices []*Device, ch *Channel) *RunResult {
	result := &RunResult{
		Totals: ChannelTotals{
			SlotsProcessed: ch.SlotsProcessed,
			Successes:      ch.Successes,
			Collisions:     ch.Collisions,
			EmptySlots:     ch.EmptySlots,
		},
		Devices: make([]DeviceReport, 0, len(devices)),
	}

	var delays []float64 // one mean delay per device with >=1 success
	lifetimes := make([]float64, 0, len(devices))

	for _, d := range devices {
		lifetime := d.LifetimeEstimate()
		lifetimes = append(lifetimes, lifetime)

		result.Devices = append(result.Devices, DeviceReport{
			ID:               d.ID,
			State:            d.State,
			QueueLength:      d.Queue.Len(),
			Attempts:         d.Stats.Attempts,
			Successes:        d.Stats.Successes,
			Collisions:       d.Stats.Collisions,
			MeanDelay:        d.Stats.MeanDelay(),
			LifetimeEstimate: Lifetime(lifetime),
			ResidualEnergy:   d.Energy,
		})

		if d.Stats.Successes > 0 {
			delays = append(delays, d.Stats.MeanDelay())
		}
	}

	if len(delays) > 0 {
		result.Summary.MeanDelay = stat.Mean(delays, nil)
		result.Summary.MedianDelay = median(delays)
	}
	result.Summary.MedianLifetime = Lifetime(median(lifetimes))
	if ch.SlotsProcessed > 0 {
		result.Summary.Throughput = float64(ch.Successes) / float64(ch.SlotsProcessed)
	}

	return result
}

// median computes the empirical median of values. Infinite lifetimes sort
// last, so a mostly-alive network still yields a finite median.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}

// Print writes the end-of-run summary to stdout. For a fixed seed and
// configuration the output is byte-identical between runs.
func (r *RunResult) Print() {
	fmt.Println("=== Simulation Summary ===")
	fmt.Printf("Slots processed      : %d\n", r.Totals.SlotsProcessed)
	fmt.Printf("Successes            : %d\n", r.Totals.Successes)
	fmt.Printf("Collisions           : %d\n", r.Totals.Collisions)
	fmt.Printf("Empty slots          : %d\n", r.Totals.EmptySlots)
	fmt.Printf("Throughput           : %.6f\n", r.Summary.Throughput)
	fmt.Printf("Mean delay           : %.4f s\n", r.Summary.MeanDelay)
	fmt.Printf("Median delay         : %.4f s\n", r.Summary.MedianDelay)
	fmt.Printf("Median lifetime      : %.4f s\n", float64(r.Summary.MedianLifetime))

	alive := 0
	for _, d := range r.Devices {
		if d.State != StateDead {
			alive++
		}
	}
	fmt.Printf("Devices alive        : %d/%d\n", alive, len(r.Devices))
}
