// Tracks per-device transmission counters and delay samples
// for final reporting.

package sim

// DeviceStats aggregates one device's transmission statistics over a run.
// Delay samples are slots-to-success converted to seconds and are recorded
// only on successful transmissions; DEAD devices simply stop contributing.
type DeviceStats struct {
	Attempts     int64     // transmission attempts registered with the channel
	Successes    int64     // attempts acknowledged as sole registrant
	Collisions   int64     // attempts that collided with another device
	DelaySamples []float64 // per-success delay, in seconds
}

// NewDeviceStats creates an empty DeviceStats.
func NewDeviceStats() *DeviceStats {
	return &DeviceStats{
		DelaySamples: make([]float64, 0),
	}
}

// MeanDelay returns the mean of the collected delay samples,
// or 0 if the device has no successful transmissions.
func (s *DeviceStats) MeanDelay() float64 {
	if len(s.DelaySamples) == 0 {
		return 0
	}
	sum := 0.0
	for _, d := range s.DelaySamples {
		sum += d
	}
	return sum / float64(len(s.DelaySamples))
}
