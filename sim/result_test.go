package sim

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// aggregateFixture builds three finished devices and channel totals by hand:
//   - device 0: two successes, mean delay 2 s, projected lifetime 100 s
//   - device 1: untouched battery, no successes (infinite lifetime)
//   - device 2: one success, mean delay 4 s, projected lifetime 200 s
func aggregateFixture() ([]*Device, *Channel) {
	cfg := DefaultConfig()
	cfg.InitialEnergy = 1000
	cfg.SlotDuration = 1
	rng := NewPartitionedRNG(NewSimulationKey(1))

	d0 := NewDevice(0, cfg, rng)
	d0.Stats.Successes = 2
	d0.Stats.Attempts = 5
	d0.Stats.DelaySamples = []float64{1, 3}
	d0.Energy = 900
	d0.SlotsProcessed = 10

	d1 := NewDevice(1, cfg, rng)

	d2 := NewDevice(2, cfg, rng)
	d2.Stats.Successes = 1
	d2.Stats.Collisions = 4
	d2.Stats.DelaySamples = []float64{4}
	d2.Energy = 500
	d2.SlotsProcessed = 100

	ch := NewChannel()
	ch.SlotsProcessed = 100
	ch.Successes = 3
	ch.Collisions = 17
	ch.EmptySlots = 80

	return []*Device{d0, d1, d2}, ch
}

func TestAggregate_PerDeviceReports(t *testing.T) {
	devices, ch := aggregateFixture()

	result := Aggregate(devices, ch)

	require.Len(t, result.Devices, 3)
	assert.Equal(t, 2.0, result.Devices[0].MeanDelay)
	assert.Equal(t, 0.0, result.Devices[1].MeanDelay, "no successes means mean delay 0, not an error")
	assert.Equal(t, 4.0, result.Devices[2].MeanDelay)
	assert.Equal(t, 900.0, result.Devices[0].ResidualEnergy)
	assert.True(t, math.IsInf(float64(result.Devices[1].LifetimeEstimate), 1))
	assert.InDelta(t, 200.0, float64(result.Devices[2].LifetimeEstimate), 1e-9)
}

func TestAggregate_NetworkSummary(t *testing.T) {
	devices, ch := aggregateFixture()

	result := Aggregate(devices, ch)

	// Delay moments span only devices with >=1 success: means {2, 4}.
	assert.InDelta(t, 3.0, result.Summary.MeanDelay, 1e-9)
	assert.InDelta(t, 2.0, result.Summary.MedianDelay, 1e-9)
	// Median lifetime spans all devices: {100, 200, +Inf} -> 200.
	assert.InDelta(t, 200.0, float64(result.Summary.MedianLifetime), 1e-9)
	assert.InDelta(t, 0.03, result.Summary.Throughput, 1e-9)
}

func TestAggregate_NoSuccessesAnywhere(t *testing.T) {
	cfg := DefaultConfig()
	rng := NewPartitionedRNG(NewSimulationKey(1))
	devices := []*Device{NewDevice(0, cfg, rng)}
	ch := NewChannel()
	ch.SlotsProcessed = 50
	ch.EmptySlots = 50

	result := Aggregate(devices, ch)

	assert.Equal(t, 0.0, result.Summary.MeanDelay)
	assert.Equal(t, 0.0, result.Summary.MedianDelay)
	assert.Equal(t, 0.0, result.Summary.Throughput)
}

func TestAggregate_IsPure(t *testing.T) {
	// Aggregating twice from the same stored statistics yields the same
	// result and mutates nothing.
	devices, ch := aggregateFixture()

	r1, err := json.Marshal(Aggregate(devices, ch))
	require.NoError(t, err)
	r2, err := json.Marshal(Aggregate(devices, ch))
	require.NoError(t, err)

	assert.Equal(t, r1, r2)
}

func TestLifetime_JSONEncoding(t *testing.T) {
	finite, err := json.Marshal(Lifetime(12.5))
	require.NoError(t, err)
	assert.Equal(t, "12.5", string(finite))

	infinite, err := json.Marshal(Lifetime(math.Inf(1)))
	require.NoError(t, err)
	assert.Equal(t, `"inf"`, string(infinite))
}

func TestRunResult_JSONEncoding_WithInfiniteLifetime(t *testing.T) {
	devices, ch := aggregateFixture()
	result := Aggregate(devices, ch)

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"lifetime_estimate":"inf"`)
}
