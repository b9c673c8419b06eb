package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalRecords   int
	DevicesSeen    int
	Occupancy      map[string]int64 // state name → device-slots spent in it
	FirstDeathSlot int64            // earliest slot any device was recorded dead; -1 if none
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		Occupancy:      make(map[string]int64),
		FirstDeathSlot: -1,
	}
	if st == nil {
		return summary
	}

	summary.TotalRecords = len(st.States)
	devices := make(map[int]bool)
	for _, r := range st.States {
		devices[r.DeviceID] = true
		summary.Occupancy[r.State]++
		if r.State == "dead" && (summary.FirstDeathSlot < 0 || r.Slot < summary.FirstDeathSlot) {
			summary.FirstDeathSlot = r.Slot
		}
	}
	summary.DevicesSeen = len(devices)

	return summary
}
