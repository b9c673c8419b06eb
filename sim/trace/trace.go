package trace

// TraceLevel controls the verbosity of state tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelStates captures every device's state at every slot boundary.
	TraceLevelStates TraceLevel = "states"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:   true,
	TraceLevelStates: true,
	"":               true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects per-slot state records during a run.
// Downstream plotting utilities consume it as JSON.
type SimulationTrace struct {
	Config TraceConfig   `json:"config"`
	States []StateRecord `json:"states"`
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config: config,
		States: make([]StateRecord, 0),
	}
}

// RecordState appends a slot-boundary state record.
func (st *SimulationTrace) RecordState(record StateRecord) {
	st.States = append(st.States, record)
}
