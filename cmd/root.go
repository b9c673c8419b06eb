package cmd

import (
	"encoding/json"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/aloha-sim/aloha-sim/sim"
	"github.com/aloha-sim/aloha-sim/sim/trace"
)

var (
	// CLI flags for the run
	seed         int64  // Seed for all stochastic draws
	logLevel     string // Log verbosity level
	scenarioPath string // Optional YAML scenario file overriding flag defaults
	outputPath   string // Optional JSON result file
	traceLevel   string // State trace verbosity (none, states)
	tracePath    string // Optional JSON trace file

	// CLI flags mirroring sim.Config
	numDevices     int
	arrivalRate    float64
	txProbability  float64
	idleTimerSlots int
	wakeTimerSlots int
	slotDuration   float64
	totalSlots     int64
	initialEnergy  float64
	powerActive    float64
	powerWakeup    float64
	powerIdle      float64
	powerSleep     float64
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "alohasim",
	Short: "Discrete-event simulator for battery-powered slotted-Aloha devices",
}

// flagConfig assembles a sim.Config from the CLI flags.
func flagConfig() sim.Config {
	return sim.Config{
		NumDevices:     numDevices,
		ArrivalRate:    arrivalRate,
		TxProbability:  txProbability,
		IdleTimerSlots: idleTimerSlots,
		WakeTimerSlots: wakeTimerSlots,
		SlotDuration:   slotDuration,
		TotalSlots:     totalSlots,
		InitialEnergy:  initialEnergy,
		Power: sim.PowerProfile{
			Active: powerActive,
			Wakeup: powerWakeup,
			Idle:   powerIdle,
			Sleep:  powerSleep,
		},
	}
}

// runCmd executes the simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the slotted-Aloha duty-cycle simulation",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg := flagConfig()
		if scenarioPath != "" {
			cfg, err = LoadScenario(scenarioPath, cfg)
			if err != nil {
				logrus.Fatalf("unable to read scenario file: %v", err)
			}
		}

		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level: %s", traceLevel)
		}

		s, err := sim.NewSimulator(cfg, seed)
		if err != nil {
			logrus.Fatalf("refusing to start: %v", err)
		}

		if trace.TraceLevel(traceLevel) == trace.TraceLevelStates {
			s.Trace = trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelStates})
		}

		result := s.Run()
		result.Print()

		if outputPath != "" {
			writeJSON(outputPath, result)
		}
		if tracePath != "" && s.Trace != nil {
			writeJSON(tracePath, s.Trace)
		}

		logrus.Info("Simulation complete.")
	},
}

// writeJSON marshals v into path, fatal on any failure.
func writeJSON(path string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logrus.Fatalf("Error encoding %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		logrus.Fatalf("Error writing %s: %v", path, err)
	}
	logrus.Debugf("Successfully wrote '%s'", path)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	defaults := sim.DefaultConfig()

	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for all stochastic draws")
	runCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "YAML scenario file overriding flag defaults")
	runCmd.Flags().StringVar(&outputPath, "output", "", "Write the structured run result to this JSON file")
	runCmd.Flags().StringVar(&traceLevel, "trace-level", "none", "State trace verbosity (none, states)")
	runCmd.Flags().StringVar(&tracePath, "trace-output", "", "Write the state trace to this JSON file")

	// Simulation parameters
	runCmd.Flags().IntVar(&numDevices, "devices", defaults.NumDevices, "Number of devices contending for the channel")
	runCmd.Flags().Float64Var(&arrivalRate, "arrival-rate", defaults.ArrivalRate, "Mean packet arrivals per slot, per device")
	runCmd.Flags().Float64Var(&txProbability, "tx-probability", defaults.TxProbability, "Per-slot transmission probability while active")
	runCmd.Flags().IntVar(&idleTimerSlots, "idle-timer", defaults.IdleTimerSlots, "Slots spent idle before sleeping")
	runCmd.Flags().IntVar(&wakeTimerSlots, "wake-timer", defaults.WakeTimerSlots, "Slots spent waking up before active")
	runCmd.Flags().Float64Var(&slotDuration, "slot-duration", defaults.SlotDuration, "Seconds per slot")
	runCmd.Flags().Int64Var(&totalSlots, "slots", defaults.TotalSlots, "Total slot budget for the run")
	runCmd.Flags().Float64Var(&initialEnergy, "initial-energy", defaults.InitialEnergy, "Battery budget per device, energy units")

	// Power-per-state mapping
	runCmd.Flags().Float64Var(&powerActive, "power-active", defaults.Power.Active, "Power draw while active (units/s)")
	runCmd.Flags().Float64Var(&powerWakeup, "power-wakeup", defaults.Power.Wakeup, "Power draw while waking up (units/s)")
	runCmd.Flags().Float64Var(&powerIdle, "power-idle", defaults.Power.Idle, "Power draw while idle (units/s)")
	runCmd.Flags().Float64Var(&powerSleep, "power-sleep", defaults.Power.Sleep, "Power draw while sleeping (units/s)")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
