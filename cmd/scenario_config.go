package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aloha-sim/aloha-sim/sim"
)

// LoadScenario reads a YAML scenario file and overlays it on base. Keys
// absent from the file keep their base (flag or default) values, so a
// scenario only needs to name the parameters it changes.
func LoadScenario(path string, base sim.Config) (sim.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("failed to open scenario file: %w", err)
	}

	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("failed to parse scenario file %s: %w", path, err)
	}
	return cfg, nil
}
