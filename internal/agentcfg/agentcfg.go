// Package agentcfg loads the optional YAML roster file that assigns a
// non-default exploration algorithm to individual agents by name.
package agentcfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jayllyz/labyrinth/internal/agent"
)

// Roster maps an agent name to its algorithm override.
type Roster struct {
	Default   string            `yaml:"default"`
	Overrides map[string]string `yaml:"agents"`
}

// Load reads and parses a roster file at path.
func Load(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("agentcfg: read %s: %w", path, err)
	}
	var r Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("agentcfg: parse %s: %w", path, err)
	}
	return &r, nil
}

// AlgorithmFor resolves the algorithm to use for an agent named name,
// falling back to the roster's default, and then to RightHand if
// neither names a recognized algorithm.
func (r *Roster) AlgorithmFor(name string) agent.Algorithm {
	if r != nil {
		if s, ok := r.Overrides[name]; ok {
			if algo, ok := agent.ParseAlgorithm(s); ok {
				return algo
			}
		}
		if algo, ok := agent.ParseAlgorithm(r.Default); ok {
			return algo
		}
	}
	return agent.RightHand
}
