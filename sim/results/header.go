package results

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/ethanol-sim/ethanol-sim/sim"
)

// Header describes a sweep run. It is written next to the CSV so the data file stays a
// plain table.
type Header struct {
	RunID        string        `yaml:"run_id"`
	CreatedAt    string        `yaml:"created_at"`
	Combinations int           `yaml:"combinations"`
	Policy       string        `yaml:"error_policy"`
	Feed         sim.Feed      `yaml:"feed"`
	Constants    sim.Constants `yaml:"constants"`
	Tables       string        `yaml:"tables,omitempty"`
	Summary      *Summary      `yaml:"summary,omitempty"`
}

// NewHeader stamps a fresh run ID and creation time.
func NewHeader(combinations int, policy string, feed sim.Feed, c sim.Constants) *Header {
	return &Header{
		RunID:        uuid.NewString(),
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
		Combinations: combinations,
		Policy:       policy,
		Feed:         feed,
		Constants:    c,
	}
}

// WriteHeader marshals h as YAML to path.
func WriteHeader(path string, h *Header) error {
	data, err := yaml.Marshal(h)
	if err != nil {
		return fmt.Errorf("marshaling run header: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing run header: %w", err)
	}
	return nil
}

// ReadHeader loads a header written by WriteHeader.
func ReadHeader(path string) (*Header, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run header: %w", err)
	}
	var h Header
	if err := yaml.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("parsing run header: %w", err)
	}
	return &h, nil
}
