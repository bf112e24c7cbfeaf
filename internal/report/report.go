// Package report writes per-run YAML history artifacts alongside the
// structured log line spec.md §7 requires ("counts of emitted / skipped
// / warned / failed actions and the target paths involved").
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/igor-vendor/igor/igor"
)

// NicheReport is the YAML-serializable per-niche outcome saved to the
// history directory after a run.
type NicheReport struct {
	Niche    string   `yaml:"niche"`
	State    string   `yaml:"state"`
	Planned  int      `yaml:"planned"`
	Emitted  int      `yaml:"emitted"`
	Skipped  int      `yaml:"skipped"`
	Warnings []string `yaml:"warnings,omitempty"`
	Error    string   `yaml:"error,omitempty"`
}

// RunReport is the full YAML document for one orchestrator run.
type RunReport struct {
	Timestamp string        `yaml:"timestamp"`
	Cancelled bool          `yaml:"cancelled"`
	Niches    []NicheReport `yaml:"niches"`
}

// FromResult converts an igor.RunResult into the YAML-serializable shape.
func FromResult(ts string, r igor.RunResult) RunReport {
	out := RunReport{Timestamp: ts, Cancelled: r.Cancelled}
	for _, n := range r.Niches {
		nr := NicheReport{
			Niche:   n.Niche,
			State:   n.State.String(),
			Planned: n.Planned,
			Emitted: n.Emitted,
			Skipped: n.Skipped,
		}
		if n.Err != nil {
			nr.Error = n.Err.Error()
		}
		for _, w := range n.Warnings {
			nr.Warnings = append(nr.Warnings, fmt.Sprintf("%s: %s", w.Path, w.Message))
		}
		out.Niches = append(out.Niches, nr)
	}
	return out
}

// Save writes the report as {ts}-run-report.yaml under dir. A no-op when
// dir is empty, matching the "history disabled" convention.
func Save(dir string, rr RunReport) (string, error) {
	if dir == "" {
		return "", nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating history directory: %w", err)
	}
	data, err := yaml.Marshal(&rr)
	if err != nil {
		return "", fmt.Errorf("marshaling run report: %w", err)
	}
	path := filepath.Join(dir, rr.Timestamp+"-run-report.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing run report: %w", err)
	}
	return path, nil
}
