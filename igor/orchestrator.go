package igor

import (
	"context"
	"sync"
)

// Project is the fully-resolved set of inputs an Orchestrator run needs:
// every niche the manifest declared, the project-wide invar defaults
// they inherit, the psychotropic cue order, and the write surface their
// actions land on. internal/manifest builds this from TOML.
type Project struct {
	Niches        map[string]Niche
	InvarDefaults InvarConfig
	Cues          []Cue
	Target        Target
	DecodeConfig  ConfigDecoder
	Concurrency   int // 0 = unbounded

	// OnCueState, if set, is called on every cue state transition during
	// RunOnce. internal/watch wires this into its live dashboard.
	OnCueState func(name string, state CueState)
}

// NicheResult is the per-niche outcome of one orchestrator run.
type NicheResult struct {
	Niche    string
	State    CueState
	Planned  int
	Emitted  int
	Skipped  int
	Warnings []Warning
	Err      error
}

// RunResult aggregates every niche's outcome for one orchestrator run,
// per spec.md §7's "structured log per niche" requirement.
type RunResult struct {
	Niches    []NicheResult
	Cancelled bool
}

// Failed reports whether any niche in this run ended Failed.
func (r RunResult) Failed() bool {
	for _, n := range r.Niches {
		if n.State == CueFailed {
			return true
		}
	}
	return false
}

// nicheTally is what RunOnce's runner records per niche in a side map,
// beside the warnings/count/error it returns to Schedule; RunOnce reads
// it back when building each NicheResult.
type nicheTally struct {
	planned, emitted, skipped int
	warnings                  []Warning
}

// RunOnce builds the niche list from p, validates the psychotropic
// schedule, then hands off to Schedule, collecting per-niche results
// (spec.md §4.I, data flow I → H → (per niche) F → E → G).
//
// A ValidateCues failure is returned directly (fatal, exit code 1 per
// spec.md §6) and no niche runs.
func RunOnce(ctx context.Context, p Project, tracker *WriteTracker) (RunResult, error) {
	if err := ValidateCues(p.Cues); err != nil {
		return RunResult{}, err
	}

	tallies := map[string]nicheTally{}
	var mu sync.Mutex
	store := func(name string, t nicheTally) {
		mu.Lock()
		tallies[name] = t
		mu.Unlock()
	}
	load := func(name string) nicheTally {
		mu.Lock()
		defer mu.Unlock()
		return tallies[name]
	}

	runner := func(ctx context.Context, cueName string) ([]Warning, int, error) {
		niche, ok := p.Niches[cueName]
		if !ok {
			// A declared cue with no matching niche in the manifest fails
			// this cue with a BadConfig error; the other cues still run.
			return nil, 0, newErr(KindBadConfig, cueName, "cue has no matching niche declaration", nil)
		}
		if niche.Thundercloud == nil {
			return nil, 0, newErr(KindMissingThundercloud, cueName, "niche has no thundercloud source", nil)
		}

		actions, warnings, err := Plan(niche, p.InvarDefaults, p.DecodeConfig)
		if err != nil {
			return warnings, 0, err
		}

		t := nicheTally{planned: len(actions)}
		for _, a := range actions {
			if ctx.Err() != nil {
				t.warnings = append(t.warnings, warnings...)
				store(cueName, t)
				return t.warnings, t.planned, newErr(KindCancelled, cueName, "cancelled mid-niche", ctx.Err())
			}
			wrote, warn, err := ApplyAction(p.Target, cueName, tracker, a)
			if warn != nil {
				warnings = append(warnings, *warn)
			}
			if wrote {
				t.emitted++
			} else if err == nil {
				t.skipped++
			}
			if err != nil {
				t.warnings = append(t.warnings, warnings...)
				store(cueName, t)
				return t.warnings, t.planned, err
			}
		}
		t.warnings = append(t.warnings, warnings...)
		store(cueName, t)
		return t.warnings, t.planned, nil
	}

	cueResults := Schedule(ctx, p.Cues, p.Concurrency, runner, p.OnCueState)

	result := RunResult{Niches: make([]NicheResult, 0, len(cueResults))}
	for _, cr := range cueResults {
		t := load(cr.Name)
		if cr.State == CueCancelled {
			result.Cancelled = true
		}
		result.Niches = append(result.Niches, NicheResult{
			Niche:    cr.Name,
			State:    cr.State,
			Planned:  t.planned,
			Emitted:  t.emitted,
			Skipped:  t.skipped,
			Warnings: cr.Warnings,
			Err:      cr.Err,
		})
	}
	return result, nil
}

// ExitCode computes the process exit code for r per spec.md §6.
func ExitCode(r RunResult) int {
	if r.Cancelled {
		return 3
	}
	if r.Failed() {
		return 2
	}
	return 0
}
