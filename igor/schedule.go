package igor

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// CueState is one point in a cue's lifecycle (spec.md §4.H).
type CueState int

const (
	CuePending CueState = iota
	CueWaiting
	CueRunning
	CueCompleted
	CueFailed
	CueCancelled
)

func (s CueState) String() string {
	switch s {
	case CuePending:
		return "pending"
	case CueWaiting:
		return "waiting"
	case CueRunning:
		return "running"
	case CueCompleted:
		return "completed"
	case CueFailed:
		return "failed"
	case CueCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

func (s CueState) terminal() bool {
	return s == CueCompleted || s == CueFailed || s == CueCancelled
}

// Cue binds a niche name to the predecessors it must wait for, per the
// project manifest's `[[psychotropic.cues]]` table.
type Cue struct {
	Name            string
	WaitFor         []string
	UseThundercloud bool
}

// ValidateCues enforces spec.md §4.H's load-time rules: no duplicate
// names, and every wait_for name must belong to a cue declared earlier
// in the list. Both violations are fatal (KindCycleOrForwardRef) and
// must be caught before any niche runs (exit code 1, spec.md §6).
func ValidateCues(cues []Cue) error {
	seen := map[string]bool{}
	for _, c := range cues {
		if seen[c.Name] {
			return newErr(KindCycleOrForwardRef, c.Name, "cue name declared more than once", nil)
		}
		for _, w := range c.WaitFor {
			if !seen[w] {
				return newErr(KindCycleOrForwardRef, c.Name, fmt.Sprintf("wait-for %q is not an earlier cue (forward reference or cycle)", w), nil)
			}
		}
		seen[c.Name] = true
	}
	return nil
}

// CueResult is the outcome of running one cue's niche to completion.
type CueResult struct {
	Name     string
	State    CueState
	Err      error
	Warnings []Warning
	Actions  int
}

// NicheRunner executes one niche's plan-then-apply cycle. The scheduler
// calls it once per cue, never concurrently with itself, after every
// predecessor cue has reached a terminal state.
type NicheRunner func(ctx context.Context, cueName string) (warnings []Warning, actionCount int, err error)

// Schedule runs every cue concurrently, honoring wait_for order, per
// spec.md §4.H/§5. concurrency bounds how many niches run at once (0 =
// unbounded, i.e. one goroutine per cue backed by the Go scheduler's own
// pool). ValidateCues must be called first; Schedule assumes the list is
// already a DAG. notify, if non-nil, is called on every state transition
// a cue makes — internal/watch wires it into the live dashboard.
func Schedule(ctx context.Context, cues []Cue, concurrency int, run NicheRunner, notify func(name string, state CueState)) []CueResult {
	if notify == nil {
		notify = func(string, CueState) {}
	}
	n := len(cues)
	results := make([]CueResult, n)
	done := make([]chan struct{}, n)
	for i := range done {
		done[i] = make(chan struct{})
	}
	indexOf := make(map[string]int, n)
	for i, c := range cues {
		indexOf[c.Name] = i
	}

	var mu sync.Mutex
	setResult := func(i int, state CueState, err error, warnings []Warning, actions int) {
		mu.Lock()
		results[i] = CueResult{Name: cues[i].Name, State: state, Err: err, Warnings: warnings, Actions: actions}
		mu.Unlock()
		notify(cues[i].Name, state)
		close(done[i])
	}

	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}

	for i, cue := range cues {
		i, cue := i, cue
		g.Go(func() error {
			if len(cue.WaitFor) > 0 {
				notify(cue.Name, CueWaiting)
			}
			// Wait for every predecessor to reach a terminal state, or
			// bail out immediately if the run is cancelled first.
			for _, w := range cue.WaitFor {
				pi := indexOf[w]
				select {
				case <-done[pi]:
				case <-ctx.Done():
					setResult(i, CueCancelled, nil, nil, 0)
					return nil
				}
			}

			select {
			case <-ctx.Done():
				setResult(i, CueCancelled, nil, nil, 0)
				return nil
			default:
			}

			notify(cue.Name, CueRunning)
			warnings, actions, err := run(gctx, cue.Name)
			if err != nil {
				if ctx.Err() != nil {
					setResult(i, CueCancelled, err, warnings, actions)
					return nil
				}
				setResult(i, CueFailed, err, warnings, actions)
				return nil
			}
			setResult(i, CueCompleted, nil, warnings, actions)
			return nil
		})
	}

	_ = g.Wait()
	return results
}
