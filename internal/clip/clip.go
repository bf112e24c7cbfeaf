// Package clip wraps system clipboard access for the `igor run
// --copy-summary` convenience flag.
package clip

import "github.com/atotto/clipboard"

// CopySummary writes text to the system clipboard. Errors (e.g. no
// clipboard available, common on headless CI runners) are non-fatal to
// the run and should be logged as a warning by the caller.
func CopySummary(text string) error {
	return clipboard.WriteAll(text)
}
